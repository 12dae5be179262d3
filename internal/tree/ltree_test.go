package tree

import (
	"context"
	"errors"
	"os"
	"reflect"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	ltreeOnce sync.Once
	ltreeDB   *gorm.DB
	ltreeErr  error
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

func pgLiveDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	ltreeOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			ltreeErr = errMissingDSN
			return
		}
		ltreeDB, ltreeErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if ltreeErr != nil {
			return
		}
		ltreeErr = ltreeDB.Exec("CREATE EXTENSION IF NOT EXISTS ltree").Error
	})
	if errors.Is(ltreeErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run ltree integration tests")
	}
	if ltreeErr != nil {
		tb.Fatalf("init ltree test db: %v", ltreeErr)
	}
	return ltreeDB
}

type ltreeNode struct {
	ID   int  `gorm:"primaryKey"`
	Path Path `gorm:"column:path"`
}

func (ltreeNode) TableName() string { return "ltree_node" }

func ltreeTx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	if err := tx.Exec("CREATE TEMPORARY TABLE ltree_node (id integer primary key, path ltree not null)").Error; err != nil {
		tb.Fatalf("create temp table: %v", err)
	}
	rows := []ltreeNode{
		{ID: 1, Path: MustPath("1")},
		{ID: 2, Path: MustPath("1", "2")},
		{ID: 3, Path: MustPath("1", "2", "3")},
		{ID: 4, Path: MustPath("1", "2", "3", "4")},
		{ID: 5, Path: MustPath("1", "20")},
		{ID: 6, Path: MustPath("5")},
		{ID: 7, Path: MustPath("5", "6")},
	}
	if err := tx.Create(&rows).Error; err != nil {
		tb.Fatalf("seed: %v", err)
	}
	return tx
}

func ltreePaths(tb testing.TB, tx *gorm.DB, conds ...any) map[int]string {
	tb.Helper()
	q := tx.Model(&ltreeNode{})
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	var rows []ltreeNode
	if err := q.Find(&rows).Error; err != nil {
		tb.Fatalf("load: %v", err)
	}
	out := make(map[int]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Path.String()
	}
	return out
}

func TestLtreeQueriesIntegration(t *testing.T) {
	db := pgLiveDB(t)
	tx := ltreeTx(t, db)

	eng, err := New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := ltreePaths(t, tx, eng.DescendantOfOrSelf("path", MustPath("1", "2")))
	if !reflect.DeepEqual(got, map[int]string{2: "1.2", 3: "1.2.3", 4: "1.2.3.4"}) {
		t.Fatalf("subtree of 1.2: %v", got)
	}

	got = ltreePaths(t, tx, eng.AncestorOfOrSelf("path", MustPath("1", "2", "3")))
	if !reflect.DeepEqual(got, map[int]string{1: "1", 2: "1.2", 3: "1.2.3"}) {
		t.Fatalf("ancestors of 1.2.3: %v", got)
	}

	got = ltreePaths(t, tx, eng.Roots("path"))
	if !reflect.DeepEqual(got, map[int]string{1: "1", 6: "5"}) {
		t.Fatalf("roots: %v", got)
	}

	var ordered []ltreeNode
	err = tx.Model(&ltreeNode{}).
		Where(eng.DescendantOfOrSelf("path", MustPath("1"))).
		Order(eng.OrderByDepth("path", false)).
		Order("path").
		Find(&ordered).Error
	if err != nil {
		t.Fatalf("ordered subtree: %v", err)
	}
	var seq []string
	for _, r := range ordered {
		seq = append(seq, r.Path.String())
	}
	if !reflect.DeepEqual(seq, []string{"1", "1.2", "1.20", "1.2.3", "1.2.3.4"}) {
		t.Fatalf("depth order: %v", seq)
	}

	native, err := eng.HasNativePathSupport(context.Background())
	if err != nil || !native {
		t.Fatalf("HasNativePathSupport: native=%v err=%v", native, err)
	}
}

func TestLtreeMoveIntegration(t *testing.T) {
	db := pgLiveDB(t)
	tx := ltreeTx(t, db)
	ctx := context.Background()

	eng, err := New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	affected, err := eng.Move(ctx, tx, "ltree_node", "path", MustPath("1", "2"), MustPath("5", "6"))
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if affected != 3 {
		t.Fatalf("Move affected: %d", affected)
	}
	got := ltreePaths(t, tx)
	want := map[int]string{
		1: "1",
		2: "5.6.2",
		3: "5.6.2.3",
		4: "5.6.2.3.4",
		5: "1.20",
		6: "5",
		7: "5.6",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("after move: %v", got)
	}

	if _, err := eng.Move(ctx, tx, "ltree_node", "path", MustPath("5", "6", "2"), Path{}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	got = ltreePaths(t, tx, eng.DescendantOfOrSelf("path", MustPath("2")))
	if !reflect.DeepEqual(got, map[int]string{2: "2", 3: "2.3", 4: "2.3.4"}) {
		t.Fatalf("after promote: %v", got)
	}

	_, err = eng.Move(ctx, tx, "ltree_node", "path", MustPath("2"), MustPath("2", "3"))
	if !errors.Is(err, ErrCircularReference) {
		t.Fatalf("cycle move: %v", err)
	}
}
