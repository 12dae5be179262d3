package testutil

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/arbor/internal/data/db"
	types "github.com/yungbote/arbor/internal/domain"
	"github.com/yungbote/arbor/internal/platform/dbctx"
	"github.com/yungbote/arbor/internal/platform/logger"
	"github.com/yungbote/arbor/internal/tree"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// SQLiteDB opens a fresh migrated in-memory database. Every call is an
// isolated backend, so tests need no transaction discipline.
func SQLiteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(d); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	if err := db.EnsureTreeIndexes(d); err != nil {
		tb.Fatalf("index sqlite: %v", err)
	}
	return d
}

// PostgresDB returns the shared migrated database behind TEST_POSTGRES_DSN,
// skipping the test when the variable is unset. Pair with Tx.
func PostgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			pgErr = errMissingDSN
			return
		}
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if pgErr != nil {
			return
		}
		if pgErr = pgDB.Exec(`CREATE EXTENSION IF NOT EXISTS ltree;`).Error; pgErr != nil {
			return
		}
		if pgErr = db.AutoMigrateAll(pgDB); pgErr != nil {
			return
		}
		pgErr = db.EnsureTreeIndexes(pgDB)
	})
	if errors.Is(pgErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func Engine(tb testing.TB, db *gorm.DB) *tree.Engine {
	tb.Helper()
	eng, err := tree.New(db)
	if err != nil {
		tb.Fatalf("init tree engine: %v", err)
	}
	return eng
}

// SeedFolder inserts a folder under parent (nil for a root) with a generated
// id, path key and path.
func SeedFolder(tb testing.TB, dbc dbctx.Context, name string, parent *types.Folder) *types.Folder {
	tb.Helper()

	f := &types.Folder{
		ID:      uuid.New(),
		PathKey: types.NewPathKey(),
		Name:    name,
	}
	parentPath := tree.Path{}
	if parent != nil {
		f.ParentID = PtrUUID(parent.ID)
		parentPath = parent.Path
	}
	p, err := parentPath.Child(f.PathKey)
	if err != nil {
		tb.Fatalf("build path: %v", err)
	}
	f.Path = p

	if err := dbc.Tx.WithContext(ctxOrBackground(dbc)).Create(f).Error; err != nil {
		tb.Fatalf("seed folder %q: %v", name, err)
	}
	return f
}

func ctxOrBackground(dbc dbctx.Context) context.Context {
	if dbc.Ctx != nil {
		return dbc.Ctx
	}
	return context.Background()
}

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }
