package tree

import (
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// pgSession opens a postgres-dialect session that never dials: the DSN is
// only parsed, and automatic ping is off.
func pgSession(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=arbor dbname=arbor sslmode=disable"), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open postgres session: %v", err)
	}
	return db
}

func sqliteSession(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite session: %v", err)
	}
	return db
}

func selectSQL(t *testing.T, db *gorm.DB, expr clause.Expression) string {
	t.Helper()
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Table("folder").Where(expr).Find(&[]map[string]interface{}{})
	})
	if sql == "" {
		t.Fatalf("empty sql")
	}
	return sql
}

func updateSQL(t *testing.T, db *gorm.DB, where clause.Expression, assign clause.Expression) string {
	t.Helper()
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Table("folder").Where(where).UpdateColumn("path", assign)
	})
	if sql == "" {
		t.Fatalf("empty sql")
	}
	return sql
}

func wantContains(t *testing.T, sql, frag string) {
	t.Helper()
	if !strings.Contains(sql, frag) {
		t.Fatalf("sql %q\nmissing %q", sql, frag)
	}
}

func TestLtreeDialectPredicates(t *testing.T) {
	db := pgSession(t)
	d := LtreeDialect{}
	p := MustPath("a", "b")

	wantContains(t, selectSQL(t, db, d.DescendantOf("path", p, true)),
		`"path" <@ 'a.b'::ltree`)
	wantContains(t, selectSQL(t, db, d.DescendantOf("path", p, false)),
		`("path" <@ 'a.b'::ltree AND "path" <> 'a.b'::ltree)`)
	wantContains(t, selectSQL(t, db, d.AncestorOf("path", p, true)),
		`"path" @> 'a.b'::ltree`)
	wantContains(t, selectSQL(t, db, d.AncestorOf("path", p, false)),
		`("path" @> 'a.b'::ltree AND "path" <> 'a.b'::ltree)`)

	wantContains(t, selectSQL(t, db, d.AncestorOfColumn("p", "c", true)),
		`"p" @> "c"`)
	wantContains(t, selectSQL(t, db, d.DescendantOfColumn("c", "p", false)),
		`("c" <@ "p" AND "c" <> "p")`)

	wantContains(t, selectSQL(t, db, d.DescendantOf("path", Path{}, true)), "1 = 0")

	if d.DepthSQL("path") != "nlevel(path)" {
		t.Fatalf("DepthSQL: %q", d.DepthSQL("path"))
	}
	if d.PathColumnType() != "ltree" {
		t.Fatalf("PathColumnType: %q", d.PathColumnType())
	}
}

func TestLtreeDialectRebuild(t *testing.T) {
	db := pgSession(t)
	d := LtreeDialect{}
	old := MustPath("a", "b")

	sql := updateSQL(t, db, d.DescendantOf("path", old, true),
		d.RebuildAssignment("path", old, MustPath("x", "y")))
	wantContains(t, sql, `SET "path"='x.y'::ltree || subpath("path", 1)`)
	wantContains(t, sql, `WHERE "path" <@ 'a.b'::ltree`)

	// Promotion to root keeps only the truncation.
	sql = updateSQL(t, db, d.DescendantOf("path", old, true),
		d.RebuildAssignment("path", old, Path{}))
	wantContains(t, sql, `SET "path"=subpath("path", 1)`)

	// Moving a root: the retained suffix is the whole path, no subpath call.
	sql = updateSQL(t, db, d.DescendantOf("path", MustPath("a"), true),
		d.RebuildAssignment("path", MustPath("a"), MustPath("x")))
	wantContains(t, sql, `SET "path"='x'::ltree || "path"`)
}

func TestStringDialectPredicates(t *testing.T) {
	db := sqliteSession(t)
	d := StringDialect{}
	p := MustPath("a", "b")

	wantContains(t, selectSQL(t, db, d.DescendantOf("path", p, true)),
		"(`path` = \"a.b\" OR `path` LIKE \"a.b.%\")")
	wantContains(t, selectSQL(t, db, d.DescendantOf("path", p, false)),
		"`path` LIKE \"a.b.%\"")

	wantContains(t, selectSQL(t, db, d.AncestorOf("path", MustPath("a", "b", "c"), true)),
		"`path` IN (\"a\",\"a.b\",\"a.b.c\")")
	// A two-level path has a single strict ancestor; the IN collapses to =.
	wantContains(t, selectSQL(t, db, d.AncestorOf("path", p, false)),
		"`path` = \"a\"")
	// A root has no strict ancestors at all.
	wantContains(t, selectSQL(t, db, d.AncestorOf("path", MustPath("a"), false)), "1 = 0")

	wantContains(t, selectSQL(t, db, d.AncestorOfColumn("p", "c", true)),
		"(`c` = `p` OR `c` LIKE `p` || \".%\")")
	wantContains(t, selectSQL(t, db, d.DescendantOfColumn("c", "p", false)),
		"`c` LIKE `p` || \".%\"")

	wantContains(t, selectSQL(t, db, d.DescendantOf("path", Path{}, true)), "1 = 0")

	if got := d.DepthSQL("path"); got != "(length(path) - length(replace(path, '.', ''))) / length('.') + 1" {
		t.Fatalf("DepthSQL: %q", got)
	}
	if d.PathColumnType() != "text" {
		t.Fatalf("PathColumnType: %q", d.PathColumnType())
	}
}

func TestStringDialectRebuild(t *testing.T) {
	db := sqliteSession(t)
	d := StringDialect{}
	old := MustPath("1", "2")

	// Suffix offset: the retained part of "1.2.3" starts at character 3.
	sql := updateSQL(t, db, d.DescendantOf("path", old, true),
		d.RebuildAssignment("path", old, MustPath("5", "6")))
	wantContains(t, sql, "SET `path`=\"5.6\" || \".\" || substr(`path`, 3)")
	wantContains(t, sql, "WHERE (`path` = \"1.2\" OR `path` LIKE \"1.2.%\")")

	sql = updateSQL(t, db, d.DescendantOf("path", old, true),
		d.RebuildAssignment("path", old, Path{}))
	wantContains(t, sql, "SET `path`=substr(`path`, 3)")

	sql = updateSQL(t, db, d.DescendantOf("path", MustPath("7"), true),
		d.RebuildAssignment("path", MustPath("7"), MustPath("5")))
	wantContains(t, sql, "SET `path`=\"5\" || \".\" || `path`")
}

type fakeDialector struct{}

func (fakeDialector) Name() string                   { return "oracle" }
func (fakeDialector) Initialize(*gorm.DB) error      { return nil }
func (fakeDialector) Migrator(*gorm.DB) gorm.Migrator { return nil }
func (fakeDialector) DataTypeOf(*schema.Field) string { return "" }
func (fakeDialector) DefaultValueOf(*schema.Field) clause.Expression {
	return clause.Expr{}
}
func (fakeDialector) BindVarTo(writer clause.Writer, stmt *gorm.Statement, v interface{}) {
	writer.WriteByte('?')
}
func (fakeDialector) QuoteTo(writer clause.Writer, str string) { writer.WriteString(str) }
func (fakeDialector) Explain(sql string, vars ...interface{}) string { return sql }

func TestResolveDialect(t *testing.T) {
	if d, err := ResolveDialect(sqliteSession(t)); err != nil || d.Name() != DialectSQLite {
		t.Fatalf("sqlite: d=%v err=%v", d, err)
	}
	if d, err := ResolveDialect(pgSession(t)); err != nil || d.Name() != DialectPostgres {
		t.Fatalf("postgres: d=%v err=%v", d, err)
	}

	if _, err := ResolveDialect(nil); !errors.Is(err, ErrUnsupportedBackend) {
		t.Fatalf("nil db: %v", err)
	}

	db, err := gorm.Open(fakeDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("open fake dialector: %v", err)
	}
	if _, err := ResolveDialect(db); !errors.Is(err, ErrUnsupportedBackend) {
		t.Fatalf("fake dialector: %v", err)
	}
}
