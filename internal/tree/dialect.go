package tree

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dialector names this package resolves.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Dialect lowers path predicates and maintenance expressions into backend
// SQL. Predicates come back as clause expressions so callers compose them
// with Where/Or/Not and gorm quotes the column names; DepthSQL is a raw
// fragment because it has to work in select and order positions too.
type Dialect interface {
	// Name is the gorm dialector name this dialect serves.
	Name() string

	// AncestorOf matches rows whose column holds a strict ancestor of p;
	// orSelf widens the match to p itself.
	AncestorOf(column string, p Path, orSelf bool) clause.Expression
	// DescendantOf matches rows whose column holds a strict descendant of
	// p; orSelf widens the match to p itself.
	DescendantOf(column string, p Path, orSelf bool) clause.Expression

	// AncestorOfColumn matches rows where column is an ancestor of the
	// other path column, for self-join queries. DescendantOfColumn is the
	// mirror image.
	AncestorOfColumn(column, other string, orSelf bool) clause.Expression
	DescendantOfColumn(column, other string, orSelf bool) clause.Expression

	// DepthSQL renders the depth of column as a SQL expression.
	DepthSQL(column string) string

	// RebuildAssignment renders the replacement value for every path at or
	// under old once the subtree hangs off newParent. The zero newParent
	// promotes the subtree root to a root node.
	RebuildAssignment(column string, old Path, newParent Path) clause.Expression

	// PathColumnType is the DDL type of a path column on this backend.
	PathColumnType() string
}

// ResolveDialect picks the Dialect for db's backend. Resolution happens once
// per session; sessions never mix backends.
func ResolveDialect(db *gorm.DB) (Dialect, error) {
	if db == nil || db.Dialector == nil {
		return nil, fmt.Errorf("%w: nil database handle", ErrUnsupportedBackend)
	}
	switch name := db.Dialector.Name(); name {
	case DialectPostgres:
		return LtreeDialect{}, nil
	case DialectSQLite:
		return StringDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, name)
	}
}

// never matches any row; used where a predicate's path set is empty
var matchNone = clause.Expr{SQL: "1 = 0"}
