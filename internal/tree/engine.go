package tree

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine is the session-level entry point: the dialect is resolved once from
// the session's backend at construction, then every predicate and maintenance
// call goes through it without further backend switching.
type Engine struct {
	db      *gorm.DB
	dialect Dialect
	rebuild Rebuilder
}

// New resolves db's backend and returns an Engine bound to it.
// ErrUnsupportedBackend when the backend has no dialect.
func New(db *gorm.DB) (*Engine, error) {
	d, err := ResolveDialect(db)
	if err != nil {
		return nil, err
	}
	return &Engine{db: db, dialect: d, rebuild: NewRebuilder(d)}, nil
}

// Dialect returns the resolved dialect.
func (e *Engine) Dialect() Dialect { return e.dialect }

func (e *Engine) AncestorOf(column string, p Path) clause.Expression {
	return e.dialect.AncestorOf(column, p, false)
}

func (e *Engine) AncestorOfOrSelf(column string, p Path) clause.Expression {
	return e.dialect.AncestorOf(column, p, true)
}

func (e *Engine) DescendantOf(column string, p Path) clause.Expression {
	return e.dialect.DescendantOf(column, p, false)
}

func (e *Engine) DescendantOfOrSelf(column string, p Path) clause.Expression {
	return e.dialect.DescendantOf(column, p, true)
}

func (e *Engine) AncestorOfColumn(column, other string) clause.Expression {
	return e.dialect.AncestorOfColumn(column, other, false)
}

func (e *Engine) DescendantOfColumn(column, other string) clause.Expression {
	return e.dialect.DescendantOfColumn(column, other, false)
}

// DepthEq filters rows at one depth; Roots is depth 1.
func (e *Engine) DepthEq(column string, depth int) clause.Expression {
	return clause.Expr{SQL: e.dialect.DepthSQL(column) + " = ?", Vars: []any{depth}}
}

func (e *Engine) Roots(column string) clause.Expression {
	return e.DepthEq(column, 1)
}

// DepthLte bounds a subtree listing to depth levels below the subtree root.
func (e *Engine) DepthLte(column string, depth int) clause.Expression {
	return clause.Expr{SQL: e.dialect.DepthSQL(column) + " <= ?", Vars: []any{depth}}
}

// OrderByDepth renders an order fragment, shallow rows first unless desc.
func (e *Engine) OrderByDepth(column string, desc bool) string {
	if desc {
		return e.dialect.DepthSQL(column) + " DESC"
	}
	return e.dialect.DepthSQL(column) + " ASC"
}

// Move validates the reparent against cycles, then rewrites the subtree's
// paths in one bulk statement. The caller updates the node's parent
// reference inside the same transaction; ordering between the two writes
// does not matter because the rewrite never reads the parent column.
func (e *Engine) Move(ctx context.Context, tx *gorm.DB, table, column string, old, newParent Path) (int64, error) {
	if err := ValidateMove(old, newParent); err != nil {
		return 0, err
	}
	return e.Rebuild(ctx, tx, table, column, old, newParent)
}

// Rebuild is Move without the cycle guard, for callers that validated
// separately. With a nil tx it runs on the engine's own session.
func (e *Engine) Rebuild(ctx context.Context, tx *gorm.DB, table, column string, old, newParent Path) (int64, error) {
	if tx == nil {
		tx = e.db
	}
	return e.rebuild.Rebuild(ctx, tx, table, column, old, newParent)
}

// HasNativePathSupport reports whether the session's backend stores paths in
// a native hierarchical type. On postgres that means the ltree extension is
// installed; emulating backends report false.
func (e *Engine) HasNativePathSupport(ctx context.Context) (bool, error) {
	if e.dialect.Name() != DialectPostgres {
		return false, nil
	}
	var installed bool
	err := e.db.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = ?)", "ltree").
		Scan(&installed).Error
	if err != nil {
		return false, err
	}
	return installed, nil
}
