package tree

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Rebuilder rewrites the stored paths of a whole subtree as one bulk UPDATE.
type Rebuilder struct {
	dialect Dialect
}

func NewRebuilder(dialect Dialect) Rebuilder {
	return Rebuilder{dialect: dialect}
}

// Rebuild rewrites every path at or under old so the subtree hangs off
// newParent, or becomes a root tree when newParent is the zero Path. It
// issues exactly one UPDATE, loads no rows, and retries nothing; backend
// errors come back unchanged. Callers that need the rewrite atomic with a
// parent-reference update pass their open transaction as tx.
func (r Rebuilder) Rebuild(ctx context.Context, tx *gorm.DB, table, column string, old, newParent Path) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("%w: nil transaction handle", ErrUnsupportedBackend)
	}
	if old.IsZero() {
		return 0, fmt.Errorf("%w: empty subtree path", ErrInvalidPath)
	}
	res := tx.WithContext(ctx).
		Table(table).
		Where(r.dialect.DescendantOf(column, old, true)).
		UpdateColumn(column, r.dialect.RebuildAssignment(column, old, newParent))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
