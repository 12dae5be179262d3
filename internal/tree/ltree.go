package tree

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// LtreeDialect lowers path operations onto the postgres ltree extension.
// Containment goes through the ltree operators so predicates stay servable
// by a GiST index on the path column.
type LtreeDialect struct{}

func (LtreeDialect) Name() string { return DialectPostgres }

func (LtreeDialect) AncestorOf(column string, p Path, orSelf bool) clause.Expression {
	if p.IsZero() {
		return matchNone
	}
	col := clause.Column{Name: column}
	if orSelf {
		return clause.Expr{SQL: "? @> ?::ltree", Vars: []any{col, p.String()}}
	}
	return clause.Expr{
		SQL:  "(? @> ?::ltree AND ? <> ?::ltree)",
		Vars: []any{col, p.String(), col, p.String()},
	}
}

func (LtreeDialect) DescendantOf(column string, p Path, orSelf bool) clause.Expression {
	if p.IsZero() {
		return matchNone
	}
	col := clause.Column{Name: column}
	if orSelf {
		return clause.Expr{SQL: "? <@ ?::ltree", Vars: []any{col, p.String()}}
	}
	return clause.Expr{
		SQL:  "(? <@ ?::ltree AND ? <> ?::ltree)",
		Vars: []any{col, p.String(), col, p.String()},
	}
}

func (LtreeDialect) AncestorOfColumn(column, other string, orSelf bool) clause.Expression {
	col := clause.Column{Name: column}
	oth := clause.Column{Name: other}
	if orSelf {
		return clause.Expr{SQL: "? @> ?", Vars: []any{col, oth}}
	}
	return clause.Expr{SQL: "(? @> ? AND ? <> ?)", Vars: []any{col, oth, col, oth}}
}

func (LtreeDialect) DescendantOfColumn(column, other string, orSelf bool) clause.Expression {
	col := clause.Column{Name: column}
	oth := clause.Column{Name: other}
	if orSelf {
		return clause.Expr{SQL: "? <@ ?", Vars: []any{col, oth}}
	}
	return clause.Expr{SQL: "(? <@ ? AND ? <> ?)", Vars: []any{col, oth, col, oth}}
}

func (LtreeDialect) DepthSQL(column string) string {
	return fmt.Sprintf("nlevel(%s)", column)
}

// RebuildAssignment keeps each row's suffix from old's own label down and
// grafts it onto newParent. When old is a root the suffix is the whole path,
// so the subpath call drops out.
func (LtreeDialect) RebuildAssignment(column string, old Path, newParent Path) clause.Expression {
	col := clause.Column{Name: column}
	suffix := "?"
	vars := []any{col}
	if d := old.Depth(); d > 1 {
		suffix = "subpath(?, ?)"
		vars = []any{col, d - 1}
	}
	if newParent.IsZero() {
		return clause.Expr{SQL: suffix, Vars: vars}
	}
	return clause.Expr{SQL: "?::ltree || " + suffix, Vars: append([]any{newParent.String()}, vars...)}
}

func (LtreeDialect) PathColumnType() string { return "ltree" }
