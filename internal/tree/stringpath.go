package tree

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// StringDialect emulates path operations on backends that store paths as
// separator-delimited strings. Ancestor checks become finite IN lists (a
// path's ancestor set is fully known from its own value), descendant checks
// become separator-anchored prefix matches.
type StringDialect struct{}

func (StringDialect) Name() string { return DialectSQLite }

func (StringDialect) AncestorOf(column string, p Path, orSelf bool) clause.Expression {
	set := p.AncestorSet()
	if orSelf {
		set = p.PathSet()
	}
	if len(set) == 0 {
		return matchNone
	}
	vals := make([]any, len(set))
	for i, a := range set {
		vals[i] = a.String()
	}
	return clause.IN{Column: clause.Column{Name: column}, Values: vals}
}

// DescendantOf anchors the prefix pattern on Separator so "1.2" never
// matches "1.23".
func (StringDialect) DescendantOf(column string, p Path, orSelf bool) clause.Expression {
	if p.IsZero() {
		return matchNone
	}
	col := clause.Column{Name: column}
	pattern := p.String() + Separator + "%"
	if orSelf {
		return clause.Expr{SQL: "(? = ? OR ? LIKE ?)", Vars: []any{col, p.String(), col, pattern}}
	}
	return clause.Expr{SQL: "? LIKE ?", Vars: []any{col, pattern}}
}

func (StringDialect) AncestorOfColumn(column, other string, orSelf bool) clause.Expression {
	col := clause.Column{Name: column}
	oth := clause.Column{Name: other}
	if orSelf {
		return clause.Expr{SQL: "(? = ? OR ? LIKE ? || ?)", Vars: []any{oth, col, oth, col, Separator + "%"}}
	}
	return clause.Expr{SQL: "? LIKE ? || ?", Vars: []any{oth, col, Separator + "%"}}
}

func (StringDialect) DescendantOfColumn(column, other string, orSelf bool) clause.Expression {
	col := clause.Column{Name: column}
	oth := clause.Column{Name: other}
	if orSelf {
		return clause.Expr{SQL: "(? = ? OR ? LIKE ? || ?)", Vars: []any{col, oth, col, oth, Separator + "%"}}
	}
	return clause.Expr{SQL: "? LIKE ? || ?", Vars: []any{col, oth, Separator + "%"}}
}

func (StringDialect) DepthSQL(column string) string {
	return fmt.Sprintf(
		"(length(%s) - length(replace(%s, '%s', ''))) / length('%s') + 1",
		column, column, Separator, Separator,
	)
}

// RebuildAssignment grafts each row's retained suffix onto newParent. Every
// matched row shares old's raw value as a prefix, so the suffix (old's last
// segment and everything below it) starts at a fixed character offset and a
// plain substr covers the whole subtree.
func (StringDialect) RebuildAssignment(column string, old Path, newParent Path) clause.Expression {
	col := clause.Column{Name: column}
	suffix := "?"
	vars := []any{col}
	if old.Depth() > 1 {
		offset := len(old.String()) - len(old.LastSegment()) + 1
		suffix = "substr(?, ?)"
		vars = []any{col, offset}
	}
	if newParent.IsZero() {
		return clause.Expr{SQL: suffix, Vars: vars}
	}
	return clause.Expr{SQL: "? || ? || " + suffix, Vars: append([]any{newParent.String(), Separator}, vars...)}
}

func (StringDialect) PathColumnType() string { return "text" }
