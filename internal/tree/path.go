package tree

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Separator joins path segments into the stored representation.
const Separator = "."

// Path is an immutable materialized path: the segment chain from a root node
// down to one node, joined by Separator. The zero Path means "no path" and
// stands for the missing parent of root nodes.
type Path struct {
	raw string
}

// NewPath composes a Path from parts, left to right. A part is either a
// segment string or another Path (flattened into its segments). It returns
// ErrInvalidPath for an empty result, an empty string part, a string part
// containing Separator, or a zero Path part.
func NewPath(parts ...any) (Path, error) {
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case Path:
			if v.IsZero() {
				return Path{}, fmt.Errorf("%w: empty path part", ErrInvalidPath)
			}
			segs = append(segs, v.raw)
		case string:
			if v == "" {
				return Path{}, fmt.Errorf("%w: empty segment", ErrInvalidPath)
			}
			if strings.Contains(v, Separator) {
				return Path{}, fmt.Errorf("%w: segment %q contains separator", ErrInvalidPath, v)
			}
			segs = append(segs, v)
		default:
			return Path{}, fmt.Errorf("%w: part type %T", ErrInvalidPath, part)
		}
	}
	if len(segs) == 0 {
		return Path{}, fmt.Errorf("%w: no segments", ErrInvalidPath)
	}
	return Path{raw: strings.Join(segs, Separator)}, nil
}

// ParsePath validates a stored raw value and wraps it as a Path.
func ParsePath(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for _, seg := range strings.Split(raw, Separator) {
		if seg == "" {
			return Path{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, raw)
		}
	}
	return Path{raw: raw}, nil
}

// MustPath is NewPath that panics on error. Meant for tests and seed data.
func MustPath(parts ...any) Path {
	p, err := NewPath(parts...)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the stored representation; empty for the zero Path.
func (p Path) String() string { return p.raw }

// IsZero reports whether p is the "no path" value.
func (p Path) IsZero() bool { return p.raw == "" }

// Segments returns the path's segments, root first.
func (p Path) Segments() []string {
	if p.IsZero() {
		return nil
	}
	return strings.Split(p.raw, Separator)
}

// Depth is the segment count. Roots have depth 1, the zero Path depth 0.
func (p Path) Depth() int {
	if p.IsZero() {
		return 0
	}
	return strings.Count(p.raw, Separator) + 1
}

// LastSegment returns the final segment, the node's own source value.
func (p Path) LastSegment() string {
	if i := strings.LastIndex(p.raw, Separator); i >= 0 {
		return p.raw[i+1:]
	}
	return p.raw
}

// PathSet returns every prefix path of p, root first, ending with p itself.
func (p Path) PathSet() []Path {
	if p.IsZero() {
		return nil
	}
	out := make([]Path, 0, p.Depth())
	for i := 0; i < len(p.raw); i++ {
		if p.raw[i] == Separator[0] {
			out = append(out, Path{raw: p.raw[:i]})
		}
	}
	return append(out, p)
}

// AncestorSet returns every strict ancestor of p, root first.
func (p Path) AncestorSet() []Path {
	set := p.PathSet()
	if len(set) == 0 {
		return nil
	}
	return set[:len(set)-1]
}

// Parent returns the path one level up; ok is false for roots and for the
// zero Path.
func (p Path) Parent() (Path, bool) {
	i := strings.LastIndex(p.raw, Separator)
	if i < 0 {
		return Path{}, false
	}
	return Path{raw: p.raw[:i]}, true
}

// Child appends one segment. On the zero Path it returns the root path of
// segment.
func (p Path) Child(segment string) (Path, error) {
	if p.IsZero() {
		return NewPath(segment)
	}
	return NewPath(p, segment)
}

// IsAncestorOf reports whether p is a strict ancestor of other.
func (p Path) IsAncestorOf(other Path) bool {
	if p.IsZero() || other.IsZero() {
		return false
	}
	return strings.HasPrefix(other.raw, p.raw+Separator)
}

// Scan implements sql.Scanner. NULL scans to the zero Path.
func (p *Path) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*p = Path{}
		return nil
	case string:
		return p.scanRaw(v)
	case []byte:
		return p.scanRaw(string(v))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidPath, value)
	}
}

func (p *Path) scanRaw(raw string) error {
	if raw == "" {
		*p = Path{}
		return nil
	}
	parsed, err := ParsePath(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer. The zero Path stores as NULL.
func (p Path) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.raw, nil
}

// MarshalJSON renders the path as its raw string.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.raw)
}

// UnmarshalJSON parses a raw string; "" and null decode to the zero Path.
func (p *Path) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Path{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return p.scanRaw(raw)
}

// GormDataType implements schema.GormDataTypeInterface.
func (Path) GormDataType() string { return "path" }

// GormDBDataType picks the column type per backend: native ltree on postgres,
// plain text on sqlite.
func (Path) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case DialectPostgres:
		return "ltree"
	case DialectSQLite:
		return "text"
	}
	return "varchar(1024)"
}
