package tree

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNewPath(t *testing.T) {
	p, err := NewPath("a", "b", "c")
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}
	if p.String() != "a.b.c" {
		t.Fatalf("String: got %q", p.String())
	}

	base := MustPath("x", "y")
	flat, err := NewPath(base, "z")
	if err != nil {
		t.Fatalf("NewPath(flatten): %v", err)
	}
	if flat.String() != "x.y.z" {
		t.Fatalf("flatten: got %q", flat.String())
	}

	joined, err := NewPath(base, MustPath("q"))
	if err != nil {
		t.Fatalf("NewPath(two paths): %v", err)
	}
	if joined.String() != "x.y.q" {
		t.Fatalf("two paths: got %q", joined.String())
	}

	for _, parts := range [][]any{
		{},
		{""},
		{"a."},
		{"a", "b.c"},
		{Path{}},
		{42},
	} {
		if _, err := NewPath(parts...); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("NewPath(%v): want ErrInvalidPath, got %v", parts, err)
		}
	}
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("a.b")
	if err != nil || p.String() != "a.b" {
		t.Fatalf("ParsePath: p=%q err=%v", p.String(), err)
	}
	for _, raw := range []string{"", ".", "a.", ".a", "a..b"} {
		if _, err := ParsePath(raw); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("ParsePath(%q): want ErrInvalidPath, got %v", raw, err)
		}
	}
}

func TestPathSegmentsAndDepth(t *testing.T) {
	p := MustPath("a", "b", "c")
	if got := p.Segments(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Segments: %v", got)
	}
	if p.Depth() != 3 {
		t.Fatalf("Depth: %d", p.Depth())
	}
	if p.LastSegment() != "c" {
		t.Fatalf("LastSegment: %q", p.LastSegment())
	}

	root := MustPath("r")
	if root.Depth() != 1 || root.LastSegment() != "r" {
		t.Fatalf("root: depth=%d last=%q", root.Depth(), root.LastSegment())
	}

	var zero Path
	if zero.Depth() != 0 || zero.Segments() != nil || !zero.IsZero() {
		t.Fatalf("zero path: depth=%d segments=%v", zero.Depth(), zero.Segments())
	}
}

func TestPathSets(t *testing.T) {
	p := MustPath("a", "b", "c")

	want := []Path{MustPath("a"), MustPath("a", "b"), p}
	if got := p.PathSet(); !reflect.DeepEqual(got, want) {
		t.Fatalf("PathSet: %v", got)
	}
	if got := p.AncestorSet(); !reflect.DeepEqual(got, want[:2]) {
		t.Fatalf("AncestorSet: %v", got)
	}

	root := MustPath("a")
	if got := root.PathSet(); !reflect.DeepEqual(got, []Path{root}) {
		t.Fatalf("root PathSet: %v", got)
	}
	if got := root.AncestorSet(); len(got) != 0 {
		t.Fatalf("root AncestorSet: %v", got)
	}

	var zero Path
	if zero.PathSet() != nil || zero.AncestorSet() != nil {
		t.Fatalf("zero path sets should be nil")
	}
}

func TestPathParentChild(t *testing.T) {
	p := MustPath("a", "b")

	parent, ok := p.Parent()
	if !ok || parent.String() != "a" {
		t.Fatalf("Parent: %q ok=%v", parent.String(), ok)
	}
	if _, ok := MustPath("a").Parent(); ok {
		t.Fatalf("root Parent: want ok=false")
	}

	child, err := p.Child("c")
	if err != nil || child.String() != "a.b.c" {
		t.Fatalf("Child: %q err=%v", child.String(), err)
	}

	var zero Path
	rooted, err := zero.Child("r")
	if err != nil || rooted.String() != "r" {
		t.Fatalf("zero Child: %q err=%v", rooted.String(), err)
	}
	if _, err := p.Child("x.y"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("Child with separator: %v", err)
	}
}

func TestPathIsAncestorOf(t *testing.T) {
	a := MustPath("1", "2")
	cases := []struct {
		other Path
		want  bool
	}{
		{MustPath("1", "2", "3"), true},
		{MustPath("1", "2", "3", "4"), true},
		{MustPath("1", "2"), false},
		{MustPath("1", "20"), false},
		{MustPath("1"), false},
		{Path{}, false},
	}
	for _, c := range cases {
		if got := a.IsAncestorOf(c.other); got != c.want {
			t.Fatalf("IsAncestorOf(%q): got %v", c.other.String(), got)
		}
	}
}

func TestPathScanValue(t *testing.T) {
	var p Path
	if err := p.Scan("a.b"); err != nil || p.String() != "a.b" {
		t.Fatalf("Scan string: p=%q err=%v", p.String(), err)
	}
	if err := p.Scan([]byte("c.d")); err != nil || p.String() != "c.d" {
		t.Fatalf("Scan bytes: p=%q err=%v", p.String(), err)
	}
	if err := p.Scan(nil); err != nil || !p.IsZero() {
		t.Fatalf("Scan nil: p=%q err=%v", p.String(), err)
	}
	if err := p.Scan("a..b"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("Scan malformed: %v", err)
	}
	if err := p.Scan(7); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("Scan int: %v", err)
	}

	v, err := MustPath("a", "b").Value()
	if err != nil || v != "a.b" {
		t.Fatalf("Value: %v err=%v", v, err)
	}
	nv, err := (Path{}).Value()
	if err != nil || nv != nil {
		t.Fatalf("zero Value: %v err=%v", nv, err)
	}
}

func TestPathJSON(t *testing.T) {
	type doc struct {
		Path Path `json:"path"`
	}

	out, err := json.Marshal(doc{Path: MustPath("a", "b")})
	if err != nil || string(out) != `{"path":"a.b"}` {
		t.Fatalf("Marshal: %s err=%v", out, err)
	}

	var in doc
	if err := json.Unmarshal([]byte(`{"path":"c.d"}`), &in); err != nil || in.Path.String() != "c.d" {
		t.Fatalf("Unmarshal: %q err=%v", in.Path.String(), err)
	}
	if err := json.Unmarshal([]byte(`{"path":null}`), &in); err != nil || !in.Path.IsZero() {
		t.Fatalf("Unmarshal null: %q err=%v", in.Path.String(), err)
	}
	if err := json.Unmarshal([]byte(`{"path":"a..b"}`), &in); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("Unmarshal malformed: %v", err)
	}
}
