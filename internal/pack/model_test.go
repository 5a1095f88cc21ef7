package pack

import (
	"testing"

	"github.com/google/uuid"
)

func f32ptr(v float32) *float32 { return &v }
func strptr(v string) *string   { return &v }

func TestAttrs_MergePrefersChildOverParent(t *testing.T) {
	parent := Attrs{IconSize: f32ptr(1.0), Alpha: f32ptr(0.5)}
	child := Attrs{IconSize: f32ptr(2.0)}

	merged := child.Merge(parent)

	if *merged.IconSize != 2.0 {
		t.Fatalf("expected child's IconSize to win, got %v", *merged.IconSize)
	}
	if merged.Alpha == nil || *merged.Alpha != 0.5 {
		t.Fatalf("expected inherited Alpha from parent, got %v", merged.Alpha)
	}
}

func TestCore_ResolveAttrsInheritsDownTheChain(t *testing.T) {
	c := NewCore()

	root := uuid.New()
	c.Categories[root] = &Category{ID: root, FullName: "parent", Attrs: Attrs{IconFile: strptr("root.png")}}

	child := uuid.New()
	c.Categories[child] = &Category{
		ID: child, FullName: "parent.child", Parent: &root,
		Attrs: Attrs{IconSize: f32ptr(3.0)},
	}

	grandchild := uuid.New()
	c.Categories[grandchild] = &Category{
		ID: grandchild, FullName: "parent.child.sub", Parent: &child,
		Attrs: Attrs{IconFile: strptr("override.png")},
	}

	resolved := c.ResolveAttrs(grandchild)

	if resolved.IconFile == nil || *resolved.IconFile != "override.png" {
		t.Fatalf("expected grandchild's own override to win, got %v", resolved.IconFile)
	}
	if resolved.IconSize == nil || *resolved.IconSize != 3.0 {
		t.Fatalf("expected IconSize inherited from child, got %v", resolved.IconSize)
	}
}

func TestSyntheticTBinPath(t *testing.T) {
	id := uuid.New()
	got := SyntheticTBinPath(id)
	want := "data/dynamic_trails/" + id.String() + ".trl"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
