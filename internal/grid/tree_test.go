package grid

import (
	"errors"
	"testing"
)

func testGrid(name, parent string) *Grid {
	return &Grid{
		Name: name, Parent: parent,
		X0: 0, Y0: 0, DX: -1, DY: 1,
		Width: 2, Height: 2,
		Unit:      ArcSeconds,
		Precision: SinglePrecision,
		data32:    [2][]float32{make([]float32, 4), make([]float32, 4)},
	}
}

func TestSelfParentPromotedOnce(t *testing.T) {
	reg := newRegistry(1)
	g := testGrid("A", "A")
	if err := reg.add(g); err != nil {
		t.Fatal(err)
	}
	root, err := reg.assemble("test.gsb")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if root != g {
		t.Fatalf("root = %v, want the grid itself", root)
	}
	if len(root.SubGrids()) != 0 {
		t.Errorf("self-parent grid listed among its own children")
	}
}

func TestSelfParentRootKeepsOtherChildren(t *testing.T) {
	reg := newRegistry(2)
	a := testGrid("A", "A")
	b := testGrid("B", "A")
	for _, g := range []*Grid{a, b} {
		if err := reg.add(g); err != nil {
			t.Fatal(err)
		}
	}
	root, err := reg.assemble("test.gsb")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if root != a {
		t.Fatalf("root = %v, want A", root)
	}
	if len(a.SubGrids()) != 1 || a.SubGrids()[0] != b {
		t.Errorf("children of A = %v, want [B]", a.SubGrids())
	}
}

func TestUnknownParentsBecomeGroup(t *testing.T) {
	reg := newRegistry(2)
	a := testGrid("A", "NONE")
	b := testGrid("B", "NONE")
	for _, g := range []*Grid{a, b} {
		if err := reg.add(g); err != nil {
			t.Fatal(err)
		}
	}
	root, err := reg.assemble("test.gsb")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !root.IsGroup() {
		t.Fatalf("expected a group, got %v", root)
	}
	if len(root.SubGrids()) != 2 {
		t.Errorf("group members = %v", root.SubGrids())
	}
}

func TestCycleDetected(t *testing.T) {
	reg := newRegistry(3)
	r := testGrid("R", "R")
	a := testGrid("A", "B")
	b := testGrid("B", "A")
	for _, g := range []*Grid{r, a, b} {
		if err := reg.add(g); err != nil {
			t.Fatal(err)
		}
	}
	_, err := reg.assemble("test.gsb")
	var unreachable *ErrUnreachableGrids
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected unreachable-grids error, got %v", err)
	}
	if len(unreachable.Names) != 2 || unreachable.Names[0] != "A" || unreachable.Names[1] != "B" {
		t.Errorf("orphans = %v, want [A B]", unreachable.Names)
	}
}

func TestNoRoots(t *testing.T) {
	reg := newRegistry(2)
	a := testGrid("A", "B")
	b := testGrid("B", "A")
	for _, g := range []*Grid{a, b} {
		if err := reg.add(g); err != nil {
			t.Fatal(err)
		}
	}
	_, err := reg.assemble("test.gsb")
	var none *ErrNoGrids
	if !errors.As(err, &none) {
		t.Fatalf("expected no-grids error, got %v", err)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	reg := newRegistry(2)
	if err := reg.add(testGrid("A", "NONE")); err != nil {
		t.Fatal(err)
	}
	var dup *ErrDuplicateGrid
	if err := reg.add(testGrid("A", "OTHER")); !errors.As(err, &dup) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestGroupDelegation(t *testing.T) {
	a := testGrid("A", "NONE") // Covers x in [-1, 0], y in [0, 1].
	b := testGrid("B", "NONE")
	b.X0 = -10 // Covers x in [-11, -10].
	for i := range b.data32[0] {
		b.data32[0][i] = 2 // Cell-ratio; shift = 2 * DY = 2.
	}
	group := newGroup([]*Grid{a, b})
	if !group.Contains(-10.5, 0.5) {
		t.Fatal("group does not contain a member's point")
	}
	dy, _, ok := group.ShiftAt(-10.5, 0.5)
	if !ok || dy != 2 {
		t.Errorf("group shift = %v (%v), want 2 from member B", dy, ok)
	}
	if _, _, ok := group.ShiftAt(100, 100); ok {
		t.Errorf("point outside all members reported as covered")
	}
}
