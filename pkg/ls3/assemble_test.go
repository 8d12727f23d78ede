package ls3

import (
	"testing"

	"github.com/zusitools/go-ls3/pkg/math"
	"github.com/zusitools/go-ls3/pkg/scene"
)

func triangleMesh(mat *scene.Material) *scene.Mesh {
	mesh := &scene.Mesh{
		Vertices: []scene.Vertex{
			{Position: math.Vec3{}, Normal: math.Vec3{Z: 1}},
			{Position: math.Vec3{X: 1}, Normal: math.Vec3{Z: 1}},
			{Position: math.Vec3{Y: 1}, Normal: math.Vec3{Z: 1}},
		},
		Faces: []scene.Face{{V: [3]int{0, 1, 2}}},
	}
	if mat != nil {
		mesh.Materials = []*scene.Material{mat}
	}
	return mesh
}

func TestBucketsWithoutMaterials(t *testing.T) {
	sc := scene.New(0, 1)
	n := scene.NewNode("plain")
	n.Mesh = triangleMesh(nil)
	sc.Add(n)

	a := NewAssembler(sc, ScopeAll, nil, nil, nil)
	buckets := a.Buckets(n)
	if len(buckets) != 1 || buckets[0].Material != nil {
		t.Errorf("materialless mesh should produce one nil bucket, got %+v", buckets)
	}
}

func TestBucketsPerUsedSlot(t *testing.T) {
	matA := &scene.Material{Name: "a"}
	matB := &scene.Material{Name: "b"}
	mesh := &scene.Mesh{
		Vertices: []scene.Vertex{{}, {}, {}, {}},
		Faces: []scene.Face{
			{V: [3]int{0, 1, 2}, Material: 0},
			{V: [3]int{1, 2, 3}, Material: 1},
			{V: [3]int{0, 2, 3}, Material: 0},
		},
		Materials: []*scene.Material{matA, matB},
	}
	sc := scene.New(0, 1)
	n := scene.NewNode("two")
	n.Mesh = mesh
	sc.Add(n)

	a := NewAssembler(sc, ScopeAll, nil, nil, nil)
	buckets := a.Buckets(n)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Material != matA || buckets[1].Material != matB {
		t.Errorf("bucket materials wrong: %+v", buckets)
	}
}

func TestScopeSelectedObjects(t *testing.T) {
	sc := scene.New(0, 1)
	a1 := scene.NewNode("a")
	a1.Mesh = triangleMesh(nil)
	b1 := scene.NewNode("b")
	b1.Mesh = triangleMesh(nil)
	sc.Add(a1, b1)

	asm := NewAssembler(sc, ScopeSelectedObjects, map[*scene.Node]bool{a1: true}, nil, nil)
	if !asm.Include(a1) {
		t.Error("selected node must be included")
	}
	if asm.Include(b1) {
		t.Error("unselected node must be excluded")
	}
}

func TestScopeSubsetsOfSelectedPullsSiblings(t *testing.T) {
	// Two nodes share a subset identifier; selecting one exports both.
	// A third node with a different identifier stays out.
	mat := &scene.Material{Name: "shared"}
	sc := scene.New(0, 1)

	left := scene.NewNode("left")
	left.SubsetName = "wall"
	left.Mesh = triangleMesh(mat)

	right := scene.NewNode("right")
	right.SubsetName = "wall"
	right.Mesh = triangleMesh(mat)

	other := scene.NewNode("other")
	other.SubsetName = "roof"
	other.Mesh = triangleMesh(mat)

	sc.Add(left, right, other)

	asm := NewAssembler(sc, ScopeSubsetsOfSelected, map[*scene.Node]bool{left: true}, nil, nil)
	if !asm.Include(left) {
		t.Error("selected node must be included")
	}
	if !asm.Include(right) {
		t.Error("sibling sharing the subset identifier must be included")
	}
	if asm.Include(other) {
		t.Error("node with a different identifier must be excluded")
	}
}

func TestScopeSelectedMaterials(t *testing.T) {
	matA := &scene.Material{Name: "a"}
	matB := &scene.Material{Name: "b"}
	mesh := &scene.Mesh{
		Vertices: []scene.Vertex{{}, {}, {}},
		Faces: []scene.Face{
			{V: [3]int{0, 1, 2}, Material: 0},
			{V: [3]int{0, 1, 2}, Material: 1},
		},
		Materials: []*scene.Material{matA, matB},
	}
	sc := scene.New(0, 1)
	n := scene.NewNode("n")
	n.Mesh = mesh
	sc.Add(n)

	asm := NewAssembler(sc, ScopeSelectedMaterials, nil, map[*scene.Material]bool{matA: true}, nil)
	if !asm.Include(n) {
		t.Error("node with any material is scope-included; filtering happens per bucket")
	}
	buckets := asm.Buckets(n)
	if !asm.IncludeBucket(n, buckets[0]) {
		t.Error("selected material bucket must be included")
	}
	if asm.IncludeBucket(n, buckets[1]) {
		t.Error("unselected material bucket must be excluded")
	}
}

func TestVariantVisibility(t *testing.T) {
	sc := scene.New(0, 1)
	summer := scene.NewNode("summer")
	summer.Variants = []string{"summer"}
	summer.Mesh = triangleMesh(nil)
	always := scene.NewNode("always")
	always.Mesh = triangleMesh(nil)
	sc.Add(summer, always)

	asm := NewAssembler(sc, ScopeAll, nil, nil, map[string]bool{"winter": true})
	if asm.Visible(summer) {
		t.Error("node restricted to inactive variants must be invisible")
	}
	if !asm.Visible(always) {
		t.Error("unrestricted node must be visible")
	}
	// Visibility gates output, not scope membership.
	if !asm.Include(summer) {
		t.Error("invisible node still passes the scope filter")
	}
}

func TestInvisibleSelectionStillPullsSubset(t *testing.T) {
	mat := &scene.Material{Name: "m"}
	sc := scene.New(0, 1)

	hidden := scene.NewNode("hidden")
	hidden.SubsetName = "s"
	hidden.Variants = []string{"never"}
	hidden.Mesh = triangleMesh(mat)

	visible := scene.NewNode("visible")
	visible.SubsetName = "s"
	visible.Mesh = triangleMesh(mat)

	sc.Add(hidden, visible)

	asm := NewAssembler(sc, ScopeSubsetsOfSelected, map[*scene.Node]bool{hidden: true}, nil, map[string]bool{})
	if !asm.Include(visible) {
		t.Error("identifier eligibility ignores the selected node's visibility")
	}
}

func TestExportScopeString(t *testing.T) {
	if ScopeAll.String() != "all" || ScopeSubsetsOfSelected.String() != "subsets-of-selected" {
		t.Error("scope names wrong")
	}
	if ExportScope(42).String() != "unknown(42)" {
		t.Errorf("unknown scope: %q", ExportScope(42).String())
	}
}
