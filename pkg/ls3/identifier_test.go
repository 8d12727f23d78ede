package ls3

import (
	"testing"

	"github.com/zusitools/go-ls3/pkg/scene"
)

func TestSubsetIdentifierOrder(t *testing.T) {
	matA := &scene.Material{Name: "asphalt"}
	matB := &scene.Material{Name: "brick"}
	nodeA := scene.NewNode("arm")
	nodeB := scene.NewNode("boom")

	ordered := []SubsetIdentifier{
		{Name: "a"},
		{Name: "a", Material: matA},
		{Name: "a", Material: matB},
		{Name: "a", Material: matB, AnimNode: nodeA},
		{Name: "a", Material: matB, AnimNode: nodeB},
		{Name: "b"},
		{Name: "b", AnimNode: nodeA},
	}

	for i := range ordered {
		for j := range ordered {
			got := ordered[i].Less(ordered[j])
			want := i < j
			if got != want {
				t.Errorf("Less(%d, %d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestSubsetIdentifierEquality(t *testing.T) {
	mat := &scene.Material{Name: "steel"}
	a := SubsetIdentifier{Name: "x", Material: mat}
	b := SubsetIdentifier{Name: "x", Material: mat}

	if a != b {
		t.Error("identifiers with identical fields must compare equal")
	}
	if a.Less(b) || b.Less(a) {
		t.Error("equal identifiers must not order before each other")
	}
}

func TestSortSubsetsDeterministic(t *testing.T) {
	mat := &scene.Material{Name: "m"}
	subsets := []*Subset{
		{ID: SubsetIdentifier{Name: "b"}},
		{ID: SubsetIdentifier{Name: "a", Material: mat}},
		{ID: SubsetIdentifier{Name: "a"}},
	}
	SortSubsets(subsets)

	wantNames := []string{"a", "a", "b"}
	for i, s := range subsets {
		if s.ID.Name != wantNames[i] {
			t.Fatalf("position %d: got %q, want %q", i, s.ID.Name, wantNames[i])
		}
	}
	if subsets[0].ID.Material != nil {
		t.Error("nil material must order before a named one")
	}
}
