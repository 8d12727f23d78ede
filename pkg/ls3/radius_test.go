package ls3

import (
	"testing"

	"github.com/zusitools/go-ls3/pkg/math"
)

func subsetWithVertex(x, y, z float32) *Subset {
	s := &Subset{}
	s.AddGeometry([]SubsetVertex{sv(x, y, z)}, nil)
	return s
}

func TestComputeRadiusHorizontal(t *testing.T) {
	s := subsetWithVertex(3, 4, 100)
	s.ComputeRadius()
	// The vertical axis does not contribute.
	if s.Radius != 5 {
		t.Errorf("expected radius 5, got %v", s.Radius)
	}
}

func TestAggregateRadiiSubsetsOnly(t *testing.T) {
	main := &FileNode{IsMain: true, Subsets: []*Subset{
		subsetWithVertex(1, 0, 0),
		subsetWithVertex(0, 7, 0),
	}}
	fo := &Forest{Main: main, Files: []*FileNode{main}}

	AggregateRadii(fo)
	if main.Radius != 7 {
		t.Errorf("expected radius 7, got %v", main.Radius)
	}
}

func TestAggregateRadiiLinkedFileScaledAndOffset(t *testing.T) {
	sub := &FileNode{Subsets: []*Subset{subsetWithVertex(2, 0, 0)}}
	main := &FileNode{IsMain: true}
	main.Links = []*LinkRef{{
		MustExport:  true,
		File:        sub,
		Translation: math.Vec3{X: 3, Y: 4},
		Scale:       math.Vec3{X: 2, Y: 1, Z: 1},
	}}
	fo := &Forest{Main: main, Files: []*FileNode{main, sub}}

	AggregateRadii(fo)
	if sub.Radius != 2 {
		t.Fatalf("sub radius: got %v", sub.Radius)
	}
	// 2 (target) * 2 (max scale) + 5 (horizontal offset).
	if main.Radius != 9 {
		t.Errorf("main radius: got %v, want 9", main.Radius)
	}
}

func TestAggregateRadiiAnimatedLinkUsesMaxTranslation(t *testing.T) {
	main := &FileNode{IsMain: true}
	link := &LinkRef{
		Animated:          true,
		MaxAniTranslation: 12,
		Scale:             math.Vec3{X: 1, Y: 1, Z: 1},
	}
	link.Meta.Radius = 3
	main.Links = []*LinkRef{link}
	fo := &Forest{Main: main, Files: []*FileNode{main}}

	AggregateRadii(fo)
	if main.Radius != 15 {
		t.Errorf("expected 3 + 12 = 15, got %v", main.Radius)
	}
}

func TestAggregateRadiiExternalLinkMetadataRadius(t *testing.T) {
	main := &FileNode{IsMain: true}
	link := &LinkRef{Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
	link.Meta.Radius = 25
	main.Links = []*LinkRef{link}
	fo := &Forest{Main: main, Files: []*FileNode{main}}

	AggregateRadii(fo)
	if main.Radius != 25 {
		t.Errorf("expected external link radius 25, got %v", main.Radius)
	}
}

func TestAggregateRadiiMonotonic(t *testing.T) {
	// A parent's radius is never below any child file's contribution.
	leaf := &FileNode{Subsets: []*Subset{subsetWithVertex(6, 0, 0)}}
	mid := &FileNode{Links: []*LinkRef{{File: leaf, Scale: math.Vec3{X: 1, Y: 1, Z: 1}}}}
	main := &FileNode{IsMain: true, Links: []*LinkRef{{File: mid, Scale: math.Vec3{X: 1, Y: 1, Z: 1}}}}
	fo := &Forest{Main: main, Files: []*FileNode{main, mid, leaf}}

	AggregateRadii(fo)
	if leaf.Radius != 6 || mid.Radius < leaf.Radius || main.Radius < mid.Radius {
		t.Errorf("radii not monotonic: leaf=%v mid=%v main=%v", leaf.Radius, mid.Radius, main.Radius)
	}
}
