package ls3

import (
	"testing"

	"github.com/zusitools/go-ls3/pkg/math"
)

func defaultTolerances() Tolerances {
	return Tolerances{Coord: 0.001, UV: 0.002, NormalAngle: 0.017}
}

func sv(x, y, z float32) SubsetVertex {
	return SubsetVertex{Vertex: Vertex{
		Position: math.Vec3{X: x, Y: y, Z: z},
		Normal:   math.Vec3{Z: 1},
	}}
}

func TestTolerancesValidate(t *testing.T) {
	if err := defaultTolerances().Validate(); err != nil {
		t.Errorf("default tolerances should validate: %v", err)
	}
	bad := Tolerances{Coord: -0.1}
	if err := bad.Validate(); err != ErrInvalidTolerance {
		t.Errorf("expected ErrInvalidTolerance, got %v", err)
	}
}

func TestOptimizeMergesToMidpoint(t *testing.T) {
	s := &Subset{}
	s.AddGeometry([]SubsetVertex{
		sv(0, 0, 0),
		sv(0, 0, 0.0005),
		sv(1, 0, 0),
	}, [][3]int{{0, 1, 2}})

	Optimize(s, defaultTolerances())

	if len(s.Vertices) != 2 {
		t.Fatalf("expected 2 vertices after welding, got %d", len(s.Vertices))
	}
	var merged *SubsetVertex
	for _, v := range s.Vertices {
		if v.Position.X == 0 {
			merged = v
		}
	}
	if merged == nil {
		t.Fatal("merged vertex not found")
	}
	if merged.Position.Z != 0.00025 {
		t.Errorf("expected midpoint z 0.00025, got %v", merged.Position.Z)
	}

	// Both original indices of the pair must now point at the same
	// surviving vertex.
	f := s.Faces[0]
	if f[0] != f[1] {
		t.Errorf("face corners should collapse onto the survivor, got %v", f)
	}
	if f[2] == f[0] {
		t.Errorf("distant vertex must stay distinct, got %v", f)
	}
}

func TestOptimizeRespectsNoMerge(t *testing.T) {
	a := sv(0, 0, 0)
	b := sv(0, 0, 0.0005)
	b.NoMerge = true

	s := &Subset{}
	s.AddGeometry([]SubsetVertex{a, b}, nil)
	Optimize(s, defaultTolerances())

	if len(s.Vertices) != 2 {
		t.Errorf("no-merge vertex must survive, got %d vertices", len(s.Vertices))
	}
}

func TestOptimizeRejectsUVMismatch(t *testing.T) {
	a := sv(0, 0, 0)
	b := sv(0, 0, 0)
	b.UV = math.Vec2{X: 0.5}

	s := &Subset{}
	s.AddGeometry([]SubsetVertex{a, b}, nil)
	Optimize(s, defaultTolerances())

	if len(s.Vertices) != 2 {
		t.Errorf("UV mismatch must prevent merging, got %d vertices", len(s.Vertices))
	}
}

func TestOptimizeRejectsNormalMismatch(t *testing.T) {
	a := sv(0, 0, 0)
	b := sv(0, 0, 0)
	b.Normal = math.Vec3{X: 1}

	s := &Subset{}
	s.AddGeometry([]SubsetVertex{a, b}, nil)
	Optimize(s, defaultTolerances())

	if len(s.Vertices) != 2 {
		t.Errorf("normal mismatch must prevent merging, got %d vertices", len(s.Vertices))
	}
}

func TestOptimizeChainAbsorbsNeighbors(t *testing.T) {
	// Three vertices each within tolerance of the running midpoint.
	s := &Subset{}
	s.AddGeometry([]SubsetVertex{
		sv(0, 0, 0),
		sv(0.0004, 0, 0),
		sv(0.0008, 0, 0),
	}, nil)
	Optimize(s, defaultTolerances())

	if len(s.Vertices) != 1 {
		t.Errorf("expected chain to collapse to 1 vertex, got %d", len(s.Vertices))
	}
}

func TestOptimizeIdempotent(t *testing.T) {
	s := &Subset{}
	s.AddGeometry([]SubsetVertex{
		sv(0, 0, 0),
		sv(0, 0, 0.0005),
		sv(1, 0, 0),
		sv(2, 1, 0),
	}, [][3]int{{0, 1, 2}, {1, 2, 3}})

	Optimize(s, defaultTolerances())
	first := s.LiveVertices()
	firstFaces := append([][3]int(nil), s.Faces...)

	Optimize(s, defaultTolerances())
	second := s.LiveVertices()

	if len(first) != len(second) {
		t.Fatalf("second pass changed vertex count: %d -> %d", len(first), len(second))
	}
	// Vertices already welded are beyond every pairwise tolerance, so
	// a second pass must leave positions untouched.
	for i := range first {
		if first[i].Position != second[i].Position {
			t.Errorf("vertex %d moved on second pass: %v -> %v", i, first[i].Position, second[i].Position)
		}
	}
	for i := range firstFaces {
		if firstFaces[i] != s.Faces[i] {
			t.Errorf("face %d changed on second pass: %v -> %v", i, firstFaces[i], s.Faces[i])
		}
	}
}

func TestOptimizeZeroToleranceMergesExactDuplicates(t *testing.T) {
	s := &Subset{}
	s.AddGeometry([]SubsetVertex{
		sv(1, 2, 3),
		sv(1, 2, 3),
		sv(4, 5, 6),
	}, [][3]int{{0, 1, 2}})

	Optimize(s, Tolerances{})

	if len(s.Vertices) != 2 {
		t.Errorf("exact duplicates must merge at zero tolerance, got %d vertices", len(s.Vertices))
	}
}
