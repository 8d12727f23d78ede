package ls3

import (
	"sort"

	"github.com/zusitools/go-ls3/pkg/math"
)

// Vertex is the on-disk vertex layout: position, normal and two
// texture coordinate pairs.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	UV2      math.Vec2
}

// SubsetVertex is a vertex inside a subset buffer, carrying the
// welding exclusion flag.
type SubsetVertex struct {
	Vertex
	NoMerge bool
}

// Subset is one contiguous mesh block sharing a material and an
// animating node.
type Subset struct {
	ID SubsetIdentifier

	// Radius is the maximum horizontal distance of any vertex from the
	// subset's local origin.
	Radius float32

	// Vertices may contain nil entries (tombstones) after welding.
	Vertices []*SubsetVertex

	// Faces hold three vertex indices each, referring to positions in
	// the compacted vertex buffer.
	Faces [][3]int

	// Frames holds the sampled subset animation, if any.
	Frames []AniKeyframe
}

// AddGeometry appends vertices and faces, offsetting face indices by
// the current buffer length.
func (s *Subset) AddGeometry(verts []SubsetVertex, faces [][3]int) {
	offset := len(s.Vertices)
	for i := range verts {
		v := verts[i]
		s.Vertices = append(s.Vertices, &v)
	}
	for _, f := range faces {
		s.Faces = append(s.Faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
	}
}

// LiveVertices returns the surviving (non-tombstoned) vertices in
// buffer order.
func (s *Subset) LiveVertices() []Vertex {
	out := make([]Vertex, 0, len(s.Vertices))
	for _, v := range s.Vertices {
		if v != nil {
			out = append(out, v.Vertex)
		}
	}
	return out
}

// ComputeRadius updates Radius from the current vertex buffer.
func (s *Subset) ComputeRadius() {
	var max float32
	for _, v := range s.Vertices {
		if v == nil {
			continue
		}
		if r := v.Position.HorizontalLength(); r > max {
			max = r
		}
	}
	s.Radius = max
}

// SortSubsets orders subsets by their identifier.
func SortSubsets(subsets []*Subset) {
	sort.SliceStable(subsets, func(i, j int) bool {
		return subsets[i].ID.Less(subsets[j].ID)
	})
}
