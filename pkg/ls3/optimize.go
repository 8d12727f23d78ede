package ls3

import "sort"

// Tolerances configures vertex welding: maximum coordinate distance,
// maximum UV distance, and maximum angle between normals in radians.
type Tolerances struct {
	Coord       float32
	UV          float32
	NormalAngle float32
}

// Validate rejects negative tolerance values.
func (t Tolerances) Validate() error {
	if t.Coord < 0 || t.UV < 0 || t.NormalAngle < 0 {
		return ErrInvalidTolerance
	}
	return nil
}

// optVertex is the optimizer's working record: a vertex plus its index
// in the pre-sort buffer.
type optVertex struct {
	SubsetVertex
	originalIndex int
}

// Optimize welds near-duplicate vertices of the subset in place and
// rewrites the face buffer. Vertices merge when neither carries the
// no-merge flag, their 3D distance is within the coordinate tolerance,
// both UV pair distances are within the UV tolerance, and their
// normals differ by at most the angle tolerance.
//
// The sweep is ordered by ascending x and bounded by x-distance alone;
// on every merge the surviving vertex becomes the midpoint (normal:
// bisector) and the scan position does not advance, so a merged vertex
// can absorb further neighbors. The merge order is part of the output
// contract; do not replace the sweep with a symmetric variant.
func Optimize(s *Subset, tol Tolerances) {
	verts := make([]*optVertex, 0, len(s.Vertices))
	for i, v := range s.Vertices {
		if v == nil {
			continue
		}
		verts = append(verts, &optVertex{SubsetVertex: *v, originalIndex: i})
	}

	sort.SliceStable(verts, func(i, j int) bool {
		return verts[i].Position.X < verts[j].Position.X
	})

	// removed maps a merged-away vertex's original index to the
	// survivor's position in the working list. Once the sweep has
	// passed a position it never shifts again, so the recorded
	// position is final.
	removed := make(map[int]int)

	i := 0
	for i < len(verts) {
		v := verts[i]
		merged := false
		for j := i + 1; j < len(verts) && verts[j].Position.X-v.Position.X <= tol.Coord; j++ {
			w := verts[j]
			if v.NoMerge || w.NoMerge {
				continue
			}
			if v.Position.Distance(w.Position) > tol.Coord {
				continue
			}
			if v.UV.Distance(w.UV) > tol.UV || v.UV2.Distance(w.UV2) > tol.UV {
				continue
			}
			if v.Normal.AngleTo(w.Normal) > tol.NormalAngle {
				continue
			}

			v.Position = v.Position.Mid(w.Position)
			v.UV = v.UV.Mid(w.UV)
			v.UV2 = v.UV2.Mid(w.UV2)
			v.Normal = v.Normal.Add(w.Normal).Normalize()

			verts = append(verts[:j], verts[j+1:]...)
			removed[w.originalIndex] = i
			merged = true
			break
		}
		if !merged {
			i++
		}
	}

	// Combined old-index -> new-index map: survivors first, removed
	// entries overlaid on top.
	remap := make(map[int]int, len(s.Vertices))
	for pos, v := range verts {
		remap[v.originalIndex] = pos
	}
	for origIdx, pos := range removed {
		remap[origIdx] = pos
	}

	for fi := range s.Faces {
		for c := 0; c < 3; c++ {
			s.Faces[fi][c] = remap[s.Faces[fi][c]]
		}
	}

	// Tombstone the original buffer, then compact to the surviving
	// order.
	for i := range s.Vertices {
		s.Vertices[i] = nil
	}
	compacted := make([]*SubsetVertex, len(verts))
	for pos, v := range verts {
		sv := v.SubsetVertex
		compacted[pos] = &sv
	}
	s.Vertices = compacted
}
