package ls3

// AggregateRadii computes every file's bounding radius in post-order
// over the forest, so a linked file's radius is final before its
// parents consume it. A file's radius is never less than any of its
// own subsets' radii or any link's contribution after scale and
// translation.
func AggregateRadii(fo *Forest) {
	done := make(map[*FileNode]bool)
	var visit func(f *FileNode)
	visit = func(f *FileNode) {
		if done[f] {
			return
		}
		done[f] = true

		for _, l := range f.Links {
			if l.File != nil {
				visit(l.File)
			}
		}

		var radius float32
		for _, s := range f.Subsets {
			s.ComputeRadius()
			if s.Radius > radius {
				radius = s.Radius
			}
		}
		for _, l := range f.Links {
			if c := linkContribution(l); c > radius {
				radius = c
			}
		}
		f.Radius = radius
	}

	// Visit from every file, not only the main one, so files that end
	// up unreferenced still carry a radius.
	for _, f := range fo.Files {
		visit(f)
	}
}

// linkContribution returns the radius a link adds to its owning file:
// the target's radius scaled by the link's largest scale factor plus
// the horizontal offset of its placement, static or animated.
func linkContribution(l *LinkRef) float32 {
	base := l.Meta.Radius
	if l.File != nil {
		base = l.File.Radius
	}

	scale := l.Scale.X
	if l.Scale.Y > scale {
		scale = l.Scale.Y
	}
	if l.Scale.Z > scale {
		scale = l.Scale.Z
	}
	if scale == 0 {
		scale = 1
	}

	offset := l.Translation.HorizontalLength()
	if l.Animated && l.MaxAniTranslation > offset {
		offset = l.MaxAniTranslation
	}
	return base*scale + offset
}
