package scene

// DrivingClip resolves the clip that governs a node's transform:
// the node's own clip, else the parent's driving clip, else the first
// constraint target's driving clip (depth-first). Resolution walking
// off the top of the graph yields nil, which callers treat as static
// placement. Results are memoized for the lifetime of the scene.
func (s *Scene) DrivingClip(n *Node) *Clip {
	if s.drivingClips == nil {
		s.drivingClips = make(map[*Node]*Clip)
		s.resolved = make(map[*Node]bool)
	}
	clip, _ := s.resolveClip(n, make(map[*Node]bool))
	return clip
}

// resolveClip returns the driving clip and whether the resolution was
// pruned by the cycle guard. A nil result that only came about because
// a branch was cut mid-cycle is not memoized: the same node resolved
// from outside the cycle may still reach a clip.
func (s *Scene) resolveClip(n *Node, visiting map[*Node]bool) (*Clip, bool) {
	if n == nil {
		return nil, false
	}
	if visiting[n] {
		return nil, true
	}
	if s.resolved[n] {
		return s.drivingClips[n], false
	}
	visiting[n] = true

	pruned := false
	clip := n.Clip
	if clip == nil {
		var p bool
		clip, p = s.resolveClip(n.Parent, visiting)
		pruned = pruned || p
	}
	if clip == nil {
		for _, c := range n.Constraints {
			target, p := s.resolveClip(c.Target, visiting)
			pruned = pruned || p
			if target != nil {
				clip = target
				break
			}
		}
	}

	delete(visiting, n)
	if clip != nil || !pruned {
		s.drivingClips[n] = clip
		s.resolved[n] = true
	}
	return clip, clip == nil && pruned
}

// IsAnimated reports whether a node animates independently of its
// parent: it carries its own clip or at least one constraint.
func (s *Scene) IsAnimated(n *Node) bool {
	return n.Clip != nil || len(n.Constraints) > 0
}

// FirstAnimatedAncestor returns the nearest animated node in the
// chain starting at n itself, or nil if none exists.
func (s *Scene) FirstAnimatedAncestor(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if s.IsAnimated(cur) {
			return cur
		}
	}
	return nil
}
