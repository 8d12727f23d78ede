package scene

// Scene owns the node hierarchy, the playback frame range and the
// current frame cursor.
type Scene struct {
	Nodes []*Node

	// FrameStart and FrameEnd delimit the nominal playback range.
	FrameStart float32
	FrameEnd   float32

	frame float32

	drivingClips map[*Node]*Clip
	resolved     map[*Node]bool
}

// New creates an empty scene with the given frame range.
func New(start, end float32) *Scene {
	return &Scene{
		FrameStart: start,
		FrameEnd:   end,
		frame:      start,
	}
}

// Add appends nodes to the scene.
func (s *Scene) Add(nodes ...*Node) {
	s.Nodes = append(s.Nodes, nodes...)
}

// CurrentFrame returns the position of the frame cursor.
func (s *Scene) CurrentFrame() float32 {
	return s.frame
}

// SetFrame moves the frame cursor and re-evaluates every animated
// node's pose.
func (s *Scene) SetFrame(frame float32) {
	s.frame = frame
	for _, n := range s.Nodes {
		n.resetPose()
		if n.Clip == nil {
			continue
		}
		for _, tr := range n.Clip.Tracks {
			v := tr.Evaluate(frame)
			switch tr.Channel {
			case ChannelTranslateX:
				n.pose.translation.X = v
			case ChannelTranslateY:
				n.pose.translation.Y = v
			case ChannelTranslateZ:
				n.pose.translation.Z = v
			case ChannelRotateX:
				n.pose.rotation.X = v
			case ChannelRotateY:
				n.pose.rotation.Y = v
			case ChannelRotateZ:
				n.pose.rotation.Z = v
			case ChannelScaleX:
				n.pose.scale.X = v
			case ChannelScaleY:
				n.pose.scale.Y = v
			case ChannelScaleZ:
				n.pose.scale.Z = v
			}
		}
	}
}

// AtFrame runs fn with the frame cursor moved to the given frame and
// restores the previous cursor afterwards, also when fn panics.
func (s *Scene) AtFrame(frame float32, fn func()) {
	saved := s.frame
	defer s.SetFrame(saved)
	s.SetFrame(frame)
	fn()
}

// FrameSpan returns the length of the playback range in frames.
func (s *Scene) FrameSpan() float32 {
	return s.FrameEnd - s.FrameStart
}

// NormalizedTime converts a raw frame position into playback-relative
// time, where 0 is FrameStart and 1 is FrameEnd. Values outside [0,1]
// are valid for keyframes outside the nominal range.
func (s *Scene) NormalizedTime(frame float32) float32 {
	span := s.FrameSpan()
	if span == 0 {
		return 0
	}
	return (frame - s.FrameStart) / span
}

// Visible reports whether an element restricted to the given variant
// ids is visible while the active set is in effect. An empty
// restriction list is always visible.
func Visible(variants []string, active map[string]bool) bool {
	if len(variants) == 0 {
		return true
	}
	for _, v := range variants {
		if active[v] {
			return true
		}
	}
	return false
}
