package scene

import "sort"

// Channel identifies one animatable transform component.
type Channel int

const (
	ChannelTranslateX Channel = iota
	ChannelTranslateY
	ChannelTranslateZ
	ChannelRotateX
	ChannelRotateY
	ChannelRotateZ
	ChannelScaleX
	ChannelScaleY
	ChannelScaleZ
)

// Keyframe is one sampled value on a track.
type Keyframe struct {
	Frame float32
	Value float32
}

// Track animates a single channel. Keys must be sorted by frame.
type Track struct {
	Channel Channel
	Keys    []Keyframe
}

// Evaluate returns the track value at the given frame using linear
// interpolation, clamping outside the key range.
func (t *Track) Evaluate(frame float32) float32 {
	if len(t.Keys) == 0 {
		return 0
	}
	if frame <= t.Keys[0].Frame {
		return t.Keys[0].Value
	}
	last := t.Keys[len(t.Keys)-1]
	if frame >= last.Frame {
		return last.Value
	}
	i := sort.Search(len(t.Keys), func(i int) bool {
		return t.Keys[i].Frame > frame
	})
	k0, k1 := t.Keys[i-1], t.Keys[i]
	if k1.Frame == k0.Frame {
		return k0.Value
	}
	f := (frame - k0.Frame) / (k1.Frame - k0.Frame)
	return k0.Value + f*(k1.Value-k0.Value)
}

// Clip is a collection of keyframe tracks with a type tag and optional
// name tags used for animation grouping.
type Clip struct {
	// Type is the animation type tag. Type 0 clips are grouped by
	// their name tags on export.
	Type int

	// Names holds the clip's name tags.
	Names []string

	Tracks []*Track
}

// KeyTimes returns the distinct raw key frame positions across all
// tracks, sorted ascending.
func (c *Clip) KeyTimes() []float32 {
	seen := make(map[float32]bool)
	var times []float32
	for _, tr := range c.Tracks {
		for _, k := range tr.Keys {
			if !seen[k.Frame] {
				seen[k.Frame] = true
				times = append(times, k.Frame)
			}
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}
