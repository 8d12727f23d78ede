package ls3

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"

	"github.com/zusitools/go-ls3/pkg/math"
	"github.com/zusitools/go-ls3/pkg/scene"
)

// quatEpsilon is the magnitude below which sampled rotation axis
// components are dropped.
const quatEpsilon = 1e-4

// AniKeyframe is one sampled animation frame in normalized time
// (0 = scene start, 1 = scene end; values outside that range are
// valid for keyframes outside the nominal playback range).
type AniKeyframe struct {
	Time           float32
	Translation    math.Vec3
	HasTranslation bool
	Rotation       math.Quat
}

// Sampler extracts keyframe data from the scene for one file at a
// time. The scene's frame cursor is restored after every sampling
// call.
type Sampler struct {
	sc *scene.Scene
}

// NewSampler creates a sampler over the given scene.
func NewSampler(sc *scene.Scene) *Sampler {
	return &Sampler{sc: sc}
}

// Sample extracts the animation of node relative to the file root:
// one frame per distinct whole-frame key time of the clip, with the
// extremes aligned to whole multiples of the playback span. It returns
// the frames and the maximum horizontal translation magnitude
// observed.
//
// Translation is emitted only if requested and not exactly zero.
// Rotation is kept continuous with the previously sampled frame
// before being re-expressed as a quaternion; the continuity state
// resets at the start of each clip.
func (smp *Sampler) Sample(clip *scene.Clip, node, root *scene.Node, emitTranslation bool) ([]AniKeyframe, float32) {
	frames := smp.frameSet(clip)
	if len(frames) == 0 {
		return nil, 0
	}

	var (
		out       []AniKeyframe
		maxHoriz  float32
		prevEuler *math.Euler
	)
	for _, frame := range frames {
		var m math.Mat4
		smp.sc.AtFrame(frame, func() {
			m = RelativeTransform(node, root, root)
		})

		kf := AniKeyframe{Time: smp.sc.NormalizedTime(frame)}

		t := m.Translation()
		if emitTranslation && !t.IsZero() {
			kf.Translation = t
			kf.HasTranslation = true
		}
		if h := t.HorizontalLength(); h > maxHoriz {
			maxHoriz = h
		}

		e := m.Rotation().ToEuler()
		if prevEuler != nil {
			e = e.Compatible(*prevEuler)
		}
		prevEuler = &e

		q := math.QuatFromEuler(e)
		if math32.Abs(q.X) < quatEpsilon {
			q.X = 0
		}
		if math32.Abs(q.Y) < quatEpsilon {
			q.Y = 0
		}
		if math32.Abs(q.Z) < quatEpsilon {
			q.Z = 0
		}
		kf.Rotation = q

		out = append(out, kf)
	}
	return out, maxHoriz
}

// frameSet returns the union of the clip's key times rounded to whole
// frames, sorted ascending, with the minimum and maximum replaced by
// the nearest whole multiples of the playback span measured from the
// scene start (floor and ceil respectively). This keeps the exported
// normalized-time range frame-aligned even when source keyframes lie
// outside the nominal playback range.
func (smp *Sampler) frameSet(clip *scene.Clip) []float32 {
	set := make(map[float32]bool)
	for _, t := range clip.KeyTimes() {
		set[math32.Round(t)] = true
	}
	if len(set) == 0 {
		return nil
	}

	frames := make([]float32, 0, len(set))
	for f := range set {
		frames = append(frames, f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })

	span := smp.sc.FrameSpan()
	if span > 0 {
		start := smp.sc.FrameStart
		min := frames[0]
		max := frames[len(frames)-1]
		alignedMin := start + span*math32.Floor((min-start)/span)
		alignedMax := start + span*math32.Ceil((max-start)/span)
		if alignedMin != min {
			delete(set, min)
			set[alignedMin] = true
		}
		if alignedMax != max {
			delete(set, max)
			set[alignedMax] = true
		}
		frames = frames[:0]
		for f := range set {
			frames = append(frames, f)
		}
		sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })
	}
	return frames
}

// AniTarget is one numbered animation slot within a file: either a
// subset or a link.
type AniTarget struct {
	Number int
	Subset *Subset
	Link   *LinkRef
}

// Node returns the scene node whose driving clip animates the target.
func (t AniTarget) Node() *scene.Node {
	if t.Subset != nil {
		return t.Subset.ID.AnimNode
	}
	if t.Link != nil {
		return t.Link.Node
	}
	return nil
}

// AnimationTargets numbers the animated subsets of a file in subset
// order starting at one, then continues the numbering over animated
// links. Subsets animated by the file root itself are static within
// the file and get no number.
func AnimationTargets(sc *scene.Scene, f *FileNode) []AniTarget {
	var targets []AniTarget
	n := 1
	for _, sub := range f.Subsets {
		if sub.ID.AnimNode != nil && sub.ID.AnimNode != f.Root {
			targets = append(targets, AniTarget{Number: n, Subset: sub})
			n++
		}
	}
	for _, l := range f.Links {
		if l.Node != nil && l.Node != f.Root && sc.IsAnimated(l.Node) {
			targets = append(targets, AniTarget{Number: n, Link: l})
			n++
		}
	}
	return targets
}

// AniGroup is one animation declaration: a named group of target
// numbers sharing a clip type (and, for type 0, a name tag).
type AniGroup struct {
	Type    int
	Name    string
	Targets []int
}

// GroupAnimations builds the file's animation declarations. Clips are
// grouped by type tag; type 0 clips are further grouped by every name
// tag attached to them, a clip without name tags falling into one
// synthetic group per its generic type description. All other type
// tags collapse into a single declaration per type.
func GroupAnimations(sc *scene.Scene, targets []AniTarget) []AniGroup {
	var groups []AniGroup
	index := make(map[string]int)

	add := func(typ int, name string, number int) {
		key := fmt.Sprintf("%d\x00%s", typ, name)
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, AniGroup{Type: typ, Name: name})
		}
		groups[gi].Targets = append(groups[gi].Targets, number)
	}

	for _, t := range targets {
		clip := sc.DrivingClip(t.Node())
		if clip == nil {
			continue
		}
		if clip.Type != 0 {
			add(clip.Type, AniDescription(clip.Type), t.Number)
			continue
		}
		if len(clip.Names) == 0 {
			add(0, AniDescription(0), t.Number)
			continue
		}
		for _, name := range clip.Names {
			add(0, name, t.Number)
		}
	}
	return groups
}

// aniTypeDescriptions maps well-known animation type tags to their
// generic descriptions.
var aniTypeDescriptions = map[int]string{
	0: "unspecified animation",
	1: "continuous, time of day",
	2: "wind-driven",
	3: "speed-driven",
	4: "door",
	5: "pantograph",
}

// AniDescription returns the generic description for an animation
// type tag.
func AniDescription(typ int) string {
	if d, ok := aniTypeDescriptions[typ]; ok {
		return d
	}
	return fmt.Sprintf("animation type %d", typ)
}
