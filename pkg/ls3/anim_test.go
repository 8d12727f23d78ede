package ls3

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/zusitools/go-ls3/pkg/scene"
)

func rotationClip(keys ...scene.Keyframe) *scene.Clip {
	return &scene.Clip{Tracks: []*scene.Track{
		{Channel: scene.ChannelRotateZ, Keys: keys},
	}}
}

func frameValues(t *testing.T, sc *scene.Scene, clip *scene.Clip) []float32 {
	t.Helper()
	return NewSampler(sc).frameSet(clip)
}

func TestFrameSetAlignsExtremes(t *testing.T) {
	sc := scene.New(0, 10)
	clip := rotationClip(
		scene.Keyframe{Frame: 0},
		scene.Keyframe{Frame: 10},
		scene.Keyframe{Frame: 15},
	)

	got := frameValues(t, sc, clip)
	want := []float32{0, 10, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFrameSetRoundsKeyTimes(t *testing.T) {
	sc := scene.New(0, 10)
	clip := rotationClip(
		scene.Keyframe{Frame: 0.4},
		scene.Keyframe{Frame: 4.6},
		scene.Keyframe{Frame: 10.2},
	)

	got := frameValues(t, sc, clip)
	want := []float32{0, 5, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFrameSetEmptyClip(t *testing.T) {
	sc := scene.New(0, 10)
	if got := frameValues(t, sc, &scene.Clip{}); got != nil {
		t.Errorf("expected nil frame set for empty clip, got %v", got)
	}
}

func TestSampleNormalizedTimes(t *testing.T) {
	sc := scene.New(0, 10)
	root := scene.NewNode("root")
	arm := scene.NewNode("arm")
	arm.Parent = root
	arm.Clip = rotationClip(
		scene.Keyframe{Frame: 0, Value: 0},
		scene.Keyframe{Frame: 10, Value: math32.Pi / 2},
	)
	sc.Add(root, arm)

	frames, _ := NewSampler(sc).Sample(arm.Clip, arm, root, false)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Time != 0 || frames[1].Time != 1 {
		t.Errorf("expected normalized times 0 and 1, got %v and %v", frames[0].Time, frames[1].Time)
	}
	if frames[0].HasTranslation || frames[1].HasTranslation {
		t.Error("translation must not be emitted when not requested")
	}

	// Rotation about z by pi/2: quaternion (0, 0, sin(pi/4), cos(pi/4)).
	q := frames[1].Rotation
	if q.X != 0 || q.Y != 0 {
		t.Errorf("off-axis components must be zeroed, got %+v", q)
	}
	s45 := math32.Sin(math32.Pi / 4)
	if math32.Abs(q.Z-s45) > 1e-4 || math32.Abs(q.W-s45) > 1e-4 {
		t.Errorf("expected z rotation quaternion, got %+v", q)
	}
}

func TestSampleEmitsTranslationAndMaxHorizontal(t *testing.T) {
	sc := scene.New(0, 10)
	root := scene.NewNode("root")
	slide := scene.NewNode("slide")
	slide.Parent = root
	slide.Clip = &scene.Clip{Tracks: []*scene.Track{
		{Channel: scene.ChannelTranslateX, Keys: []scene.Keyframe{
			{Frame: 0, Value: 0},
			{Frame: 10, Value: 3},
		}},
	}}
	sc.Add(root, slide)

	frames, maxHoriz := NewSampler(sc).Sample(slide.Clip, slide, root, true)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].HasTranslation {
		t.Error("zero translation must be omitted")
	}
	if !frames[1].HasTranslation || frames[1].Translation.X != 3 {
		t.Errorf("expected translation x=3 at end, got %+v", frames[1])
	}
	if maxHoriz != 3 {
		t.Errorf("expected max horizontal translation 3, got %v", maxHoriz)
	}
}

func TestAnimationTargetsNumbering(t *testing.T) {
	sc := scene.New(0, 10)
	rootNode := scene.NewNode("fileroot")
	armNode := scene.NewNode("arm")
	armNode.Clip = rotationClip(scene.Keyframe{Frame: 0}, scene.Keyframe{Frame: 10})
	linkNode := scene.NewNode("lamp")
	linkNode.Clip = rotationClip(scene.Keyframe{Frame: 0}, scene.Keyframe{Frame: 10})
	sc.Add(rootNode, armNode, linkNode)

	f := &FileNode{
		Root: rootNode,
		Subsets: []*Subset{
			{ID: SubsetIdentifier{Name: "static"}},
			{ID: SubsetIdentifier{Name: "byroot", AnimNode: rootNode}},
			{ID: SubsetIdentifier{Name: "arm", AnimNode: armNode}},
		},
		Links: []*LinkRef{
			{Node: linkNode},
		},
	}

	targets := AnimationTargets(sc, f)
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Subset == nil || targets[0].Number != 1 {
		t.Errorf("first target should be the arm subset numbered 1, got %+v", targets[0])
	}
	if targets[1].Link == nil || targets[1].Number != 2 {
		t.Errorf("second target should be the link numbered 2, got %+v", targets[1])
	}
}

func TestGroupAnimations(t *testing.T) {
	sc := scene.New(0, 10)

	door := scene.NewNode("door")
	door.Clip = rotationClip(scene.Keyframe{Frame: 0}, scene.Keyframe{Frame: 10})
	door.Clip.Type = 4

	named := scene.NewNode("named")
	named.Clip = rotationClip(scene.Keyframe{Frame: 0}, scene.Keyframe{Frame: 10})
	named.Clip.Names = []string{"Signal arm", "Coupled"}

	bare := scene.NewNode("bare")
	bare.Clip = rotationClip(scene.Keyframe{Frame: 0}, scene.Keyframe{Frame: 10})

	sc.Add(door, named, bare)

	targets := []AniTarget{
		{Number: 1, Subset: &Subset{ID: SubsetIdentifier{AnimNode: door}}},
		{Number: 2, Subset: &Subset{ID: SubsetIdentifier{AnimNode: named}}},
		{Number: 3, Subset: &Subset{ID: SubsetIdentifier{AnimNode: bare}}},
	}

	groups := GroupAnimations(sc, targets)
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %d: %+v", len(groups), groups)
	}

	if groups[0].Type != 4 || groups[0].Name != AniDescription(4) {
		t.Errorf("typed clip should group under its type description, got %+v", groups[0])
	}
	if groups[1].Name != "Signal arm" || groups[2].Name != "Coupled" {
		t.Errorf("name tags should each form a group, got %+v and %+v", groups[1], groups[2])
	}
	if groups[1].Targets[0] != 2 || groups[2].Targets[0] != 2 {
		t.Error("both name-tag groups should carry the same target number")
	}
	if groups[3].Type != 0 || groups[3].Name != AniDescription(0) {
		t.Errorf("untagged type-0 clip should fall into the generic group, got %+v", groups[3])
	}
}

func TestAniDescription(t *testing.T) {
	if AniDescription(4) == "" {
		t.Error("known type must have a description")
	}
	if AniDescription(99) != "animation type 99" {
		t.Errorf("unknown type fallback wrong: %q", AniDescription(99))
	}
}
