// Package scene models the in-memory scene graph consumed by the
// exporter: a hierarchy of nodes with independently animatable
// transforms, mesh and material data, and link markers for external
// file references.
package scene

import "github.com/zusitools/go-ls3/pkg/math"

// Node is one element of the scene hierarchy. Nodes are owned by the
// scene; the export pipeline only reads them.
type Node struct {
	Name   string
	Parent *Node

	// Rest transform. Channels animated by a clip override the
	// corresponding component while the scene frame cursor moves.
	Translation math.Vec3
	Rotation    math.Euler
	Scale       math.Vec3

	// Clip is the node's own animation clip, if any.
	Clip *Clip

	// Constraints may bind this node to another node's animation.
	Constraints []Constraint

	// Mesh geometry, if the node carries any.
	Mesh *Mesh

	// SubsetName groups this node's geometry with other nodes sharing
	// the same name, material and animating ancestor.
	SubsetName string

	// Variants restricts visibility to the listed variant ids.
	// Empty means always visible.
	Variants []string

	// Link marks the node as a reference to an external file.
	Link *LinkMeta

	// Current pose, maintained by Scene.SetFrame.
	pose pose
}

type pose struct {
	translation math.Vec3
	rotation    math.Euler
	scale       math.Vec3
}

// Constraint references another node whose animation may drive this
// node.
type Constraint struct {
	Target *Node
}

// NewNode creates a node with an identity transform.
func NewNode(name string) *Node {
	n := &Node{
		Name:  name,
		Scale: math.Vec3{X: 1, Y: 1, Z: 1},
	}
	n.resetPose()
	return n
}

// SetRestPose re-seeds the current pose from the rest transform.
// Callers that change Translation, Rotation or Scale after NewNode
// must call it before the pose is read.
func (n *Node) SetRestPose() {
	n.resetPose()
}

func (n *Node) resetPose() {
	n.pose = pose{
		translation: n.Translation,
		rotation:    n.Rotation,
		scale:       n.Scale,
	}
}

// PoseTranslation returns the node's translation at the scene's
// current frame.
func (n *Node) PoseTranslation() math.Vec3 { return n.pose.translation }

// PoseRotation returns the node's rotation at the scene's current
// frame.
func (n *Node) PoseRotation() math.Euler { return n.pose.rotation }

// PoseScale returns the node's scale at the scene's current frame.
func (n *Node) PoseScale() math.Vec3 { return n.pose.scale }

// LocalTransform composes the node's posed TRS into a matrix.
func (n *Node) LocalTransform() math.Mat4 {
	return math.TRS(n.pose.translation, math.QuatFromEuler(n.pose.rotation), n.pose.scale)
}

// IsAncestorOf reports whether n is an ancestor of other (not
// self-inclusive).
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.Parent; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Vertex is one mesh vertex with two texture coordinate sets.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	UV2      math.Vec2

	// NoMerge excludes the vertex from welding.
	NoMerge bool
}

// Face is a triangle referencing three vertices and one material slot.
type Face struct {
	V [3]int

	// Material indexes Mesh.Materials; meshes without materials use 0.
	Material int
}

// Mesh holds a node's triangulated geometry.
type Mesh struct {
	Vertices  []Vertex
	Faces     []Face
	Materials []*Material
}

// MaterialAt returns the material for a slot index, or nil if the mesh
// has no materials or the index is out of range.
func (m *Mesh) MaterialAt(slot int) *Material {
	if slot < 0 || slot >= len(m.Materials) {
		return nil
	}
	return m.Materials[slot]
}

// Material describes surface appearance. Colors are packed ARGB.
type Material struct {
	Name         string
	Diffuse      uint32
	Night        uint32
	Overexposure uint32
	Texture      string
	Texture2     string
	RenderFlags  uint32
	ZOffset      float32

	// Variants restricts the material to the listed variant ids.
	Variants []string
}

// LinkMeta stores the placement and display settings of a reference to
// an external file.
type LinkMeta struct {
	Path             string
	GroupName        string
	VisibleFrom      float32
	VisibleTo        float32
	PreloadFactor    float32
	Radius           float32
	ForcedBrightness float32
	LODMask          uint8
	Tile             bool
	Billboard        bool
	ReadOnly         bool
}
