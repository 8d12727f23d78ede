package ls3

import (
	"github.com/zusitools/go-ls3/pkg/math"
	"github.com/zusitools/go-ls3/pkg/scene"
)

// LinkRef references another file from a FileNode: either a generated
// sub-file produced by animation splitting (MustExport) or a
// pre-existing external file.
type LinkRef struct {
	// MustExport marks links to generated sub-files.
	MustExport bool

	// Node is the scene node the link originates from: the sub-file
	// root for generated links, the link marker node for external
	// references.
	Node *scene.Node

	// File is the generated target, nil for external references.
	File *FileNode

	// Meta carries display settings; for external references it is the
	// marker node's stored metadata.
	Meta scene.LinkMeta

	// Static placement, used when the link is not animated.
	Translation math.Vec3
	Rotation    math.Euler
	Scale       math.Vec3

	// Animated reports whether the link carries sampled keyframes.
	Animated bool

	// MaxAniTranslation is the largest horizontal translation observed
	// while sampling the link's animation.
	MaxAniTranslation float32

	// Frames holds the sampled link animation.
	Frames []AniKeyframe
}

// FileNode is one output file of the export forest.
type FileNode struct {
	// Name is the file's output path.
	Name string

	// IsMain marks the root of the forest.
	IsMain bool

	// Root is the scene node the file's content is relative to; nil
	// only for the main file.
	Root *scene.Node

	// Members are the scene nodes whose geometry lives in this file.
	Members map[*scene.Node]bool

	// Subsets is the file's ordered subset list.
	Subsets []*Subset

	// Links is the file's ordered linked-file list.
	Links []*LinkRef

	// Radius is the aggregate bounding radius.
	Radius float32

	subsetIndex map[SubsetIdentifier]*Subset
}

// SubsetFor returns the file's subset for an identifier, creating it
// on first use. Identifiers are unique within a file.
func (f *FileNode) SubsetFor(id SubsetIdentifier) *Subset {
	if f.subsetIndex == nil {
		f.subsetIndex = make(map[SubsetIdentifier]*Subset)
	}
	if s, ok := f.subsetIndex[id]; ok {
		return s
	}
	s := &Subset{ID: id}
	f.subsetIndex[id] = s
	f.Subsets = append(f.Subsets, s)
	return s
}

// Forest is the main file plus every generated sub-file, related by
// root-node ownership.
type Forest struct {
	// Main is the root of the forest; it is always Files[0].
	Main *FileNode

	// Files lists every output file, main file first.
	Files []*FileNode

	byRoot map[*scene.Node]*FileNode
	fileOf map[*scene.Node]*FileNode
}

// FileOf returns the file a member node was routed into.
func (fo *Forest) FileOf(n *scene.Node) *FileNode {
	return fo.fileOf[n]
}

// FileByRoot returns the generated file rooted at the given node.
func (fo *Forest) FileByRoot(root *scene.Node) *FileNode {
	return fo.byRoot[root]
}

// TreeBuilder partitions the scene into the file forest.
type TreeBuilder struct {
	sc          *scene.Scene
	animEnabled bool
	outputPath  string

	roots     map[*scene.Node]*scene.Node
	rootKnown map[*scene.Node]bool
}

// NewTreeBuilder creates a builder. When animation export is disabled
// every node resolves to the main file.
func NewTreeBuilder(sc *scene.Scene, animEnabled bool, outputPath string) *TreeBuilder {
	return &TreeBuilder{
		sc:          sc,
		animEnabled: animEnabled,
		outputPath:  outputPath,
		roots:       make(map[*scene.Node]*scene.Node),
		rootKnown:   make(map[*scene.Node]bool),
	}
}

// FileRoot resolves the node a file split happens at for n, or nil for
// the main file. Walking up from n, independently animated nodes are
// counted (starting at one if n itself is animated); the ancestor at
// which the count reaches two becomes the root. External-link nodes
// terminate resolution at themselves. Results are memoized.
func (b *TreeBuilder) FileRoot(n *scene.Node) *scene.Node {
	if !b.animEnabled {
		return nil
	}
	if b.rootKnown[n] {
		return b.roots[n]
	}

	var root *scene.Node
	if n.Link != nil {
		root = n
	} else {
		count := 0
		if b.sc.IsAnimated(n) {
			count = 1
		}
		for anc := n.Parent; anc != nil; anc = anc.Parent {
			if b.sc.IsAnimated(anc) {
				count++
				if count == 2 {
					root = anc
					break
				}
			}
		}
	}

	b.roots[n] = root
	b.rootKnown[n] = true
	return root
}

// Build constructs the forest from every node that contributes
// exported geometry or is a link marker.
func (b *TreeBuilder) Build(contributing []*scene.Node) *Forest {
	main := &FileNode{
		Name:    b.outputPath,
		IsMain:  true,
		Members: make(map[*scene.Node]bool),
	}
	fo := &Forest{
		Main:   main,
		Files:  []*FileNode{main},
		byRoot: make(map[*scene.Node]*FileNode),
		fileOf: make(map[*scene.Node]*FileNode),
	}

	// Phase one: discover every file root, walking ancestor chains
	// fully so nested splits are found.
	queue := append([]*scene.Node(nil), contributing...)
	queued := make(map[*scene.Node]bool)
	for _, n := range queue {
		queued[n] = true
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n.Link != nil {
			continue
		}
		root := b.FileRoot(n)
		if root == nil {
			continue
		}
		if _, ok := fo.byRoot[root]; !ok {
			fo.byRoot[root] = &FileNode{
				Name:    SubFileName(b.outputPath, root.Name),
				Root:    root,
				Members: make(map[*scene.Node]bool),
			}
			fo.Files = append(fo.Files, fo.byRoot[root])
		}
		if !queued[root] {
			queued[root] = true
			queue = append(queue, root)
		}
	}

	// Phase two: route membership. A node attaches to its resolved
	// file unless a nearer ancestor already owns a file, which catches
	// geometry that would otherwise be orphaned from its subtree.
	for _, n := range contributing {
		if n.Link != nil {
			b.addExternalLink(fo, n)
			continue
		}
		f := b.routeFile(fo, n)
		f.Members[n] = true
		fo.fileOf[n] = f
	}

	// Link every generated sub-file from the file owning its root's
	// parent chain.
	for _, f := range fo.Files {
		if f.IsMain {
			continue
		}
		parentFile := main
		if f.Root.Parent != nil {
			parentFile = b.routeFile(fo, f.Root.Parent)
		}
		link := &LinkRef{
			MustExport: true,
			Node:       f.Root,
			File:       f,
			Scale:      math.Vec3{X: 1, Y: 1, Z: 1},
			Animated:   b.sc.IsAnimated(f.Root),
		}
		if !link.Animated {
			m := RelativeTransform(f.Root, parentFile.Root, nil)
			link.Translation = m.Translation()
			link.Rotation = m.Rotation().ToEuler()
			link.Scale = m.ScalePart()
		}
		parentFile.Links = append(parentFile.Links, link)
	}

	return fo
}

func (b *TreeBuilder) routeFile(fo *Forest, n *scene.Node) *FileNode {
	root := b.FileRoot(n)
	if root == n {
		if f, ok := fo.byRoot[root]; ok {
			return f
		}
		return fo.Main
	}
	for anc := n.Parent; anc != nil; anc = anc.Parent {
		if f, ok := fo.byRoot[anc]; ok {
			return f
		}
		if anc == root {
			break
		}
	}
	if root != nil {
		if f, ok := fo.byRoot[root]; ok {
			return f
		}
	}
	return fo.Main
}

// addExternalLink registers a LinkRef for an external-link marker
// under its parent's resolved file.
func (b *TreeBuilder) addExternalLink(fo *Forest, n *scene.Node) {
	parentFile := fo.Main
	if n.Parent != nil {
		parentFile = b.routeFile(fo, n.Parent)
	}
	link := &LinkRef{
		Node:     n,
		Meta:     *n.Link,
		Animated: b.animEnabled && b.sc.IsAnimated(n),
	}
	if !link.Animated {
		m := RelativeTransform(n, parentFile.Root, nil)
		link.Translation = m.Translation()
		link.Rotation = m.Rotation().ToEuler()
		link.Scale = m.ScalePart()
	} else {
		link.Scale = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	parentFile.Links = append(parentFile.Links, link)
}

// RelativeTransform composes node transforms top-down from scaleRoot
// (nil for the top of the graph) to the node. Ancestors at or above
// root contribute only their non-uniform scale; nodes strictly below
// root contribute their full transform. A generated file can express
// one layer of animated transform relative to its own root, so
// translation and rotation above that boundary are dropped. A nil root
// composes the full transform everywhere.
func RelativeTransform(node, root, scaleRoot *scene.Node) math.Mat4 {
	var chain []*scene.Node
	for c := node; c != nil; c = c.Parent {
		chain = append(chain, c)
		if c == scaleRoot {
			break
		}
	}

	m := math.Identity()
	full := root == nil
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		if full {
			m = m.Mul(c.LocalTransform())
		} else {
			m = m.Mul(math.ScaleMat(c.PoseScale()))
		}
		if c == root {
			full = true
		}
	}
	return m
}
