package ls3

import (
	"fmt"

	"github.com/zusitools/go-ls3/pkg/scene"
)

// ExportScope selects which parts of the scene are exported.
type ExportScope int

const (
	// ScopeAll exports every node.
	ScopeAll ExportScope = iota
	// ScopeSelectedObjects exports only selected nodes.
	ScopeSelectedObjects
	// ScopeSubsetsOfSelected exports every node whose subset is
	// touched by at least one selected node.
	ScopeSubsetsOfSelected
	// ScopeSelectedMaterials exports only geometry using selected
	// materials.
	ScopeSelectedMaterials
)

// String returns a human-readable scope name.
func (s ExportScope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeSelectedObjects:
		return "selected-objects"
	case ScopeSubsetsOfSelected:
		return "subsets-of-selected"
	case ScopeSelectedMaterials:
		return "selected-materials"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Bucket is one (material slot, material) pair actually used by at
// least one face of a mesh.
type Bucket struct {
	Slot     int
	Material *scene.Material
}

// Assembler computes subset membership for scene nodes under a scope
// and visibility configuration.
type Assembler struct {
	sc                *scene.Scene
	scope             ExportScope
	selected          map[*scene.Node]bool
	selectedMaterials map[*scene.Material]bool
	activeVariants    map[string]bool

	// eligibleIDs is the pass-one result for ScopeSubsetsOfSelected:
	// every identifier touched by a selected node.
	eligibleIDs map[SubsetIdentifier]bool
}

// NewAssembler prepares subset assembly. For ScopeSubsetsOfSelected it
// runs the first pass over the whole scene so that partially selected
// subsets are exported whole.
func NewAssembler(sc *scene.Scene, scope ExportScope, selected map[*scene.Node]bool,
	selectedMaterials map[*scene.Material]bool, activeVariants map[string]bool) *Assembler {

	a := &Assembler{
		sc:                sc,
		scope:             scope,
		selected:          selected,
		selectedMaterials: selectedMaterials,
		activeVariants:    activeVariants,
	}
	if scope == ScopeSubsetsOfSelected {
		a.eligibleIDs = make(map[SubsetIdentifier]bool)
		for _, n := range sc.Nodes {
			if n.Mesh == nil || !selected[n] {
				continue
			}
			// Selection pulls the identifier in regardless of the
			// node's visibility.
			for _, b := range a.Buckets(n) {
				a.eligibleIDs[a.Identifier(n, b.Material)] = true
			}
		}
	}
	return a
}

// Buckets returns the (slot, material) pairs used by the node's faces.
// A mesh without materials uses a single nil-material bucket.
func (a *Assembler) Buckets(n *scene.Node) []Bucket {
	mesh := n.Mesh
	if mesh == nil {
		return nil
	}
	if len(mesh.Materials) == 0 {
		if len(mesh.Faces) == 0 {
			return nil
		}
		return []Bucket{{Slot: 0, Material: nil}}
	}
	used := make(map[int]bool)
	var buckets []Bucket
	for _, f := range mesh.Faces {
		if !used[f.Material] {
			used[f.Material] = true
			buckets = append(buckets, Bucket{Slot: f.Material, Material: mesh.MaterialAt(f.Material)})
		}
	}
	return buckets
}

// Identifier builds the subset identifier for a node and material.
func (a *Assembler) Identifier(n *scene.Node, mat *scene.Material) SubsetIdentifier {
	return SubsetIdentifier{
		Name:     n.SubsetName,
		Material: mat,
		AnimNode: a.sc.FirstAnimatedAncestor(n),
	}
}

// Include reports whether a node passes the scope filter. Visibility
// is checked separately via Visible.
func (a *Assembler) Include(n *scene.Node) bool {
	if n.Mesh == nil {
		return false
	}
	switch a.scope {
	case ScopeAll, ScopeSelectedMaterials:
		return true
	case ScopeSelectedObjects:
		return a.selected[n]
	case ScopeSubsetsOfSelected:
		for _, b := range a.Buckets(n) {
			if a.eligibleIDs[a.Identifier(n, b.Material)] {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// IncludeBucket reports whether a material bucket of an included node
// is exported.
func (a *Assembler) IncludeBucket(n *scene.Node, b Bucket) bool {
	if a.scope == ScopeSelectedMaterials {
		return b.Material != nil && a.selectedMaterials[b.Material]
	}
	if a.scope == ScopeSubsetsOfSelected {
		return a.eligibleIDs[a.Identifier(n, b.Material)]
	}
	return true
}

// Visible reports whether a node's geometry appears in the output
// under the active variant set. Invisible nodes still participate in
// identifier computation.
func (a *Assembler) Visible(n *scene.Node) bool {
	return scene.Visible(n.Variants, a.activeVariants)
}

// MaterialVisible reports whether a material is enabled under the
// active variant set.
func (a *Assembler) MaterialVisible(m *scene.Material) bool {
	if m == nil {
		return true
	}
	return scene.Visible(m.Variants, a.activeVariants)
}
