package ls3

import "github.com/zusitools/go-ls3/pkg/scene"

// SubsetIdentifier groups geometry into subsets. Two identifiers are
// equal iff all three fields are equal, including nil ones.
type SubsetIdentifier struct {
	Name     string
	Material *scene.Material
	AnimNode *scene.Node
}

// Less implements the total order over identifiers: lexicographic by
// name, then by material (nil before any, ties by material name), then
// by animating node (nil before any, ties by node name).
func (id SubsetIdentifier) Less(other SubsetIdentifier) bool {
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	if c := compareMaterials(id.Material, other.Material); c != 0 {
		return c < 0
	}
	return compareNodes(id.AnimNode, other.AnimNode) < 0
}

func compareMaterials(a, b *scene.Material) int {
	switch {
	case a == b:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Name < b.Name:
		return -1
	case a.Name > b.Name:
		return 1
	default:
		return 0
	}
}

func compareNodes(a, b *scene.Node) int {
	switch {
	case a == b:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Name < b.Name:
		return -1
	case a.Name > b.Name:
		return 1
	default:
		return 0
	}
}
