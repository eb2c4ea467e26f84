package sink

import (
	"testing"

	"github.com/matzehuels/arborist/pkg/render"
	"github.com/matzehuels/arborist/pkg/tree"
)

// fullTree returns the complete tree of the given depth.
func fullTree(t *testing.T, depth int) *tree.Node {
	t.Helper()
	root, err := tree.Generate(depth, 1, 1, tree.NewSource(1))
	if err != nil {
		t.Fatalf("Generate(%d): %v", depth, err)
	}
	return root
}

func drawTree(t *testing.T, root *tree.Node, s render.Surface) *render.Renderer {
	t.Helper()
	r, err := render.Render(root, s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return r
}
