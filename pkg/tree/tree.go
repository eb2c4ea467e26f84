package tree

// Node is a binary tree node. A nil child means the side is absent.
//
// Nodes own their children exclusively: a generated tree never shares a
// subtree and never contains a cycle.
type Node struct {
	Label       int
	Left, Right *Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// MaxDepth returns the number of levels on the longest root-to-leaf path.
// A nil root has depth 0 and a single node has depth 1.
func MaxDepth(root *Node) int {
	if root == nil {
		return 0
	}
	return 1 + max(MaxDepth(root.Left), MaxDepth(root.Right))
}

// Count returns the number of nodes reachable from root.
func Count(root *Node) int {
	if root == nil {
		return 0
	}
	return 1 + Count(root.Left) + Count(root.Right)
}

// Walk visits every node in pre-order, left before right, passing the depth
// of each node (root = 1). Returning false from fn skips that node's children.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 1, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	walk(n.Left, depth+1, fn)
	walk(n.Right, depth+1, fn)
}

// Labels returns the labels of all reachable nodes in pre-order.
func Labels(root *Node) []int {
	var labels []int
	Walk(root, func(n *Node, _ int) bool {
		labels = append(labels, n.Label)
		return true
	})
	return labels
}
