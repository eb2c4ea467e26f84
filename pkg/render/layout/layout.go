package layout

import (
	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/tree"
)

// Placement is a node positioned on the surface.
type Placement struct {
	Node *tree.Node
	At   Point
	// Parent is the parent's position, nil for the root.
	Parent *Point
	Side   Side
	// Spread is the half-spread this node hands to its children.
	Spread float64
	Depth  int
}

// Layout is a fully placed tree together with the surface it needs.
type Layout struct {
	Width, Height float64
	Depth         int
	Geometry      Geometry
	Placements    []Placement
}

// Compute sizes the surface for root and places every node.
func Compute(root *tree.Node, g Geometry) (Layout, error) {
	if root == nil {
		return Layout{}, errors.New(errors.ErrCodeEmptyTree, "cannot lay out an empty tree")
	}
	if err := g.Validate(); err != nil {
		return Layout{}, err
	}

	depth := tree.MaxDepth(root)
	width, height, err := g.Size(depth)
	if err != nil {
		return Layout{}, err
	}

	l := Layout{Width: width, Height: height, Depth: depth, Geometry: g}
	Walk(root, g, width, func(p Placement) {
		l.Placements = append(l.Placements, p)
	})
	return l, nil
}

// Walk places root on a surface of the given width and calls fn for every
// node, parents before children and left subtrees before right ones.
//
// Walk is iterative. Children are pushed right first so the left one is
// popped first.
func Walk(root *tree.Node, g Geometry, width float64, fn func(Placement)) {
	if root == nil {
		return
	}

	stack := arraystack.New()
	stack.Push(Placement{
		Node:   root,
		At:     g.Origin(width),
		Side:   Root,
		Spread: g.InitialSpread(width),
		Depth:  1,
	})

	for !stack.Empty() {
		v, _ := stack.Pop()
		p := v.(Placement)
		fn(p)

		if c := p.Node.Right; c != nil {
			stack.Push(p.child(g, c, Right))
		}
		if c := p.Node.Left; c != nil {
			stack.Push(p.child(g, c, Left))
		}
	}
}

func (p Placement) child(g Geometry, n *tree.Node, side Side) Placement {
	parent := p.At
	return Placement{
		Node:   n,
		At:     g.Child(p.At, p.Spread, side),
		Parent: &parent,
		Side:   side,
		Spread: p.Spread / 2,
		Depth:  p.Depth + 1,
	}
}
