package render

import (
	"strconv"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/render/layout"
	"github.com/matzehuels/arborist/pkg/tree"
)

// Option configures a [Renderer].
type Option func(*Renderer)

// WithGeometry overrides the default drawing scale.
func WithGeometry(g layout.Geometry) Option {
	return func(r *Renderer) { r.geometry = g }
}

// WithStyle overrides the default style.
func WithStyle(s Style) Option {
	return func(r *Renderer) { r.style = s }
}

// Renderer draws one tree onto one surface.
type Renderer struct {
	root     *tree.Node
	surface  Surface
	geometry layout.Geometry
	style    Style

	depth         int
	width, height float64
}

// New measures root, sizes surface to fit it and returns a renderer ready to
// draw. An empty tree is rejected with an EMPTY_TREE error.
func New(root *tree.Node, surface Surface, opts ...Option) (*Renderer, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeEmptyTree, "cannot render an empty tree")
	}
	if surface == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "surface is nil")
	}

	r := &Renderer{
		root:     root,
		surface:  surface,
		geometry: layout.DefaultGeometry(),
		style:    DefaultStyle(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.geometry.Validate(); err != nil {
		return nil, err
	}
	if err := r.style.Validate(); err != nil {
		return nil, err
	}

	r.depth = tree.MaxDepth(root)
	w, h, err := r.geometry.Size(r.depth)
	if err != nil {
		return nil, err
	}
	if err := surface.Resize(w, h); err != nil {
		return nil, err
	}
	r.width, r.height = w, h
	return r, nil
}

// Size returns the surface dimensions chosen at construction.
func (r *Renderer) Size() (width, height float64) {
	return r.width, r.height
}

// Depth returns the tree depth the surface was sized for.
func (r *Renderer) Depth() int {
	return r.depth
}

// Geometry returns the drawing scale in use.
func (r *Renderer) Geometry() layout.Geometry {
	return r.geometry
}

// Draw paints every node and edge. For each node the edge from its parent is
// drawn first, then its circle, then its label.
func (r *Renderer) Draw() {
	g := r.geometry
	layout.Walk(r.root, g, r.width, func(p layout.Placement) {
		if p.Parent != nil {
			from, to := g.Edge(*p.Parent, p.At)
			r.surface.Line(from, to, r.style)
		}
		r.surface.Circle(p.At, g.Radius, r.style)
		r.surface.Text(p.At, strconv.Itoa(p.Node.Label), r.style)
	})
}

// Render builds a renderer and draws in one step.
func Render(root *tree.Node, surface Surface, opts ...Option) (*Renderer, error) {
	r, err := New(root, surface, opts...)
	if err != nil {
		return nil, err
	}
	r.Draw()
	return r, nil
}
