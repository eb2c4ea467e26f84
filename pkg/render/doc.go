// Package render draws binary trees as layered node-and-edge diagrams.
//
// # Overview
//
// A [Renderer] binds one tree to one [Surface]. Construction measures the
// tree with [tree.MaxDepth], sizes the surface exactly through
// [layout.Geometry.Size] and rejects empty trees. [Renderer.Draw] then walks
// the placements from [layout.Walk] and issues one line, one circle and one
// centered label per node:
//
//	svg := sink.NewSVG()
//	r, err := render.New(root, svg)
//	if err != nil {
//	    return err
//	}
//	r.Draw()
//	out := svg.Bytes()
//
// Draw calls are purely additive. Drawing twice on the same surface paints
// every node twice; resize the surface or start a fresh one instead.
//
// # Styling
//
// Font and stroke settings live in an immutable [Style] owned by the
// renderer and passed along with every draw call, so surfaces hold no
// ambient styling state.
//
// # Surfaces
//
// Concrete surfaces live in the [sink] subpackage (SVG, PNG raster, text
// grid, draw-op recorder). [ToPDF] converts finished SVG through
// rsvg-convert. The [nodelink] subpackage offers a Graphviz rendering of the
// same tree.
//
// [sink]: github.com/matzehuels/arborist/pkg/render/sink
// [nodelink]: github.com/matzehuels/arborist/pkg/render/nodelink
package render
