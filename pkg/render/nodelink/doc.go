// Package nodelink renders generated trees as Graphviz node-link diagrams.
//
// # Overview
//
// The layered renderer places every node by arithmetic on the level
// geometry. This package hands the same tree to Graphviz instead, which
// packs sparse trees more tightly at the cost of losing the fixed grid.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # DOT Format
//
// Nodes are named n<label> and drawn as circles with the label inside.
// Left and right children are ordered with invisible placeholder nodes so
// that a lone right child still leans right.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
