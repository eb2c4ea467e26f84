// Package pkg provides the core libraries for Arborist random tree drawings.
//
// # Overview
//
// Arborist grows random binary trees bottom-up, one level at a time, and
// draws them as layered node/edge diagrams: every level sits on its own row
// and each child is placed half the parent's spread to the left or right.
//
// # Architecture
//
// The typical data flow:
//
//	depth, left, right (loosely typed text)
//	         ↓
//	    [params] package (lenient resolution with defaults)
//	         ↓
//	    [tree] package (bottom-up random generation)
//	         ↓
//	    [render] package (sizing, placement, drawing onto a Surface)
//	         ↓
//	    SVG/PNG/PDF/JSON/DOT/TXT output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/arborist/pkg/render"
//	    "github.com/matzehuels/arborist/pkg/render/sink"
//	    "github.com/matzehuels/arborist/pkg/tree"
//	)
//
//	// 1. Grow a tree
//	root, _ := tree.Generate(4, 0.8, 0.8, tree.NewSource(42))
//
//	// 2. Draw it
//	svg := sink.NewSVG()
//	_, _ = render.Render(root, svg)
//
//	// 3. Use the bytes
//	os.WriteFile("tree.svg", svg.Bytes(), 0o644)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [tree] - Binary tree nodes and the bottom-up generator. Nodes are labeled
// in creation order, so the root always carries the largest label.
//
// [params] - Turns query strings, flags and config values into generation
// parameters, substituting defaults instead of failing.
//
// ## Visualization
//
// [render] - The layered renderer: canvas sizing, the Surface drawing
// contract, styles, and SVG to PDF/PNG conversion.
//
//   - [render/layout]: Geometry and iterative placement of every node
//   - [render/sink]: Surfaces for SVG, PNG, plain text and recorded JSON
//   - [render/nodelink]: Graphviz diagrams and DOT export
//
// ## Infrastructure
//
// [pipeline] - Complete pipeline (generate → layout → render) used by the
// CLI and the HTTP server. Ensures consistent behavior across entry points.
//
// [cache] - Artifact cache with file, Redis and null backends.
//
// [server] - HTTP surface serving /tree.{format}.
//
// [config] - TOML configuration for geometry, style, defaults and the server.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/tree/...               # Specific package
//	go test -run Example                 # Examples only
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/tree
// [params]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/params
// [render]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/render
// [render/layout]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/render/layout
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/arborist/pkg/observability
package pkg
