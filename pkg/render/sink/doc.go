// Package sink provides drawing surfaces for [render.Renderer].
//
// # Overview
//
// Every type here implements [render.Surface]:
//
//   - [SVG]: vector output built on github.com/ajstarks/svgo
//   - [Raster]: an RGBA image with Go Regular labels, encoded as PNG
//   - [Text]: a character grid for terminals
//   - [Recorder]: an in-memory log of draw calls, exported by [RenderJSON]
//
// PDF output is produced from finished SVG with [render.ToPDF].
//
// # Usage
//
//	svg := sink.NewSVG(sink.WithTitle("random tree"))
//	if _, err := render.Render(root, svg); err != nil {
//	    return err
//	}
//	os.WriteFile("tree.svg", svg.Bytes(), 0o644)
//
// Surfaces follow canvas semantics: Resize clears, and draw calls issued
// before the first Resize are dropped.
//
// [render.Renderer]: github.com/matzehuels/arborist/pkg/render.Renderer
// [render.Surface]: github.com/matzehuels/arborist/pkg/render.Surface
// [render.ToPDF]: github.com/matzehuels/arborist/pkg/render.ToPDF
package sink
