package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/render"
	"github.com/matzehuels/arborist/pkg/tree"
)

// MaxNodes caps the trees handed to Graphviz. A complete tree of 12 levels
// fits.
const MaxNodes = 4095

// CheckSize refuses trees with more than [MaxNodes] nodes with
// RESOURCE_EXHAUSTED. Graphviz layout cannot be interrupted once started,
// so callers check before [RenderSVG].
func CheckSize(root *tree.Node) error {
	if n := tree.Count(root); n > MaxNodes {
		return errors.New(errors.ErrCodeResourceExhausted,
			"node-link diagram of %d nodes exceeds limit of %d", n, MaxNodes)
	}
	return nil
}

// Options configures node-link diagram rendering.
type Options struct {
	// Style supplies font and stroke settings. The zero value uses
	// [render.DefaultStyle].
	Style render.Style

	// Placeholders adds invisible nodes for missing children so that
	// left and right stay distinguishable.
	Placeholders bool
}

// ToDOT converts a tree to Graphviz DOT format. A nil root yields an
// empty digraph.
func ToDOT(root *tree.Node, opts Options) string {
	st := opts.Style
	if st == (render.Style{}) {
		st = render.DefaultStyle()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=circle, fixedsize=true, width=0.5, fontname=%q, fontsize=%g, color=%q, fontcolor=%q, penwidth=%g];\n",
		st.FontFamily, st.FontSize, st.Stroke, st.TextColor, st.StrokeWidth)
	fmt.Fprintf(&buf, "  edge [arrowhead=none, color=%q, penwidth=%g];\n", st.Stroke, st.StrokeWidth)
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if root != nil {
		buf.WriteString("\n")
		tree.Walk(root, func(n *tree.Node, _ int) bool {
			fmt.Fprintf(&buf, "  %s [label=\"%d\"];\n", nodeID(n), n.Label)
			if n.IsLeaf() {
				return true
			}
			writeChild(&buf, n, n.Left, "l", opts.Placeholders)
			writeChild(&buf, n, n.Right, "r", opts.Placeholders)
			return true
		})
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeChild(buf *bytes.Buffer, parent, child *tree.Node, side string, placeholders bool) {
	if child != nil {
		fmt.Fprintf(buf, "  %s -> %s;\n", nodeID(parent), nodeID(child))
		return
	}
	if !placeholders {
		return
	}
	ph := fmt.Sprintf("%s_%s", nodeID(parent), side)
	fmt.Fprintf(buf, "  %s [label=\"\", style=invis];\n", ph)
	fmt.Fprintf(buf, "  %s -> %s [style=invis];\n", nodeID(parent), ph)
}

func nodeID(n *tree.Node) string {
	return "n" + strconv.Itoa(n.Label)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based root element with one
// sized in pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
