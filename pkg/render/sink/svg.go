package sink

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/arborist/pkg/render"
)

// SVGOption configures an [SVG] surface.
type SVGOption func(*SVG)

// WithTitle adds a <title> element to the document.
func WithTitle(title string) SVGOption { return func(s *SVG) { s.title = title } }

// WithDescription adds a <desc> element to the document.
func WithDescription(desc string) SVGOption { return func(s *SVG) { s.desc = desc } }

// SVG is a vector surface. Coordinates are rounded to whole pixels.
type SVG struct {
	buf    bytes.Buffer
	canvas *svg.SVG
	title  string
	desc   string
	open   bool
}

// NewSVG returns an unsized SVG surface.
func NewSVG(opts ...SVGOption) *SVG {
	s := &SVG{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resize starts a new document of the given size, discarding prior output.
func (s *SVG) Resize(width, height float64) error {
	s.buf.Reset()
	s.canvas = svg.New(&s.buf)
	s.canvas.Start(int(math.Ceil(width)), int(math.Ceil(height)))
	if s.title != "" {
		s.canvas.Title(s.title)
	}
	if s.desc != "" {
		s.canvas.Desc(s.desc)
	}
	s.open = true
	return nil
}

func (s *SVG) Circle(c render.Point, r float64, st render.Style) {
	if !s.open {
		return
	}
	s.canvas.Circle(px(c.X), px(c.Y), px(r), strokeCSS(st)+";fill:none")
}

func (s *SVG) Line(from, to render.Point, st render.Style) {
	if !s.open {
		return
	}
	s.canvas.Line(px(from.X), px(from.Y), px(to.X), px(to.Y), strokeCSS(st))
}

func (s *SVG) Text(at render.Point, text string, st render.Style) {
	if !s.open {
		return
	}
	s.canvas.Text(px(at.X), px(at.Y), text, textCSS(st))
}

// Bytes closes the document and returns it. Later calls return the same
// document until the next Resize. An unsized surface yields nil.
func (s *SVG) Bytes() []byte {
	if s.canvas == nil {
		return nil
	}
	if s.open {
		s.canvas.End()
		s.open = false
	}
	return bytes.Clone(s.buf.Bytes())
}

func px(v float64) int {
	return int(math.Round(v))
}

func strokeCSS(st render.Style) string {
	return fmt.Sprintf("stroke:%s;stroke-width:%g", st.Stroke, st.StrokeWidth)
}

func textCSS(st render.Style) string {
	return fmt.Sprintf("text-anchor:middle;dominant-baseline:central;font-family:%s;font-size:%gpx;fill:%s",
		st.FontFamily, st.FontSize, st.TextColor)
}

var _ render.Surface = (*SVG)(nil)
