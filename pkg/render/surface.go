package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/render/layout"
)

// Point is re-exported so surfaces need not import layout.
type Point = layout.Point

// Surface is a 2D drawing target.
//
// Resize sets the pixel dimensions and, like an HTML canvas, discards
// anything drawn before. The drawing calls never fail; surfaces that can run
// out of resources refuse in Resize instead.
type Surface interface {
	Resize(width, height float64) error
	Circle(center Point, radius float64, st Style)
	Line(from, to Point, st Style)
	// Text draws s centered horizontally and vertically on at.
	Text(at Point, s string, st Style)
}

// Style describes how nodes, edges and labels look.
type Style struct {
	FontFamily  string  `json:"font_family" toml:"font_family"`
	FontSize    float64 `json:"font_size" toml:"font_size"`
	Stroke      string  `json:"stroke" toml:"stroke"`
	StrokeWidth float64 `json:"stroke_width" toml:"stroke_width"`
	TextColor   string  `json:"text_color" toml:"text_color"`
}

// DefaultStyle returns 20px sans-serif labels and 1px black outlines.
func DefaultStyle() Style {
	return Style{
		FontFamily:  "sans-serif",
		FontSize:    20,
		Stroke:      "#000000",
		StrokeWidth: 1,
		TextColor:   "#000000",
	}
}

// Validate checks sizes and colours.
func (s Style) Validate() error {
	if s.FontFamily == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "font family is empty")
	}
	if err := errors.ValidatePositive("font size", s.FontSize); err != nil {
		return err
	}
	if err := errors.ValidatePositive("stroke width", s.StrokeWidth); err != nil {
		return err
	}
	if _, err := ParseColor(s.Stroke); err != nil {
		return err
	}
	_, err := ParseColor(s.TextColor)
	return err
}

// ParseColor parses "#rgb" or "#rrggbb" hex colours.
func ParseColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	hex := strings.TrimPrefix(s, "#")

	var err error
	switch len(hex) {
	case 3:
		_, err = fmt.Sscanf(hex, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R, c.G, c.B = c.R*0x11, c.G*0x11, c.B*0x11
	case 6:
		_, err = fmt.Sscanf(hex, "%2x%2x%2x", &c.R, &c.G, &c.B)
	default:
		err = fmt.Errorf("bad length")
	}
	if err != nil || !strings.HasPrefix(s, "#") {
		return color.RGBA{}, errors.New(errors.ErrCodeInvalidParameter, "invalid colour %q", s)
	}
	return c, nil
}
