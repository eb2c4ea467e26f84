package layout

import (
	"math"

	"github.com/matzehuels/arborist/pkg/errors"
)

// Point is a position on the drawing surface, y growing downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Side identifies which child a placement is.
type Side int

const (
	Root Side = iota
	Left
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "root"
	}
}

// Geometry holds the constants that set the visual scale of a drawing.
type Geometry struct {
	Radius            float64 `json:"radius" toml:"radius"`
	HorizontalSpacing float64 `json:"horizontal_spacing" toml:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing" toml:"vertical_spacing"`
	VerticalPadding   float64 `json:"vertical_padding" toml:"vertical_padding"`
}

// DefaultGeometry returns the stock drawing scale.
func DefaultGeometry() Geometry {
	return Geometry{
		Radius:            18,
		HorizontalSpacing: 20,
		VerticalSpacing:   20,
		VerticalPadding:   2,
	}
}

// Validate checks that the radius is positive and the spacings non-negative.
func (g Geometry) Validate() error {
	if err := errors.ValidatePositive("radius", g.Radius); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("horizontal spacing", g.HorizontalSpacing); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("vertical spacing", g.VerticalSpacing); err != nil {
		return err
	}
	return errors.ValidateNonNegative("vertical padding", g.VerticalPadding)
}

// Size returns the surface dimensions for a tree of the given depth.
func (g Geometry) Size(depth int) (width, height float64, err error) {
	if depth <= 0 {
		return 0, 0, errors.New(errors.ErrCodeEmptyTree, "cannot size a tree of depth %d", depth)
	}
	slots := math.Exp2(float64(depth - 1))
	d := float64(depth)
	width = slots*2*g.Radius + (slots-1)*g.HorizontalSpacing
	height = d*2*g.Radius + (d-1)*g.VerticalSpacing + 2*g.VerticalPadding
	return width, height, nil
}

// Origin is the root position on a surface of the given width.
func (g Geometry) Origin(width float64) Point {
	return Point{X: width / 2, Y: g.Radius + g.VerticalPadding}
}

// InitialSpread is the root's half-spread on a surface of the given width.
func (g Geometry) InitialSpread(width float64) float64 {
	return width / 4
}

// LevelStep is the vertical distance between the centers of two levels.
func (g Geometry) LevelStep() float64 {
	return 2*g.Radius + g.VerticalSpacing
}

// Child returns the position of a child placed spread away from at.
func (g Geometry) Child(at Point, spread float64, side Side) Point {
	x := at.X + spread
	if side == Left {
		x = at.X - spread
	}
	return Point{X: x, Y: at.Y + g.LevelStep()}
}

// Edge trims a parent-child connection to the circle outlines: it leaves the
// bottom of the parent and ends at the top of the child.
func (g Geometry) Edge(parent, child Point) (from, to Point) {
	return Point{X: parent.X, Y: parent.Y + g.Radius}, Point{X: child.X, Y: child.Y - g.Radius}
}
