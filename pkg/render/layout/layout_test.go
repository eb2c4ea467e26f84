package layout

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/tree"
)

func fullTree(t *testing.T, levels int) *tree.Node {
	t.Helper()
	root, err := tree.Generate(levels, 1, 1, tree.NewSource(1))
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestSize(t *testing.T) {
	g := DefaultGeometry()
	r, h, v, p := g.Radius, g.HorizontalSpacing, g.VerticalSpacing, g.VerticalPadding

	tests := []struct {
		depth         int
		width, height float64
	}{
		{1, 2 * r, 2*r + 2*p},
		{2, 2*2*r + h, 2*2*r + v + 2*p},
		{3, 4*2*r + 3*h, 3*2*r + 2*v + 2*p},
		{6, 32*2*r + 31*h, 6*2*r + 5*v + 2*p},
	}

	for _, tt := range tests {
		w, hgt, err := g.Size(tt.depth)
		if err != nil {
			t.Fatalf("Size(%d) error = %v", tt.depth, err)
		}
		if w != tt.width || hgt != tt.height {
			t.Errorf("Size(%d) = %vx%v, want %vx%v", tt.depth, w, hgt, tt.width, tt.height)
		}
	}
}

func TestSizeEmpty(t *testing.T) {
	for _, d := range []int{0, -1} {
		_, _, err := DefaultGeometry().Size(d)
		if !errors.Is(err, errors.ErrCodeEmptyTree) {
			t.Errorf("Size(%d) error = %v, want EMPTY_TREE", d, err)
		}
	}
}

func TestSizeCustomGeometry(t *testing.T) {
	g := Geometry{Radius: 10, HorizontalSpacing: 5, VerticalSpacing: 7, VerticalPadding: 3}
	w, h, err := g.Size(4)
	if err != nil {
		t.Fatal(err)
	}
	if want := 8*20.0 + 7*5; w != want {
		t.Errorf("width = %v, want %v", w, want)
	}
	if want := 4*20.0 + 3*7 + 6; h != want {
		t.Errorf("height = %v, want %v", h, want)
	}
}

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		g       Geometry
		wantErr bool
	}{
		{"default", DefaultGeometry(), false},
		{"zero spacing", Geometry{Radius: 5}, false},
		{"zero radius", Geometry{}, true},
		{"negative spacing", Geometry{Radius: 5, HorizontalSpacing: -1}, true},
		{"nan padding", Geometry{Radius: 5, VerticalPadding: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.g.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComputeSingleNode(t *testing.T) {
	g := DefaultGeometry()
	l, err := Compute(&tree.Node{Label: 1}, g)
	if err != nil {
		t.Fatal(err)
	}

	if l.Width != 36 || l.Height != 40 {
		t.Errorf("size = %vx%v, want 36x40", l.Width, l.Height)
	}
	if len(l.Placements) != 1 {
		t.Fatalf("placements = %d, want 1", len(l.Placements))
	}
	p := l.Placements[0]
	if p.At != (Point{X: 18, Y: 20}) || p.Parent != nil || p.Side != Root {
		t.Errorf("root placement = %+v", p)
	}
}

func TestComputeEmpty(t *testing.T) {
	if _, err := Compute(nil, DefaultGeometry()); !errors.Is(err, errors.ErrCodeEmptyTree) {
		t.Errorf("Compute(nil) error = %v, want EMPTY_TREE", err)
	}
}

func TestComputeFullTreePositions(t *testing.T) {
	l, err := Compute(fullTree(t, 3), DefaultGeometry())
	if err != nil {
		t.Fatal(err)
	}

	type pos struct {
		label int
		at    Point
	}
	want := []pos{
		{7, Point{102, 20}},
		{6, Point{51, 76}},
		{2, Point{25.5, 132}},
		{1, Point{76.5, 132}},
		{5, Point{153, 76}},
		{4, Point{127.5, 132}},
		{3, Point{178.5, 132}},
	}

	if len(l.Placements) != len(want) {
		t.Fatalf("placements = %d, want %d", len(l.Placements), len(want))
	}
	for i, w := range want {
		got := l.Placements[i]
		if got.Node.Label != w.label || got.At != w.at {
			t.Errorf("placement %d = (%d, %+v), want (%d, %+v)", i, got.Node.Label, got.At, w.label, w.at)
		}
	}
}

func TestWalkHalvesSpread(t *testing.T) {
	g := DefaultGeometry()
	root := fullTree(t, 4)
	width, _, _ := g.Size(4)

	Walk(root, g, width, func(p Placement) {
		want := width / 4 / math.Exp2(float64(p.Depth-1))
		if p.Spread != want {
			t.Errorf("depth %d spread = %v, want %v", p.Depth, p.Spread, want)
		}
		if p.Parent != nil && math.Abs(p.At.X-p.Parent.X) != p.Spread*2 {
			t.Errorf("node %d offset = %v, want %v", p.Node.Label, math.Abs(p.At.X-p.Parent.X), p.Spread*2)
		}
	})
}

func TestNoOverlapInFullTrees(t *testing.T) {
	g := DefaultGeometry()

	for levels := 1; levels <= 9; levels++ {
		l, err := Compute(fullTree(t, levels), g)
		if err != nil {
			t.Fatal(err)
		}

		rows := make(map[int][]float64)
		for _, p := range l.Placements {
			rows[p.Depth] = append(rows[p.Depth], p.At.X)
			if p.At.X-g.Radius < 0 || p.At.X+g.Radius > l.Width {
				t.Errorf("levels=%d: node %d at x=%v clipped horizontally", levels, p.Node.Label, p.At.X)
			}
			if p.At.Y-g.Radius < 0 || p.At.Y+g.Radius > l.Height {
				t.Errorf("levels=%d: node %d at y=%v clipped vertically", levels, p.Node.Label, p.At.Y)
			}
		}

		for depth, xs := range rows {
			slices.Sort(xs)
			for i := 1; i < len(xs); i++ {
				if gap := xs[i] - xs[i-1]; gap < 2*g.Radius {
					t.Errorf("levels=%d depth=%d: centers %v apart, want >= %v", levels, depth, gap, 2*g.Radius)
				}
			}
		}
	}
}

func TestPartialTreeKeepsReservedWidth(t *testing.T) {
	// A left chain of depth 3 still reserves room for four bottom slots.
	root := &tree.Node{Label: 3, Left: &tree.Node{Label: 2, Left: &tree.Node{Label: 1}}}
	l, err := Compute(root, DefaultGeometry())
	if err != nil {
		t.Fatal(err)
	}
	if l.Width != 204 {
		t.Errorf("width = %v, want 204", l.Width)
	}
	if got := l.Placements[2].At; got != (Point{25.5, 132}) {
		t.Errorf("deepest node at %+v, want {25.5 132}", got)
	}
}

func TestEdge(t *testing.T) {
	g := DefaultGeometry()
	from, to := g.Edge(Point{102, 20}, Point{51, 76})

	if from != (Point{102, 38}) {
		t.Errorf("from = %+v, want {102 38}", from)
	}
	if to != (Point{51, 58}) {
		t.Errorf("to = %+v, want {51 58}", to)
	}
}

func TestSideString(t *testing.T) {
	for side, want := range map[Side]string{Root: "root", Left: "left", Right: "right"} {
		if got := side.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", side, got, want)
		}
	}
}
