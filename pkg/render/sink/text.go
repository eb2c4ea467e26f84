package sink

import (
	"math"
	"strings"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/render"
)

// Default cell size of a [Text] surface, in surface pixels.
const (
	DefaultCellWidth  = 6.0
	DefaultCellHeight = 12.0

	// DefaultMaxCells caps the grid. A complete tree of 13 levels fits.
	DefaultMaxCells = 4_000_000
)

// TextOption configures a [Text] surface.
type TextOption func(*Text)

// WithCellSize sets how many surface pixels one character cell covers.
func WithCellSize(w, h float64) TextOption {
	return func(t *Text) { t.cellW, t.cellH = w, h }
}

// WithMaxCells overrides [DefaultMaxCells].
func WithMaxCells(n int) TextOption {
	return func(t *Text) { t.maxCells = n }
}

// Text draws onto a grid of runes for terminal display. Circles become
// parentheses around the label, edges become runs of '/', '\' and '|'.
type Text struct {
	cellW, cellH float64
	maxCells     int
	grid         [][]rune
}

// NewText returns an unsized text surface.
func NewText(opts ...TextOption) *Text {
	t := &Text{cellW: DefaultCellWidth, cellH: DefaultCellHeight, maxCells: DefaultMaxCells}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Resize allocates a blank grid covering width × height pixels. Grids above
// the cell budget fail with RESOURCE_EXHAUSTED before any allocation.
func (t *Text) Resize(width, height float64) error {
	if t.cellW <= 0 || t.cellH <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "text cell size %vx%v must be positive", t.cellW, t.cellH)
	}
	cols := math.Ceil(width / t.cellW)
	rows := math.Ceil(height / t.cellH)
	if cols*rows > float64(t.maxCells) {
		return errors.New(errors.ErrCodeResourceExhausted,
			"text grid of %.0fx%.0f cells exceeds budget of %d", cols, rows, t.maxCells)
	}
	t.grid = make([][]rune, int(rows))
	for i := range t.grid {
		row := make([]rune, int(cols))
		for j := range row {
			row[j] = ' '
		}
		t.grid[i] = row
	}
	return nil
}

// Size returns the grid dimensions in cells.
func (t *Text) Size() (cols, rows int) {
	if len(t.grid) == 0 {
		return 0, 0
	}
	return len(t.grid[0]), len(t.grid)
}

func (t *Text) cell(p render.Point) (col, row int) {
	return int(math.Floor(p.X / t.cellW)), int(math.Floor(p.Y / t.cellH))
}

func (t *Text) set(col, row int, r rune, overwrite bool) {
	if row < 0 || row >= len(t.grid) || col < 0 || col >= len(t.grid[row]) {
		return
	}
	if overwrite || t.grid[row][col] == ' ' {
		t.grid[row][col] = r
	}
}

func (t *Text) Circle(c render.Point, radius float64, _ render.Style) {
	col, row := t.cell(c)
	reach := max(1, int(math.Round(radius/t.cellW)))
	t.set(col-reach, row, '(', true)
	t.set(col+reach, row, ')', true)
}

func (t *Text) Line(from, to render.Point, _ render.Style) {
	c1, r1 := t.cell(from)
	c2, r2 := t.cell(to)
	glyph := '|'
	switch {
	case c2 < c1:
		glyph = '/'
	case c2 > c1:
		glyph = '\\'
	}

	steps := max(abs(c2-c1), abs(r2-r1))
	if steps == 0 {
		t.set(c1, r1, glyph, false)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		col := c1 + int(math.Round(f*float64(c2-c1)))
		row := r1 + int(math.Round(f*float64(r2-r1)))
		t.set(col, row, glyph, false)
	}
}

func (t *Text) Text(at render.Point, s string, _ render.Style) {
	col, row := t.cell(at)
	runes := []rune(s)
	start := col - (len(runes)-1)/2
	for i, r := range runes {
		t.set(start+i, row, r, true)
	}
}

// String returns the grid with trailing blanks removed.
func (t *Text) String() string {
	lines := make([]string, len(t.grid))
	for i, row := range t.grid {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var _ render.Surface = (*Text)(nil)
