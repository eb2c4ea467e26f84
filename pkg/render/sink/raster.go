package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/render"
)

const (
	// DefaultMaxPixels caps the working image, supersampling included.
	DefaultMaxPixels = 40_000_000

	supersample = 2
)

// RasterOption configures a [Raster] surface.
type RasterOption func(*Raster)

// WithScale sets the output resolution factor (2.0 for high-DPI output).
func WithScale(s float64) RasterOption { return func(r *Raster) { r.scale = s } }

// WithMaxPixels overrides [DefaultMaxPixels].
func WithMaxPixels(n int) RasterOption { return func(r *Raster) { r.maxPixels = n } }

// WithBackground sets the fill colour applied on Resize.
func WithBackground(c color.Color) RasterOption { return func(r *Raster) { r.background = c } }

// Raster draws into an RGBA image at scale × supersample resolution and
// downsamples on output. Labels always use the Go Regular face; the style's
// font family is ignored.
type Raster struct {
	img        *image.RGBA
	scale      float64
	maxPixels  int
	background color.Color
	width      int
	height     int

	font  *opentype.Font
	faces map[float64]font.Face
}

// NewRaster returns an unsized raster surface with a white background.
func NewRaster(opts ...RasterOption) *Raster {
	r := &Raster{
		scale:      1,
		maxPixels:  DefaultMaxPixels,
		background: color.White,
		faces:      make(map[float64]font.Face),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resize allocates a fresh image. Requests above the pixel budget fail with
// RESOURCE_EXHAUSTED before any allocation.
func (r *Raster) Resize(width, height float64) error {
	if r.scale <= 0 || math.IsNaN(r.scale) {
		return errors.New(errors.ErrCodeInvalidParameter, "raster scale must be positive, got %v", r.scale)
	}
	w := int(math.Ceil(width * r.scale))
	h := int(math.Ceil(height * r.scale))
	if w <= 0 || h <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "raster size %dx%d is empty", w, h)
	}
	if total := float64(w*supersample) * float64(h*supersample); total > float64(r.maxPixels) {
		return errors.New(errors.ErrCodeResourceExhausted,
			"raster of %dx%d pixels exceeds budget of %d", w, h, r.maxPixels/(supersample*supersample))
	}

	r.width, r.height = w, h
	r.img = image.NewRGBA(image.Rect(0, 0, w*supersample, h*supersample))
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
	return nil
}

// factor maps surface coordinates to working image pixels.
func (r *Raster) factor() float64 {
	return r.scale * supersample
}

func (r *Raster) Circle(c render.Point, radius float64, st render.Style) {
	if r.img == nil {
		return
	}
	f := r.factor()
	cx, cy, rad := c.X*f, c.Y*f, radius*f
	thick := st.StrokeWidth * f
	stroke := mustColor(st.Stroke)

	step := 0.5 / math.Max(rad, 1)
	for a := 0.0; a < 2*math.Pi; a += step {
		nx, ny := math.Cos(a), math.Sin(a)
		for t := -thick / 2; t <= thick/2; t += 0.5 {
			r.img.Set(int(cx+nx*(rad+t)), int(cy+ny*(rad+t)), stroke)
		}
	}
}

func (r *Raster) Line(from, to render.Point, st render.Style) {
	if r.img == nil {
		return
	}
	f := r.factor()
	x1, y1, x2, y2 := from.X*f, from.Y*f, to.X*f, to.Y*f
	half := st.StrokeWidth * f / 2
	stroke := mustColor(st.Stroke)

	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		r.img.Set(int(x1), int(y1), stroke)
		return
	}
	perpX, perpY := -dy/dist, dx/dist
	steps := math.Ceil(dist * 2)
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		x, y := x1+dx*t, y1+dy*t
		for o := -half; o <= half; o += 0.5 {
			r.img.Set(int(x+perpX*o), int(y+perpY*o), stroke)
		}
	}
}

func (r *Raster) Text(at render.Point, text string, st render.Style) {
	if r.img == nil {
		return
	}
	face, err := r.face(st.FontSize * r.factor())
	if err != nil {
		return
	}

	f := r.factor()
	width := font.MeasureString(face, text)
	m := face.Metrics()
	// Vertical middle: the baseline sits half the ink height below center.
	baseline := fixed.Int26_6(at.Y*f*64) + (m.Ascent-m.Descent)/2

	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(mustColor(st.TextColor)),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(at.X*f*64) - width/2, Y: baseline},
	}
	d.DrawString(text)
}

func (r *Raster) face(size float64) (font.Face, error) {
	if face, ok := r.faces[size]; ok {
		return face, nil
	}
	if r.font == nil {
		fnt, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, err
		}
		r.font = fnt
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	r.faces[size] = face
	return face, nil
}

// Image returns the output image at scale resolution, or nil if unsized.
func (r *Raster) Image() *image.RGBA {
	if r.img == nil {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.CatmullRom.Scale(out, out.Bounds(), r.img, r.img.Bounds(), draw.Src, nil)
	return out
}

// EncodePNG writes the output image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	img := r.Image()
	if img == nil {
		return errors.New(errors.ErrCodeEmptyTree, "raster surface was never sized")
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

// PNG returns the encoded output image.
func (r *Raster) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mustColor parses a colour the renderer has already validated.
func mustColor(s string) color.RGBA {
	c, err := render.ParseColor(s)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}

var _ render.Surface = (*Raster)(nil)
