package sink

import "github.com/matzehuels/arborist/pkg/render"

// Op kinds recorded by [Recorder].
const (
	OpCircle = "circle"
	OpLine   = "line"
	OpText   = "text"
)

// Op is one recorded draw call.
type Op struct {
	Kind   string        `json:"op"`
	At     render.Point  `json:"at"`
	To     *render.Point `json:"to,omitempty"`
	Radius float64       `json:"radius,omitempty"`
	Text   string        `json:"text,omitempty"`
}

// Recorder is a surface that remembers every draw call in order.
type Recorder struct {
	Width, Height float64
	Resizes       int
	Ops           []Op
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Resize(width, height float64) error {
	r.Width, r.Height = width, height
	r.Resizes++
	r.Ops = nil
	return nil
}

func (r *Recorder) Circle(c render.Point, radius float64, _ render.Style) {
	r.Ops = append(r.Ops, Op{Kind: OpCircle, At: c, Radius: radius})
}

func (r *Recorder) Line(from, to render.Point, _ render.Style) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, At: from, To: &to})
}

func (r *Recorder) Text(at render.Point, s string, _ render.Style) {
	r.Ops = append(r.Ops, Op{Kind: OpText, At: at, Text: s})
}

// Count returns how many ops of the given kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

var _ render.Surface = (*Recorder)(nil)
