package sink

import (
	"encoding/json"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/render/layout"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	runID  string
	seed   *uint64
	params *params.Params
	layout *layout.Layout
}

// WithJSONRunID records the generation run identifier.
func WithJSONRunID(id string) JSONOption { return func(r *jsonRenderer) { r.runID = id } }

// WithJSONSeed records the seed that reproduces the tree.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = &seed } }

// WithJSONParams records the generation parameters.
func WithJSONParams(p params.Params) JSONOption { return func(r *jsonRenderer) { r.params = &p } }

// WithJSONLayout adds the node placements and geometry.
func WithJSONLayout(l layout.Layout) JSONOption { return func(r *jsonRenderer) { r.layout = &l } }

type jsonOutput struct {
	RunID    string           `json:"run_id,omitempty"`
	Seed     *uint64          `json:"seed,omitempty"`
	Params   *params.Params   `json:"params,omitempty"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
	Depth    int              `json:"depth,omitempty"`
	Geometry *layout.Geometry `json:"geometry,omitempty"`
	Nodes    []jsonNode       `json:"nodes,omitempty"`
	Ops      []Op             `json:"ops"`
}

type jsonNode struct {
	Label  int           `json:"label"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Depth  int           `json:"depth"`
	Side   string        `json:"side"`
	Parent *layout.Point `json:"parent,omitempty"`
	Left   *int          `json:"left,omitempty"`
	Right  *int          `json:"right,omitempty"`
}

// RenderJSON exports the draw calls captured by rec, plus whatever context
// the options supply, as indented JSON.
func RenderJSON(rec *Recorder, opts ...JSONOption) ([]byte, error) {
	if rec == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "recorder is nil")
	}
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		RunID:  r.runID,
		Seed:   r.seed,
		Params: r.params,
		Width:  rec.Width,
		Height: rec.Height,
		Ops:    rec.Ops,
	}
	if out.Ops == nil {
		out.Ops = []Op{}
	}
	if l := r.layout; l != nil {
		out.Depth = l.Depth
		out.Geometry = &l.Geometry
		out.Nodes = buildNodes(l.Placements)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
	}
	return data, nil
}

// StampJSONRunID rewrites the run_id of a document produced by
// [RenderJSON]. Everything else is re-encoded unchanged.
func StampJSONRunID(data []byte, id string) ([]byte, error) {
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	out.RunID = id
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
	}
	return data, nil
}

func buildNodes(placements []layout.Placement) []jsonNode {
	nodes := make([]jsonNode, len(placements))
	for i, p := range placements {
		n := jsonNode{
			Label:  p.Node.Label,
			X:      p.At.X,
			Y:      p.At.Y,
			Depth:  p.Depth,
			Side:   p.Side.String(),
			Parent: p.Parent,
		}
		if c := p.Node.Left; c != nil {
			n.Left = &c.Label
		}
		if c := p.Node.Right; c != nil {
			n.Right = &c.Label
		}
		nodes[i] = n
	}
	return nodes
}
