package sink

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/render/layout"
)

func TestRecorderCounts(t *testing.T) {
	tests := []struct {
		depth                int
		circles, lines, text int
	}{
		{1, 1, 0, 1},
		{2, 3, 2, 3},
		{3, 7, 6, 7},
	}
	for _, tt := range tests {
		rec := NewRecorder()
		drawTree(t, fullTree(t, tt.depth), rec)
		if rec.Resizes != 1 {
			t.Errorf("depth %d: Resizes = %d, want 1", tt.depth, rec.Resizes)
		}
		if got := rec.Count(OpCircle); got != tt.circles {
			t.Errorf("depth %d: circles = %d, want %d", tt.depth, got, tt.circles)
		}
		if got := rec.Count(OpLine); got != tt.lines {
			t.Errorf("depth %d: lines = %d, want %d", tt.depth, got, tt.lines)
		}
		if got := rec.Count(OpText); got != tt.text {
			t.Errorf("depth %d: text = %d, want %d", tt.depth, got, tt.text)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	root := fullTree(t, 3)
	rec := NewRecorder()
	drawTree(t, root, rec)

	l, err := layout.Compute(root, layout.DefaultGeometry())
	if err != nil {
		t.Fatal(err)
	}
	data, err := RenderJSON(rec,
		WithJSONRunID("run-1"),
		WithJSONSeed(42),
		WithJSONParams(params.Default()),
		WithJSONLayout(l),
	)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		RunID  string  `json:"run_id"`
		Seed   uint64  `json:"seed"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Depth  int     `json:"depth"`
		Nodes  []struct {
			Label int    `json:"label"`
			Side  string `json:"side"`
			Left  *int   `json:"left"`
		} `json:"nodes"`
		Ops []Op `json:"ops"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.RunID != "run-1" || out.Seed != 42 {
		t.Errorf("run_id/seed = %q/%d", out.RunID, out.Seed)
	}
	if out.Width != 204 || out.Height != 152 || out.Depth != 3 {
		t.Errorf("size = %gx%g depth %d", out.Width, out.Height, out.Depth)
	}
	if len(out.Nodes) != 7 {
		t.Fatalf("nodes = %d, want 7", len(out.Nodes))
	}
	if root := out.Nodes[0]; root.Label != 7 || root.Left == nil || *root.Left != 6 {
		t.Errorf("root node = %+v", root)
	}
	if len(out.Ops) != 20 {
		t.Errorf("ops = %d, want 20", len(out.Ops))
	}
}

func TestRenderJSONNilRecorder(t *testing.T) {
	if _, err := RenderJSON(nil); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("RenderJSON(nil) error = %v, want INVALID_PARAMETER", err)
	}
}

func TestStampJSONRunID(t *testing.T) {
	root := fullTree(t, 2)
	rec := NewRecorder()
	drawTree(t, root, rec)
	l, err := layout.Compute(root, layout.DefaultGeometry())
	if err != nil {
		t.Fatal(err)
	}

	original, err := RenderJSON(rec, WithJSONRunID("old"), WithJSONSeed(7), WithJSONLayout(l))
	if err != nil {
		t.Fatal(err)
	}
	want, err := RenderJSON(rec, WithJSONRunID("new"), WithJSONSeed(7), WithJSONLayout(l))
	if err != nil {
		t.Fatal(err)
	}

	got, err := StampJSONRunID(original, "new")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("stamped document differs from a fresh render:\ngot  %s\nwant %s", got, want)
	}

	if _, err := StampJSONRunID([]byte("{"), "x"); errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("malformed input: err = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}
