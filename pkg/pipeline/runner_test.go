package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/arborist/pkg/cache"
	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/observability"
	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/tree"
)

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.sets++
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func seedPtr(s uint64) *uint64 { return &s }

func TestExecuteFullTree(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{
		Params:  params.Params{Depth: 3, LeftProb: 1, RightProb: 1},
		Seed:    seedPtr(7),
		Formats: []string{FormatSVG, FormatJSON, FormatDOT, FormatText},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID", res.RunID)
	}
	if res.Stats.NodeCount != 7 || res.Depth != 3 {
		t.Errorf("nodes = %d depth = %d, want 7 and 3", res.Stats.NodeCount, res.Depth)
	}
	if res.Width != 204 || res.Height != 152 {
		t.Errorf("size = %gx%g, want 204x152", res.Width, res.Height)
	}
	if got := tree.Labels(res.Root); got[0] != 7 {
		t.Errorf("root label = %d, want 7", got[0])
	}

	if n := bytes.Count(res.Artifacts[FormatSVG], []byte("<circle")); n != 7 {
		t.Errorf("svg circles = %d, want 7", n)
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "n7 -> n6;") {
		t.Error("dot missing root edge")
	}
	if !strings.Contains(string(res.Artifacts[FormatText]), "7") {
		t.Error("text rendering missing root label")
	}

	var doc struct {
		RunID string `json:"run_id"`
		Seed  uint64 `json:"seed"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatal(err)
	}
	if doc.RunID != res.RunID || doc.Seed != 7 {
		t.Errorf("json run_id/seed = %q/%d", doc.RunID, doc.Seed)
	}
}

func TestExecutePNG(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Params:  params.Params{Depth: 2, LeftProb: 1, RightProb: 1},
		Seed:    seedPtr(1),
		Formats: []string{FormatPNG},
		Scale:   2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(res.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact lacks PNG signature")
	}
}

func TestExecuteSeededIsReproducible(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := Options{
		Params:  params.Params{Depth: 6, LeftProb: 0.6, RightProb: 0.6},
		Seed:    seedPtr(99),
		Formats: []string{FormatDOT},
	}
	a, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Artifacts[FormatDOT], b.Artifacts[FormatDOT]) {
		t.Error("same seed produced different trees")
	}
	if a.RunID == b.RunID {
		t.Error("run IDs should differ between runs")
	}
}

func TestExecuteCachesSeededRuns(t *testing.T) {
	mc := newMemCache()
	runner := NewRunner(mc, nil, nil)
	opts := Options{
		Params:  params.Default(),
		Seed:    seedPtr(3),
		Formats: []string{FormatSVG, FormatJSON},
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first run should miss")
	}
	if mc.sets != 2 {
		t.Errorf("cache sets = %d, want 2", mc.sets)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second run should hit")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass cache reads")
	}
}

func TestExecuteCachedJSONCarriesRunID(t *testing.T) {
	mc := newMemCache()
	runner := NewRunner(mc, nil, nil)
	opts := Options{
		Params:  params.Params{Depth: 3, LeftProb: 1, RightProb: 1},
		Seed:    seedPtr(9),
		Formats: []string{FormatJSON},
	}

	runID := func(res *Result) string {
		t.Helper()
		var doc struct {
			RunID string `json:"run_id"`
			Seed  uint64 `json:"seed"`
			Nodes []any  `json:"nodes"`
		}
		if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
			t.Fatalf("unmarshal json artifact: %v", err)
		}
		if doc.Seed != 9 || len(doc.Nodes) != 7 {
			t.Errorf("json artifact seed=%d nodes=%d, want 9 and 7", doc.Seed, len(doc.Nodes))
		}
		return doc.RunID
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := runID(first); got != first.RunID {
		t.Errorf("first run_id = %q, want %q", got, first.RunID)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit")
	}
	if second.RunID == first.RunID {
		t.Fatal("each run should get its own id")
	}
	if got := runID(second); got != second.RunID {
		t.Errorf("cached run_id = %q, want %q", got, second.RunID)
	}
}

func TestExecuteUnreadableCachedJSON(t *testing.T) {
	mc := newMemCache()
	runner := NewRunner(mc, nil, nil)
	opts := Options{
		Params:  params.Params{Depth: 2, LeftProb: 1, RightProb: 1},
		Seed:    seedPtr(4),
		Formats: []string{FormatJSON},
	}
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	for k := range mc.data {
		mc.data[k] = []byte("{truncated")
	}

	res, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("an unreadable cached document should be re-rendered")
	}
	if !json.Valid(res.Artifacts[FormatJSON]) {
		t.Error("re-rendered artifact is not valid JSON")
	}
}

func TestExecuteUnseededIsNotCached(t *testing.T) {
	mc := newMemCache()
	res, err := NewRunner(mc, nil, nil).Execute(context.Background(), Options{Params: params.Default()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Seed == nil {
		t.Error("unseeded run should report the seed it drew")
	}
	if mc.sets != 0 {
		t.Errorf("unseeded run wrote %d cache entries", mc.sets)
	}
}

func TestExecuteWithSource(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Params: params.Params{Depth: 4, LeftProb: 0.5, RightProb: 0.5},
		Source: constSource(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.NodeCount != 15 {
		t.Errorf("nodes = %d, want 15 with an always-succeeding source", res.Stats.NodeCount)
	}
	if res.Seed != nil {
		t.Error("runs with a custom source have no seed")
	}
}

func TestExecuteErrors(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		opts Options
		code errors.Code
	}{
		{"empty tree", context.Background(), Options{Params: params.Params{Depth: 0, LeftProb: 1, RightProb: 1}}, errors.ErrCodeEmptyTree},
		{"too deep", context.Background(), Options{Params: params.Params{Depth: 21, LeftProb: 1, RightProb: 1}}, errors.ErrCodeResourceExhausted},
		{"bad format", context.Background(), Options{Params: params.Default(), Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad viz", context.Background(), Options{Params: params.Default(), VizType: "radial"}, errors.ErrCodeInvalidVizType},
		{"text grid too large", context.Background(), Options{Params: params.Params{Depth: 14, LeftProb: 1, RightProb: 1}, Formats: []string{FormatText}}, errors.ErrCodeResourceExhausted},
		{"nodelink too large", context.Background(), Options{Params: params.Params{Depth: 13, LeftProb: 1, RightProb: 1}, VizType: VizTypeNodelink, Formats: []string{FormatDOT}}, errors.ErrCodeResourceExhausted},
		{"cancelled", cancelled, Options{Params: params.Default()}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, nil, nil).Execute(tt.ctx, tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestExecuteNodelinkDOT(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Params:  params.Params{Depth: 2, LeftProb: 0, RightProb: 1},
		Seed:    seedPtr(1),
		VizType: VizTypeNodelink,
		Formats: []string{FormatDOT},
	})
	if err != nil {
		t.Fatal(err)
	}
	dot := string(res.Artifacts[FormatDOT])
	if !strings.Contains(dot, "n3 -> n1;") || !strings.Contains(dot, "n3_l") {
		t.Errorf("unexpected DOT:\n%s", dot)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnGenerateStart(context.Context, int)       { h.add("generate") }
func (h *recordingHooks) OnLayoutStart(context.Context, string, int) { h.add("layout") }
func (h *recordingHooks) OnRenderStart(context.Context, []string)    { h.add("render") }

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Params: params.Default()}); err != nil {
		t.Fatal(err)
	}
	want := []string{"generate", "layout", "render"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

var _ cache.Cache = (*memCache)(nil)
