package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arborist/pkg/cache"
	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/pipeline"
)

func newTestServer(t *testing.T, c cache.Cache) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := New(pipeline.NewRunner(c, nil, logger), WithLogger(logger))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Errorf("/healthz = %d %q", resp.StatusCode, body)
	}

	resp, body = get(t, ts, "/version")
	var info struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(body), &info); err != nil || info.Version == "" {
		t.Errorf("/version = %d %q (%v)", resp.StatusCode, body, err)
	}
}

func TestTreeSVG(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, ts, "/tree.svg?3,1,1&seed=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if n := strings.Count(body, "<circle"); n != 7 {
		t.Errorf("circles = %d, want 7", n)
	}
	if resp.Header.Get(HeaderSeed) != "1" {
		t.Errorf("%s = %q", HeaderSeed, resp.Header.Get(HeaderSeed))
	}
	if resp.Header.Get(HeaderRunID) == "" {
		t.Error("missing run id header")
	}
	if resp.Header.Get(HeaderSubstituted) != "" {
		t.Error("no parameters should have been substituted")
	}
}

func TestTreeNamedParams(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, ts, "/tree.svg?depth=2&left=1&right=1&seed=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if n := strings.Count(body, "<circle"); n != 3 {
		t.Errorf("circles = %d, want 3", n)
	}
}

func TestTreeSubstitution(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, ts, "/tree.txt?abc,2,0.5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get(HeaderSubstituted); got != "depth,left_prob" {
		t.Errorf("%s = %q, want depth,left_prob", HeaderSubstituted, got)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestTreeCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, c)

	first, body1 := get(t, ts, "/tree.svg?4,0.5,0.5&seed=9")
	second, body2 := get(t, ts, "/tree.svg?4,0.5,0.5&seed=9")
	if first.Header.Get(HeaderCache) != "MISS" || second.Header.Get(HeaderCache) != "HIT" {
		t.Errorf("cache headers = %q, %q", first.Header.Get(HeaderCache), second.Header.Get(HeaderCache))
	}
	if body1 != body2 {
		t.Error("cached body differs")
	}

	unseeded, _ := get(t, ts, "/tree.svg?4,0.5,0.5")
	if unseeded.Header.Get(HeaderCache) != "MISS" || unseeded.Header.Get(HeaderSeed) == "" {
		t.Error("unseeded requests should miss and report their seed")
	}
}

func TestTreeErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		path   string
		status int
		code   errors.Code
	}{
		{"/tree.gif?3", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"/tree.svg?3&type=radial", http.StatusBadRequest, errors.ErrCodeInvalidVizType},
		{"/tree.svg?3&seed=abc", http.StatusBadRequest, errors.ErrCodeInvalidParameter},
		{"/tree.png?3&scale=100", http.StatusBadRequest, errors.ErrCodeInvalidParameter},
		{"/tree.svg?0", http.StatusUnprocessableEntity, errors.ErrCodeEmptyTree},
		{"/tree.svg?25", http.StatusRequestEntityTooLarge, errors.ErrCodeResourceExhausted},
		{"/tree.txt?20,1,1&seed=1", http.StatusRequestEntityTooLarge, errors.ErrCodeResourceExhausted},
		{"/tree.svg?13,1,1&type=nodelink", http.StatusRequestEntityTooLarge, errors.ErrCodeResourceExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts, tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			var e errorBody
			if err := json.Unmarshal([]byte(body), &e); err != nil {
				t.Fatalf("body %q: %v", body, err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}

func TestSplitQuery(t *testing.T) {
	tests := []struct {
		raw      string
		treeArgs string
		seed     string
	}{
		{"", "", ""},
		{"3,0.5,0.5", "3,0.5,0.5", ""},
		{"3,0.5,0.5&seed=4", "3,0.5,0.5", "4"},
		{"seed=4&3,1", "3,1", "4"},
		{"3%2C1%2C1", "3,1,1", ""},
		{"depth=3", "", ""},
	}
	for _, tt := range tests {
		treeArgs, values := splitQuery(tt.raw)
		if treeArgs != tt.treeArgs || values.Get("seed") != tt.seed {
			t.Errorf("splitQuery(%q) = %q, seed %q", tt.raw, treeArgs, values.Get("seed"))
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidParameter, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeEmptyTree, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeResourceExhausted, "x"), http.StatusRequestEntityTooLarge},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
