package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/params"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg, png,,txt", []string{"svg", "png", "txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSeed(t *testing.T) {
	seed, err := parseSeed("")
	if err != nil || seed != nil {
		t.Errorf("parseSeed(\"\") = %v, %v; want nil, nil", seed, err)
	}

	seed, err = parseSeed("42")
	if err != nil || seed == nil || *seed != 42 {
		t.Errorf("parseSeed(\"42\") = %v, %v", seed, err)
	}

	_, err = parseSeed("-1")
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("parseSeed(\"-1\") error = %v, want INVALID_PARAMETER", err)
	}
}

func TestBasePathAndOutputPath(t *testing.T) {
	tests := []struct {
		output string
		format string
		count  int
		want   string
	}{
		{"", "svg", 1, "tree.svg"},
		{"", "png", 2, "tree.png"},
		{"forest", "svg", 1, "forest.svg"},
		{"forest.svg", "svg", 1, "forest.svg"},
		{"forest.svg", "png", 2, "forest.png"},
		{"drawing.out", "svg", 1, "drawing.out"},
		{"drawing.out", "svg", 2, "drawing.out.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.output+"/"+tt.format, func(t *testing.T) {
			got := outputPath(tt.output, basePath(tt.output), tt.format, tt.count)
			if got != tt.want {
				t.Errorf("outputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveParamsWarnsOnlyForGivenFlags(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	cmd := c.renderCommand()
	if err := cmd.ParseFlags([]string{"--depth", "abc"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	res, given := resolveParams(cmd, params.NewResolver(params.Default()), &renderOpts{depth: "abc"})
	if res.Params != params.Default() {
		t.Errorf("params = %+v, want defaults", res.Params)
	}
	if len(res.Substituted) != 3 {
		t.Errorf("substituted = %v, want all three fields", res.Substituted)
	}
	if !reflect.DeepEqual(given, []string{params.FieldDepth}) {
		t.Errorf("reported = %v, want [depth]", given)
	}
}

func TestResolveParamsQuery(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	cmd := c.renderCommand()

	res, given := resolveParams(cmd, params.NewResolver(params.Default()), &renderOpts{query: "4,0.5,x"})
	want := params.Params{Depth: 4, LeftProb: 0.5, RightProb: 1}
	if res.Params != want {
		t.Errorf("params = %+v, want %+v", res.Params, want)
	}
	if !reflect.DeepEqual(given, []string{params.FieldRightProb}) {
		t.Errorf("reported = %v, want [right_prob]", given)
	}
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestRenderCommandWritesFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "forest")
	err := runCLI(t, "render", "-d", "2", "--seed", "7", "-f", "svg,txt,json", "-o", base)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if got := strings.Count(string(svg), "<circle"); got != 3 {
		t.Errorf("svg has %d circles, want 3", got)
	}
	for _, ext := range []string{".txt", ".json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
}

func TestRenderCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad format", []string{"render", "-f", "gif", "--no-cache"}, errors.ErrCodeInvalidFormat},
		{"bad type", []string{"render", "-t", "radial", "--no-cache", "-o", "x"}, errors.ErrCodeInvalidVizType},
		{"stdout with two formats", []string{"render", "-f", "svg,png", "-o", "-"}, errors.ErrCodeInvalidParameter},
		{"bad seed", []string{"render", "--seed", "abc", "--no-cache"}, errors.ErrCodeInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}
