// Package pipeline provides the generate → layout → render pipeline shared
// by the CLI, the HTTP server and the explorer.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Generate: Build a random binary tree from resolved parameters
//  2. Layout: Size the surface and place nodes (layered) or emit DOT (nodelink)
//  3. Render: Draw onto one fresh surface per requested format
//
// Seeded runs are reproducible, so their artifacts are cached. Unseeded runs
// always render fresh.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	seed := uint64(7)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Params:  params.Resolve("4", "0.8", "0.8").Params,
//	    Seed:    &seed,
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/render"
	"github.com/matzehuels/arborist/pkg/render/layout"
	"github.com/matzehuels/arborist/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// Visualization types.
const (
	VizTypeLayered  = "layered"
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeLayered

// DefaultScale is the default raster resolution factor.
const DefaultScale = 1.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatText = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatText: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeLayered:  true,
	VizTypeNodelink: true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	FormatText: "text/plain; charset=utf-8",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Generate options
	Params params.Params `json:"params"`
	// Seed makes the run reproducible and cacheable. Nil draws a fresh seed.
	Seed            *uint64 `json:"seed,omitempty"`
	ConsumeOnAttach bool    `json:"consume_on_attach,omitempty"`

	// Layout options
	VizType  string          `json:"viz_type,omitempty"`
	Geometry layout.Geometry `json:"geometry"`

	// Render options
	Formats []string     `json:"formats,omitempty"`
	Style   render.Style `json:"style"`
	Scale   float64      `json:"scale,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// Source overrides the random source. Runs with a Source are never cached.
	Source tree.Source `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and exported JSON.
	RunID string

	// Root is the generated tree.
	Root *tree.Node

	// Params and Seed are the inputs that produced Root.
	Params params.Params
	Seed   *uint64

	// Width, Height and Depth describe the layered surface.
	Width, Height float64
	Depth         int

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit is true when every artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	GenerateTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(sortedKeys(ValidFormats), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: layered, nodelink)", vizType)
	}
	return nil
}

// ValidateParams checks resolved generation parameters. Text input never
// reaches this point unresolved, so a failure here is programmatic misuse.
func ValidateParams(p params.Params) error {
	if err := errors.ValidateLevels(p.Depth, tree.MaxLevels); err != nil {
		return err
	}
	if err := errors.ValidateProbability(params.FieldLeftProb, p.LeftProb); err != nil {
		return err
	}
	return errors.ValidateProbability(params.FieldRightProb, p.RightProb)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	if err := ValidateParams(o.Params); err != nil {
		return err
	}
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidatePositive("scale", o.Scale); err != nil {
		return err
	}
	if err := o.Geometry.Validate(); err != nil {
		return err
	}
	if err := o.Style.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Geometry == (layout.Geometry{}) {
		o.Geometry = layout.DefaultGeometry()
	}
	if o.Style == (render.Style{}) {
		o.Style = render.DefaultStyle()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// Cacheable reports whether the run's output is reproducible.
func (o *Options) Cacheable() bool {
	return o.Seed != nil && o.Source == nil
}

// newRunID returns a fresh run identifier.
func newRunID() string {
	return uuid.NewString()
}
