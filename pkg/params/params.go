// Package params turns loosely typed text into generation parameters.
//
// Input comes from query strings, flags and config files. Values that are
// missing, non-numeric or out of range are replaced by their defaults; they
// never produce an error. Numbers are read the way a browser's parseInt and
// parseFloat read them: leading whitespace is skipped and parsing stops at
// the first character that cannot continue the number, so "4px" is 4 and
// "2.9" is depth 2.
package params

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Defaults substituted for invalid input.
const (
	DefaultDepth     = 3
	DefaultLeftProb  = 1.0
	DefaultRightProb = 1.0
)

// Field names reported in [Resolution.Substituted].
const (
	FieldDepth     = "depth"
	FieldLeftProb  = "left_prob"
	FieldRightProb = "right_prob"
)

// Params are validated generation parameters.
type Params struct {
	Depth     int     `json:"depth" toml:"depth"`
	LeftProb  float64 `json:"left_prob" toml:"left_prob"`
	RightProb float64 `json:"right_prob" toml:"right_prob"`
}

// Default returns the parameters used when no input is valid.
func Default() Params {
	return Params{Depth: DefaultDepth, LeftProb: DefaultLeftProb, RightProb: DefaultRightProb}
}

// Resolution is the outcome of resolving raw input.
type Resolution struct {
	Params
	// Substituted lists the fields whose input was replaced by a default.
	Substituted []string
}

// Resolver resolves raw text against a set of fallback values.
// The zero value is not usable; use [NewResolver] or [Resolve].
type Resolver struct {
	defaults Params
}

// NewResolver returns a resolver that falls back to defaults. Fallbacks that
// are themselves invalid are replaced by the package defaults.
func NewResolver(defaults Params) Resolver {
	d := Default()
	if defaults.Depth >= 0 {
		d.Depth = defaults.Depth
	}
	if inUnit(defaults.LeftProb) {
		d.LeftProb = defaults.LeftProb
	}
	if inUnit(defaults.RightProb) {
		d.RightProb = defaults.RightProb
	}
	return Resolver{defaults: d}
}

// Defaults returns the fallback values.
func (r Resolver) Defaults() Params { return r.defaults }

// Resolve resolves three raw values using the package defaults.
func Resolve(depth, left, right string) Resolution {
	return NewResolver(Default()).Resolve(depth, left, right)
}

// ParseQuery resolves a comma separated "depth,left,right" string, the form
// used in page URLs such as "?4,0.5,0.9". A leading '?' is ignored and
// missing trailing fields take their defaults.
func ParseQuery(raw string) Resolution {
	return NewResolver(Default()).ParseQuery(raw)
}

// Resolve resolves depth, left and right independently.
func (r Resolver) Resolve(depth, left, right string) Resolution {
	var res Resolution

	if d, ok := leadingInt(depth); ok && d >= 0 {
		res.Depth = d
	} else {
		res.Depth = r.defaults.Depth
		res.Substituted = append(res.Substituted, FieldDepth)
	}

	if p, ok := leadingFloat(left); ok && inUnit(p) {
		res.LeftProb = p
	} else {
		res.LeftProb = r.defaults.LeftProb
		res.Substituted = append(res.Substituted, FieldLeftProb)
	}

	if p, ok := leadingFloat(right); ok && inUnit(p) {
		res.RightProb = p
	} else {
		res.RightProb = r.defaults.RightProb
		res.Substituted = append(res.Substituted, FieldRightProb)
	}

	return res
}

// ParseQuery resolves a comma separated "depth,left,right" string.
func (r Resolver) ParseQuery(raw string) Resolution {
	fields := strings.Split(strings.TrimPrefix(raw, "?"), ",")
	for len(fields) < 3 {
		fields = append(fields, "")
	}
	return r.Resolve(fields[0], fields[1], fields[2])
}

func inUnit(p float64) bool {
	return p >= 0 && p <= 1
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// leadingInt parses the longest integer prefix of s after leading space.
func leadingInt(s string) (int, bool) {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		// Out of int range: the caller substitutes the default depth. A large
		// depth that still fits an int is kept and refused later by
		// tree.MaxLevels with RESOURCE_EXHAUSTED.
		return 0, false
	}
	return n, true
}

// leadingFloat parses the longest decimal prefix of s after leading space.
func leadingFloat(s string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
