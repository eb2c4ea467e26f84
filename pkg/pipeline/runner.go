package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arborist/pkg/cache"
	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/observability"
	"github.com/matzehuels/arborist/pkg/render"
	"github.com/matzehuels/arborist/pkg/render/layout"
	"github.com/matzehuels/arborist/pkg/render/nodelink"
	"github.com/matzehuels/arborist/pkg/render/sink"
	"github.com/matzehuels/arborist/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLArtifact,
	}
}

// Execute runs the complete generate → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     newRunID(),
		Params:    opts.Params,
		Seed:      opts.Seed,
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	if result.Seed == nil && opts.Source == nil {
		seed := tree.NewRandomSource().Uint64()
		result.Seed = &seed
	}

	// Stage 1: Generate
	genStart := time.Now()
	root, err := r.Generate(ctx, opts, result.Seed)
	if err != nil {
		return nil, err
	}
	result.Root = root
	result.Stats.NodeCount = tree.Count(root)
	result.Stats.GenerateTime = time.Since(genStart)

	logger.Debug("generated tree",
		"depth", opts.Params.Depth,
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.GenerateTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	j, err := r.layoutTree(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	j.runID = result.RunID
	j.seed = result.Seed
	result.Width, result.Height, result.Depth = j.layout.Width, j.layout.Height, j.layout.Depth
	result.Stats.LayoutTime = time.Since(layoutStart)

	logger.Debug("computed layout",
		"viz", opts.VizType,
		"width", result.Width,
		"height", result.Height,
		"duration", result.Stats.LayoutTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.renderWithCacheInfo(ctx, j, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered tree",
		"formats", opts.Formats,
		"nodes", result.Stats.NodeCount,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Generate builds the tree for opts. seed is used when opts has no Source.
// A depth of 0 yields an EMPTY_TREE error since there is nothing to draw.
func (r *Runner) Generate(ctx context.Context, opts Options, seed *uint64) (*tree.Node, error) {
	src := opts.Source
	if src == nil {
		if seed == nil {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "either a seed or a source is required")
		}
		src = tree.NewSource(*seed)
	}
	var genOpts []tree.Option
	if opts.ConsumeOnAttach {
		genOpts = append(genOpts, tree.WithConsumeOnAttach())
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.Params.Depth)
	start := time.Now()
	root, err := tree.Generate(opts.Params.Depth, opts.Params.LeftProb, opts.Params.RightProb, src, genOpts...)
	if err == nil && root == nil {
		err = errors.New(errors.ErrCodeEmptyTree, "depth %d produces an empty tree", opts.Params.Depth)
	}
	hooks.OnGenerateComplete(ctx, tree.Count(root), time.Since(start), err)
	return root, err
}

// layoutTree places root for the layered view and, for nodelink runs, builds
// the DOT source as well.
func (r *Runner) layoutTree(ctx context.Context, root *tree.Node, opts Options) (*job, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.VizType, tree.Count(root))
	start := time.Now()

	var err error
	if opts.IsNodelink() {
		err = nodelink.CheckSize(root)
	}
	var j *job
	if err == nil {
		var l layout.Layout
		l, err = layout.Compute(root, opts.Geometry)
		j = &job{root: root, layout: l, opts: opts}
	}
	if err == nil && opts.IsNodelink() {
		j.dot = nodelink.ToDOT(root, nodelink.Options{Style: opts.Style, Placeholders: true})
	}

	hooks.OnLayoutComplete(ctx, opts.VizType, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// renderWithCacheInfo renders every requested format, serving seeded runs
// from the cache when all formats are present.
func (r *Runner) renderWithCacheInfo(ctx context.Context, j *job, opts Options) (map[string][]byte, bool, error) {
	var treeKey string
	if opts.Cacheable() {
		treeKey = r.Keyer.TreeKey(cache.TreeKeyOpts{
			Params:          opts.Params,
			Seed:            *opts.Seed,
			ConsumeOnAttach: opts.ConsumeOnAttach,
		})
		if !opts.Refresh {
			if artifacts, ok := r.cached(ctx, treeKey, opts); ok {
				err := stampRunID(artifacts, j.runID)
				if err == nil {
					return artifacts, true, nil
				}
				opts.Logger.Warn("cached json unreadable, rendering", "err", err)
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := renderAll(ctx, j)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if treeKey != "" {
		r.store(ctx, treeKey, opts, artifacts)
	}
	return artifacts, false, nil
}

// stampRunID points a cached JSON artifact at the current run.
func stampRunID(artifacts map[string][]byte, runID string) error {
	data, ok := artifacts[FormatJSON]
	if !ok {
		return nil
	}
	stamped, err := sink.StampJSONRunID(data, runID)
	if err != nil {
		return err
	}
	artifacts[FormatJSON] = stamped
	return nil
}

// cached returns all requested artifacts, or false if any is missing.
func (r *Runner) cached(ctx context.Context, treeKey string, opts Options) (map[string][]byte, bool) {
	hooks := observability.Cache()
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(treeKey, artifactKeyOpts(opts, format)))
		if err != nil {
			opts.Logger.Warn("cache read failed", "format", format, "err", err)
		}
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, format)
			return nil, false
		}
		hooks.OnCacheHit(ctx, format)
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) store(ctx context.Context, treeKey string, opts Options, artifacts map[string][]byte) {
	hooks := observability.Cache()
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(treeKey, artifactKeyOpts(opts, format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, format, len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// artifactKeyOpts returns cache key options for one artifact.
func artifactKeyOpts(opts Options, format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		VizType: opts.VizType,
		Format:  format,
		Appearance: struct {
			Geometry layout.Geometry
			Style    render.Style
		}{opts.Geometry, opts.Style},
	}
	if format == FormatPNG {
		k.Scale = opts.Scale
	}
	return k
}
