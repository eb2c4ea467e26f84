package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arborist/pkg/config"
	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	depth, left, right string  // raw tree parameters, resolved leniently
	query              string  // "depth,left,right" comma form
	seed               string  // optional seed for reproducible output
	formats            []string
	vizType            string
	output             string  // output file, base path for several formats, or "-"
	scale              float64 // raster resolution factor
	noCache            bool
	refresh            bool
	consumeOnAttach    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate a random binary tree and draw it",
		Long: `Generate a random binary tree and draw it.

Tree parameters are read leniently: values that are missing, non-numeric or
out of range fall back to the configured defaults with a warning, and leading
numbers are honoured ("4px" is depth 4, "2.9" is depth 2).`,
		Example: `  arborist render -d 5 --left 0.8 --right 0.8
  arborist render -q 4,0.5,0.5 --seed 7 -f svg,png -o forest
  arborist render -d 3 -f txt -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) != 1 {
				return errors.New(errors.ErrCodeInvalidParameter, "writing to stdout requires exactly one format")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runRender(commandContext(cmd), cmd, cfg, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.depth, "depth", "d", "", "number of levels (default from config, 3)")
	cmd.Flags().StringVar(&opts.left, "left", "", "probability that a node gets a left child (default 1)")
	cmd.Flags().StringVar(&opts.right, "right", "", "probability that a node gets a right child (default 1)")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", `"depth,left,right" in one value; overrides the three flags`)
	cmd.Flags().StringVar(&opts.seed, "seed", "", "random seed; seeded runs are reproducible and cached")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, txt (comma-separated)")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: layered, nodelink")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file or base path; "-" for stdout`)
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "resolution factor for png output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts and render again")
	cmd.Flags().BoolVar(&opts.consumeOnAttach, "consume-on-attach", false, "only take a pool candidate when the branch check succeeds")

	return cmd
}

// resolveParams resolves the tree flags and reports substitutions for the
// values the user actually supplied.
func resolveParams(cmd *cobra.Command, resolver params.Resolver, opts *renderOpts) (params.Resolution, []string) {
	if opts.query != "" {
		res := resolver.ParseQuery(opts.query)
		return res, res.Substituted
	}

	res := resolver.Resolve(opts.depth, opts.left, opts.right)
	flagFor := map[string]string{
		params.FieldDepth:     "depth",
		params.FieldLeftProb:  "left",
		params.FieldRightProb: "right",
	}
	var given []string
	for _, field := range res.Substituted {
		if cmd.Flags().Changed(flagFor[field]) {
			given = append(given, field)
		}
	}
	return res, given
}

// parseSeed returns nil for an empty seed.
func parseSeed(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "seed must be an unsigned integer, got %q", s)
	}
	return &v, nil
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, cfg config.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	res, substituted := resolveParams(cmd, cfg.Resolver(), opts)
	for _, field := range substituted {
		printWarning("invalid %s, using default", field)
	}
	seed, err := parseSeed(opts.seed)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger.Debug("rendering",
		"depth", res.Depth,
		"left", res.LeftProb,
		"right", res.RightProb,
		"formats", opts.formats)

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Drawing tree...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Params:          res.Params,
		Seed:            seed,
		ConsumeOnAttach: opts.consumeOnAttach,
		VizType:         opts.vizType,
		Geometry:        cfg.Geometry,
		Formats:         opts.formats,
		Style:           cfg.Style,
		Scale:           opts.scale,
		Refresh:         opts.refresh,
		Logger:          logger,
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("drew tree",
		"nodes", result.Stats.NodeCount,
		"seed", *result.Seed,
		"cached", result.CacheHit)

	if opts.output == "-" {
		return writeArtifact("-", result.Artifacts[opts.formats[0]])
	}

	base := basePath(opts.output)
	for _, format := range opts.formats {
		path := outputPath(opts.output, base, format, len(opts.formats))
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Depth, result.CacheHit)
	if seed == nil {
		printNextStep("Reproduce", fmt.Sprintf("arborist render -q %d,%g,%g --seed %d",
			res.Depth, res.LeftProb, res.RightProb, *result.Seed))
	}
	return nil
}

// basePath derives the base output path. A known format extension on output
// is stripped so that "tree.svg" with -f svg,png yields tree.svg and tree.png.
func basePath(output string) string {
	if output == "" {
		return defaultOutputBase
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file for one format. A single format written to an
// explicit path uses that path verbatim.
func outputPath(output, base, format string, count int) string {
	if output != "" && count == 1 && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + format
}

func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
