package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/render"
	"github.com/matzehuels/arborist/pkg/render/layout"
	"github.com/matzehuels/arborist/pkg/render/nodelink"
	"github.com/matzehuels/arborist/pkg/render/sink"
	"github.com/matzehuels/arborist/pkg/tree"
)

// job carries one generated and laid-out tree through the render stage.
type job struct {
	runID  string
	seed   *uint64
	root   *tree.Node
	layout layout.Layout
	dot    string
	opts   Options
}

// renderAll renders every requested format on its own surface.
func renderAll(ctx context.Context, j *job) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(j.opts.Formats))
	for _, format := range j.opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := renderFormat(j, format)
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return nil, errors.Wrap(code, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(j *job, format string) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(j.dotSource()), nil
	case FormatJSON:
		return renderJSON(j)
	case FormatText:
		return renderText(j)
	}

	if j.opts.IsNodelink() {
		switch format {
		case FormatSVG:
			return nodelink.RenderSVG(j.dotSource())
		case FormatPNG:
			return nodelink.RenderPNG(j.dotSource(), j.opts.Scale)
		case FormatPDF:
			return nodelink.RenderPDF(j.dotSource())
		}
	} else {
		switch format {
		case FormatSVG:
			return renderSVG(j)
		case FormatPNG:
			return renderPNG(j)
		case FormatPDF:
			svg, err := renderSVG(j)
			if err != nil {
				return nil, err
			}
			return render.ToPDF(svg)
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
}

func (j *job) dotSource() string {
	if j.dot == "" {
		j.dot = nodelink.ToDOT(j.root, nodelink.Options{Style: j.opts.Style, Placeholders: true})
	}
	return j.dot
}

func (j *job) renderOptions() []render.Option {
	return []render.Option{
		render.WithGeometry(j.opts.Geometry),
		render.WithStyle(j.opts.Style),
	}
}

func renderSVG(j *job) ([]byte, error) {
	s := sink.NewSVG(
		sink.WithTitle(fmt.Sprintf("Random binary tree, depth %d", j.layout.Depth)),
		sink.WithDescription(fmt.Sprintf("depth=%d left=%g right=%g",
			j.opts.Params.Depth, j.opts.Params.LeftProb, j.opts.Params.RightProb)),
	)
	if _, err := render.Render(j.root, s, j.renderOptions()...); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

func renderPNG(j *job) ([]byte, error) {
	r := sink.NewRaster(sink.WithScale(j.opts.Scale))
	if _, err := render.Render(j.root, r, j.renderOptions()...); err != nil {
		return nil, err
	}
	return r.PNG()
}

func renderText(j *job) ([]byte, error) {
	t := sink.NewText()
	if _, err := render.Render(j.root, t, j.renderOptions()...); err != nil {
		return nil, err
	}
	return []byte(t.String() + "\n"), nil
}

func renderJSON(j *job) ([]byte, error) {
	rec := sink.NewRecorder()
	if _, err := render.Render(j.root, rec, j.renderOptions()...); err != nil {
		return nil, err
	}
	opts := []sink.JSONOption{
		sink.WithJSONRunID(j.runID),
		sink.WithJSONParams(j.opts.Params),
		sink.WithJSONLayout(j.layout),
	}
	if j.seed != nil {
		opts = append(opts, sink.WithJSONSeed(*j.seed))
	}
	return sink.RenderJSON(rec, opts...)
}
