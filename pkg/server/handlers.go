package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/arborist/pkg/buildinfo"
	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/pipeline"
)

// Response headers describing a rendered tree.
const (
	HeaderRunID       = "X-Run-ID"
	HeaderSeed        = "X-Seed"
	HeaderCache       = "X-Cache"
	HeaderSubstituted = "X-Params-Substituted"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	treeArgs, values := splitQuery(r.URL.RawQuery)
	res := s.resolveParams(treeArgs, values)

	opts := pipeline.Options{
		Params:   res.Params,
		VizType:  values.Get("type"),
		Formats:  []string{format},
		Geometry: s.geometry,
		Style:    s.style,
	}
	if raw := values.Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidParameter, "seed must be an unsigned integer, got %q", raw))
			return
		}
		opts.Seed = &seed
	}
	if raw := values.Get("scale"); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 || scale > s.maxScale {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidParameter, "scale must be in (0, %g], got %q", s.maxScale, raw))
			return
		}
		opts.Scale = scale
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", pipeline.ContentTypes[format])
	h.Set(HeaderRunID, result.RunID)
	if result.Seed != nil {
		h.Set(HeaderSeed, strconv.FormatUint(*result.Seed, 10))
	}
	if result.CacheHit {
		h.Set(HeaderCache, "HIT")
	} else {
		h.Set(HeaderCache, "MISS")
	}
	if len(res.Substituted) > 0 {
		h.Set(HeaderSubstituted, strings.Join(res.Substituted, ","))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// resolveParams prefers the comma form and falls back to named parameters.
func (s *Server) resolveParams(treeArgs string, values url.Values) params.Resolution {
	if treeArgs != "" {
		return s.resolver.ParseQuery(treeArgs)
	}
	return s.resolver.Resolve(values.Get("depth"), values.Get("left"), values.Get("right"))
}

// splitQuery separates the bare "depth,left,right" component from named
// key=value pairs.
func splitQuery(raw string) (string, url.Values) {
	var treeArgs string
	var named []string
	for _, part := range strings.Split(raw, "&") {
		switch {
		case part == "":
		case strings.Contains(part, "="):
			named = append(named, part)
		case treeArgs == "":
			if v, err := url.QueryUnescape(part); err == nil {
				treeArgs = v
			} else {
				treeArgs = part
			}
		}
	}
	values, _ := url.ParseQuery(strings.Join(named, "&"))
	if values == nil {
		values = url.Values{}
	}
	return treeArgs, values
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidVizType:
		return http.StatusBadRequest
	case errors.ErrCodeEmptyTree:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeResourceExhausted:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
