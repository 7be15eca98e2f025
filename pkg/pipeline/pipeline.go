// Package pipeline provides the solve pipeline for gridpath.
//
// This package implements the complete parse → solve → render pipeline used
// by both the CLI and the HTTP server. Centralizing it keeps the two entry
// points byte-for-byte consistent.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read the map text into a grid (validates start and end markers)
//  2. Solve: Build the weighted cell graph and run Dijkstra from start to end
//  3. Render: Produce outputs in the requested formats (text, json, graph, dot, svg)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// The simplest entry point is a pure text transformation:
//
//	out, err := pipeline.AddPath("S..\n.B.\n..X")
//	// out == "*..\n*B.\n.**"
//
// Create a Runner for caching, logging and multiple formats:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, text, pipeline.Options{
//	    Formats: []string{"text", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridpath/pkg/cache"
	gerrors "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/render"
)

// Format constants for output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatGraph = "graph"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
)

// DefaultFormat is the format rendered when none is requested.
const DefaultFormat = FormatText

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText:  true,
	FormatJSON:  true,
	FormatGraph: true,
	FormatDOT:   true,
	FormatSVG:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the solve pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Formats lists the outputs to render. Empty means DefaultFormat.
	Formats []string `json:"formats,omitempty"`

	// Costs labels edges with their step cost in dot and svg output.
	Costs bool `json:"costs,omitempty"`

	// Refresh skips cache reads. Fresh results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Costs:  o.Costs,
	}
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return gerrors.New(gerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: text, json, graph, dot, svg)", format)
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

// ParseFormats splits a comma-separated format list, trimming blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grid is the parsed map.
	Grid *grid.Grid

	// Graph is the weighted cell graph.
	Graph *graph.Graph

	// MapHash is the content hash of the map text, used for cache keys.
	MapHash string

	// Summary describes the solved route.
	Summary Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Summary is the machine-readable result of a solve, and the body of the
// json format.
type Summary struct {
	// Output is the annotated map.
	Output string `json:"output"`

	// Cost is the total step cost of the route, 0 when the end is unreachable.
	Cost int `json:"cost"`

	// Reachable reports whether a route to the end exists.
	Reachable bool `json:"reachable"`

	// Path lists the route from start (exclusive) to end (inclusive).
	Path []grid.Position `json:"path"`

	// Cells and Edges size the traversal graph.
	Cells int `json:"cells"`
	Edges int `json:"edges"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cells       int
	Walls       int
	Edges       int
	Finalized   int // cells finalized by the solver, 0 on a cache hit
	Relaxations int
	ParseTime   time.Duration
	SolveTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit  bool // Whether the route came from cache
	RenderHit bool // Whether all cacheable artifacts came from cache
}

// =============================================================================
// Pure entry point
// =============================================================================

// AddPath returns text with the start cell and the shortest route to the end
// overwritten by '*'. When the end cannot be reached only the start is marked.
//
// It fails with a MISSING_START, AMBIGUOUS_START, MISSING_END or
// AMBIGUOUS_END error when the map does not hold exactly one of each marker.
func AddPath(text string) (string, error) {
	g, err := Parse(text)
	if err != nil {
		return "", err
	}
	sol, err := Solve(g)
	if err != nil {
		return "", err
	}
	return render.Mark(text, g.Start().Pos, render.Route(g, sol.Path)), nil
}

// wrapStage prefixes a stage name while keeping coded errors matchable.
func wrapStage(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}
