package pipeline

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridpath/pkg/cache"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeSolve    = "solve"
	keyTypeArtifact = "artifact"
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
	}
}

// Execute runs the complete parse → solve → render pipeline with caching.
//
// Parsing always runs, so a map with missing or repeated markers fails the
// same way whether or not its route is cached.
func (r *Runner) Execute(ctx context.Context, text string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, wrapStage("invalid options", err)
	}
	hooks := observability.Pipeline()

	result := &Result{
		MapHash: cache.Hash([]byte(text)),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	hooks.OnParseStart(ctx, len(text))
	g, err := Parse(text)
	result.Stats.ParseTime = time.Since(parseStart)
	if err != nil {
		hooks.OnParseComplete(ctx, 0, 0, result.Stats.ParseTime, err)
		return nil, wrapStage("parse", err)
	}
	hooks.OnParseComplete(ctx, g.Len(), g.WallCount(), result.Stats.ParseTime, nil)
	result.Grid = g
	result.Stats.Cells = g.Len()
	result.Stats.Walls = g.WallCount()

	opts.Logger.Debug("parsed map",
		"rows", g.Height(),
		"cells", g.Len(),
		"walls", g.WallCount(),
		"duration", result.Stats.ParseTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Solve
	solveStart := time.Now()
	hooks.OnSolveStart(ctx, g.Len())
	sol, solveHit, err := r.SolveWithCacheInfo(ctx, g, result.MapHash, opts)
	result.Stats.SolveTime = time.Since(solveStart)
	if err != nil {
		hooks.OnSolveComplete(ctx, 0, false, result.Stats.SolveTime, err)
		return nil, wrapStage("solve", err)
	}
	hooks.OnSolveComplete(ctx, sol.Cost, sol.Reachable, result.Stats.SolveTime, nil)
	result.Graph = sol.Graph
	result.Stats.Edges = sol.Graph.EdgeCount()
	result.Stats.Finalized = sol.Stats.Finalized
	result.Stats.Relaxations = sol.Stats.Relaxations
	result.CacheInfo.SolveHit = solveHit

	opts.Logger.Debug("solved route",
		"edges", sol.Graph.EdgeCount(),
		"reachable", sol.Reachable,
		"cost", sol.Cost,
		"cached", solveHit,
		"duration", result.Stats.SolveTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, text, g, sol, result.MapHash, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, wrapStage("render", err)
	}
	result.Artifacts = artifacts
	result.Summary = NewSummary(text, g, sol)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo finds the route through g, consulting the cache first,
// and reports whether the route came from cache.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, g *grid.Grid, mapHash string, opts Options) (*Solution, bool, error) {
	r.applyLogger(&opts)
	cacheKey := r.Keyer.SolveKey(mapHash)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached cachedRoute
			if err := json.Unmarshal(data, &cached); err == nil {
				if sol, ok := cached.restore(graph.Build(g)); ok {
					observability.Cache().OnCacheHit(ctx, keyTypeSolve)
					return sol, true, nil
				}
			}
			opts.Logger.Debug("discarding invalid cache entry", "key", cacheKey)
		} else if err != nil {
			opts.Logger.Debug("cache read failed", "key", cacheKey, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeSolve)
	}

	sol, err := Solve(g)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(cachedRoute{Path: sol.Path, Cost: sol.Cost, Reachable: sol.Reachable})
	if err == nil {
		r.store(ctx, opts, cacheKey, keyTypeSolve, data, cache.TTLSolve)
	}
	return sol, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every cacheable artifact came from cache. Only formats that are expensive
// to render (svg) are cached; the rest are rendered every time.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, text string, g *grid.Grid, sol *Solution, mapHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var pending []string
	cacheable, hits := 0, 0

	for _, format := range opts.Formats {
		if _, seen := artifacts[format]; seen || slices.Contains(pending, format) {
			continue
		}
		if !isCacheable(format) {
			pending = append(pending, format)
			continue
		}
		cacheable++
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(mapHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
				artifacts[format] = data
				hits++
				continue
			}
			observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		}
		pending = append(pending, format)
	}

	if len(pending) > 0 {
		renderOpts := opts
		renderOpts.Formats = pending
		rendered, err := Render(ctx, text, g, sol, renderOpts)
		if err != nil {
			return nil, false, err
		}
		for format, data := range rendered {
			artifacts[format] = data
			if isCacheable(format) {
				key := r.Keyer.ArtifactKey(mapHash, opts.ArtifactKeyOpts(format))
				r.store(ctx, opts, key, keyTypeArtifact, data, cache.TTLArtifact)
			}
		}
	}

	return artifacts, cacheable > 0 && hits == cacheable, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a cache entry. Failures only cost a future recomputation, so
// they are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, opts Options, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		opts.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func isCacheable(format string) bool {
	return format == FormatSVG
}
