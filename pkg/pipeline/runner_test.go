package pipeline

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/gridpath/pkg/cache"
	gerrors "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/observability"
)

const scenario = "S..\n.B.\n..X"

// memCache is an in-memory Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, ok := r.Cache.(*cache.NullCache); !ok {
		t.Errorf("Cache = %T, want *cache.NullCache", r.Cache)
	}
	if r.Keyer == nil {
		t.Error("Keyer should default to DefaultKeyer")
	}
	if r.Logger == nil {
		t.Error("Logger should default to log.Default()")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)

	res, err := r.Execute(context.Background(), scenario, Options{Formats: []string{FormatText, FormatJSON}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := string(res.Artifacts[FormatText]); got != "*..\n*B.\n.**" {
		t.Errorf("text artifact = %q", got)
	}

	var sum Summary
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &sum); err != nil {
		t.Fatalf("unmarshal json artifact: %v", err)
	}
	if sum.Cost != 7 || !sum.Reachable {
		t.Errorf("summary cost = %d reachable = %v, want 7 true", sum.Cost, sum.Reachable)
	}
	wantPath := []grid.Position{{Row: 1, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}
	if len(sum.Path) != len(wantPath) {
		t.Fatalf("summary path = %v, want %v", sum.Path, wantPath)
	}
	for i := range wantPath {
		if sum.Path[i] != wantPath[i] {
			t.Errorf("path[%d] = %v, want %v", i, sum.Path[i], wantPath[i])
		}
	}
	if sum.Output != "*..\n*B.\n.**" {
		t.Errorf("summary output = %q", sum.Output)
	}
	if sum.Cells != 8 {
		t.Errorf("summary cells = %d, want 8", sum.Cells)
	}

	if res.Stats.Cells != 8 || res.Stats.Walls != 1 {
		t.Errorf("Stats cells/walls = %d/%d, want 8/1", res.Stats.Cells, res.Stats.Walls)
	}
	if res.Stats.Edges != res.Graph.EdgeCount() {
		t.Errorf("Stats.Edges = %d, want %d", res.Stats.Edges, res.Graph.EdgeCount())
	}
	if res.MapHash != cache.Hash([]byte(scenario)) {
		t.Errorf("MapHash = %q", res.MapHash)
	}
	if res.Summary.Cost != 7 {
		t.Errorf("Result.Summary.Cost = %d, want 7", res.Summary.Cost)
	}
}

func TestRunnerExecute_DefaultFormat(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), scenario, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Artifacts) != 1 || res.Artifacts[FormatText] == nil {
		t.Errorf("Artifacts = %v, want only text", res.Artifacts)
	}
}

func TestRunnerExecute_Unreachable(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), "S.B.X", Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Summary.Reachable {
		t.Error("Reachable = true, want false")
	}
	if res.Summary.Output != "*.B.X" {
		t.Errorf("Output = %q, want %q", res.Summary.Output, "*.B.X")
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"path": []`) {
		t.Errorf("json artifact should encode an empty path:\n%s", res.Artifacts[FormatJSON])
	}
}

func TestRunnerExecute_Errors(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, "S..", Options{}); !gerrors.Is(err, gerrors.ErrCodeMissingEnd) {
		t.Errorf("missing end: err = %v, want MISSING_END", err)
	}
	if _, err := r.Execute(ctx, scenario, Options{Formats: []string{"png"}}); !gerrors.Is(err, gerrors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: err = %v, want INVALID_FORMAT", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Execute(cctx, scenario, Options{}); err != context.Canceled {
		t.Errorf("cancelled: err = %v, want context.Canceled", err)
	}
}

func TestRunnerExecute_OtherFormats(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), scenario, Options{Formats: []string{FormatDOT, FormatGraph, FormatDOT}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	dotSrc := string(res.Artifacts[FormatDOT])
	if !strings.HasPrefix(dotSrc, "graph G {") {
		t.Errorf("dot artifact should start with graph header:\n%s", dotSrc)
	}

	var doc graph.Doc
	if err := json.Unmarshal(res.Artifacts[FormatGraph], &doc); err != nil {
		t.Fatalf("unmarshal graph artifact: %v", err)
	}
	if len(doc.Nodes) != 8 {
		t.Errorf("graph nodes = %d, want 8", len(doc.Nodes))
	}
	if len(doc.Edges) != res.Graph.EdgeCount() {
		t.Errorf("graph edges = %d, want %d", len(doc.Edges), res.Graph.EdgeCount())
	}
}

func TestRunnerCachesSolve(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, scenario, Options{})
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.SolveHit {
		t.Error("first run should miss the cache")
	}
	if _, ok := c.data[r.Keyer.SolveKey(first.MapHash)]; !ok {
		t.Error("solve result should be cached")
	}

	second, err := r.Execute(ctx, scenario, Options{})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.SolveHit {
		t.Error("second run should hit the cache")
	}
	if string(second.Artifacts[FormatText]) != string(first.Artifacts[FormatText]) {
		t.Errorf("cached output differs: %q vs %q", second.Artifacts[FormatText], first.Artifacts[FormatText])
	}
	if second.Summary.Cost != 7 {
		t.Errorf("cached cost = %d, want 7", second.Summary.Cost)
	}

	third, err := r.Execute(ctx, scenario, Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if third.CacheInfo.SolveHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerCachesUnreachable(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := r.Execute(ctx, "S.B.X", Options{})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got := string(res.Artifacts[FormatText]); got != "*.B.X" {
			t.Errorf("run %d output = %q", i, got)
		}
		if res.CacheInfo.SolveHit != (i == 1) {
			t.Errorf("run %d SolveHit = %v", i, res.CacheInfo.SolveHit)
		}
	}
}

func TestRunnerIgnoresInvalidCacheEntry(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	key := r.Keyer.SolveKey(cache.Hash([]byte(scenario)))

	tests := []struct {
		name  string
		entry string
	}{
		{"not json", "garbage"},
		{"wrong cost", `{"path":[3,6,7],"cost":5,"reachable":true}`},
		{"not adjacent", `{"path":[7],"cost":3,"reachable":true}`},
		{"out of range", `{"path":[99],"cost":2,"reachable":true}`},
		{"ends elsewhere", `{"path":[3],"cost":2,"reachable":true}`},
		{"unreachable with path", `{"path":[3],"cost":0,"reachable":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.data[key] = []byte(tt.entry)
			res, err := r.Execute(context.Background(), scenario, Options{})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if res.CacheInfo.SolveHit {
				t.Error("invalid entry should be treated as a miss")
			}
			if got := string(res.Artifacts[FormatText]); got != "*..\n*B.\n.**" {
				t.Errorf("output = %q", got)
			}
		})
	}
}

func TestRunnerArtifactCache(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Formats: []string{FormatSVG, FormatText}}

	key := r.Keyer.ArtifactKey(cache.Hash([]byte(scenario)), opts.ArtifactKeyOpts(FormatSVG))
	c.data[key] = []byte("<svg/>")

	res, err := r.Execute(context.Background(), scenario, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := string(res.Artifacts[FormatSVG]); got != "<svg/>" {
		t.Errorf("svg artifact = %q, want cached value", got)
	}
	if !res.CacheInfo.RenderHit {
		t.Error("RenderHit = false, want true")
	}
	if got := string(res.Artifacts[FormatText]); got != "*..\n*B.\n.**" {
		t.Errorf("text artifact = %q", got)
	}
}

func TestRunnerRenderHitNeedsCacheableFormat(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	for i := 0; i < 2; i++ {
		res, err := r.Execute(context.Background(), scenario, Options{Formats: []string{FormatText}})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if res.CacheInfo.RenderHit {
			t.Errorf("run %d: RenderHit = true for text-only request", i)
		}
	}
}

func TestRunnerEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	ph := &recordingPipelineHooks{}
	ch := &recordingCacheHooks{}
	observability.SetPipelineHooks(ph)
	observability.SetCacheHooks(ch)

	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(ctx, scenario, Options{}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}

	if got := strings.Join(ph.events, ","); got != "parse,solve:7,render,parse,solve:7,render" {
		t.Errorf("pipeline events = %s", got)
	}
	if got := strings.Join(ch.events, ","); got != "miss:solve,set:solve,hit:solve" {
		t.Errorf("cache events = %s", got)
	}

	ph.events = nil
	if _, err := r.Execute(ctx, "S", Options{}); err == nil {
		t.Fatal("Execute() error = nil, want MISSING_END")
	}
	if got := strings.Join(ph.events, ","); got != "parse-error" {
		t.Errorf("pipeline events on error = %s", got)
	}
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingPipelineHooks) OnParseComplete(_ context.Context, _, _ int, _ time.Duration, err error) {
	if err != nil {
		h.events = append(h.events, "parse-error")
		return
	}
	h.events = append(h.events, "parse")
}

func (h *recordingPipelineHooks) OnSolveComplete(_ context.Context, cost int, _ bool, _ time.Duration, _ error) {
	h.events = append(h.events, "solve:"+strconv.Itoa(cost))
}

func (h *recordingPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.events = append(h.events, "render")
}

type recordingCacheHooks struct {
	events []string
}

func (h *recordingCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.events = append(h.events, "hit:"+keyType)
}

func (h *recordingCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.events = append(h.events, "miss:"+keyType)
}

func (h *recordingCacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.events = append(h.events, "set:"+keyType)
}
