package dijkstra

import (
	"container/heap"

	"github.com/matzehuels/gridpath/pkg/graph"
)

// Result holds the shortest-path tree rooted at the source.
type Result struct {
	source int
	dist   []int
	prev   []int
	done   []bool
	stats  Stats
}

// Solve runs Dijkstra's algorithm on g from the cell source.
//
// On return, every cell reachable from source has its minimum distance and
// a predecessor on one shortest route. Edge costs are positive, so a cell
// is final the moment it is popped.
func Solve(g *graph.Graph, source int, opts ...Option) (*Result, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	if g == nil {
		return nil, ErrNilGraph
	}
	n := g.NodeCount()
	if source < 0 || source >= n {
		return nil, ErrSourceNotFound
	}
	if cfg.Target != noTarget && (cfg.Target < 0 || cfg.Target >= n) {
		return nil, ErrTargetNotFound
	}

	r := &runner{
		g:      g,
		target: cfg.Target,
		res: &Result{
			source: source,
			dist:   make([]int, n),
			prev:   make([]int, n),
			done:   make([]bool, n),
		},
		pq: make(entryPQ, 0, n),
	}
	r.init()
	r.process()
	return r.res, nil
}

// runner holds the mutable state for a single Solve call.
type runner struct {
	g      *graph.Graph
	target int
	res    *Result
	pq     entryPQ
	seq    uint64 // push counter for stable tie-breaking
}

func (r *runner) init() {
	for i := range r.res.dist {
		r.res.dist[i] = Infinity
		r.res.prev[i] = -1
		r.res.done[i] = false
	}
	r.res.dist[r.res.source] = 0
	heap.Init(&r.pq)
	r.push(r.res.source, 0)
}

func (r *runner) push(id, dist int) {
	heap.Push(&r.pq, entry{id: id, dist: dist, seq: r.seq})
	r.seq++
}

func (r *runner) process() {
	for r.pq.Len() > 0 {
		e := heap.Pop(&r.pq).(entry)
		if r.res.done[e.id] || e.dist > r.res.dist[e.id] {
			r.res.stats.StalePops++
			continue
		}

		r.res.done[e.id] = true
		r.res.stats.Finalized++
		if e.id == r.target {
			return
		}
		r.relax(e.id)
	}
}

// relax improves the distance of every non-final neighbour of u.
func (r *runner) relax(u int) {
	du := r.res.dist[u]
	if du == Infinity {
		return
	}
	for _, e := range r.g.Edges(u) {
		if r.res.done[e.To] {
			continue
		}
		cand := du + e.Cost
		if cand >= r.res.dist[e.To] {
			continue
		}
		r.res.dist[e.To] = cand
		r.res.prev[e.To] = u
		r.res.stats.Relaxations++
		r.push(e.To, cand)
	}
}

// Source returns the cell the search started from.
func (r *Result) Source() int { return r.source }

// Len returns the number of cells covered by the result.
func (r *Result) Len() int { return len(r.dist) }

// Stats returns work counters for the run.
func (r *Result) Stats() Stats { return r.stats }

// Distance returns the shortest distance from the source to id. It reports
// false if id is unreachable, was not finalised before an early stop, or is
// out of range.
func (r *Result) Distance(id int) (int, bool) {
	if !r.Reachable(id) {
		return Infinity, false
	}
	return r.dist[id], true
}

// Reachable reports whether a shortest path to id is known.
func (r *Result) Reachable(id int) bool {
	return id >= 0 && id < len(r.dist) && r.done[id]
}

// Path returns the cells on a shortest route from the source (exclusive) to
// id (inclusive). It returns an empty, non-nil slice for the source itself
// and nil for a cell without a known path.
func (r *Result) Path(id int) []int {
	if !r.Reachable(id) {
		return nil
	}
	var n int
	for v := id; v != r.source; v = r.prev[v] {
		n++
	}
	path := make([]int, n)
	for v := id; v != r.source; v = r.prev[v] {
		n--
		path[n] = v
	}
	return path
}

// Paths returns Path(id) for every cell, indexed by ID.
func (r *Result) Paths() [][]int {
	out := make([][]int, len(r.dist))
	for id := range out {
		out[id] = r.Path(id)
	}
	return out
}

// entry is a heap item. Entries are never updated in place.
type entry struct {
	id   int
	dist int
	seq  uint64
}

// entryPQ is a min-heap of entries ordered by distance, then push order.
type entryPQ []entry

func (pq entryPQ) Len() int { return len(pq) }

func (pq entryPQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].seq < pq[j].seq
}

func (pq entryPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *entryPQ) Push(x any) { *pq = append(*pq, x.(entry)) }

func (pq *entryPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
