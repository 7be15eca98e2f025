package pipeline

import (
	"fmt"

	"github.com/matzehuels/gridpath/pkg/dijkstra"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
)

// Solution is the outcome of the solve stage.
type Solution struct {
	Graph     *graph.Graph
	Path      []int // cell IDs, start exclusive, end inclusive; nil if unreachable
	Cost      int
	Reachable bool
	Stats     dijkstra.Stats
}

// Solve builds the cell graph of g and finds a shortest route from its start
// to its end. An unreachable end is not an error.
func Solve(g *grid.Grid) (*Solution, error) {
	gr := graph.Build(g)

	start, end := g.Start().ID, g.End().ID
	res, err := dijkstra.Solve(gr, start, dijkstra.WithTarget(end))
	if err != nil {
		return nil, fmt.Errorf("shortest path: %w", err)
	}

	sol := &Solution{Graph: gr, Stats: res.Stats()}
	if cost, ok := res.Distance(end); ok {
		sol.Cost = cost
		sol.Reachable = true
		sol.Path = res.Path(end)
	}
	return sol, nil
}

// cachedRoute is the cache representation of a Solution.
type cachedRoute struct {
	Path      []int `json:"path"`
	Cost      int   `json:"cost"`
	Reachable bool  `json:"reachable"`
}

// restore rebuilds a Solution from a cached route. It reports false if the
// route does not fit the graph, so a bad entry is recomputed rather than
// rendered.
func (c cachedRoute) restore(gr *graph.Graph) (*Solution, bool) {
	sol := &Solution{Graph: gr}
	if !c.Reachable {
		return sol, len(c.Path) == 0
	}
	g := gr.Grid()
	if len(c.Path) == 0 || c.Path[len(c.Path)-1] != g.End().ID {
		return nil, false
	}
	for _, id := range c.Path {
		if id < 0 || id >= gr.NodeCount() {
			return nil, false
		}
	}
	cost, ok := gr.PathCost(g.Start().ID, c.Path)
	if !ok || cost != c.Cost {
		return nil, false
	}
	sol.Path, sol.Cost, sol.Reachable = c.Path, c.Cost, true
	return sol, true
}
