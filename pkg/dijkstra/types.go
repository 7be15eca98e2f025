// Package dijkstra computes single-source shortest paths over the traversal
// graph of a map.
//
// The solver keeps its working state in fixed-size tables indexed by cell ID:
// a tentative distance (initialised to [Infinity] everywhere except the
// source) and a predecessor. A binary min-heap orders pending cells by
// distance, ties broken by push order, which makes every run over the same
// graph take the same decisions. Relaxation pushes a fresh heap entry instead
// of updating one in place; stale entries are skipped when popped.
//
// Complexity:
//
//   - Time:  O((V + E) log V)
//   - Space: O(V + E), the heap holding up to one entry per relaxation.
//
// Options:
//
//   - WithTarget(id): stop once id is finalised. The distance and path of
//     the target are the same as in a full run.
//
// Errors (sentinel):
//
//   - ErrNilGraph       if the graph pointer is nil.
//   - ErrSourceNotFound if the source ID is not a cell of the graph.
//   - ErrTargetNotFound if WithTarget names an ID that is not a cell.
//
// Example:
//
//	res, err := dijkstra.Solve(gr, g.Start().ID)
//	if err != nil {
//	    return err
//	}
//	path := res.Path(g.End().ID) // nil if unreachable
package dijkstra

import (
	"errors"
	"math"
)

// Sentinel errors returned by Solve.
var (
	// ErrNilGraph indicates that a nil *graph.Graph was passed to Solve.
	ErrNilGraph = errors.New("dijkstra: graph is nil")
	// ErrSourceNotFound indicates that the source ID is not a cell of the graph.
	ErrSourceNotFound = errors.New("dijkstra: source cell not found in graph")
	// ErrTargetNotFound indicates that the target ID is not a cell of the graph.
	ErrTargetNotFound = errors.New("dijkstra: target cell not found in graph")
)

// Infinity is the tentative distance of a cell that has not been reached.
// No relaxation starts from a cell at Infinity, so it never overflows.
const Infinity = math.MaxInt

// noTarget disables early termination.
const noTarget = -1

// Options configures Solve.
type Options struct {
	Target int // stop once this cell is finalised; -1 runs to completion
}

// Option represents a functional option for configuring Solve.
type Option func(*Options)

// DefaultOptions returns Options that run the solver to completion.
func DefaultOptions() Options {
	return Options{Target: noTarget}
}

// WithTarget stops the search once the cell id is finalised.
func WithTarget(id int) Option {
	return func(o *Options) {
		o.Target = id
	}
}

// Stats counts the work done by one Solve call.
type Stats struct {
	Finalized   int // cells whose distance became final
	Relaxations int // successful distance improvements
	StalePops   int // heap entries skipped as outdated
}
