package graph

import "github.com/matzehuels/gridpath/pkg/grid"

// Step costs.
const (
	StraightCost = 2
	DiagonalCost = 3
)

// Direction names the neighbour an edge leads to.
type Direction uint8

const (
	Top Direction = iota
	TopLeft
	TopRight
	Bottom
	BottomLeft
	BottomRight
	Left
	Right
)

var directionNames = [...]string{"top", "top-left", "top-right", "bottom", "bottom-left", "bottom-right", "left", "right"}

// String returns the direction name, e.g. "top-left".
func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

// Diagonal reports whether d is a diagonal step.
func (d Direction) Diagonal() bool {
	switch d {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return true
	}
	return false
}

type offset struct {
	dir        Direction
	dRow, dCol int
	cost       int
}

// neighbourhood is the fixed construction order.
var neighbourhood = [...]offset{
	{Top, -1, 0, StraightCost},
	{TopLeft, -1, -1, DiagonalCost},
	{TopRight, -1, 1, DiagonalCost},
	{Bottom, 1, 0, StraightCost},
	{BottomLeft, 1, -1, DiagonalCost},
	{BottomRight, 1, 1, DiagonalCost},
	{Left, 0, -1, StraightCost},
	{Right, 0, 1, StraightCost},
}

// Edge is a directed step from one passable cell to an adjacent one.
type Edge struct {
	To   int // target cell ID
	Cost int
	Dir  Direction
}

// Graph holds the outgoing edges of every passable cell, indexed by cell ID.
// It is read-only once built.
type Graph struct {
	grid  *grid.Grid
	edges [][]Edge
	count int
}

// Build computes the adjacency of every passable cell in g.
// An isolated cell yields an empty edge list. Build never fails.
func Build(g *grid.Grid) *Graph {
	out := &Graph{
		grid:  g,
		edges: make([][]Edge, g.Len()),
	}
	for _, c := range g.Cells() {
		var edges []Edge
		for _, o := range neighbourhood {
			n, ok := g.CellAt(grid.Position{Row: c.Pos.Row + o.dRow, Col: c.Pos.Col + o.dCol})
			if !ok {
				continue
			}
			edges = append(edges, Edge{To: n.ID, Cost: o.cost, Dir: o.dir})
		}
		out.edges[c.ID] = edges
		out.count += len(edges)
	}
	return out
}

// Grid returns the grid the graph was built from.
func (g *Graph) Grid() *grid.Grid { return g.grid }

// Edges returns the outgoing edges of cell id in construction order.
// The slice is shared and must not be modified.
func (g *Graph) Edges(id int) []Edge {
	if id < 0 || id >= len(g.edges) {
		return nil
	}
	return g.edges[id]
}

// Cell returns the cell with the given ID.
func (g *Graph) Cell(id int) grid.Cell { return g.grid.Cell(id) }

// NodeCount returns the number of passable cells.
func (g *Graph) NodeCount() int { return len(g.edges) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return g.count }

// Cost returns the cost of the direct step from -> to, or false if the two
// cells are not adjacent.
func (g *Graph) Cost(from, to int) (int, bool) {
	for _, e := range g.Edges(from) {
		if e.To == to {
			return e.Cost, true
		}
	}
	return 0, false
}

// PathCost sums the edge costs along path, which starts at from. It reports
// false if any consecutive pair is not adjacent.
func (g *Graph) PathCost(from int, path []int) (int, bool) {
	total, prev := 0, from
	for _, id := range path {
		c, ok := g.Cost(prev, id)
		if !ok {
			return 0, false
		}
		total += c
		prev = id
	}
	return total, true
}
