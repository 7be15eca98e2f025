// Package graph derives the weighted traversal graph of a parsed map.
//
// Every passable cell of a [grid.Grid] becomes a node, keyed by the cell's
// dense ID. Each node's outgoing edges are computed independently from its
// eight geometric neighbours, always in the same order:
//
//	top, top-left, top-right, bottom, bottom-left, bottom-right, left, right
//
// Orthogonal steps cost [StraightCost] (2) and diagonal steps cost
// [DiagonalCost] (3). A neighbour contributes an edge only if a passable
// cell exists at that exact position, so walls, gaps in short rows, and the
// map border never appear as edge endpoints.
//
// # Serialization
//
// [Marshal] writes the graph in a node-link JSON format used by the json
// output format and by caches:
//
//	{
//	  "nodes": [{"id": 0, "row": 0, "col": 0, "char": "S", "role": "start"}],
//	  "edges": [{"from": 0, "to": 1, "cost": 2}]
//	}
package graph
