// Package pkg holds the gridpath libraries.
//
// # Overview
//
// gridpath reads a character map with one start (S), one end (X) and walls
// (B), finds the cheapest route between them and redraws the map with the
// route in '*'. Straight steps cost 2 and diagonal steps cost 3.
//
// # Architecture
//
//	map text
//	   ↓
//	[grid]      parse the rune matrix, validate markers, assign cell IDs
//	   ↓
//	[graph]     weighted 8-neighbour graph over passable cells
//	   ↓
//	[dijkstra]  cheapest route from start to end
//	   ↓
//	[render]    overwrite start and route with '*' (dot: Graphviz/SVG)
//
// [pipeline] runs these stages with caching ([cache]) and emits
// [observability] events. [errors] carries the machine-readable codes used
// by both the CLI and the HTTP server.
//
// # Quick Start
//
//	out, err := pipeline.AddPath("S..\n.B.\n..X")
//	// out == "*..\n*B.\n.**"
package pkg
