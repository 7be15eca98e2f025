// Package dot draws the traversal graph of a map as a Graphviz diagram.
//
// # Usage
//
//	src := dot.ToDOT(gr, route, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// Cells become circle nodes labelled with their source rune and grouped one
// rank per map row. Each pair of adjacent cells is joined by a single
// undirected edge, since the traversal relation is symmetric. Route cells are
// filled and route edges drawn bold; the start and end use double circles.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package dot
