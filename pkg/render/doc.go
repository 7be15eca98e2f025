// Package render turns a solved map back into output artifacts.
//
// # Overview
//
// [Mark] is the map renderer: it overlays [Marker] on the start cell and on
// every cell of the route to the end, leaving every other rune and the line
// structure of the original text untouched.
//
//	out := render.Mark(text, start.Pos, route)
//
// # Graph Diagrams
//
// The [dot] subpackage draws the traversal graph with Graphviz, highlighting
// the route. It backs the dot and svg output formats.
//
//	src := dot.ToDOT(gr, route, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// [dot]: github.com/matzehuels/gridpath/pkg/render/dot
package render
