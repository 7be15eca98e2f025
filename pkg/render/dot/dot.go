package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
)

// Options configures diagram generation.
type Options struct {
	// Costs labels every edge with its step cost.
	Costs bool
}

// ToDOT converts gr to Graphviz DOT source. route lists the cell IDs of the
// shortest path, start excluded, as returned by the solver.
func ToDOT(gr *graph.Graph, route []int, opts Options) string {
	g := gr.Grid()
	onRoute := make(map[int]bool, len(route)+1)
	onRoute[g.Start().ID] = true
	for _, id := range route {
		onRoute[id] = true
	}
	routeEdge := make(map[[2]int]bool, len(route))
	prev := g.Start().ID
	for _, id := range route {
		routeEdge[edgeKey(prev, id)] = true
		prev = id
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontname=\"monospace\", fixedsize=true, width=0.4];\n")
	buf.WriteString("  edge [color=grey70];\n")
	buf.WriteString("\n")

	for r := 0; r < g.Height(); r++ {
		var ids []string
		for c := 0; c < g.RowLen(r); c++ {
			cell, ok := g.CellAt(grid.Position{Row: r, Col: c})
			if !ok {
				continue
			}
			fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(cell), strings.Join(nodeAttrs(cell, onRoute[cell.ID]), ", "))
			ids = append(ids, nodeID(cell))
		}
		if len(ids) > 1 {
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		}
	}

	buf.WriteString("\n")
	for _, cell := range g.Cells() {
		for _, e := range gr.Edges(cell.ID) {
			if e.To < cell.ID {
				continue
			}
			attrs := edgeAttrs(e, routeEdge[edgeKey(cell.ID, e.To)], opts)
			fmt.Fprintf(&buf, "  %s -- %s", nodeID(cell), nodeID(gr.Cell(e.To)))
			if len(attrs) > 0 {
				fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
			}
			buf.WriteString(";\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(c grid.Cell) string {
	return fmt.Sprintf("\"r%dc%d\"", c.Pos.Row, c.Pos.Col)
}

func nodeAttrs(c grid.Cell, onRoute bool) []string {
	attrs := []string{"label=" + quoteLabel(c.Char)}
	if c.Role != grid.RoleNone {
		attrs = append(attrs, "shape=doublecircle")
	}
	if onRoute {
		attrs = append(attrs, "fillcolor=gold")
	}
	return attrs
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteLabel renders a terrain rune as a DOT string. Control characters are
// shown as their Unicode control pictures (U+2400 block).
func quoteLabel(r rune) string {
	switch {
	case r < 0x20:
		r += 0x2400
	case r == 0x7f:
		r = 0x2421
	}
	return `"` + labelEscaper.Replace(string(r)) + `"`
}

func edgeAttrs(e graph.Edge, onRoute bool, opts Options) []string {
	var attrs []string
	if opts.Costs {
		attrs = append(attrs, fmt.Sprintf("label=\"%d\"", e.Cost))
	}
	if e.Dir == graph.Left || e.Dir == graph.Right || e.Dir.Diagonal() {
		attrs = append(attrs, "constraint=false")
	}
	if onRoute {
		attrs = append(attrs, "color=black", "penwidth=3")
	}
	return attrs
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from the
// origin with explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
