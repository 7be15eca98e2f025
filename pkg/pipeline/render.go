package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/render"
	"github.com/matzehuels/gridpath/pkg/render/dot"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, text string, g *grid.Grid, sol *Solution, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; ok {
			continue
		}
		data, err := renderFormat(ctx, format, text, g, sol, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, format, text string, g *grid.Grid, sol *Solution, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(render.Mark(text, g.Start().Pos, render.Route(g, sol.Path))), nil
	case FormatJSON:
		data, err := json.MarshalIndent(NewSummary(text, g, sol), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatGraph:
		return graph.Marshal(sol.Graph)
	case FormatDOT:
		return []byte(dot.ToDOT(sol.Graph, sol.Path, dot.Options{Costs: opts.Costs})), nil
	case FormatSVG:
		return dot.RenderSVG(ctx, dot.ToDOT(sol.Graph, sol.Path, dot.Options{Costs: opts.Costs}))
	default:
		return nil, ValidateFormat(format)
	}
}

// NewSummary describes sol in its serializable form.
func NewSummary(text string, g *grid.Grid, sol *Solution) Summary {
	route := render.Route(g, sol.Path)
	return Summary{
		Output:    render.Mark(text, g.Start().Pos, route),
		Cost:      sol.Cost,
		Reachable: sol.Reachable,
		Path:      route,
		Cells:     sol.Graph.NodeCount(),
		Edges:     sol.Graph.EdgeCount(),
	}
}
