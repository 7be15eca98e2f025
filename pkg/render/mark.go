package render

import (
	"strings"

	"github.com/matzehuels/gridpath/pkg/grid"
)

// Marker is the rune written over the start cell and every route cell.
const Marker = '*'

// Mark returns text with Marker written at start and at every position of
// route. Lines are split and rejoined on '\n', so the line structure is
// preserved exactly. Positions that fall outside the text are ignored.
//
// An empty route marks only the start, which is how an unreachable end is
// rendered.
func Mark(text string, start grid.Position, route []grid.Position) string {
	lines := strings.Split(text, "\n")
	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(line)
	}

	set := func(p grid.Position) {
		if p.Row < 0 || p.Row >= len(rows) || p.Col < 0 || p.Col >= len(rows[p.Row]) {
			return
		}
		rows[p.Row][p.Col] = Marker
	}
	set(start)
	for _, p := range route {
		set(p)
	}

	var b strings.Builder
	b.Grow(len(text))
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

// Route converts cell IDs into positions on g.
func Route(g *grid.Grid, ids []int) []grid.Position {
	out := make([]grid.Position, len(ids))
	for i, id := range ids {
		out[i] = g.Cell(id).Pos
	}
	return out
}
