package grid

import (
	"fmt"
	"strings"

	gerrors "github.com/matzehuels/gridpath/pkg/errors"
)

// Map alphabet.
const (
	StartRune = 'S'
	EndRune   = 'X'
	WallRune  = 'B'
)

// Role tags the start and end cells.
type Role uint8

const (
	RoleNone Role = iota
	RoleStart
	RoleEnd
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleStart:
		return "start"
	case RoleEnd:
		return "end"
	default:
		return "none"
	}
}

// Position is a (row, column) coordinate on the map. Columns count runes,
// not bytes.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String formats the position as "row,col".
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// Cell is a passable map position.
//
// A cell's identity is its position: two cells describe the same entity iff
// their positions are equal, whatever their other fields hold. Use [Cell.Same]
// rather than == when comparing cells from different sources.
type Cell struct {
	ID   int      // dense row-major index among passable cells
	Pos  Position // coordinate on the map
	Char rune     // source rune, kept verbatim for rendering
	Role Role
}

// Same reports whether c and o occupy the same position.
func (c Cell) Same(o Cell) bool { return c.Pos == o.Pos }

// Grid is a parsed map. It is read-only once returned by [Parse].
type Grid struct {
	rows     [][]rune
	width    int
	cells    []Cell
	rowStart []int // offset of each row in index
	index    []int // rowStart[row]+col -> cell ID, -1 for walls
	start int
	end   int
	walls int
}

// Parse reads a map from text. Lines are separated by '\n'.
//
// It fails with MISSING_START, AMBIGUOUS_START, MISSING_END or AMBIGUOUS_END
// (in that order of precedence) when the map does not contain exactly one
// start and exactly one end marker.
func Parse(text string) (*Grid, error) {
	lines := strings.Split(text, "\n")

	g := &Grid{
		rows:     make([][]rune, len(lines)),
		rowStart: make([]int, len(lines)),
		start:    -1,
		end:      -1,
	}
	total := 0
	for i, line := range lines {
		g.rows[i] = []rune(line)
		g.rowStart[i] = total
		total += len(g.rows[i])
		if len(g.rows[i]) > g.width {
			g.width = len(g.rows[i])
		}
	}

	g.index = make([]int, total)
	for i := range g.index {
		g.index[i] = -1
	}

	var starts, ends int
	for r, row := range g.rows {
		for c, ch := range row {
			if ch == WallRune {
				g.walls++
				continue
			}
			cell := Cell{ID: len(g.cells), Pos: Position{Row: r, Col: c}, Char: ch}
			switch ch {
			case StartRune:
				cell.Role = RoleStart
				starts++
				if g.start < 0 {
					g.start = cell.ID
				}
			case EndRune:
				cell.Role = RoleEnd
				ends++
				if g.end < 0 {
					g.end = cell.ID
				}
			}
			g.index[g.rowStart[r]+c] = cell.ID
			g.cells = append(g.cells, cell)
		}
	}

	switch {
	case starts == 0:
		return nil, gerrors.New(gerrors.ErrCodeMissingStart, "no start point specified")
	case starts > 1:
		return nil, gerrors.New(gerrors.ErrCodeAmbiguousStart, "found %d start points, want exactly one", starts)
	case ends == 0:
		return nil, gerrors.New(gerrors.ErrCodeMissingEnd, "no end point specified")
	case ends > 1:
		return nil, gerrors.New(gerrors.ErrCodeAmbiguousEnd, "found %d end points, want exactly one", ends)
	}

	return g, nil
}

// MustParse is like Parse but panics on error. Intended for tests and examples.
func MustParse(text string) *Grid {
	g, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return g
}

// Start returns the start cell.
func (g *Grid) Start() Cell { return g.cells[g.start] }

// End returns the end cell.
func (g *Grid) End() Cell { return g.cells[g.end] }

// Cells returns the passable cells in row-major order; Cells()[i].ID == i.
// The slice is shared and must not be modified.
func (g *Grid) Cells() []Cell { return g.cells }

// Cell returns the cell with the given ID.
func (g *Grid) Cell(id int) Cell { return g.cells[id] }

// Len returns the number of passable cells.
func (g *Grid) Len() int { return len(g.cells) }

// Height returns the number of rows, including empty ones.
func (g *Grid) Height() int { return len(g.rows) }

// Width returns the length of the longest row.
func (g *Grid) Width() int { return g.width }

// WallCount returns the number of wall positions.
func (g *Grid) WallCount() int { return g.walls }

// Rows returns a copy of the rune matrix.
func (g *Grid) Rows() [][]rune {
	out := make([][]rune, len(g.rows))
	for i, row := range g.rows {
		out[i] = append([]rune(nil), row...)
	}
	return out
}

// RowLen returns the number of runes in row r, or 0 if r is out of range.
func (g *Grid) RowLen(r int) int {
	if r < 0 || r >= len(g.rows) {
		return 0
	}
	return len(g.rows[r])
}

// CellAt returns the passable cell at p. It reports false for walls and for
// positions outside the map, including columns past the end of a short row.
func (g *Grid) CellAt(p Position) (Cell, bool) {
	if p.Row < 0 || p.Row >= len(g.rows) || p.Col < 0 || p.Col >= len(g.rows[p.Row]) {
		return Cell{}, false
	}
	id := g.index[g.rowStart[p.Row]+p.Col]
	if id < 0 {
		return Cell{}, false
	}
	return g.cells[id], true
}

// IsWall reports whether p holds a wall.
func (g *Grid) IsWall(p Position) bool {
	if p.Row < 0 || p.Row >= len(g.rows) || p.Col < 0 || p.Col >= len(g.rows[p.Row]) {
		return false
	}
	return g.rows[p.Row][p.Col] == WallRune
}
