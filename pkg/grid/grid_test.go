package grid_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/grid"
)

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		text string
		code gerrors.Code
	}{
		{"OnlyStart", "S", gerrors.ErrCodeMissingEnd},
		{"OnlyEnd", "X", gerrors.ErrCodeMissingStart},
		{"Empty", "", gerrors.ErrCodeMissingStart},
		{"WhitespaceOnly", " \n\t", gerrors.ErrCodeMissingStart},
		{"NeitherMarker", "...\n.B.", gerrors.ErrCodeMissingStart},
		{"MissingStartWinsOverMissingEnd", "..B..", gerrors.ErrCodeMissingStart},
		{"TwoStarts", "S.S\n..X", gerrors.ErrCodeAmbiguousStart},
		{"TwoEnds", "S.X\nX..", gerrors.ErrCodeAmbiguousEnd},
		{"AmbiguousStartWinsOverMissingEnd", "SS", gerrors.ErrCodeAmbiguousStart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := grid.Parse(tc.text)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Equal(t, tc.code, gerrors.GetCode(err))
			assert.True(t, gerrors.IsValidation(err))
		})
	}
}

func TestParse_CellsExcludeWalls(t *testing.T) {
	g, err := grid.Parse("S..\n.B.\n..X")
	require.NoError(t, err)

	assert.Equal(t, 8, g.Len())
	assert.Equal(t, 1, g.WallCount())
	assert.Equal(t, 3, g.Height())
	assert.Equal(t, 3, g.Width())

	for i, c := range g.Cells() {
		assert.Equal(t, i, c.ID, "IDs are dense and row-major")
		assert.NotEqual(t, grid.WallRune, c.Char)
	}

	_, ok := g.CellAt(grid.Position{Row: 1, Col: 1})
	assert.False(t, ok, "wall must not be a cell")
	assert.True(t, g.IsWall(grid.Position{Row: 1, Col: 1}))
}

func TestParse_StartAndEnd(t *testing.T) {
	g, err := grid.Parse(".S\nX.")
	require.NoError(t, err)

	start, end := g.Start(), g.End()
	assert.Equal(t, grid.Position{Row: 0, Col: 1}, start.Pos)
	assert.Equal(t, grid.RoleStart, start.Role)
	assert.Equal(t, grid.Position{Row: 1, Col: 0}, end.Pos)
	assert.Equal(t, grid.RoleEnd, end.Role)
	assert.Equal(t, grid.RoleNone, g.Cell(0).Role)
}

func TestParse_PreservesTerrain(t *testing.T) {
	g, err := grid.Parse("S~é\n#X")
	require.NoError(t, err)

	c, ok := g.CellAt(grid.Position{Row: 0, Col: 2})
	require.True(t, ok)
	assert.Equal(t, 'é', c.Char, "columns count runes, not bytes")

	c, ok = g.CellAt(grid.Position{Row: 1, Col: 0})
	require.True(t, ok)
	assert.Equal(t, '#', c.Char)
}

func TestCellAt_RaggedRows(t *testing.T) {
	g, err := grid.Parse("S....\n.\n...X")
	require.NoError(t, err)

	assert.Equal(t, 5, g.Width())
	assert.Equal(t, 1, g.RowLen(1))
	assert.Equal(t, 0, g.RowLen(7))

	absent := []grid.Position{
		{Row: 1, Col: 1},  // past end of short row
		{Row: 2, Col: 4},  // past end of last row
		{Row: -1, Col: 0}, // above
		{Row: 3, Col: 0},  // below
		{Row: 0, Col: -1}, // left
	}
	for _, p := range absent {
		_, ok := g.CellAt(p)
		assert.False(t, ok, "position %v", p)
		assert.False(t, g.IsWall(p), "position %v", p)
	}

	c, ok := g.CellAt(grid.Position{Row: 1, Col: 0})
	require.True(t, ok)
	assert.Equal(t, '.', c.Char)
}

func TestParse_ManyEmptyRowsAndOneLongRow(t *testing.T) {
	const n = 4000
	text := "S" + strings.Repeat("\n", n) + "X" + strings.Repeat(".", n)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	g, err := grid.Parse(text)
	runtime.ReadMemStats(&after)
	require.NoError(t, err)

	// A rows*width table would need n*n ints (about 128 MB).
	allocated := after.TotalAlloc - before.TotalAlloc
	assert.Less(t, allocated, uint64(4<<20), "Parse allocated %d bytes for a %d-byte map", allocated, len(text))

	assert.Equal(t, n+1, g.Height())
	assert.Equal(t, n+1, g.Width())
	assert.Equal(t, n+2, g.Len())
	assert.Equal(t, grid.Position{Row: n, Col: 0}, g.End().Pos)

	c, ok := g.CellAt(grid.Position{Row: n, Col: n})
	require.True(t, ok)
	assert.Equal(t, '.', c.Char)
	assert.Equal(t, g.Len()-1, c.ID)

	_, ok = g.CellAt(grid.Position{Row: n / 2, Col: 0})
	assert.False(t, ok)
	_, ok = g.CellAt(grid.Position{Row: 0, Col: 1})
	assert.False(t, ok)
}

func TestParse_ControlCharactersArePassable(t *testing.T) {
	g, err := grid.Parse("S\x00\tX")
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())

	c, ok := g.CellAt(grid.Position{Row: 0, Col: 1})
	require.True(t, ok)
	assert.Equal(t, '\x00', c.Char)
}

func TestCell_SameIsPositional(t *testing.T) {
	a := grid.Cell{ID: 1, Pos: grid.Position{Row: 2, Col: 3}, Char: '.'}
	b := grid.Cell{ID: 9, Pos: grid.Position{Row: 2, Col: 3}, Char: 'S', Role: grid.RoleStart}
	c := grid.Cell{ID: 1, Pos: grid.Position{Row: 3, Col: 2}, Char: '.'}

	assert.True(t, a.Same(b))
	assert.False(t, a.Same(c))
}

func TestRows_ReturnsCopy(t *testing.T) {
	g := grid.MustParse("S.X")
	rows := g.Rows()
	rows[0][1] = '*'

	c, ok := g.CellAt(grid.Position{Row: 0, Col: 1})
	require.True(t, ok)
	assert.Equal(t, '.', c.Char)
	assert.Equal(t, "S.X", string(g.Rows()[0]))
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { grid.MustParse("...") })
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "start", grid.RoleStart.String())
	assert.Equal(t, "end", grid.RoleEnd.String())
	assert.Equal(t, "none", grid.RoleNone.String())
	assert.Equal(t, "4,2", grid.Position{Row: 4, Col: 2}.String())
}
