// Package grid parses character maps into a set of passable cells.
//
// A map is text whose lines are rows and whose runes are cells. The alphabet
// is fixed:
//
//	S   start (exactly one)
//	X   end (exactly one)
//	B   wall
//	*   any other rune is plain terrain
//
// Walls never become cells. Every other position becomes a [Cell] with a
// dense ID assigned in row-major order, which downstream packages use to
// index their own tables. Rows may have different lengths; a position past the
// end of its row is simply absent.
//
// Parsing fails with a coded error from pkg/errors when the start or end
// marker is missing or appears more than once. Those checks run before any
// graph is built.
//
// # Usage
//
//	g, err := grid.Parse("S..\n.B.\n..X")
//	if err != nil {
//	    return err
//	}
//	start, end := g.Start(), g.End()
//	c, ok := g.CellAt(grid.Position{Row: 1, Col: 2})
package grid
