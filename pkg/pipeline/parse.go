package pipeline

import (
	"github.com/matzehuels/gridpath/pkg/grid"
)

// Parse reads map text into a grid. It validates the start and end markers
// and nothing else: any rune other than S, X and B is walkable terrain.
func Parse(text string) (*grid.Grid, error) {
	return grid.Parse(text)
}
