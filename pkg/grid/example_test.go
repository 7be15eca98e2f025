package grid_test

import (
	"fmt"

	"github.com/matzehuels/gridpath/pkg/grid"
)

func ExampleParse() {
	g, err := grid.Parse("S..\n.B.\n..X")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("cells:", g.Len(), "walls:", g.WallCount())
	fmt.Println("start:", g.Start().Pos, "end:", g.End().Pos)
	// Output:
	// cells: 8 walls: 1
	// start: 0,0 end: 2,2
}

func ExampleParse_missingEnd() {
	_, err := grid.Parse("S")
	fmt.Println(err)
	// Output:
	// MISSING_END: no end point specified
}
