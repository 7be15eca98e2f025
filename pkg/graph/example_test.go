package graph_test

import (
	"fmt"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
)

func ExampleBuild() {
	g := grid.MustParse("S.\nBX")
	gr := graph.Build(g)

	for _, e := range gr.Edges(g.Start().ID) {
		fmt.Println(e.Dir, gr.Cell(e.To).Pos, e.Cost)
	}
	// Output:
	// bottom-right 1,1 3
	// right 0,1 2
}
