package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
)

func TestToDOT(t *testing.T) {
	g := grid.MustParse("S.\nBX")
	gr := graph.Build(g)

	out := ToDOT(gr, []int{g.End().ID}, Options{})

	wants := []string{
		"graph G {",
		`"r0c0" [label="S", shape=doublecircle, fillcolor=gold];`,
		`"r0c1" [label="."];`,
		`"r1c1" [label="X", shape=doublecircle, fillcolor=gold];`,
		`{ rank=same; "r0c0"; "r0c1"; }`,
		`"r0c0" -- "r1c1" [constraint=false, color=black, penwidth=3];`,
		`"r0c0" -- "r0c1" [constraint=false];`,
		`"r0c1" -- "r1c1";`,
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "r1c0") {
		t.Error("walls must not appear as nodes")
	}
	if n := strings.Count(out, " -- "); n != gr.EdgeCount()/2 {
		t.Errorf("edge lines = %d, want %d", n, gr.EdgeCount()/2)
	}
}

func TestToDOTLabelEscaping(t *testing.T) {
	g := grid.MustParse("S\"\\\t\x00X")
	out := ToDOT(graph.Build(g), nil, Options{})

	wants := []string{
		`"r0c1" [label="\""];`,
		`"r0c2" [label="\\"];`,
		`"r0c3" [label="␉"];`,
		`"r0c4" [label="␀"];`,
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %s\n%s", want, out)
		}
	}
	if strings.Contains(out, `\t`) || strings.Contains(out, `\x00`) {
		t.Errorf("ToDOT() should not use Go escapes in labels:\n%s", out)
	}
}

func TestToDOTCosts(t *testing.T) {
	g := grid.MustParse("SX")
	out := ToDOT(graph.Build(g), nil, Options{Costs: true})

	if !strings.Contains(out, `"r0c0" -- "r0c1" [label="2", constraint=false];`) {
		t.Errorf("ToDOT() should label edge costs:\n%s", out)
	}
	if strings.Contains(out, "penwidth") {
		t.Error("no route edges expected for an empty route")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))

	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`
	if !strings.HasPrefix(out, want) {
		t.Errorf("normalizeViewBox() = %q, want prefix %q", out, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := string(normalizeViewBox(plain)); got != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox = %q, want unchanged", got)
	}
}
