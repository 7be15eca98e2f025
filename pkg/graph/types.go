package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/gridpath/pkg/grid"
)

// Doc is the serialization format for a traversal graph.
type Doc struct {
	Nodes []Node   `json:"nodes"`
	Edges []EdgeID `json:"edges"`
}

// Node is a serialized cell.
type Node struct {
	ID   int    `json:"id"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Char string `json:"char"`
	Role string `json:"role,omitempty"`
}

// EdgeID is a serialized directed edge.
type EdgeID struct {
	From int `json:"from"`
	To   int `json:"to"`
	Cost int `json:"cost"`
}

// ToDoc converts g to its serialization format. Nodes are ordered by ID and
// edges by source then construction order, so output is deterministic.
func ToDoc(g *Graph) Doc {
	doc := Doc{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]EdgeID, 0, g.EdgeCount()),
	}
	for _, c := range g.grid.Cells() {
		n := Node{ID: c.ID, Row: c.Pos.Row, Col: c.Pos.Col, Char: string(c.Char)}
		if c.Role != grid.RoleNone {
			n.Role = c.Role.String()
		}
		doc.Nodes = append(doc.Nodes, n)
		for _, e := range g.edges[c.ID] {
			doc.Edges = append(doc.Edges, EdgeID{From: c.ID, To: e.To, Cost: e.Cost})
		}
	}
	return doc
}

// Marshal converts g to indented JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes g as indented JSON to w.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDoc(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
