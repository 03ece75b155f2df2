// Package render produces diagnostic output for instances and engine results:
// Graphviz text for neighbours graphs and PDF reports with layout diagrams.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/rectcheck/internal/neighbours"
)

// RenderDot returns the neighbours graph as Graphviz dot text. Nodes carry
// the box index and rectangle, one undirected edge per adjacent pair. The
// output is deterministic for a given graph.
func RenderDot(nb *neighbours.Neighbours) string {
	var b strings.Builder
	b.WriteString("graph neighbours {\n")
	b.WriteString("  node [shape=box];\n")
	for i := 0; i < nb.NumBoxes(); i++ {
		fmt.Fprintf(&b, "  b%d [label=\"%d: %v\"];\n", i, i, nb.Rect(i))
	}
	for i := 0; i < nb.NumBoxes(); i++ {
		peers := append([]int(nil), nb.Neighbors(i)...)
		sort.Ints(peers)
		for _, j := range peers {
			if j > i {
				fmt.Fprintf(&b, "  b%d -- b%d;\n", i, j)
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}
