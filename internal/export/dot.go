// Package export renders a built graph to collaborator-facing formats: a
// Graphviz DOT description, a node-feature table, and a boolean adjacency
// matrix keyed by the same row order.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jward/arbor/internal/graph"
)

// errEmptyGraph is returned when an export is requested before a graph has
// been built. Recoverable: build first, then export.
var errEmptyGraph = fmt.Errorf("graph is empty: build it first")

// WriteDOT writes the graph as a strict digraph in Graphviz DOT format:
// one edge line per directed edge and one node line per vertex, with the
// source span as an external label.
func WriteDOT(w io.Writer, g *graph.Graph) error {
	if g.Len() == 0 {
		return errEmptyGraph
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "strict digraph tree {")
	for _, id := range g.Vertices() {
		n := g.Vertex(id)
		for _, neighbor := range n.Connections() {
			fmt.Fprintf(bw, "    %q -> %q;\n", n.ID(), neighbor.ID())
		}
	}
	for _, id := range g.Vertices() {
		n := g.Vertex(id)
		fmt.Fprintf(bw, "    %q [xlabel=%q];\n", n.ID(), fmt.Sprintf("%s->%s", n.Start(), n.End()))
	}
	fmt.Fprintln(bw, "}")

	return bw.Flush()
}

// SaveDOT writes the DOT rendering to a file.
func SaveDOT(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteDOT(f, g); err != nil {
		return err
	}
	return f.Close()
}
