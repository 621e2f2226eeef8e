package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jward/arbor/internal/graph"
)

// WriteNodeFeatures writes one row per node with columns {node, feat, file},
// where feat is the "start->end" span. Row order is insertion order, which
// the adjacency export relies on.
func WriteNodeFeatures(w io.Writer, g *graph.Graph) error {
	if g.Len() == 0 {
		return errEmptyGraph
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node", "feat", "file"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, id := range g.Vertices() {
		n := g.Vertex(id)
		feat := fmt.Sprintf("%s->%s", n.Start(), n.End())
		if err := cw.Write([]string{n.ID(), feat, n.File()}); err != nil {
			return fmt.Errorf("write node %s: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAdjacency writes the boolean adjacency matrix as 0/1 cells. Rows and
// columns are keyed by the same insertion order as WriteNodeFeatures.
func WriteAdjacency(w io.Writer, g *graph.Graph) error {
	if g.Len() == 0 {
		return errEmptyGraph
	}
	ids := g.Vertices()
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	cw := csv.NewWriter(w)
	row := make([]string, len(ids))
	for _, id := range ids {
		for i := range row {
			row[i] = "0"
		}
		for _, neighbor := range g.Vertex(id).Connections() {
			row[index[neighbor.ID()]] = "1"
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write adjacency row for %s: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the node-feature table and adjacency matrix to the given
// file paths.
func SaveCSV(nodesPath, adjPath string, g *graph.Graph) error {
	if err := saveWith(nodesPath, g, WriteNodeFeatures); err != nil {
		return err
	}
	return saveWith(adjPath, g, WriteAdjacency)
}

func saveWith(path string, g *graph.Graph, write func(io.Writer, *graph.Graph) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f, g); err != nil {
		return err
	}
	return f.Close()
}

// Matrix returns the boolean adjacency matrix and the row-order ids, for
// callers that want the structure rather than a serialized file.
func Matrix(g *graph.Graph) ([][]bool, []string) {
	ids := g.Vertices()
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	m := make([][]bool, len(ids))
	for i, id := range ids {
		m[i] = make([]bool, len(ids))
		for _, neighbor := range g.Vertex(id).Connections() {
			m[i][index[neighbor.ID()]] = true
		}
	}
	return m, ids
}
