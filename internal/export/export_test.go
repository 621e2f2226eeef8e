package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/arbor/internal/graph"
)

// newTestGraph builds a three-node graph: root -> a, root -> b, a -> b.
func newTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	root := graph.NewNode("module | test.py", graph.Point{}, graph.Point{Row: 3}, "test.py")
	a := graph.NewNode("call_0", graph.Point{Row: 1}, graph.Point{Row: 1, Column: 5}, "test.py")
	b := graph.NewNode("identifier | f_0", graph.Point{Row: 2}, graph.Point{Row: 2, Column: 1}, "test.py")

	_, err := g.AddVertex(root)
	require.NoError(t, err)
	a.SetParent(root)
	_, err = g.AddVertex(a)
	require.NoError(t, err)
	b.SetParent(a)
	_, err = g.AddVertex(b)
	require.NoError(t, err)

	require.NoError(t, g.AddEdge("module | test.py", "call_0", 1, false))
	require.NoError(t, g.AddEdge("module | test.py", "identifier | f_0", 1, false))
	require.NoError(t, g.AddEdge("call_0", "identifier | f_0", 1, false))
	return g
}

func TestWriteDOT_EmptyGraph(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := WriteDOT(&buf, graph.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestWriteDOT_Format(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, newTestGraph(t)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "strict digraph tree {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `"module | test.py" -> "call_0";`)
	assert.Contains(t, out, `"call_0" -> "identifier | f_0";`)
	assert.Contains(t, out, `"call_0" [xlabel="(1, 0)->(1, 5)"];`)
}

func TestWriteNodeFeatures_RowPerNode(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteNodeFeatures(&buf, newTestGraph(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "node,feat,file", lines[0])
	assert.Contains(t, lines[1], "module | test.py")
	assert.Contains(t, lines[1], "(0, 0)->(3, 0)")
	assert.Contains(t, lines[1], "test.py")
}

func TestWriteAdjacency_MatchesEdges(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteAdjacency(&buf, newTestGraph(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	// Row order is insertion order: root, call_0, identifier | f_0.
	assert.Equal(t, "0,1,1", lines[0])
	assert.Equal(t, "0,0,1", lines[1])
	assert.Equal(t, "0,0,0", lines[2])
}

func TestMatrix_KeyedByInsertionOrder(t *testing.T) {
	t.Parallel()
	m, ids := Matrix(newTestGraph(t))

	require.Equal(t, []string{"module | test.py", "call_0", "identifier | f_0"}, ids)
	assert.True(t, m[0][1])
	assert.True(t, m[0][2])
	assert.True(t, m[1][2])
	assert.False(t, m[2][0])
}

func TestSaveCSV_WritesBothFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	nodes := dir + "/nodes.csv"
	adj := dir + "/adj.csv"

	require.NoError(t, SaveCSV(nodes, adj, newTestGraph(t)))

	assert.FileExists(t, nodes)
	assert.FileExists(t, adj)
}
