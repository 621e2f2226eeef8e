package graph

import (
	"fmt"
	"sort"
)

// Point is a line/column position copied verbatim from the source parser.
type Point struct {
	Row    uint32
	Column uint32
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Column)
}

// Node is the graph-side representative of one syntax node. Identity (id,
// file, span) is fixed at construction. Text, Type, and VarName are filled
// in by the builder while the walk is in progress; the parent link and the
// neighbor map hold the two relations the graph tracks: single-owner tree
// structure and weighted many-to-many reference edges.
type Node struct {
	id    string
	start Point
	end   Point
	file  string

	Text    string
	Type    string
	VarName string

	parent   *Node
	adjacent map[*Node]float64
}

// NewNode constructs a node with the given identity. Type, Text, VarName,
// and the parent link are set separately by the builder.
func NewNode(id string, start, end Point, file string) *Node {
	return &Node{
		id:       id,
		start:    start,
		end:      end,
		file:     file,
		adjacent: make(map[*Node]float64),
	}
}

// ID returns the node's identifier. There is no setter: ids are immutable
// for the life of the node.
func (n *Node) ID() string { return n.id }

// File returns the path of the source file this node was parsed from.
func (n *Node) File() string { return n.file }

// Start returns the beginning of the node's source span.
func (n *Node) Start() Point { return n.start }

// End returns the end of the node's source span.
func (n *Node) End() Point { return n.end }

// Parent returns the syntactic parent, or nil for a file's root node.
func (n *Node) Parent() *Node { return n.parent }

// SetParent replaces the parent back-reference. A nil parent marks the node
// as a root.
func (n *Node) SetParent(parent *Node) { n.parent = parent }

// AddNeighbor installs a directed edge to neighbor. Re-adding an existing
// neighbor overwrites its weight.
func (n *Node) AddNeighbor(neighbor *Node, weight float64) {
	n.adjacent[neighbor] = weight
}

// Connections returns the outgoing neighbors, sorted by id for stable
// iteration.
func (n *Node) Connections() []*Node {
	out := make([]*Node, 0, len(n.adjacent))
	for neighbor := range n.adjacent {
		out = append(out, neighbor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Weight returns the weight of the edge to neighbor. It is an error to ask
// for the weight of a node that is not a neighbor.
func (n *Node) Weight(neighbor *Node) (float64, error) {
	w, ok := n.adjacent[neighbor]
	if !ok {
		return 0, fmt.Errorf("node %s: %s is not a neighbor", n.id, neighbor.id)
	}
	return w, nil
}

// Descendants returns every node reachable via outgoing edges, depth-first.
// Not cycle-safe: on a graph where resolution has installed bidirectional
// call/definition edges this recurses forever, so call it on tree edges
// only (before resolution) or not at all.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, neighbor := range n.Connections() {
		out = append(out, neighbor)
		out = append(out, neighbor.Descendants()...)
	}
	return out
}

func (n *Node) String() string {
	ids := make([]string, 0, len(n.adjacent))
	for _, neighbor := range n.Connections() {
		ids = append(ids, neighbor.id)
	}
	return fmt.Sprintf("%s adjacent: %v", n.id, ids)
}
