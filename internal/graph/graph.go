// Package graph holds the attributed graph built from one file's syntax
// tree: one Node per syntax node, a single-owner parent link per node, and
// weighted neighbor edges carrying both tree structure and resolved
// call/import references.
package graph

import (
	"fmt"
	"strings"
)

// Graph owns all nodes for one parse unit. It is append-only (vertices are
// never removed individually) and single-writer: no concurrent mutation.
type Graph struct {
	vertices map[string]*Node
	order    []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{vertices: make(map[string]*Node)}
}

// AddVertex registers node by id and returns the id. The node's parent, if
// set, must already be present in the graph, and the id must not collide
// with an existing vertex — both are builder bugs, not input conditions.
func (g *Graph) AddVertex(n *Node) (string, error) {
	if p := n.Parent(); p != nil {
		if _, ok := g.vertices[p.ID()]; !ok {
			return "", fmt.Errorf("parent %s not in graph", p.ID())
		}
	}
	if _, ok := g.vertices[n.ID()]; ok {
		return "", fmt.Errorf("duplicate vertex %s", n.ID())
	}
	g.vertices[n.ID()] = n
	g.order = append(g.order, n.ID())
	return n.ID(), nil
}

// AddEdge installs a weighted edge from one vertex to another. Both
// endpoints must already be present. With bidirectional set, the reverse
// edge is installed as well.
func (g *Graph) AddEdge(from, to string, weight float64, bidirectional bool) error {
	src, ok := g.vertices[from]
	if !ok {
		return fmt.Errorf("vertex %s not in graph", from)
	}
	dst, ok := g.vertices[to]
	if !ok {
		return fmt.Errorf("vertex %s not in graph", to)
	}
	src.AddNeighbor(dst, weight)
	if bidirectional {
		dst.AddNeighbor(src, weight)
	}
	return nil
}

// Vertex returns the node for id, or nil when absent. Unlike AddEdge,
// absence here is a valid query result rather than an invariant breach.
func (g *Graph) Vertex(id string) *Node {
	return g.vertices[id]
}

// Vertices returns all vertex ids in insertion order.
func (g *Graph) Vertices() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.vertices) }

// Parent returns the parent of the vertex with the given id, or nil when
// the vertex is absent or is a root.
func (g *Graph) Parent(id string) *Node {
	n := g.vertices[id]
	if n == nil {
		return nil
	}
	return n.Parent()
}

// NearestAncestorOfType walks parent links upward from id while the parent
// has the given syntactic type, returning the highest such ancestor. When
// no parent matches, the vertex itself is returned. Returns nil when id is
// absent or has no parent at all. Used to normalize chained attribute
// accesses to their outermost node.
func (g *Graph) NearestAncestorOfType(id, syntacticType string) *Node {
	n := g.vertices[id]
	if n == nil || n.Parent() == nil {
		return nil
	}
	for n.Parent() != nil && n.Parent().Type == syntacticType {
		n = n.Parent()
	}
	return n
}

// Teardown clears every node's parent reference and neighbor map, then the
// vertex table. The graph is unusable afterwards.
func (g *Graph) Teardown() {
	for _, n := range g.vertices {
		n.SetParent(nil)
		for neighbor := range n.adjacent {
			delete(n.adjacent, neighbor)
		}
	}
	g.vertices = make(map[string]*Node)
	g.order = nil
}

func (g *Graph) String() string {
	var sb strings.Builder
	sb.WriteString("----------\n")
	for i, id := range g.order {
		if i > 0 {
			sb.WriteString("\n-\n")
		}
		sb.WriteString(g.vertices[id].String())
	}
	sb.WriteString("\n----------")
	return sb.String()
}
