// Package builder turns one parsed Python file into an attributed graph.
// A single recursive descent materializes one graph node per named syntax
// node and fills four per-file symbol tables (calls, imports, definitions,
// assignments); a deferred resolution pass then links calls to their
// definitions and import sites.
package builder

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/jward/arbor/internal/graph"
)

// ImportBinding records where a name was bound by an import and the dotted
// module path it came from.
type ImportBinding struct {
	NodeID string
	Source string
}

// Assignment records a variable's assigned node and the syntactic type of
// the assigned value. Populated during the walk but not consumed by
// resolution; reserved for type propagation.
type Assignment struct {
	Type   string
	NodeID string
}

// importEdge is a deferred call -> import edge. Both endpoints are known at
// detection time, but edges are not installed mid-walk to keep the tree
// traversal over pure tree structure.
type importEdge struct {
	from string
	to   string
}

// Builder drives the recursive descent for one file. Symbol tables are
// file-scoped and discarded with the Builder; only the graph outlives it.
type Builder struct {
	filepath string
	source   []byte

	graph  *graph.Graph
	counts map[string]int

	calls       map[string]string
	definitions map[string]string
	imports     map[string]ImportBinding
	assignments map[string]Assignment

	importEdges []importEdge
}

// New creates a Builder for one file's source bytes.
func New(filepath string, source []byte) *Builder {
	return &Builder{
		filepath:    filepath,
		source:      source,
		graph:       graph.New(),
		counts:      make(map[string]int),
		calls:       make(map[string]string),
		definitions: make(map[string]string),
		imports:     make(map[string]ImportBinding),
		assignments: make(map[string]Assignment),
	}
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *graph.Graph { return b.graph }

// Calls returns the callee name -> most recent call-site id table. A later
// call to the same name overwrites the earlier entry.
func (b *Builder) Calls() map[string]string { return b.calls }

// Definitions returns the function/class name -> defining node id table.
func (b *Builder) Definitions() map[string]string { return b.definitions }

// Imports returns the bound name -> import binding table.
func (b *Builder) Imports() map[string]ImportBinding { return b.imports }

// Assignments returns the variable -> assignment table.
func (b *Builder) Assignments() map[string]Assignment { return b.assignments }

// Build parses the source with tree-sitter, walks the tree into the graph,
// and resolves references. Returns the root node's id. Any error aborts
// this file's processing; unresolved references are not errors.
func (b *Builder) Build(ctx context.Context) (string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, b.source)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", b.filepath, err)
	}
	defer tree.Close()

	rootID, err := b.walk(tree.RootNode(), nil)
	if err != nil {
		return "", fmt.Errorf("walk %s: %w", b.filepath, err)
	}
	if err := b.resolve(); err != nil {
		return "", fmt.Errorf("resolve %s: %w", b.filepath, err)
	}
	return rootID, nil
}

// walk inserts one graph node for the syntax node, records it in the symbol
// tables where relevant, then recurses into named children. Insertion
// happens before recursion so every child's parent reference is valid at
// its own insertion time.
func (b *Builder) walk(node *sitter.Node, parent *graph.Node) (string, error) {
	text := ""
	if node.IsNamed() && node.ChildCount() == 0 {
		text = node.Content(b.source)
	}
	if node.Type() == "binary_operator" && node.ChildCount() > 1 {
		// Operator token only, not the whole expression.
		text = node.Child(1).Content(b.source)
	}
	if node.Type() == "attribute" {
		// Full dotted text, e.g. "os.getcwd".
		text = node.Content(b.source)
	}

	name := node.Type()
	if text != "" {
		name = node.Type() + " | " + text
	}
	if node.Type() == "module" {
		// The file root carries the path instead of a counter.
		name = node.Type() + " | " + b.filepath
	} else {
		count := b.counts[name]
		b.counts[name] = count + 1
		name = fmt.Sprintf("%s_%d", name, count)
	}

	n := graph.NewNode(name, point(node.StartPoint()), point(node.EndPoint()), b.filepath)
	n.Type = node.Type()
	n.Text = text
	n.SetParent(parent)

	id, err := b.graph.AddVertex(n)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", name, err)
	}

	switch node.Type() {
	case "identifier":
		n.VarName = node.Content(b.source)
	case "call":
		b.handleCall(node, id)
	case "aliased_import":
		b.handleImport(node, id)
	case "dotted_name":
		if p := node.Parent(); p != nil && strings.HasPrefix(p.Type(), "import") {
			b.handleImport(node, id)
		}
	case "function_definition", "class_definition":
		b.handleDefinition(node, id)
	case "assignment":
		b.handleAssignment(node, id)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.IsNamed() {
			// Punctuation and keywords never become graph nodes.
			continue
		}
		childID, err := b.walk(child, n)
		if err != nil {
			return "", err
		}
		if err := b.graph.AddEdge(id, childID, 1, false); err != nil {
			return "", fmt.Errorf("tree edge %s -> %s: %w", id, childID, err)
		}
	}

	return id, nil
}

// handleCall records a call site keyed by callee name and attempts the
// immediate call -> import link. Built-in callees are excluded so the call
// graph tracks user code, not the standard vocabulary.
func (b *Builder) handleCall(node *sitter.Node, id string) {
	callee := node.Child(0)
	if callee == nil {
		return
	}
	name := callee.Content(b.source)
	if pythonBuiltins[name] {
		return
	}
	b.calls[name] = id
	b.callToImport(name, id)
}

// callToImport queues a call -> import edge when the callee name, or its
// longest dotted prefix bound by an import, is in the imports table. A
// dotted callee is progressively shortened until a binding matches or no
// dot remains; exhaustion means the call stays unlinked.
func (b *Builder) callToImport(callee, callID string) {
	if binding, ok := b.imports[callee]; ok {
		b.importEdges = append(b.importEdges, importEdge{from: callID, to: binding.NodeID})
		return
	}
	if i := strings.LastIndex(callee, "."); i >= 0 {
		b.callToImport(callee[:i], callID)
	}
}

// handleImport records the name an import statement binds. Aliased imports
// bind the alias; dotted names directly under an import statement bind the
// dotted path. For from-imports the module segment itself is skipped: only
// the imported members are bindings.
func (b *Builder) handleImport(node *sitter.Node, id string) {
	p := node.Parent()
	if p == nil {
		return
	}

	switch node.Type() {
	case "aliased_import":
		var source string
		switch p.Type() {
		case "import_from_statement":
			source = p.Child(1).Content(b.source) + "." + node.Child(0).Content(b.source)
		case "import_statement":
			source = node.Child(0).Content(b.source)
		}
		bound := node.Child(2).Content(b.source)
		b.imports[bound] = ImportBinding{NodeID: id, Source: source}

	case "dotted_name":
		var source string
		switch p.Type() {
		case "import_from_statement":
			if first := p.Child(1); first != nil && first.StartByte() == node.StartByte() {
				return // the module path of "from x import y", not a binding
			}
			source = p.Child(1).Content(b.source)
		case "import_statement":
			source = ""
		}
		b.imports[node.Content(b.source)] = ImportBinding{NodeID: id, Source: source}
	}
}

// handleDefinition records a function or class definition keyed by name.
func (b *Builder) handleDefinition(node *sitter.Node, id string) {
	nameNode := node.Child(1)
	if nameNode == nil {
		return
	}
	b.definitions[nameNode.Content(b.source)] = id
}

// handleAssignment records the assigned variable and the syntactic type of
// the right-hand side, a rough stand-in for the value's type.
func (b *Builder) handleAssignment(node *sitter.Node, id string) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	valueType := ""
	if right := node.ChildByFieldName("right"); right != nil {
		valueType = right.Type()
	}
	b.assignments[left.Content(b.source)] = Assignment{Type: valueType, NodeID: id}
}

// resolve installs the deferred edges. Call<->definition pairs become two
// directed edges so traversal can move from use to declaration and back;
// queued call -> import edges are drained afterwards. A failure here means
// a queued edge references a node that was never inserted — a resolution
// bug, surfaced rather than swallowed. Names with no matching definition
// or import simply produce no edge.
func (b *Builder) resolve() error {
	for name, callID := range b.calls {
		defID, ok := b.definitions[name]
		if !ok {
			continue
		}
		if err := b.graph.AddEdge(callID, defID, 1, false); err != nil {
			return fmt.Errorf("call edge for %s: %w", name, err)
		}
		if err := b.graph.AddEdge(defID, callID, 1, false); err != nil {
			return fmt.Errorf("definition edge for %s: %w", name, err)
		}
	}
	for _, e := range b.importEdges {
		if err := b.graph.AddEdge(e.from, e.to, 1, false); err != nil {
			return fmt.Errorf("import edge %s -> %s: %w", e.from, e.to, err)
		}
	}
	return nil
}

func point(p sitter.Point) graph.Point {
	return graph.Point{Row: p.Row, Column: p.Column}
}
