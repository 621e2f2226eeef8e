package arbor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/arbor/internal/builder"
	"github.com/jward/arbor/internal/embed"
	"github.com/jward/arbor/internal/graph"
	"github.com/jward/arbor/internal/store"
)

// Engine orchestrates the pipeline: file discovery, parsing, graph
// construction, reference resolution, and optional persistence and
// embedding.
type Engine struct {
	store    *store.Store
	embedder *embed.Embedder
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore attaches a SQLite store. Every successfully built graph is
// persisted to it, replacing any earlier record for the same path. The
// Engine does not close the store; the caller owns it.
func WithStore(s *store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithEmbedder attaches an embedder for producing per-node feature
// vectors via Embeddings.
func WithEmbedder(em *embed.Embedder) Option {
	return func(e *Engine) { e.embedder = em }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of building one file's graph. Close releases the
// graph's internal references when the caller is done with it.
type Result struct {
	FilePath    string
	RootID      string
	Graph       *graph.Graph
	Calls       map[string]string
	Definitions map[string]string
	Imports     map[string]builder.ImportBinding
	Assignments map[string]builder.Assignment
}

// Close tears down the graph, breaking parent and adjacency references.
// The Result's tables remain readable.
func (r *Result) Close() {
	if r.Graph != nil {
		r.Graph.Teardown()
	}
}

// ParseFile reads one Python file, builds its attributed graph, resolves
// references, and persists the graph when a store is attached.
func (e *Engine) ParseFile(ctx context.Context, path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	b := builder.New(path, source)
	rootID, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if _, err := e.store.InsertGraph(path, rootID, b.Graph()); err != nil {
			return nil, fmt.Errorf("store %s: %w", path, err)
		}
	}

	return &Result{
		FilePath:    path,
		RootID:      rootID,
		Graph:       b.Graph(),
		Calls:       b.Calls(),
		Definitions: b.Definitions(),
		Imports:     b.Imports(),
		Assignments: b.Assignments(),
	}, nil
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// ParseDirectory walks root and builds a graph for every Python file,
// skipping hidden directories, node_modules, vendor, and __pycache__.
// Files are processed serially; the first error aborts the walk.
func (e *Engine) ParseDirectory(ctx context.Context, root string) ([]*Result, error) {
	paths, err := listPythonFiles(root)
	if err != nil {
		return nil, err
	}

	var results []*Result
	for _, path := range paths {
		res, err := e.ParseFile(ctx, path)
		if err != nil {
			for _, r := range results {
				r.Close()
			}
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Embeddings produces one feature vector per graph vertex in insertion
// order. Requires an embedder configured via WithEmbedder.
func (e *Engine) Embeddings(g *graph.Graph) ([][]float64, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	ids := g.Vertices()
	vectors := make([][]float64, len(ids))
	for i, id := range ids {
		vectors[i] = e.embedder.EmbedNode(g.Vertex(id))
	}
	return vectors, nil
}

func listPythonFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".py") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
