package arbor

import (
	"github.com/jward/arbor/internal/builder"
	"github.com/jward/arbor/internal/embed"
	"github.com/jward/arbor/internal/graph"
	"github.com/jward/arbor/internal/store"
)

// Re-exported types so callers can work with results without importing
// internal packages.
type (
	Graph         = graph.Graph
	Node          = graph.Node
	Point         = graph.Point
	Store         = store.Store
	Embedder      = embed.Embedder
	ImportBinding = builder.ImportBinding
	Assignment    = builder.Assignment
)

// NewStore opens a SQLite-backed store at dbPath and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// NewEmbedder creates an embedder with the given total output dimension.
func NewEmbedder(dim int) (*Embedder, error) {
	return embed.NewEmbedder(dim)
}
