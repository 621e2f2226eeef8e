package store

import "time"

type File struct {
	ID         int64
	Path       string
	RootNodeID string
	NodeCount  int
	ParsedAt   time.Time
}

// NodeRow is one node of a stored graph. Ordinal preserves the graph's
// insertion order so the adjacency matrix can be keyed consistently.
type NodeRow struct {
	ID           int64
	FileID       int64
	NodeID       string
	Type         string
	Text         string
	VarName      string
	StartRow     int
	StartCol     int
	EndRow       int
	EndCol       int
	ParentNodeID string
	Ordinal      int
}

type EdgeRow struct {
	ID       int64
	FileID   int64
	FromNode string
	ToNode   string
	Weight   float64
}
