package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jward/arbor/internal/graph"
)

// InsertGraph stores a built graph for a file in one transaction: the file
// record, one node row per vertex in insertion order, and one edge row per
// directed edge. An existing record for the same path is replaced.
func (s *Store) InsertGraph(path, rootID string, g *graph.Graph) (int64, error) {
	if g.Len() == 0 {
		return 0, fmt.Errorf("graph for %s is empty: build it first", path)
	}

	existing, err := s.FileByPath(path)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if err := s.DeleteFileData(existing.ID); err != nil {
			return 0, fmt.Errorf("replace %s: %w", path, err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO files (path, root_node_id, node_count, parsed_at) VALUES (?, ?, ?, ?)",
		path, rootID, g.Len(), time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	nodeStmt, err := tx.Prepare(`INSERT INTO nodes
		(file_id, node_id, type, text, var_name, start_row, start_col, end_row, end_col, parent_node_id, ordinal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	edgeStmt, err := tx.Prepare(
		"INSERT INTO edges (file_id, from_node, to_node, weight) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for ordinal, id := range g.Vertices() {
		n := g.Vertex(id)
		parentID := ""
		if p := n.Parent(); p != nil {
			parentID = p.ID()
		}
		_, err := nodeStmt.Exec(
			fileID, n.ID(), n.Type, n.Text, n.VarName,
			n.Start().Row, n.Start().Column, n.End().Row, n.End().Column,
			parentID, ordinal,
		)
		if err != nil {
			return 0, fmt.Errorf("insert node %s: %w", id, err)
		}

		for _, neighbor := range n.Connections() {
			w, err := n.Weight(neighbor)
			if err != nil {
				return 0, fmt.Errorf("edge weight %s -> %s: %w", id, neighbor.ID(), err)
			}
			if _, err := edgeStmt.Exec(fileID, n.ID(), neighbor.ID(), w); err != nil {
				return 0, fmt.Errorf("insert edge %s -> %s: %w", id, neighbor.ID(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return fileID, nil
}

// FileByPath returns the file record for path, or nil when absent.
func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		"SELECT id, path, root_node_id, node_count, parsed_at FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.RootNodeID, &f.NodeCount, &f.ParsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// NodesByFile returns a file's node rows in stored (insertion) order.
func (s *Store) NodesByFile(fileID int64) ([]*NodeRow, error) {
	rows, err := s.db.Query(`SELECT id, file_id, node_id, type, text, var_name,
		start_row, start_col, end_row, end_col, parent_node_id, ordinal
		FROM nodes WHERE file_id = ? ORDER BY ordinal`, fileID)
	if err != nil {
		return nil, fmt.Errorf("nodes by file: %w", err)
	}
	defer rows.Close()

	var nodes []*NodeRow
	for rows.Next() {
		n := &NodeRow{}
		if err := rows.Scan(
			&n.ID, &n.FileID, &n.NodeID, &n.Type, &n.Text, &n.VarName,
			&n.StartRow, &n.StartCol, &n.EndRow, &n.EndCol, &n.ParentNodeID, &n.Ordinal,
		); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// EdgesByFile returns a file's directed edges.
func (s *Store) EdgesByFile(fileID int64) ([]*EdgeRow, error) {
	rows, err := s.db.Query(
		"SELECT id, file_id, from_node, to_node, weight FROM edges WHERE file_id = ?", fileID)
	if err != nil {
		return nil, fmt.Errorf("edges by file: %w", err)
	}
	defer rows.Close()

	var edges []*EdgeRow
	for rows.Next() {
		e := &EdgeRow{}
		if err := rows.Scan(&e.ID, &e.FileID, &e.FromNode, &e.ToNode, &e.Weight); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Adjacency reconstructs the boolean adjacency matrix for a file, keyed by
// the stored node order. Returns the matrix and the node ids in row order.
func (s *Store) Adjacency(fileID int64) ([][]bool, []string, error) {
	nodes, err := s.NodesByFile(fileID)
	if err != nil {
		return nil, nil, err
	}
	index := make(map[string]int, len(nodes))
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		index[n.NodeID] = i
		ids[i] = n.NodeID
	}

	edges, err := s.EdgesByFile(fileID)
	if err != nil {
		return nil, nil, err
	}

	m := make([][]bool, len(nodes))
	for i := range m {
		m[i] = make([]bool, len(nodes))
	}
	for _, e := range edges {
		from, okFrom := index[e.FromNode]
		to, okTo := index[e.ToNode]
		if !okFrom || !okTo {
			return nil, nil, fmt.Errorf("edge %s -> %s references unknown node", e.FromNode, e.ToNode)
		}
		m[from][to] = true
	}
	return m, ids, nil
}
