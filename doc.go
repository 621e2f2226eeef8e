// Package arbor builds attributed graphs from Python source files.
//
// Each file is parsed with tree-sitter and walked into a directed graph:
// one vertex per named syntax node, tree edges from parent to child, and
// semantic edges linking call sites to the definitions and imports they
// refer to. The resulting graphs can be exported as DOT, as CSV feature
// and adjacency tables, persisted to SQLite, or turned into fixed-length
// numeric vectors for downstream models.
//
// Basic usage:
//
//	eng := arbor.New()
//	res, err := eng.ParseFile(ctx, "example.py")
//	if err != nil {
//		...
//	}
//	defer res.Close()
//	fmt.Println(res.Graph.Len())
package arbor
