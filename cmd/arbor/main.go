package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jward/arbor"
	"github.com/jward/arbor/internal/export"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "arbor",
	Short:         "Build attributed graphs from Python source",
	Long:          "Arbor parses Python files with tree-sitter into attributed graphs with call, definition, and import edges, and exports them as DOT, CSV, SQLite, or feature vectors.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

var (
	flagDB       string
	flagDOT      string
	flagNodesCSV string
	flagAdjCSV   string
	flagVectors  string
	flagDim      int
)

var parseCmd = &cobra.Command{
	Use:   "parse <path>",
	Short: "Parse a Python file or directory into graphs",
	Long:  "Parses the given file, or every .py file under the given directory, builds the attributed graph for each, and writes the requested exports.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&flagDB, "db", "", "write graphs to a SQLite database at this path")
	parseCmd.Flags().StringVar(&flagDOT, "dot", "", "write a Graphviz DOT file per graph under this directory")
	parseCmd.Flags().StringVar(&flagNodesCSV, "nodes-csv", "", "write node feature CSVs under this directory")
	parseCmd.Flags().StringVar(&flagAdjCSV, "adj-csv", "", "write adjacency matrix CSVs under this directory")
	parseCmd.Flags().StringVar(&flagVectors, "vectors", "", "pretrained word vectors file for feature embedding")
	parseCmd.Flags().IntVar(&flagDim, "dim", 128, "total embedding dimension (multiple of 4)")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	start := time.Now()

	target, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving path %q: %w", args[0], err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("path not found: %s", target)
	}

	var opts []arbor.Option
	if flagDB != "" {
		s, err := arbor.NewStore(flagDB)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer s.Close()
		opts = append(opts, arbor.WithStore(s))
	}
	if flagVectors != "" {
		em, err := arbor.NewEmbedder(flagDim)
		if err != nil {
			return err
		}
		if err := em.LoadVectorsFile(flagVectors); err != nil {
			return err
		}
		opts = append(opts, arbor.WithEmbedder(em))
	}

	eng := arbor.New(opts...)
	ctx := context.Background()

	var results []*arbor.Result
	if info.IsDir() {
		results, err = eng.ParseDirectory(ctx, target)
	} else {
		var res *arbor.Result
		res, err = eng.ParseFile(ctx, target)
		if res != nil {
			results = append(results, res)
		}
	}
	if err != nil {
		return err
	}
	defer func() {
		for _, r := range results {
			r.Close()
		}
	}()

	for _, res := range results {
		if err := writeExports(res); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Parsed %d file(s) in %s\n",
		len(results), time.Since(start).Round(time.Millisecond))
	if flagDB != "" {
		fmt.Fprintf(os.Stderr, "Database: %s\n", flagDB)
	}
	return nil
}

// writeExports writes the per-graph artifacts requested by flags. Output
// file names derive from the parsed file's base name.
func writeExports(res *arbor.Result) error {
	base := strings.TrimSuffix(filepath.Base(res.FilePath), ".py")

	if flagDOT != "" {
		if err := os.MkdirAll(flagDOT, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", flagDOT, err)
		}
		if err := export.SaveDOT(filepath.Join(flagDOT, base+".dot"), res.Graph); err != nil {
			return fmt.Errorf("dot export for %s: %w", res.FilePath, err)
		}
	}

	if flagNodesCSV != "" || flagAdjCSV != "" {
		nodesDir := flagNodesCSV
		if nodesDir == "" {
			nodesDir = flagAdjCSV
		}
		adjDir := flagAdjCSV
		if adjDir == "" {
			adjDir = flagNodesCSV
		}
		for _, dir := range []string{nodesDir, adjDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}
		err := export.SaveCSV(
			filepath.Join(nodesDir, base+"_nodes.csv"),
			filepath.Join(adjDir, base+"_adj.csv"),
			res.Graph,
		)
		if err != nil {
			return fmt.Errorf("csv export for %s: %w", res.FilePath, err)
		}
	}

	return nil
}
