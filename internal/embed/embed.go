// Package embed converts node features into fixed-length numeric vectors:
// a sinusoidal positional encoding of the node's source span concatenated
// with pretrained word-vector lookups of its syntactic type and literal
// text.
package embed

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jward/arbor/internal/graph"
)

// positionBase is the base of the sinusoidal frequency schedule.
const positionBase = 10e-4

// Embedder produces per-node feature vectors of a fixed total dimension.
// The dimension splits into four equal parts: start encoding, end encoding,
// type vector, text vector.
type Embedder struct {
	dim     int
	vectors map[string][]float64
}

// NewEmbedder creates an Embedder with the given total output dimension,
// which must be a positive multiple of four.
func NewEmbedder(dim int) (*Embedder, error) {
	if dim <= 0 || dim%4 != 0 {
		return nil, fmt.Errorf("dimension %d must be a positive multiple of 4", dim)
	}
	return &Embedder{
		dim:     dim,
		vectors: make(map[string][]float64),
	}, nil
}

// Dim returns the total output dimension.
func (e *Embedder) Dim() int { return e.dim }

// LoadVectors reads pretrained word vectors in the plain-text format one
// word per line followed by its components. A leading "count dimension"
// header line is accepted and skipped. Every vector must have dim/4
// components.
func (e *Embedder) LoadVectors(r io.Reader) error {
	want := e.dim / 4
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if first {
			first = false
			// Header line: two integers, no word.
			if len(fields) == 2 {
				if _, err := strconv.Atoi(fields[0]); err == nil {
					continue
				}
			}
		}
		if len(fields)-1 != want {
			return fmt.Errorf("word %q has %d components, want %d", fields[0], len(fields)-1, want)
		}
		vec := make([]float64, want)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("word %q component %d: %w", fields[0], i, err)
			}
			vec[i] = v
		}
		e.vectors[fields[0]] = vec
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read vectors: %w", err)
	}
	return nil
}

// LoadVectorsFile reads pretrained word vectors from a file.
func (e *Embedder) LoadVectorsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := e.LoadVectors(f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Embed produces the feature vector for one node: positional encodings of
// the span's start and end, then word vectors for the syntactic type and
// literal text. Unknown words map to zero vectors.
func (e *Embedder) Embed(start, end graph.Point, nodeType, text string) []float64 {
	quarter := e.dim / 4
	out := make([]float64, 0, e.dim)
	out = append(out, positionEncoding(start, quarter)...)
	out = append(out, positionEncoding(end, quarter)...)
	out = append(out, e.wordVector(nodeType)...)
	out = append(out, e.wordVector(text)...)
	return out
}

// EmbedNode embeds a graph node, recovering type and text from its id the
// same way the tabular consumer does.
func (e *Embedder) EmbedNode(n *graph.Node) []float64 {
	return e.Embed(n.Start(), n.End(), NodeType(n.ID()), NodeText(n.ID()))
}

func (e *Embedder) wordVector(word string) []float64 {
	if vec, ok := e.vectors[word]; ok {
		return vec
	}
	return make([]float64, e.dim/4)
}

// positionEncoding maps a line/column point to a dim-length vector of
// interleaved sin/cos terms: the first half encodes the row, the second
// half the column, each on a geometric frequency schedule.
func positionEncoding(p graph.Point, dim int) []float64 {
	res := make([]float64, dim)
	x := float64(p.Row)
	y := float64(p.Column)
	half := dim / 2
	for i := 0; i < dim/4; i++ {
		freq := math.Pow(positionBase, float64(4*i)/float64(dim))
		res[2*i] = math.Sin(x * freq)
		res[2*i+1] = math.Cos(x * freq)
		res[2*i+half] = math.Sin(y * freq)
		res[2*i+half+1] = math.Cos(y * freq)
	}
	return res
}

var counterSuffix = regexp.MustCompile(`^(.*)(_[0-9]+)$`)

// NodeText recovers the literal text from a node id: the part after the
// " | " separator with any counter suffix stripped. Ids without a
// separator carry no text.
func NodeText(id string) string {
	i := strings.Index(id, " | ")
	if i < 0 {
		return ""
	}
	rest := id[i+len(" | "):]
	if m := counterSuffix.FindStringSubmatch(rest); m != nil {
		return m[1]
	}
	return rest
}

// NodeType recovers the syntactic type from a node id: the part before the
// " | " separator, or everything before the counter suffix when there is
// no separator.
func NodeType(id string) string {
	if i := strings.Index(id, " | "); i >= 0 {
		return id[:i]
	}
	if j := strings.LastIndex(id, "_"); j >= 0 {
		return id[:j]
	}
	return id
}
