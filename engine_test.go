package arbor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleSource = `import os

def f():
    return os.getcwd()

f()
`

func TestParseFile(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "sample.py", sampleSource)

	eng := New()
	res, err := eng.ParseFile(context.Background(), path)
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, path, res.FilePath)
	assert.Equal(t, "module | "+path, res.RootID)
	assert.Positive(t, res.Graph.Len())
	assert.Contains(t, res.Definitions, "f")
	assert.Contains(t, res.Imports, "os")
	assert.Contains(t, res.Calls, "f")
	assert.Contains(t, res.Calls, "os.getcwd")
}

func TestParseFile_MissingFile(t *testing.T) {
	t.Parallel()
	eng := New()
	_, err := eng.ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.py"))
	require.Error(t, err)
}

func TestParseFile_PersistsToStore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "sample.py", sampleSource)

	s, err := NewStore(filepath.Join(dir, "arbor.db"))
	require.NoError(t, err)
	defer s.Close()

	eng := New(WithStore(s))
	res, err := eng.ParseFile(context.Background(), path)
	require.NoError(t, err)
	defer res.Close()

	f, err := s.FileByPath(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, res.RootID, f.RootNodeID)
	assert.Equal(t, res.Graph.Len(), f.NodeCount)
}

func TestParseDirectory_SkipsNonPythonAndSpecialDirs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "x = 1\n")
	writeFile(t, dir, filepath.Join("pkg", "b.py"), "y = 2\n")
	writeFile(t, dir, "notes.txt", "not python")
	writeFile(t, dir, filepath.Join("__pycache__", "c.py"), "z = 3\n")
	writeFile(t, dir, filepath.Join(".hidden", "d.py"), "w = 4\n")
	writeFile(t, dir, filepath.Join("vendor", "e.py"), "v = 5\n")

	eng := New()
	results, err := eng.ParseDirectory(context.Background(), dir)
	require.NoError(t, err)
	defer func() {
		for _, r := range results {
			r.Close()
		}
	}()

	require.Len(t, results, 2)
	paths := []string{results[0].FilePath, results[1].FilePath}
	assert.Contains(t, paths, filepath.Join(dir, "a.py"))
	assert.Contains(t, paths, filepath.Join(dir, "pkg", "b.py"))
}

func TestEmbeddings(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "sample.py", sampleSource)

	em, err := NewEmbedder(16)
	require.NoError(t, err)

	eng := New(WithEmbedder(em))
	res, err := eng.ParseFile(context.Background(), path)
	require.NoError(t, err)
	defer res.Close()

	vectors, err := eng.Embeddings(res.Graph)
	require.NoError(t, err)
	require.Len(t, vectors, res.Graph.Len())
	for _, v := range vectors {
		assert.Len(t, v, 16)
	}
}

func TestEmbeddings_NoEmbedder(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "sample.py", "x = 1\n")

	eng := New()
	res, err := eng.ParseFile(context.Background(), path)
	require.NoError(t, err)
	defer res.Close()

	_, err = eng.Embeddings(res.Graph)
	require.Error(t, err)
}
