package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadProjectIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "PROJECT_INDEX.json")

	idx := NewProjectIndex("/repo", time.Time{}, time.Now())
	idx.Files["a.go"] = FileRecord{Path: "a.go", Language: LangGo}
	idx.SymbolIndex["Foo"] = "a.go:1"

	require.NoError(t, SaveProjectIndex(path, idx))

	loaded, err := LoadProjectIndex(path)
	require.NoError(t, err)
	require.Equal(t, idx.ProjectRoot, loaded.ProjectRoot)
	require.Contains(t, loaded.Files, "a.go")
	require.Equal(t, "a.go:1", loaded.SymbolIndex["Foo"])
}

func TestLoadProjectIndexMissingFileReturnsError(t *testing.T) {
	_, err := LoadProjectIndex(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}
