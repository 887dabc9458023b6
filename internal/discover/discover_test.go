package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, make([]byte, size), 0o644))
}

func TestDiscoverLexicographicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/b.go", 10)
	writeFile(t, root, "src/a.go", 10)
	writeFile(t, root, "src/c.go", 10)

	d := New(nil, nil, 1<<20)
	files, err := d.Discover(root)
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Equal(t, []string{"src/a.go", "src/b.go", "src/c.go"}, []string{files[0].Path, files[1].Path, files[2].Path})
}

func TestDiscoverExcludesDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.go", 10)
	writeFile(t, root, "node_modules/pkg/index.js", 10)
	writeFile(t, root, ".git/HEAD", 10)

	d := New(nil, nil, 1<<20)
	files, err := d.Discover(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "src/main.go", files[0].Path)
}

func TestDiscoverSizeCapBoundary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "exact.go", 100)
	writeFile(t, root, "over.go", 101)

	d := New(nil, nil, 100)
	files, err := d.Discover(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "exact.go", files[0].Path)
}

func TestDiscoverHiddenRootEntriesExcluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden/keep.go", 10)
	writeFile(t, root, "visible/keep.go", 10)

	d := New(nil, nil, 1<<20)
	files, err := d.Discover(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "visible/keep.go", files[0].Path)
}

func TestDiscoverEmptyProject(t *testing.T) {
	root := t.TempDir()
	d := New(nil, nil, 1<<20)
	files, err := d.Discover(root)
	require.NoError(t, err)
	require.Empty(t, files)
}
