package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiTenno/hekbot/internal/catalog"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "hek"), 0o755))
	writeFile(t, filepath.Join(root, "hek", "classic"))
	writeFile(t, filepath.Join(root, "hek", "loud"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "misc"), 0o755))
	writeFile(t, filepath.Join(root, "misc", "bell"))

	cat, err := catalog.Build(root)
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"hek", "misc"}, cat.Names())

	hek, ok := cat.Collection("hek")
	require.True(t, ok)
	assert.Equal(t, 2, hek.Len())

	s, ok := hek.Sound("classic")
	require.True(t, ok)
	assert.Equal(t, "hek", s.Collection)
	assert.Equal(t, "classic", s.Name)
	assert.Equal(t, filepath.Join(root, "hek", "classic"), s.Path)
}

func TestBuildIgnoresRootFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stray"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "hek"), 0o755))
	writeFile(t, filepath.Join(root, "hek", "classic"))

	cat, err := catalog.Build(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"hek"}, cat.Names())
}

func TestBuildIgnoresNestedDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hek", "deeper"), 0o755))
	writeFile(t, filepath.Join(root, "hek", "deeper", "buried"))
	writeFile(t, filepath.Join(root, "hek", "classic"))

	cat, err := catalog.Build(root)
	require.NoError(t, err)

	hek, ok := cat.Collection("hek")
	require.True(t, ok)
	assert.Equal(t, 1, hek.Len())
	_, ok = hek.Sound("deeper")
	assert.False(t, ok)
}

func TestBuildEmptyCollection(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0o755))

	cat, err := catalog.Build(root)
	require.NoError(t, err)

	empty, ok := cat.Collection("empty")
	require.True(t, ok)
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.Sounds())
}

func TestBuildMissingRoot(t *testing.T) {
	_, err := catalog.Build(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestSoundsSortedByName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "hek"), 0o755))
	for _, name := range []string{"zeta", "alpha", "mid"} {
		writeFile(t, filepath.Join(root, "hek", name))
	}

	cat, err := catalog.Build(root)
	require.NoError(t, err)
	hek, _ := cat.Collection("hek")

	names := make([]string, 0, hek.Len())
	for _, s := range hek.Sounds() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestCollectionLookupCaseSensitive(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "Hek"), 0o755))

	cat, err := catalog.Build(root)
	require.NoError(t, err)

	_, ok := cat.Collection("Hek")
	assert.True(t, ok)
	_, ok = cat.Collection("hek")
	assert.False(t, ok)
}
