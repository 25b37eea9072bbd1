package command_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiTenno/hekbot/internal/catalog"
	"github.com/TobiTenno/hekbot/internal/command"
)

func buildCatalog(t *testing.T, layout map[string][]string) *catalog.Catalog {
	t.Helper()
	root := t.TempDir()
	for dir, files := range layout {
		require.NoError(t, os.Mkdir(filepath.Join(root, dir), 0o755))
		for _, f := range files {
			require.NoError(t, os.WriteFile(filepath.Join(root, dir, f), []byte("audio"), 0o644))
		}
	}
	cat, err := catalog.Build(root)
	require.NoError(t, err)
	return cat
}

func TestParse(t *testing.T) {
	cat := buildCatalog(t, map[string][]string{
		"hek":  {"classic", "loud"},
		"misc": {"bell"},
	})
	r := command.NewRouter("!", cat)

	tests := []struct {
		name    string
		content string
		want    command.Intent
	}{
		{"random play", "!hek", command.Intent{Kind: command.Play, Collection: "hek"}},
		{"specific sound", "!hek loud", command.Intent{Kind: command.Play, Collection: "hek", Sound: "loud"}},
		{"prefix case insensitive", "!HEK", command.Intent{Kind: command.None}},
		{"help", "!help", command.Intent{Kind: command.Help}},
		{"help uppercase", "!HELP", command.Intent{Kind: command.Help}},
		{"help with trailing text", "!helpme", command.Intent{Kind: command.Help}},
		{"unknown collection stays silent", "!nosuch", command.Intent{Kind: command.None}},
		{"plain chat", "hello there", command.Intent{Kind: command.None}},
		{"prefix mid-message", "say !hek", command.Intent{Kind: command.None}},
		{"empty message", "", command.Intent{Kind: command.None}},
		{"trailing junk after sound", "!hek loud extra", command.Intent{Kind: command.Play, Collection: "hek", Sound: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Parse(tt.content))
		})
	}
}

func TestParseCollectionLookupIsCaseSensitive(t *testing.T) {
	cat := buildCatalog(t, map[string][]string{"Hek": {"classic"}})
	r := command.NewRouter("!", cat)

	assert.Equal(t, command.Play, r.Parse("!Hek").Kind)
	assert.Equal(t, command.None, r.Parse("!hek").Kind)
}

func TestParseEscapesPrefixMetacharacters(t *testing.T) {
	cat := buildCatalog(t, map[string][]string{"hek": {"classic"}})
	r := command.NewRouter("$.", cat)

	assert.Equal(t, command.Play, r.Parse("$.hek").Kind)
	assert.Equal(t, command.None, r.Parse("xxhek").Kind, "unescaped metacharacters would match any two runes")
}

func TestSelectNamedSound(t *testing.T) {
	cat := buildCatalog(t, map[string][]string{"hek": {"classic", "loud"}})
	r := command.NewRouter("!", cat)

	s, err := r.Select("hek", "loud")
	require.NoError(t, err)
	assert.Equal(t, "hek", s.Collection)
	assert.Equal(t, "loud", s.Name)
	assert.NotEmpty(t, s.Path)
}

func TestSelectRandomStaysInCollection(t *testing.T) {
	cat := buildCatalog(t, map[string][]string{
		"hek":  {"a", "b", "c"},
		"misc": {"other"},
	})
	r := command.NewRouter("!", cat)

	for i := 0; i < 50; i++ {
		s, err := r.Select("hek", "")
		require.NoError(t, err)
		assert.Equal(t, "hek", s.Collection)
		assert.Contains(t, []string{"a", "b", "c"}, s.Name)
	}
}

func TestSelectErrors(t *testing.T) {
	cat := buildCatalog(t, map[string][]string{
		"hek":   {"classic"},
		"empty": {},
	})
	r := command.NewRouter("!", cat)

	_, err := r.Select("nosuch", "")
	assert.ErrorIs(t, err, command.ErrUnknownCollection)

	_, err = r.Select("hek", "nosuch")
	assert.ErrorIs(t, err, command.ErrUnknownSound)

	_, err = r.Select("empty", "")
	assert.ErrorIs(t, err, command.ErrUnknownSound)
}
