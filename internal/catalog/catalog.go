// Package catalog builds the immutable collection -> sound -> file mapping
// from a directory tree at startup.
//
// Each immediate subdirectory of the root becomes a collection named after the
// directory; each regular file inside becomes a sound named after the file.
// Files at the root level and anything nested deeper than one level are
// ignored.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Sound is a single playable entry: its name and the path to its audio file.
type Sound struct {
	Collection string
	Name       string
	Path       string
}

// Collection is a named, read-only group of sounds.
type Collection struct {
	Name   string
	sounds map[string]Sound
}

// Sound returns the named sound, if present.
func (c Collection) Sound(name string) (Sound, bool) {
	s, ok := c.sounds[name]
	return s, ok
}

// Sounds returns all entries sorted by name.
func (c Collection) Sounds() []Sound {
	out := make([]Sound, 0, len(c.sounds))
	for _, s := range c.sounds {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of sounds in the collection.
func (c Collection) Len() int {
	return len(c.sounds)
}

// Catalog is the full collection map. Read-only after Build.
type Catalog struct {
	collections map[string]Collection
}

// Build scans root and constructs the catalog. An unreadable root or
// subdirectory is a startup-time error; the process should not serve
// requests without a catalog.
func Build(root string) (*Catalog, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading sound folder %q: %w", root, err)
	}

	collections := make(map[string]Collection)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading collection %q: %w", dir, err)
		}

		sounds := make(map[string]Sound)
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			sounds[file.Name()] = Sound{
				Collection: entry.Name(),
				Name:       file.Name(),
				Path:       filepath.Join(dir, file.Name()),
			}
		}
		collections[entry.Name()] = Collection{Name: entry.Name(), sounds: sounds}
	}

	return &Catalog{collections: collections}, nil
}

// Collection returns the named collection, if present. Lookup is
// case-sensitive.
func (c *Catalog) Collection(name string) (Collection, bool) {
	coll, ok := c.collections[name]
	return coll, ok
}

// Names returns all collection names sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.collections))
	for name := range c.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of collections.
func (c *Catalog) Len() int {
	return len(c.collections)
}
