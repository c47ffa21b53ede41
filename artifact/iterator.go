package artifact

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Iterator walks the artifacts of a directory, reading each payload only when
// it is reached.
type Iterator struct {
	dir   string
	names []string
	pos   int
}

// NewIterator lists dir and keeps the regular files with extension ext. It
// fails when any entry of the directory has no extension or when a kept file
// has nothing before its extension.
func NewIterator(dir, ext string) (*Iterator, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}
	names := make([]string, 0, len(entries))
	regular := make(map[string]bool, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
		regular[e.Name()] = e.Type().IsRegular()
	}
	matched, err := FilterByExtension(names, ext)
	if err != nil {
		return nil, err
	}
	files := matched[:0]
	for _, name := range matched {
		// Directories named like artifacts are skipped.
		if !regular[name] {
			continue
		}
		if NameOf(name) == "" {
			return nil, errors.Wrapf(ErrInvalidArtifactName, "%s has an empty name", name)
		}
		files = append(files, name)
	}
	return &Iterator{dir: dir, names: files}, nil
}

// Len is the number of artifacts the iterator yields in total.
func (i *Iterator) Len() int {
	return len(i.names)
}

func (i *Iterator) HasNext() bool {
	return i.pos < len(i.names)
}

// Names returns the artifact names in iteration order.
func (i *Iterator) Names() []string {
	out := make([]string, len(i.names))
	for k, n := range i.names {
		out[k] = NameOf(n)
	}
	return out
}

// Peek returns the name of the next artifact without reading it.
func (i *Iterator) Peek() (string, bool) {
	if !i.HasNext() {
		return "", false
	}
	return NameOf(i.names[i.pos]), true
}

// Skip moves past the next artifact without reading it.
func (i *Iterator) Skip() {
	if i.HasNext() {
		i.pos++
	}
}

// Next reads the next artifact.
func (i *Iterator) Next() (*Artifact, error) {
	if !i.HasNext() {
		return nil, errors.New("iterator exhausted")
	}
	name := i.names[i.pos]
	i.pos++
	return FromFile(filepath.Join(i.dir, name))
}
