// Package artifact reads compiled contract binaries from disk.
package artifact

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const DefaultExtension = "wasm"

var ErrInvalidArtifactName = errors.New("failed to fetch extension from filename")

// Artifact is a compiled binary. Name is the file base name without its
// extension and is the key the artifact is recorded under.
type Artifact struct {
	Name string
	Path string
	Code []byte
}

// FromFile reads a single artifact.
func FromFile(path string) (*Artifact, error) {
	name := NameOf(filepath.Base(path))
	if name == "" {
		return nil, errors.Wrapf(ErrInvalidArtifactName, "%s has an empty name", path)
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading artifact %s", path)
	}
	return &Artifact{
		Name: name,
		Path: path,
		Code: code,
	}, nil
}

// FromDirectory reads every regular file in dir with extension ext, in
// directory listing order.
func FromDirectory(dir, ext string) ([]*Artifact, error) {
	it, err := NewIterator(dir, ext)
	if err != nil {
		return nil, err
	}
	artifacts := make([]*Artifact, 0, it.Len())
	for it.HasNext() {
		a, err := it.Next()
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// ExtOf returns the text after the last dot of name.
func ExtOf(name string) (string, error) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "", errors.Wrap(ErrInvalidArtifactName, name)
	}
	return name[i+1:], nil
}

// NameOf strips the last extension from a file name. A name that is only an
// extension, like ".wasm", yields "".
func NameOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return filename
	}
	return filename[:i]
}

// FilterByExtension keeps the names whose extension is ext. Every name must
// carry an extension. Filtering an already filtered list returns it unchanged.
func FilterByExtension(names []string, ext string) ([]string, error) {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		e, err := ExtOf(name)
		if err != nil {
			return nil, err
		}
		if e == ext {
			kept = append(kept, name)
		}
	}
	return kept, nil
}
