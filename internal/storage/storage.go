// Package storage abstracts the flat directories the relay persists into,
// so stores can run against a real filesystem or an in-memory double.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Dir is a flat directory of named files. Write must be atomic with respect
// to concurrent Read calls: a reader sees either the old or the new content,
// never a partial write. List returns file names only, sorted; a directory
// that does not exist yet lists as empty rather than failing.
type Dir interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	List() ([]string, error)
	Remove(name string) error
}

// FSDir is the filesystem-backed Dir. The directory is created lazily on
// first write.
type FSDir struct {
	root string
}

// NewFS returns a Dir rooted at the given path.
func NewFS(root string) *FSDir {
	return &FSDir{root: root}
}

// Root returns the directory path this Dir reads and writes.
func (d *FSDir) Root() string { return d.root }

// Read returns the contents of name. A missing file satisfies
// errors.Is(err, fs.ErrNotExist).
func (d *FSDir) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.root, name))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write replaces name with data. The write goes to a temp file in the same
// directory and renames over the target, so concurrent readers never observe
// a torn file.
func (d *FSDir) Write(name string, data []byte) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("storage: create %s: %w", d.root, err)
	}
	tmp, err := os.CreateTemp(d.root, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(d.root, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

// List returns the names of regular files in the directory, sorted. A
// missing directory lists as empty.
func (d *FSDir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list %s: %w", d.root, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes name. Removing a file that does not exist is an error.
func (d *FSDir) Remove(name string) error {
	if err := os.Remove(filepath.Join(d.root, name)); err != nil {
		return fmt.Errorf("storage: remove %s: %w", name, err)
	}
	return nil
}

// NotExist reports whether err came from reading a file that is absent.
func NotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
