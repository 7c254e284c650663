package storage

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"
)

// MemDir is an in-memory Dir for tests. Safe for concurrent use.
type MemDir struct {
	mu    sync.RWMutex
	files map[string][]byte

	// FailWrites, when set, makes every Write return an error. Lets tests
	// exercise persistence failure paths without a real filesystem.
	FailWrites bool
}

// NewMem returns an empty in-memory Dir.
func NewMem() *MemDir {
	return &MemDir{files: make(map[string][]byte)}
}

func (d *MemDir) Read(name string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("storage: read %s: %w", name, fs.ErrNotExist)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (d *MemDir) Write(name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailWrites {
		return fmt.Errorf("storage: write %s: write refused", name)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	d.files[name] = buf
	return nil
}

func (d *MemDir) List() ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var names []string
	for name := range d.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *MemDir) Remove(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.files[name]; !ok {
		return fmt.Errorf("storage: remove %s: %w", name, fs.ErrNotExist)
	}
	delete(d.files, name)
	return nil
}
