package agentcard

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher drops a registry's cached listing whenever the card directory
// changes on disk. Cards are written by the registry sync process outside
// this process, so cache freshness rides on file events rather than any
// in-process signal.
type Watcher struct {
	registry *Registry
	fw       *fsnotify.Watcher
	out      io.Writer
}

// Watch starts watching dir and invalidating registry on card changes. The
// directory is created if absent. The watcher stops when ctx is canceled or
// Close is called.
func Watch(ctx context.Context, dir string, registry *Registry, out io.Writer) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("agentcard: watch %s: %w", dir, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("agentcard: watch %s: %w", dir, err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("agentcard: watch %s: %w", dir, err)
	}

	w := &Watcher{registry: registry, fw: fw, out: out}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher. Safe to call alongside ctx cancellation.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.fw.Close()
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(w.out, "agentcard watcher: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Ext(event.Name) != ".json" {
		return
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
		w.registry.Invalidate()
	}
}
