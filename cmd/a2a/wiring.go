package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/config"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/storage"
)

const defaultConfigPath = "a2a.yaml"

// loadConfig reads the config file at path. A missing file at the default
// path falls back to built-in defaults; an explicitly chosen file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if path == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// openStore opens the message store under the config's data dir.
func openStore(cfg *config.Config) *msgstore.Store {
	dir := storage.NewFS(filepath.Join(cfg.DataDir, "messages"))
	return msgstore.New(dir, msgstore.Opts{IdempotentAck: cfg.Messages.IdempotentAck})
}

// openRegistry opens the agent card registry under the config's data dir.
func openRegistry(cfg *config.Config) *agentcard.Registry {
	return agentcard.NewRegistry(storage.NewFS(filepath.Join(cfg.DataDir, "agentcards")))
}

// cardsDir returns the directory the registry reads, for the fsnotify watch.
func cardsDir(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "agentcards")
}
