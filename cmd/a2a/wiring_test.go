package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/config"
)

func TestLoadConfig_DefaultPathMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("expected fallback to defaults, got %v", err)
	}
	if cfg.DataDir != "data" || cfg.Server.Port != 8700 {
		t.Errorf("expected default config, got data_dir=%q port=%d", cfg.DataDir, cfg.Server.Port)
	}
}

func TestLoadConfig_ExplicitPathMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want to contain 'config: read'", err.Error())
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	cfgPath, dataDir := writeConfig(t, "server:\n  port: 9100\n")

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.DataDir != dataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dataDir)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Server.Port)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "a2a.yaml")
	if err := os.WriteFile(cfgPath, []byte("server:\n  port: 99999\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := loadConfig(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestOpenStore_RoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	id := seedMessage(t, cfg.DataDir, "squire", "archivist", "hello")

	msg, err := openStore(cfg).Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if msg.Subject != "hello" {
		t.Errorf("Subject = %q, want %q", msg.Subject, "hello")
	}
}

func TestOpenRegistry_ReadsCards(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	writeCard(t, cfg.DataDir, "agent-001", "Archivist")

	card, err := openRegistry(cfg).Get("agent-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if card.Name != "Archivist" {
		t.Errorf("Name = %q, want %q", card.Name, "Archivist")
	}
}

func TestOpenRegistry_MissingCard(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	_, err := openRegistry(cfg).Get("ghost")
	if !errors.Is(err, agentcard.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCardsDir(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "/srv/a2a"
	if got := cardsDir(cfg); got != filepath.Join("/srv/a2a", "agentcards") {
		t.Errorf("cardsDir = %q", got)
	}
}
