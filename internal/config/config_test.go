package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
data_dir: /srv/a2a/data

server:
  port: 8701
  dashboard: true

messages:
  idempotent_ack: true

stats:
  enabled: true
  driver: mysql
  dsn: a2a:secret@tcp(10.0.0.5:3306)/a2a_stats
  refresh_cron: "*/5 * * * *"

influx:
  enabled: true
  url: http://10.0.0.5:8086
  token: influx-token
  org: homelab
  bucket: a2a

telegraph:
  platform: discord
  poll_interval_sec: 15
  stale_after_min: 120
  digest:
    enabled: true
    cron: "0 8 * * *"
  discord:
    token: discord-test-token
    channel_id: "123456789"

mcp:
  log_file: /var/log/a2a-mcp.log
`

const minimalYAML = `
data_dir: /srv/a2a/data
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir != "/srv/a2a/data" {
		t.Errorf("DataDir = %q, want /srv/a2a/data", cfg.DataDir)
	}
	if cfg.Server.Port != 8701 {
		t.Errorf("Server.Port = %d, want 8701", cfg.Server.Port)
	}
	if !cfg.Server.Dashboard {
		t.Error("Server.Dashboard = false, want true")
	}
	if !cfg.Messages.IdempotentAck {
		t.Error("Messages.IdempotentAck = false, want true")
	}
	if cfg.Stats.Driver != "mysql" {
		t.Errorf("Stats.Driver = %q, want mysql", cfg.Stats.Driver)
	}
	if cfg.Stats.DSN != "a2a:secret@tcp(10.0.0.5:3306)/a2a_stats" {
		t.Errorf("Stats.DSN = %q", cfg.Stats.DSN)
	}
	if cfg.Stats.RefreshCron != "*/5 * * * *" {
		t.Errorf("Stats.RefreshCron = %q", cfg.Stats.RefreshCron)
	}
	if cfg.Influx.URL != "http://10.0.0.5:8086" {
		t.Errorf("Influx.URL = %q", cfg.Influx.URL)
	}
	if cfg.Influx.Measurement != "a2a_activity" {
		t.Errorf("Influx.Measurement = %q, want default a2a_activity", cfg.Influx.Measurement)
	}
	if cfg.Telegraph.Platform != "discord" {
		t.Errorf("Telegraph.Platform = %q, want discord", cfg.Telegraph.Platform)
	}
	if cfg.Telegraph.PollIntervalSec != 15 {
		t.Errorf("Telegraph.PollIntervalSec = %d, want 15", cfg.Telegraph.PollIntervalSec)
	}
	if cfg.Telegraph.StaleAfterMin != 120 {
		t.Errorf("Telegraph.StaleAfterMin = %d, want 120", cfg.Telegraph.StaleAfterMin)
	}
	if cfg.Telegraph.Digest.Cron != "0 8 * * *" {
		t.Errorf("Telegraph.Digest.Cron = %q", cfg.Telegraph.Digest.Cron)
	}
	if cfg.Telegraph.Discord.ChannelID != "123456789" {
		t.Errorf("Telegraph.Discord.ChannelID = %q", cfg.Telegraph.Discord.ChannelID)
	}
	if cfg.MCP.LogFile != "/var/log/a2a-mcp.log" {
		t.Errorf("MCP.LogFile = %q", cfg.MCP.LogFile)
	}
}

func TestParse_MinimalConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("Server.Port = %d, want 8700 (default)", cfg.Server.Port)
	}
	if cfg.Server.Dashboard {
		t.Error("Server.Dashboard = true, want false (default)")
	}
	if cfg.Messages.IdempotentAck {
		t.Error("Messages.IdempotentAck = true, want false (default)")
	}
	if cfg.Stats.Driver != "sqlite" {
		t.Errorf("Stats.Driver = %q, want sqlite (default)", cfg.Stats.Driver)
	}
	if cfg.Stats.Path != "a2a-stats.db" {
		t.Errorf("Stats.Path = %q, want a2a-stats.db (default)", cfg.Stats.Path)
	}
	if cfg.Stats.RefreshCron != "*/15 * * * *" {
		t.Errorf("Stats.RefreshCron = %q, want */15 * * * * (default)", cfg.Stats.RefreshCron)
	}
	if cfg.Telegraph.Platform != "none" {
		t.Errorf("Telegraph.Platform = %q, want none (default)", cfg.Telegraph.Platform)
	}
	if cfg.Telegraph.PollIntervalSec != 30 {
		t.Errorf("Telegraph.PollIntervalSec = %d, want 30 (default)", cfg.Telegraph.PollIntervalSec)
	}
	if cfg.Telegraph.StaleAfterMin != 60 {
		t.Errorf("Telegraph.StaleAfterMin = %d, want 60 (default)", cfg.Telegraph.StaleAfterMin)
	}
}

func TestParse_EmptyInput_AllDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data (default)", cfg.DataDir)
	}
}

func TestDefault_MatchesEmptyParse(t *testing.T) {
	cfg := Default()
	if cfg.DataDir != "data" || cfg.Server.Port != 8700 || cfg.Telegraph.Platform != "none" {
		t.Errorf("Default() = %+v", cfg)
	}
}

func TestParse_DigestCronDefaultOnlyWhenEnabled(t *testing.T) {
	yaml := `
telegraph:
  digest:
    enabled: true
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegraph.Digest.Cron != "0 9 * * *" {
		t.Errorf("Digest.Cron = %q, want 0 9 * * * (default)", cfg.Telegraph.Digest.Cron)
	}

	cfg, err = Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegraph.Digest.Cron != "" {
		t.Errorf("Digest.Cron = %q, want empty when digest disabled", cfg.Telegraph.Digest.Cron)
	}
}

func TestParse_PortOutOfRange(t *testing.T) {
	_, err := Parse([]byte("server:\n  port: 70000\n"))
	if err == nil {
		t.Fatal("expected error for out-of-range port")
	}
	if !strings.Contains(err.Error(), "server.port 70000 is out of range") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestParse_UnsupportedStatsDriver(t *testing.T) {
	_, err := Parse([]byte("stats:\n  driver: postgres\n"))
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), `stats.driver "postgres" is not supported`) {
		t.Errorf("error = %q", err.Error())
	}
}

func TestParse_MySQLRequiresDSN(t *testing.T) {
	yaml := `
stats:
  enabled: true
  driver: mysql
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for mysql without dsn")
	}
	if !strings.Contains(err.Error(), "stats.dsn is required") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestParse_InfluxRequiresConnectionFields(t *testing.T) {
	_, err := Parse([]byte("influx:\n  enabled: true\n"))
	if err == nil {
		t.Fatal("expected error for influx without connection fields")
	}
	msg := err.Error()
	for _, want := range []string{"influx.url is required", "influx.token is required", "influx.org is required", "influx.bucket is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q: %s", want, msg)
		}
	}
}

func TestParse_PlatformWithoutCredentials_Valid(t *testing.T) {
	// Tokens and channels come from flags or prompts at daemon start, so a
	// bare platform selection must parse.
	for _, platform := range []string{"slack", "discord"} {
		_, err := Parse([]byte("telegraph:\n  platform: " + platform + "\n"))
		if err != nil {
			t.Errorf("platform %s: unexpected error: %v", platform, err)
		}
	}
}

func TestParse_UnsupportedPlatform(t *testing.T) {
	_, err := Parse([]byte("telegraph:\n  platform: irc\n"))
	if err == nil {
		t.Fatal("expected error for unsupported platform")
	}
	if !strings.Contains(err.Error(), `telegraph.platform "irc" is not supported`) {
		t.Errorf("error = %q", err.Error())
	}
}

func TestParse_GitHubRequiresTokenOwnerRepo(t *testing.T) {
	yaml := `
telegraph:
  github:
    enabled: true
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for github without settings")
	}
	msg := err.Error()
	for _, want := range []string{"telegraph.github.token is required", "telegraph.github.owner is required", "telegraph.github.repo is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q: %s", want, msg)
		}
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte(":::invalid"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "config: parse:") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: parse:")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a2a.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataDir != "/srv/a2a/data" {
		t.Errorf("DataDir = %q, want /srv/a2a/data", cfg.DataDir)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/a2a.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: read")
	}
}

// --- Fixture-based tests using testdata/ files ---

func TestLoad_FullFixture(t *testing.T) {
	cfg, err := Load("testdata/valid_full.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8701 {
		t.Errorf("Server.Port = %d, want 8701", cfg.Server.Port)
	}
	if cfg.Telegraph.Platform != "slack" {
		t.Errorf("Telegraph.Platform = %q, want slack", cfg.Telegraph.Platform)
	}
	if cfg.Telegraph.Slack.Channel != "#a2a-ops" {
		t.Errorf("Telegraph.Slack.Channel = %q", cfg.Telegraph.Slack.Channel)
	}
	if !cfg.Telegraph.GitHub.Enabled {
		t.Error("Telegraph.GitHub.Enabled = false, want true")
	}
	if len(cfg.Telegraph.GitHub.Labels) != 2 {
		t.Errorf("len(GitHub.Labels) = %d, want 2", len(cfg.Telegraph.GitHub.Labels))
	}
}

func TestLoad_MinimalFixture(t *testing.T) {
	cfg, err := Load("testdata/valid_minimal.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8700 {
		t.Errorf("Server.Port = %d, want default 8700", cfg.Server.Port)
	}
}

func TestLoad_InvalidYAMLFixture(t *testing.T) {
	_, err := Load("testdata/invalid.yaml")
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "config: parse:") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: parse:")
	}
}
