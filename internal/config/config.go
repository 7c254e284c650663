// Package config provides YAML-based configuration loading for the A2A
// service.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration, loaded from a2a.yaml.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Server    ServerConfig    `yaml:"server"`
	Messages  MessagesConfig  `yaml:"messages"`
	Stats     StatsConfig     `yaml:"stats"`
	Influx    InfluxConfig    `yaml:"influx"`
	Telegraph TelegraphConfig `yaml:"telegraph"`
	MCP       MCPConfig       `yaml:"mcp"`
}

// ServerConfig holds the HTTP endpoint settings.
type ServerConfig struct {
	Port      int  `yaml:"port"`
	Dashboard bool `yaml:"dashboard"`
}

// MessagesConfig tunes message store behavior.
type MessagesConfig struct {
	// IdempotentAck makes re-acknowledging an acknowledged message a no-op
	// instead of overwriting its timestamp.
	IdempotentAck bool `yaml:"idempotent_ack"`
}

// StatsConfig controls the activity rollup database.
type StatsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Driver      string `yaml:"driver"` // "sqlite" or "mysql"
	Path        string `yaml:"path"`   // sqlite file path
	DSN         string `yaml:"dsn"`    // mysql DSN
	RefreshCron string `yaml:"refresh_cron"`
}

// InfluxConfig controls exporting rollups to InfluxDB.
type InfluxConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// TelegraphConfig controls the notification daemon.
type TelegraphConfig struct {
	Platform        string        `yaml:"platform"` // "slack", "discord", or "none"
	PollIntervalSec int           `yaml:"poll_interval_sec"`
	StaleAfterMin   int           `yaml:"stale_after_min"`
	Digest          DigestConfig  `yaml:"digest"`
	Slack           SlackConfig   `yaml:"slack"`
	Discord         DiscordConfig `yaml:"discord"`
	GitHub          GitHubConfig  `yaml:"github"`
}

// DigestConfig schedules the periodic activity digest.
type DigestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// SlackConfig holds Slack adapter credentials.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	AppToken string `yaml:"app_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig holds Discord adapter credentials.
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// GitHubConfig controls escalating stale messages to GitHub issues.
type GitHubConfig struct {
	Enabled bool     `yaml:"enabled"`
	Token   string   `yaml:"token"`
	Owner   string   `yaml:"owner"`
	Repo    string   `yaml:"repo"`
	Labels  []string `yaml:"labels"`
}

// MCPConfig controls the a2a-mcp stdio tool server. Stdout carries the MCP
// protocol, so its logs go to stderr or, when set, LogFile.
type MCPConfig struct {
	LogFile string `yaml:"log_file"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8700
	}
	if c.Stats.Driver == "" {
		c.Stats.Driver = "sqlite"
	}
	if c.Stats.Path == "" {
		c.Stats.Path = "a2a-stats.db"
	}
	if c.Stats.RefreshCron == "" {
		c.Stats.RefreshCron = "*/15 * * * *"
	}
	if c.Influx.Measurement == "" {
		c.Influx.Measurement = "a2a_activity"
	}
	if c.Telegraph.Platform == "" {
		c.Telegraph.Platform = "none"
	}
	if c.Telegraph.PollIntervalSec == 0 {
		c.Telegraph.PollIntervalSec = 30
	}
	if c.Telegraph.StaleAfterMin == 0 {
		c.Telegraph.StaleAfterMin = 60
	}
	if c.Telegraph.Digest.Enabled && c.Telegraph.Digest.Cron == "" {
		c.Telegraph.Digest.Cron = "0 9 * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Stats.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("stats.driver %q is not supported", c.Stats.Driver))
	}
	if c.Stats.Enabled && c.Stats.Driver == "mysql" && c.Stats.DSN == "" {
		errs = append(errs, "stats.dsn is required for the mysql driver")
	}
	if c.Influx.Enabled {
		if c.Influx.URL == "" {
			errs = append(errs, "influx.url is required")
		}
		if c.Influx.Token == "" {
			errs = append(errs, "influx.token is required")
		}
		if c.Influx.Org == "" {
			errs = append(errs, "influx.org is required")
		}
		if c.Influx.Bucket == "" {
			errs = append(errs, "influx.bucket is required")
		}
	}
	// Chat tokens and channels are not validated here: the telegraph
	// command fills them from flags or interactive prompts.
	switch c.Telegraph.Platform {
	case "none", "slack", "discord":
	default:
		errs = append(errs, fmt.Sprintf("telegraph.platform %q is not supported", c.Telegraph.Platform))
	}
	if c.Telegraph.GitHub.Enabled {
		if c.Telegraph.GitHub.Token == "" {
			errs = append(errs, "telegraph.github.token is required")
		}
		if c.Telegraph.GitHub.Owner == "" {
			errs = append(errs, "telegraph.github.owner is required")
		}
		if c.Telegraph.GitHub.Repo == "" {
			errs = append(errs, "telegraph.github.repo is required")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
