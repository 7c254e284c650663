package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/config"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/telegraph"
	discordadapter "github.com/unarmedpuppy/homelab-ai-sub013/internal/telegraph/discord"
	githubadapter "github.com/unarmedpuppy/homelab-ai-sub013/internal/telegraph/github"
	slackadapter "github.com/unarmedpuppy/homelab-ai-sub013/internal/telegraph/slack"
)

func newTelegraphCmd() *cobra.Command {
	var (
		configPath string
		platform   string
		channel    string
	)

	cmd := &cobra.Command{
		Use:     "telegraph",
		Aliases: []string{"tg"},
		Short:   "Run the Telegraph notification daemon",
		Long: "Telegraph connects to a chat platform (Slack or Discord), pushes message events " +
			"to the configured channel, and answers !a2a commands. Tokens missing from the " +
			"config are prompted for interactively.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if platform != "" {
				cfg.Telegraph.Platform = platform
			}
			if channel != "" {
				cfg.Telegraph.Slack.Channel = channel
				cfg.Telegraph.Discord.ChannelID = channel
			}
			return runTelegraph(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().StringVar(&platform, "platform", "", "chat platform (slack, discord; overrides config)")
	cmd.Flags().StringVar(&channel, "channel", "", "notification channel (overrides config)")
	return cmd
}

func runTelegraph(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Telegraph.Platform == "" || cfg.Telegraph.Platform == "none" {
		return fmt.Errorf("telegraph: no platform configured (set telegraph.platform or pass --platform)")
	}
	if err := resolveTokens(cfg, promptSecret); err != nil {
		return err
	}

	adapter, err := buildAdapter(cfg)
	if err != nil {
		return err
	}
	escalator, err := buildEscalator(cfg)
	if err != nil {
		return err
	}

	daemon, err := telegraph.NewDaemon(telegraph.DaemonOpts{
		Store:     openStore(cfg),
		Registry:  openRegistry(cfg),
		Config:    cfg,
		Adapter:   adapter,
		Escalator: escalator,
		Out:       cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	return daemon.Run(ctx)
}

// resolveTokens fills in missing platform credentials via prompt. Channels
// are not secrets and must come from the config or flags.
func resolveTokens(cfg *config.Config, prompt func(name string) (string, error)) error {
	t := &cfg.Telegraph
	switch t.Platform {
	case "slack":
		if t.Slack.Channel == "" {
			return fmt.Errorf("telegraph: slack channel is required (set telegraph.slack.channel or pass --channel)")
		}
		if t.Slack.BotToken == "" {
			tok, err := prompt("Slack bot token")
			if err != nil {
				return err
			}
			t.Slack.BotToken = tok
		}
		if t.Slack.AppToken == "" {
			tok, err := prompt("Slack app token")
			if err != nil {
				return err
			}
			t.Slack.AppToken = tok
		}
	case "discord":
		if t.Discord.ChannelID == "" {
			return fmt.Errorf("telegraph: discord channel_id is required (set telegraph.discord.channel_id or pass --channel)")
		}
		if t.Discord.Token == "" {
			tok, err := prompt("Discord bot token")
			if err != nil {
				return err
			}
			t.Discord.Token = tok
		}
	}
	return nil
}

// buildAdapter constructs the platform adapter from the config.
func buildAdapter(cfg *config.Config) (telegraph.Adapter, error) {
	switch cfg.Telegraph.Platform {
	case "slack":
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken: cfg.Telegraph.Slack.AppToken,
			BotToken: cfg.Telegraph.Slack.BotToken,
			Channel:  cfg.Telegraph.Slack.Channel,
		})
	case "discord":
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken:  cfg.Telegraph.Discord.Token,
			ChannelID: cfg.Telegraph.Discord.ChannelID,
		})
	default:
		return nil, fmt.Errorf("telegraph: unsupported platform %q", cfg.Telegraph.Platform)
	}
}

// buildEscalator constructs the GitHub issue escalator, or nil when disabled.
func buildEscalator(cfg *config.Config) (telegraph.Escalator, error) {
	gh := cfg.Telegraph.GitHub
	if !gh.Enabled {
		return nil, nil
	}
	return githubadapter.NewEscalator(githubadapter.EscalatorOpts{
		Token:  gh.Token,
		Owner:  gh.Owner,
		Repo:   gh.Repo,
		Labels: gh.Labels,
	})
}

// promptSecret reads a secret from the terminal with echo disabled. Fails
// fast when stdin is not a terminal so scripted runs never hang.
func promptSecret(name string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("telegraph: %s not set and stdin is not a terminal", name)
	}
	fmt.Fprintf(os.Stderr, "%s: ", name)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("telegraph: read %s: %w", name, err)
	}
	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return "", fmt.Errorf("telegraph: %s is empty", name)
	}
	return secret, nil
}
