package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/config"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/db"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/server"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/stats"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		dashboard  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the A2A server",
		Long:  "Serves the JSON-RPC endpoint, the agent card discovery routes, and optionally the dashboard until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("dashboard") {
				cfg.Server.Dashboard = dashboard
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "serve the web dashboard (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	store := openStore(cfg)
	registry := openRegistry(cfg)

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

	// Invalidate the card cache when the registry-sync process rewrites
	// files. The server still works without the watch; cards just load
	// fresh on every read.
	if watcher, err := agentcard.Watch(ctx, cardsDir(cfg), registry, out); err != nil {
		fmt.Fprintf(out, "Agent card watch disabled: %v\n", err)
	} else {
		defer watcher.Close()
	}

	var statsDB *gorm.DB
	if cfg.Stats.Enabled {
		var err error
		statsDB, err = db.Connect(cfg.Stats)
		if err != nil {
			return err
		}
		if err := db.AutoMigrate(statsDB); err != nil {
			return err
		}

		var exporter stats.Exporter
		if cfg.Influx.Enabled {
			influx := stats.NewInfluxExporter(cfg.Influx)
			defer influx.Close()
			exporter = influx
		}
		refresher, err := stats.NewRefresher(stats.RefresherOpts{
			DB:       statsDB,
			Store:    store,
			Exporter: exporter,
			Out:      out,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := refresher.RunCron(ctx, cfg.Stats.RefreshCron); err != nil {
				log.Printf("serve: stats cron: %v", err)
			}
		}()
	}

	return server.Start(ctx, server.Opts{
		Store:     store,
		Registry:  registry,
		StatsDB:   statsDB,
		Port:      cfg.Server.Port,
		Dashboard: cfg.Server.Dashboard,
		Out:       out,
	})
}
