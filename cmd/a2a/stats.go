package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/db"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/stats"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-agent activity totals",
		Long:  "Prints each agent's lifetime message counters from the rollup database. --refresh rebuilds the rollups from the store first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if !cfg.Stats.Enabled {
				return fmt.Errorf("stats: disabled in config (set stats.enabled: true)")
			}

			gormDB, err := db.Connect(cfg.Stats)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if refresh {
				refresher, err := stats.NewRefresher(stats.RefresherOpts{
					DB:    gormDB,
					Store: openStore(cfg),
					Out:   out,
				})
				if err != nil {
					return err
				}
				if err := refresher.Refresh(cmd.Context()); err != nil {
					return err
				}
			}

			totals, err := stats.Totals(gormDB)
			if err != nil {
				return err
			}
			if len(totals) == 0 {
				fmt.Fprintln(out, "No activity recorded (run with --refresh to rebuild rollups)")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "AGENT\tSENT\tRECEIVED\tACKED\tRESOLVED\tPENDING")
			for _, t := range totals {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
					t.AgentID, t.Sent, t.Received, t.Acknowledged, t.Resolved, t.Pending)
			}
			w.Flush()

			run, err := stats.LastRun(gormDB)
			if err != nil {
				return err
			}
			if run != nil {
				fmt.Fprintf(out, "\nLast refresh: %s (%d index entries)\n",
					run.StartedAt.Format("2006-01-02 15:04:05"), run.Entries)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild rollups from the message store before printing")
	return cmd
}
