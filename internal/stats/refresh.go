package stats

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// Exporter ships a refreshed rollup set to an external sink. Export failures
// are recorded on the run but never fail the refresh.
type Exporter interface {
	Export(ctx context.Context, rollups []models.ActivityRollup) error
}

// Refresher rebuilds the rollup table from the message store index.
type Refresher struct {
	db       *gorm.DB
	store    *msgstore.Store
	exporter Exporter
	out      io.Writer
}

// RefresherOpts configures a Refresher. DB and Store are required.
type RefresherOpts struct {
	DB       *gorm.DB
	Store    *msgstore.Store
	Exporter Exporter  // optional
	Out      io.Writer // defaults to os.Stdout
}

func NewRefresher(opts RefresherOpts) (*Refresher, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("stats: db is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("stats: store is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Refresher{
		db:       opts.DB,
		store:    opts.Store,
		exporter: opts.Exporter,
		out:      out,
	}, nil
}

// Refresh rebuilds rollups from the current index snapshot and records the
// run. Rows upsert on (day, agent_id), so repeated refreshes converge on the
// index instead of accumulating duplicates.
func (r *Refresher) Refresh(ctx context.Context) error {
	started := time.Now().UTC()

	idx, err := r.store.Index()
	if err != nil {
		return fmt.Errorf("stats: refresh: %w", err)
	}
	rollups := BuildRollups(&idx)

	run := models.StatsRun{StartedAt: started, Entries: len(idx.Messages)}
	if err := r.upsert(ctx, rollups); err != nil {
		run.Error = err.Error()
		run.FinishedAt = time.Now().UTC()
		if dbErr := r.db.WithContext(ctx).Create(&run).Error; dbErr != nil {
			log.Printf("stats: record failed run: %v", dbErr)
		}
		return err
	}

	if r.exporter != nil {
		if err := r.exporter.Export(ctx, rollups); err != nil {
			run.Error = err.Error()
			log.Printf("stats: export: %v", err)
		} else {
			run.Exported = true
		}
	}

	run.FinishedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("stats: record run: %w", err)
	}

	fmt.Fprintf(r.out, "Stats refreshed: %d rollups from %d index entries\n", len(rollups), len(idx.Messages))
	return nil
}

func (r *Refresher) upsert(ctx context.Context, rollups []models.ActivityRollup) error {
	for i := range rollups {
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day"}, {Name: "agent_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sent", "received", "acknowledged", "resolved", "pending", "updated_at"}),
		}).Create(&rollups[i])
		if result.Error != nil {
			return fmt.Errorf("stats: upsert rollup %s/%s: %w", rollups[i].Day, rollups[i].AgentID, result.Error)
		}
	}
	return nil
}

// RunCron refreshes on the configured 5-field cron schedule until the
// context is cancelled. One refresh runs immediately so a restart never
// leaves the table stale for a full interval.
func (r *Refresher) RunCron(ctx context.Context, expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("stats: parse refresh cron %q: %w", expr, err)
	}

	if err := r.Refresh(ctx); err != nil {
		log.Printf("stats: initial refresh: %v", err)
	}

	timer := time.NewTimer(nextFire(expr, time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if err := r.Refresh(ctx); err != nil {
				log.Printf("stats: scheduled refresh: %v", err)
			}
			if d := nextFire(expr, time.Now()); d > 0 {
				timer.Reset(d)
			}
		}
	}
}
