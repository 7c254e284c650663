package stats

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
)

// RollupsSince returns rollup rows with day >= since (a "2006-01-02" date),
// ordered by day then agent. An empty since returns everything.
func RollupsSince(db *gorm.DB, since string) ([]models.ActivityRollup, error) {
	var rollups []models.ActivityRollup
	q := db.Model(&models.ActivityRollup{})
	if since != "" {
		q = q.Where("day >= ?", since)
	}
	if err := q.Order("day ASC, agent_id ASC").Find(&rollups).Error; err != nil {
		return nil, fmt.Errorf("stats: query rollups: %w", err)
	}
	return rollups, nil
}

// AgentTotals sums an agent's counters across all days.
type AgentTotals struct {
	AgentID      string
	Sent         int
	Received     int
	Acknowledged int
	Resolved     int
	Pending      int
}

// Totals aggregates rollups into one row per agent, ordered by agent.
func Totals(db *gorm.DB) ([]AgentTotals, error) {
	var totals []AgentTotals
	err := db.Model(&models.ActivityRollup{}).
		Select("agent_id, SUM(sent) AS sent, SUM(received) AS received, SUM(acknowledged) AS acknowledged, SUM(resolved) AS resolved, SUM(pending) AS pending").
		Group("agent_id").
		Order("agent_id ASC").
		Find(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("stats: query totals: %w", err)
	}
	return totals, nil
}

// LastRun returns the most recent refresh run, or nil when none has
// completed yet.
func LastRun(db *gorm.DB) (*models.StatsRun, error) {
	var run models.StatsRun
	err := db.Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stats: query last run: %w", err)
	}
	return &run, nil
}
