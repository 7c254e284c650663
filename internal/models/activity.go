package models

import "time"

// ActivityRollup is one day of message traffic for one agent, aggregated
// from the message index by the stats refresher. Rows are upserted on the
// (day, agent) pair so repeated refreshes stay idempotent.
type ActivityRollup struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Day          string `gorm:"size:10;uniqueIndex:idx_day_agent"`
	AgentID      string `gorm:"size:64;uniqueIndex:idx_day_agent"`
	Sent         int    `gorm:"default:0"`
	Received     int    `gorm:"default:0"`
	Acknowledged int    `gorm:"default:0"`
	Resolved     int    `gorm:"default:0"`
	Pending      int    `gorm:"default:0"`
	UpdatedAt    time.Time
}

// StatsRun records one execution of the stats refresher, for the dashboard's
// "last refreshed" display and for debugging scheduling gaps.
type StatsRun struct {
	ID         uint `gorm:"primaryKey;autoIncrement"`
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    int
	Exported   bool `gorm:"default:false"`
	Error      string
}
