// Package stats maintains the activity rollup cache: per-day, per-agent
// message counts aggregated from the store index into a GORM-backed table.
// The cache is a derived read model; dropping it costs nothing but a refresh.
package stats

import (
	"sort"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
)

// BuildRollups aggregates index entries into per-day, per-agent counters.
// Sent counts messages the agent originated and Received ones addressed to
// it; the status counters attribute each entry's current status to the
// recipient, since acknowledging and resolving are the recipient's job.
// Output is ordered by day then agent so upserts run in a stable order.
func BuildRollups(idx *models.MessageIndex) []models.ActivityRollup {
	type key struct {
		day   string
		agent string
	}
	acc := make(map[key]*models.ActivityRollup)
	rollup := func(day, agent string) *models.ActivityRollup {
		k := key{day, agent}
		r, ok := acc[k]
		if !ok {
			r = &models.ActivityRollup{Day: day, AgentID: agent}
			acc[k] = r
		}
		return r
	}

	for i := range idx.Messages {
		entry := &idx.Messages[i]
		day := entry.CreatedAt.UTC().Format("2006-01-02")

		rollup(day, entry.FromAgent).Sent++

		recv := rollup(day, entry.ToAgent)
		recv.Received++
		switch entry.Status {
		case models.StatusAcknowledged:
			recv.Acknowledged++
		case models.StatusResolved:
			recv.Resolved++
		default:
			recv.Pending++
		}
	}

	out := make([]models.ActivityRollup, 0, len(acc))
	for _, r := range acc {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].AgentID < out[j].AgentID
	})
	return out
}
