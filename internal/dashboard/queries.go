package dashboard

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/stats"
)

// Summary holds the queue counts shown in the header of every page.
type Summary struct {
	Total        int
	Pending      int
	Acknowledged int
	Resolved     int
}

// buildSummary counts index entries by status. Index read failures render
// as an empty queue rather than a broken page.
func buildSummary(store *msgstore.Store) Summary {
	idx, err := store.Index()
	if err != nil {
		return Summary{}
	}
	s := Summary{Total: len(idx.Messages)}
	for _, e := range idx.Messages {
		switch e.Status {
		case models.StatusResolved:
			s.Resolved++
		case models.StatusAcknowledged:
			s.Acknowledged++
		default:
			s.Pending++
		}
	}
	return s
}

// overviewData assembles the front page: queue summary, newest messages,
// registered agents, and the activity panels when a stats DB is wired.
func overviewData(deps Deps) gin.H {
	cards, err := deps.Registry.List()
	if err != nil {
		cards = nil
	}

	data := gin.H{
		"Page":        "overview",
		"Summary":     buildSummary(deps.Store),
		"Recent":      recentEntries(deps.Store, 10),
		"Agents":      cards,
		"Totals":      []stats.AgentTotals(nil),
		"LastRefresh": (*models.StatsRun)(nil),
	}
	if deps.DB != nil {
		if totals, err := stats.Totals(deps.DB); err == nil {
			data["Totals"] = totals
		}
		if run, err := stats.LastRun(deps.DB); err == nil && run != nil {
			data["LastRefresh"] = run
		}
	}
	return data
}

// recentEntries returns up to n index entries, newest first.
func recentEntries(store *msgstore.Store, n int) []models.IndexEntry {
	idx, err := store.Index()
	if err != nil {
		return nil
	}
	entries := idx.Messages
	out := make([]models.IndexEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out
}

// agentIDs lists registered agent IDs for the filter dropdown.
func agentIDs(registry *agentcard.Registry) []string {
	cards, err := registry.List()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.AgentID)
	}
	return ids
}

// TimeAgo formats a timestamp as a short relative age for display.
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
