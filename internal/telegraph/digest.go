package telegraph

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
)

// EventDigest is the event type for the scheduled activity digest.
const EventDigest EventType = "daily_digest"

// DigestReport holds computed metrics for a digest period plus the
// current backlog snapshot.
type DigestReport struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Created      int           // messages created in the period
	Acknowledged int           // messages acknowledged in the period
	Pending      int           // current pending backlog, any age
	Urgent       int           // pending messages with urgent priority
	OldestAge    time.Duration // age of the oldest pending message
	AgentBacklog []AgentBacklog
}

// AgentBacklog is the per-recipient pending count for digest reports.
type AgentBacklog struct {
	AgentID string
	Pending int
}

// BuildDigest reads the store index, computes metrics for the last 24
// hours plus the current backlog, and returns a DetectedEvent carrying
// the formatted report. Returns nil when there was no activity and no
// backlog.
func (w *Watcher) BuildDigest() (*DetectedEvent, error) {
	now := time.Now()
	since := now.Add(-24 * time.Hour)

	idx, err := w.store.Index()
	if err != nil {
		return nil, fmt.Errorf("telegraph: digest: %w", err)
	}

	report := buildDigestReport(&idx, since, now)

	// Suppress when there is nothing to report.
	if report.Created == 0 && report.Acknowledged == 0 && report.Pending == 0 {
		return nil, nil
	}

	formatted := FormatDigest(report)
	return &DetectedEvent{
		Type:      EventDigest,
		Timestamp: now,
		Title:     formatted.Title,
		Body:      formatted.Body,
	}, nil
}

// buildDigestReport computes digest metrics from an index snapshot.
func buildDigestReport(idx *models.MessageIndex, since, until time.Time) *DigestReport {
	report := &DigestReport{
		PeriodStart: since,
		PeriodEnd:   until,
	}

	backlog := make(map[string]int)
	var oldest time.Time

	for i := range idx.Messages {
		e := &idx.Messages[i]

		if !e.CreatedAt.Before(since) && e.CreatedAt.Before(until) {
			report.Created++
		}
		if e.AcknowledgedAt != nil &&
			!e.AcknowledgedAt.Before(since) && e.AcknowledgedAt.Before(until) {
			report.Acknowledged++
		}

		if e.Status != models.StatusPending {
			continue
		}
		report.Pending++
		if e.Priority == "urgent" {
			report.Urgent++
		}
		backlog[e.ToAgent]++
		if oldest.IsZero() || e.CreatedAt.Before(oldest) {
			oldest = e.CreatedAt
		}
	}

	if !oldest.IsZero() {
		report.OldestAge = until.Sub(oldest)
	}

	for agent, n := range backlog {
		report.AgentBacklog = append(report.AgentBacklog, AgentBacklog{AgentID: agent, Pending: n})
	}
	sort.Slice(report.AgentBacklog, func(i, j int) bool {
		return report.AgentBacklog[i].AgentID < report.AgentBacklog[j].AgentID
	})

	return report
}

// FormatDigest formats a digest report as a FormattedEvent.
func FormatDigest(report *DigestReport) FormattedEvent {
	var bodyLines []string
	bodyLines = append(bodyLines, fmt.Sprintf("**Period**: %s – %s",
		report.PeriodStart.Format("Jan 2 15:04"),
		report.PeriodEnd.Format("Jan 2 15:04")))
	bodyLines = append(bodyLines, fmt.Sprintf("**Messages**: %d sent, %d acknowledged",
		report.Created, report.Acknowledged))
	if report.Pending > 0 {
		line := fmt.Sprintf("**Backlog**: %d pending", report.Pending)
		if report.Urgent > 0 {
			line += fmt.Sprintf(" (%d urgent)", report.Urgent)
		}
		bodyLines = append(bodyLines, line)
	}
	if report.OldestAge > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Oldest pending**: %s", formatDuration(report.OldestAge)))
	}

	if len(report.AgentBacklog) > 0 {
		bodyLines = append(bodyLines, "")
		bodyLines = append(bodyLines, "**Per Agent**:")
		for _, ab := range report.AgentBacklog {
			bodyLines = append(bodyLines, fmt.Sprintf("  %s: %d pending", ab.AgentID, ab.Pending))
		}
	}

	fields := []Field{
		{Name: "Sent", Value: fmt.Sprintf("%d", report.Created), Short: true},
		{Name: "Acknowledged", Value: fmt.Sprintf("%d", report.Acknowledged), Short: true},
		{Name: "Pending", Value: fmt.Sprintf("%d", report.Pending), Short: true},
	}
	if report.Urgent > 0 {
		fields = append(fields, Field{Name: "Urgent", Value: fmt.Sprintf("%d", report.Urgent), Short: true})
	}

	return FormattedEvent{
		Title:    "Daily A2A Digest",
		Body:     strings.Join(bodyLines, "\n"),
		Severity: "info",
		Color:    ColorInfo,
		Fields:   fields,
	}
}
