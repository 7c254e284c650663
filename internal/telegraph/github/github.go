// Package github escalates stale messages to GitHub issues.
package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/telegraph"
)

// defaultLabels are applied to escalation issues when the config names none.
var defaultLabels = []string{"a2a", "stale-message"}

// issuesService abstracts the GitHub Issues API, enabling test mocks.
type issuesService interface {
	Create(ctx context.Context, owner, repo string, issue *gh.IssueRequest) (*gh.Issue, *gh.Response, error)
}

// Escalator files a GitHub issue when a message goes unacknowledged past the
// stale threshold. Implements telegraph.Escalator.
type Escalator struct {
	issues issuesService
	owner  string
	repo   string
	labels []string
}

// EscalatorOpts holds parameters for creating an Escalator.
type EscalatorOpts struct {
	Token  string   // personal access token with repo scope
	Owner  string   // repository owner
	Repo   string   // repository name
	Labels []string // issue labels, defaults to defaultLabels
	// For testing: inject a mock issues service instead of the real API.
	Issues issuesService
}

// NewEscalator creates an Escalator.
func NewEscalator(opts EscalatorOpts) (*Escalator, error) {
	if opts.Issues == nil && opts.Token == "" {
		return nil, fmt.Errorf("github: token is required")
	}
	if opts.Owner == "" {
		return nil, fmt.Errorf("github: owner is required")
	}
	if opts.Repo == "" {
		return nil, fmt.Errorf("github: repo is required")
	}

	labels := opts.Labels
	if len(labels) == 0 {
		labels = defaultLabels
	}

	e := &Escalator{
		issues: opts.Issues,
		owner:  opts.Owner,
		repo:   opts.Repo,
		labels: labels,
	}
	if e.issues == nil {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		tc := oauth2.NewClient(context.Background(), ts)
		e.issues = gh.NewClient(tc).Issues
	}
	return e, nil
}

// Escalate files an issue for a stale message and returns the issue URL.
func (e *Escalator) Escalate(ctx context.Context, event telegraph.DetectedEvent) (string, error) {
	req := &gh.IssueRequest{
		Title:  gh.String(issueTitle(event)),
		Body:   gh.String(issueBody(event)),
		Labels: &e.labels,
	}

	issue, _, err := e.issues.Create(ctx, e.owner, e.repo, req)
	if err != nil {
		return "", fmt.Errorf("github: create issue for %s: %w", event.MessageID, err)
	}
	return issue.GetHTMLURL(), nil
}

// issueTitle builds the issue title for a stale message event.
func issueTitle(event telegraph.DetectedEvent) string {
	if event.Subject != "" {
		return fmt.Sprintf("[a2a] %s unacknowledged: %s", event.MessageID, event.Subject)
	}
	return fmt.Sprintf("[a2a] %s unacknowledged", event.MessageID)
}

// issueBody builds the issue body: message coordinates plus the commands
// that clear the escalation.
func issueBody(event telegraph.DetectedEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A2A message `%s` has been pending for %s.\n\n",
		event.MessageID, formatAge(event.Age))
	if event.Subject != "" {
		fmt.Fprintf(&b, "- **Subject**: %s\n", event.Subject)
	}
	fmt.Fprintf(&b, "- **From**: %s\n", event.FromAgent)
	fmt.Fprintf(&b, "- **To**: %s\n", event.ToAgent)
	if event.Priority != "" {
		fmt.Fprintf(&b, "- **Priority**: %s\n", event.Priority)
	}
	fmt.Fprintf(&b, "\nAcknowledge with `a2a ack %s %s` or the chat command `!a2a ack %s %s`.\n",
		event.MessageID, event.ToAgent, event.MessageID, event.ToAgent)

	return b.String()
}

// formatAge renders a pending duration in coarse units for the issue text.
func formatAge(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h >= 24:
		return fmt.Sprintf("%dd %dh", h/24, h%24)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
