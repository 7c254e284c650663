package msgstore

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
)

// frontmatter is the metadata block at the top of every message file.
// Declaration order here is the on-disk field order, so keep it stable.
type frontmatter struct {
	MessageID        string  `yaml:"message_id"`
	FromAgent        string  `yaml:"from_agent"`
	ToAgent          string  `yaml:"to_agent"`
	Type             string  `yaml:"type"`
	Priority         string  `yaml:"priority"`
	Status           string  `yaml:"status"`
	CreatedAt        string  `yaml:"created_at"`
	AcknowledgedAt   *string `yaml:"acknowledged_at"`
	ResolvedAt       *string `yaml:"resolved_at"`
	RelatedTaskID    string  `yaml:"related_task_id,omitempty"`
	RelatedMessageID string  `yaml:"related_message_id,omitempty"`
}

const (
	delimiter = "---\n"

	// resolutionHeading introduces the note appended on resolve. It lands
	// below the original content and never replaces it.
	resolutionHeading = "## Resolution"
)

// renderMessage encodes a message as a frontmatter block followed by the
// subject heading and content. parseMessage inverts it byte for byte.
func renderMessage(m *models.Message) ([]byte, error) {
	fm := frontmatter{
		MessageID:        m.MessageID,
		FromAgent:        m.FromAgent,
		ToAgent:          m.ToAgent,
		Type:             m.Type,
		Priority:         m.Priority,
		Status:           string(m.Status),
		CreatedAt:        stamp(m.CreatedAt),
		AcknowledgedAt:   stampPtr(m.AcknowledgedAt),
		ResolvedAt:       stampPtr(m.ResolvedAt),
		RelatedTaskID:    m.RelatedTaskID,
		RelatedMessageID: m.RelatedMessageID,
	}
	meta, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("msgstore: render %s: %w", m.MessageID, err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.Write(meta)
	buf.WriteString(delimiter)
	buf.WriteString("\n# ")
	buf.WriteString(m.Subject)
	buf.WriteString("\n\n")
	buf.WriteString(m.Content)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// parseMessage decodes a message file produced by renderMessage.
func parseMessage(data []byte) (*models.Message, error) {
	text := string(data)
	if !strings.HasPrefix(text, delimiter) {
		return nil, fmt.Errorf("msgstore: parse: missing metadata block")
	}
	rest := text[len(delimiter):]
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		return nil, fmt.Errorf("msgstore: parse: unterminated metadata block")
	}
	meta := rest[:end+1]
	body := rest[end+1+len(delimiter):]

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return nil, fmt.Errorf("msgstore: parse metadata: %w", err)
	}

	body = strings.TrimPrefix(body, "\n")
	if !strings.HasPrefix(body, "# ") {
		return nil, fmt.Errorf("msgstore: parse %s: missing subject heading", fm.MessageID)
	}
	body = body[len("# "):]
	subject := body
	content := ""
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		subject = body[:nl]
		content = strings.TrimPrefix(body[nl+1:], "\n")
		content = strings.TrimSuffix(content, "\n")
	}

	status := models.MessageStatus(fm.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("msgstore: parse %s: invalid status %q", fm.MessageID, fm.Status)
	}
	createdAt, err := parseStamp(fm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("msgstore: parse %s: created_at: %w", fm.MessageID, err)
	}
	acknowledgedAt, err := parseStampPtr(fm.AcknowledgedAt)
	if err != nil {
		return nil, fmt.Errorf("msgstore: parse %s: acknowledged_at: %w", fm.MessageID, err)
	}
	resolvedAt, err := parseStampPtr(fm.ResolvedAt)
	if err != nil {
		return nil, fmt.Errorf("msgstore: parse %s: resolved_at: %w", fm.MessageID, err)
	}

	return &models.Message{
		MessageID:        fm.MessageID,
		FromAgent:        fm.FromAgent,
		ToAgent:          fm.ToAgent,
		Type:             fm.Type,
		Priority:         fm.Priority,
		Status:           status,
		Subject:          subject,
		Content:          content,
		CreatedAt:        createdAt,
		AcknowledgedAt:   acknowledgedAt,
		ResolvedAt:       resolvedAt,
		RelatedTaskID:    fm.RelatedTaskID,
		RelatedMessageID: fm.RelatedMessageID,
	}, nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func stampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := stamp(*t)
	return &s
}

func parseStamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func parseStampPtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseStamp(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
