package telegraph

import (
	"fmt"
	"strings"
	"time"
)

// Color constants for event severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// severityColor maps a severity string to a sidebar color.
func severityColor(severity string) string {
	switch severity {
	case "success":
		return ColorSuccess
	case "info":
		return ColorInfo
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}

// prioritySeverity maps a message priority to an event severity.
func prioritySeverity(priority string) string {
	switch priority {
	case "urgent":
		return "error"
	case "high":
		return "warning"
	default:
		return "info"
	}
}

// FormatMessageEvent formats a newly created message event.
func FormatMessageEvent(event DetectedEvent) FormattedEvent {
	severity := prioritySeverity(event.Priority)

	title := fmt.Sprintf("New message %s", event.MessageID)
	if event.Subject != "" {
		title = fmt.Sprintf("New message: %s", event.Subject)
	}

	var bodyParts []string
	bodyParts = append(bodyParts, fmt.Sprintf("%s → %s", event.FromAgent, event.ToAgent))
	if event.MessageType != "" {
		bodyParts = append(bodyParts, fmt.Sprintf("Type: %s", event.MessageType))
	}
	body := strings.Join(bodyParts, "\n")

	fields := []Field{
		{Name: "Message", Value: event.MessageID, Short: true},
		{Name: "From", Value: event.FromAgent, Short: true},
		{Name: "To", Value: event.ToAgent, Short: true},
	}
	if event.Priority != "" {
		fields = append(fields, Field{Name: "Priority", Value: event.Priority, Short: true})
	}

	return FormattedEvent{
		Title:    title,
		Body:     body,
		Severity: severity,
		Color:    severityColor(severity),
		Fields:   fields,
	}
}

// FormatStaleEvent formats a stale pending message event. Urgent messages
// escalate the severity to error regardless of age.
func FormatStaleEvent(event DetectedEvent) FormattedEvent {
	severity := "warning"
	if event.Priority == "urgent" {
		severity = "error"
	}

	title := fmt.Sprintf("Message %s unacknowledged for %s",
		event.MessageID, formatDuration(event.Age))

	var bodyParts []string
	if event.Subject != "" {
		bodyParts = append(bodyParts, event.Subject)
	}
	bodyParts = append(bodyParts, fmt.Sprintf("%s → %s", event.FromAgent, event.ToAgent))
	body := strings.Join(bodyParts, "\n")

	fields := []Field{
		{Name: "Message", Value: event.MessageID, Short: true},
		{Name: "To", Value: event.ToAgent, Short: true},
		{Name: "Age", Value: formatDuration(event.Age), Short: true},
	}
	if event.Priority != "" {
		fields = append(fields, Field{Name: "Priority", Value: event.Priority, Short: true})
	}

	return FormattedEvent{
		Title:    title,
		Body:     body,
		Severity: severity,
		Color:    severityColor(severity),
		Fields:   fields,
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h >= 24 {
		days := h / 24
		h = h % 24
		return fmt.Sprintf("%dd %dh", days, h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
