package telegraph

import (
	"strings"
	"testing"
	"time"
)

// --- severity mapping tests ---

func TestSeverityColor(t *testing.T) {
	cases := []struct {
		severity string
		want     string
	}{
		{"success", ColorSuccess},
		{"info", ColorInfo},
		{"warning", ColorWarning},
		{"error", ColorError},
		{"unknown", ColorInfo},
		{"", ColorInfo},
	}
	for _, tc := range cases {
		if got := severityColor(tc.severity); got != tc.want {
			t.Errorf("severityColor(%q) = %q, want %q", tc.severity, got, tc.want)
		}
	}
}

func TestPrioritySeverity(t *testing.T) {
	cases := []struct {
		priority string
		want     string
	}{
		{"urgent", "error"},
		{"high", "warning"},
		{"normal", "info"},
		{"low", "info"},
		{"", "info"},
	}
	for _, tc := range cases {
		if got := prioritySeverity(tc.priority); got != tc.want {
			t.Errorf("prioritySeverity(%q) = %q, want %q", tc.priority, got, tc.want)
		}
	}
}

// --- FormatMessageEvent tests ---

func TestFormatMessageEvent_WithSubject(t *testing.T) {
	event := DetectedEvent{
		Type:        EventNewMessage,
		MessageID:   "MSG-2026-03-14-001",
		FromAgent:   "squire",
		ToAgent:     "archivist",
		MessageType: "request",
		Priority:    "normal",
		Subject:     "Need index rebuild",
	}

	f := FormatMessageEvent(event)
	if f.Title != "New message: Need index rebuild" {
		t.Errorf("title = %q", f.Title)
	}
	if !strings.Contains(f.Body, "squire → archivist") {
		t.Errorf("body missing agent pair: %q", f.Body)
	}
	if !strings.Contains(f.Body, "Type: request") {
		t.Errorf("body missing type: %q", f.Body)
	}
	if f.Severity != "info" || f.Color != ColorInfo {
		t.Errorf("severity/color = %q/%q, want info/%q", f.Severity, f.Color, ColorInfo)
	}
}

func TestFormatMessageEvent_NoSubjectFallsBackToID(t *testing.T) {
	event := DetectedEvent{
		MessageID: "MSG-2026-03-14-002",
		FromAgent: "squire",
		ToAgent:   "archivist",
	}

	f := FormatMessageEvent(event)
	if f.Title != "New message MSG-2026-03-14-002" {
		t.Errorf("title = %q", f.Title)
	}
}

func TestFormatMessageEvent_UrgentIsError(t *testing.T) {
	f := FormatMessageEvent(DetectedEvent{
		MessageID: "MSG-2026-03-14-003",
		FromAgent: "squire",
		ToAgent:   "archivist",
		Priority:  "urgent",
	})
	if f.Severity != "error" || f.Color != ColorError {
		t.Errorf("severity/color = %q/%q, want error/%q", f.Severity, f.Color, ColorError)
	}
}

func TestFormatMessageEvent_Fields(t *testing.T) {
	f := FormatMessageEvent(DetectedEvent{
		MessageID: "MSG-2026-03-14-004",
		FromAgent: "squire",
		ToAgent:   "archivist",
		Priority:  "high",
	})

	byName := make(map[string]string)
	for _, fl := range f.Fields {
		byName[fl.Name] = fl.Value
	}
	if byName["Message"] != "MSG-2026-03-14-004" {
		t.Errorf("Message field = %q", byName["Message"])
	}
	if byName["From"] != "squire" || byName["To"] != "archivist" {
		t.Errorf("From/To fields = %q/%q", byName["From"], byName["To"])
	}
	if byName["Priority"] != "high" {
		t.Errorf("Priority field = %q", byName["Priority"])
	}
}

// --- FormatStaleEvent tests ---

func TestFormatStaleEvent_AgeInTitle(t *testing.T) {
	f := FormatStaleEvent(DetectedEvent{
		MessageID: "MSG-2026-03-14-001",
		FromAgent: "squire",
		ToAgent:   "archivist",
		Priority:  "normal",
		Subject:   "Old request",
		Age:       3 * time.Hour,
	})
	if f.Title != "Message MSG-2026-03-14-001 unacknowledged for 3h 0m" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Severity != "warning" || f.Color != ColorWarning {
		t.Errorf("severity/color = %q/%q, want warning/%q", f.Severity, f.Color, ColorWarning)
	}
	if !strings.Contains(f.Body, "Old request") {
		t.Errorf("body missing subject: %q", f.Body)
	}
}

func TestFormatStaleEvent_UrgentEscalatesToError(t *testing.T) {
	f := FormatStaleEvent(DetectedEvent{
		MessageID: "MSG-2026-03-14-001",
		Priority:  "urgent",
		Age:       90 * time.Minute,
	})
	if f.Severity != "error" || f.Color != ColorError {
		t.Errorf("severity/color = %q/%q, want error/%q", f.Severity, f.Color, ColorError)
	}
}

func TestFormatStaleEvent_AgeField(t *testing.T) {
	f := FormatStaleEvent(DetectedEvent{
		MessageID: "MSG-2026-03-14-001",
		ToAgent:   "archivist",
		Age:       26 * time.Hour,
	})
	var ageVal string
	for _, fl := range f.Fields {
		if fl.Name == "Age" {
			ageVal = fl.Value
		}
	}
	if ageVal != "1d 2h" {
		t.Errorf("Age field = %q, want 1d 2h", ageVal)
	}
}

// --- formatDuration tests ---

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h 30m"},
		{26 * time.Hour, "1d 2h"},
		{73 * time.Hour, "3d 1h"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
