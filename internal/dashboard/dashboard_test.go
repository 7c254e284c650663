package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/storage"
)

var dashStart = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

const testCardJSON = `{
  "agent_id": "archivist",
  "name": "Archivist",
  "version": "1.2.0",
  "capabilities": ["memory-query"],
  "transports": [{"transport": "jsonrpc", "endpoint": "http://localhost:8700/a2a"}],
  "authentication": {"type": "none", "required": false},
  "created_at": "2026-03-01T00:00:00Z",
  "updated_at": "2026-03-10T00:00:00Z"
}`

func testDeps(t *testing.T) (Deps, *storage.MemDir) {
	t.Helper()
	cardDir := storage.NewMem()
	store := msgstore.New(storage.NewMem(), msgstore.Opts{
		Now: func() time.Time { return dashStart },
	})
	return Deps{Store: store, Registry: agentcard.NewRegistry(cardDir)}, cardDir
}

func testRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if err := Register(router, deps); err != nil {
		t.Fatalf("register: %v", err)
	}
	return router
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func mustCreate(t *testing.T, store *msgstore.Store, subject, content string) *models.Message {
	t.Helper()
	msg, err := store.Create(msgstore.CreateParams{
		From:     "squire",
		To:       "archivist",
		Type:     "question",
		Priority: "normal",
		Subject:  subject,
		Content:  content,
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	return msg
}

// --- registration tests ---

func TestRegister_RequiresStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := testDeps(t)
	deps.Store = nil
	err := Register(gin.New(), deps)
	if err == nil || err.Error() != "dashboard: store is required" {
		t.Errorf("err = %v", err)
	}
}

func TestRegister_RequiresRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := testDeps(t)
	deps.Registry = nil
	err := Register(gin.New(), deps)
	if err == nil || err.Error() != "dashboard: registry is required" {
		t.Errorf("err = %v", err)
	}
}

func TestEmbeddedAssets(t *testing.T) {
	for _, name := range []string{"assets/style.css", "assets/app.js"} {
		data, err := assetsFS.ReadFile(name)
		if err != nil {
			t.Fatalf("%s not embedded: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	data, err := templatesFS.ReadFile("templates/layout.html")
	if err != nil {
		t.Fatalf("layout.html not embedded: %v", err)
	}
	if !strings.Contains(string(data), "A2A Hub") {
		t.Error("layout.html does not contain 'A2A Hub'")
	}
}

// --- page tests ---

func TestOverview_EmptyStore(t *testing.T) {
	deps, _ := testDeps(t)
	w := get(t, testRouter(t, deps), "/dashboard")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "No messages yet") {
		t.Error("empty overview missing placeholder")
	}
	if !strings.Contains(body, "0 pending") {
		t.Error("overview missing zero pending badge")
	}
}

func TestOverview_ShowsRecentAndAgents(t *testing.T) {
	deps, cardDir := testDeps(t)
	msg := mustCreate(t, deps.Store, "Backup finished", "All volumes green.")
	if err := cardDir.Write("archivist.json", []byte(testCardJSON)); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	w := get(t, testRouter(t, deps), "/dashboard")
	body := w.Body.String()
	if !strings.Contains(body, msg.MessageID) {
		t.Error("overview missing recent message ID")
	}
	if !strings.Contains(body, "Archivist") {
		t.Error("overview missing registered agent")
	}
	if !strings.Contains(body, "1 pending") {
		t.Error("overview missing pending count")
	}
}

func TestMessages_FiltersByStatus(t *testing.T) {
	deps, _ := testDeps(t)
	keep := mustCreate(t, deps.Store, "Still open", "body")
	acked := mustCreate(t, deps.Store, "Already handled", "body")
	if _, err := deps.Store.Acknowledge(acked.MessageID, "archivist"); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	w := get(t, testRouter(t, deps), "/dashboard/messages?status=pending")
	body := w.Body.String()
	if !strings.Contains(body, keep.Subject) {
		t.Error("pending filter dropped the pending message")
	}
	if strings.Contains(body, acked.Subject) {
		t.Error("pending filter kept an acknowledged message")
	}
}

func TestMessageDetail_RendersMarkdown(t *testing.T) {
	deps, _ := testDeps(t)
	msg := mustCreate(t, deps.Store, "Deploy steps", "## Plan\n\nRun `make deploy` tonight.")

	w := get(t, testRouter(t, deps), "/dashboard/messages/"+msg.MessageID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<h2") {
		t.Error("markdown heading not rendered")
	}
	if !strings.Contains(body, "<code>make deploy</code>") {
		t.Error("markdown code span not rendered")
	}
	if !strings.Contains(body, "squire") {
		t.Error("detail page missing sender")
	}
}

func TestMessageDetail_UnknownID(t *testing.T) {
	deps, _ := testDeps(t)
	w := get(t, testRouter(t, deps), "/dashboard/messages/MSG-2026-01-01-001")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Not found") {
		t.Error("missing not-found page")
	}
}

func TestAgents_ListsCards(t *testing.T) {
	deps, cardDir := testDeps(t)
	if err := cardDir.Write("archivist.json", []byte(testCardJSON)); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	w := get(t, testRouter(t, deps), "/dashboard/agents")
	body := w.Body.String()
	if !strings.Contains(body, "Archivist") {
		t.Error("agents page missing card name")
	}
	if !strings.Contains(body, "memory-query") {
		t.Error("agents page missing capability")
	}
}

func TestStaticAssets_CSS(t *testing.T) {
	deps, _ := testDeps(t)
	w := get(t, testRouter(t, deps), "/static/style.css")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// --- SSE tests ---

func TestSSE_SendsConnectedEvent(t *testing.T) {
	deps, _ := testDeps(t)
	srv := httptest.NewServer(testRouter(t, deps))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/dashboard/api/events", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q, want text/event-stream", ct)
	}
	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("read first event: %v", err)
	}
	if !strings.Contains(string(buf[:n]), "connected") {
		t.Errorf("first event = %q, want connected", string(buf[:n]))
	}
}

func TestEntriesAfter(t *testing.T) {
	entries := []models.IndexEntry{
		{MessageID: "MSG-2026-03-14-001"},
		{MessageID: "MSG-2026-03-14-002"},
		{MessageID: "MSG-2026-03-14-003"},
	}

	if got := entriesAfter(entries, ""); len(got) != 3 {
		t.Errorf("empty lastSeen: got %d entries, want 3", len(got))
	}
	got := entriesAfter(entries, "MSG-2026-03-14-002")
	if len(got) != 1 || got[0].MessageID != "MSG-2026-03-14-003" {
		t.Errorf("mid lastSeen: got %+v", got)
	}
	if got := entriesAfter(entries, "MSG-2026-03-14-003"); len(got) != 0 {
		t.Errorf("tip lastSeen: got %d entries, want 0", len(got))
	}
	if got := entriesAfter(entries, "MSG-1999-01-01-001"); len(got) != 3 {
		t.Errorf("unknown lastSeen: got %d entries, want 3", len(got))
	}
}

// --- helper tests ---

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		name string
		when time.Time
		want string
	}{
		{"zero", time.Time{}, "—"},
		{"minutes", time.Now().Add(-5 * time.Minute), "5m ago"},
		{"hours", time.Now().Add(-3 * time.Hour), "3h ago"},
		{"days", time.Now().Add(-48 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeAgo(tt.when); got != tt.want {
				t.Errorf("TimeAgo = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	out := string(renderMarkdown("hello <script>alert(1)</script> world"))
	if strings.Contains(out, "<script") {
		t.Errorf("raw HTML leaked through: %q", out)
	}
}

func TestRenderMarkdown_GFMTable(t *testing.T) {
	out := string(renderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |"))
	if !strings.Contains(out, "<table>") {
		t.Errorf("GFM table not rendered: %q", out)
	}
}
