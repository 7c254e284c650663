// Package dashboard serves the web UI: queue overview, message browser with
// rendered markdown bodies, and the agent registry, all from embedded
// templates.
package dashboard

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// Deps holds what the dashboard reads from. Store and Registry are required;
// DB is optional and only feeds the activity panels.
type Deps struct {
	Store    *msgstore.Store
	Registry *agentcard.Registry
	DB       *gorm.DB
}

// Register mounts the dashboard pages under /dashboard and the embedded
// static assets under /static.
func Register(router *gin.Engine, deps Deps) error {
	if deps.Store == nil {
		return fmt.Errorf("dashboard: store is required")
	}
	if deps.Registry == nil {
		return fmt.Errorf("dashboard: registry is required")
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/dashboard", handleOverview(deps))
	router.GET("/dashboard/messages", handleMessages(deps))
	router.GET("/dashboard/messages/:message_id", handleMessageDetail(deps))
	router.GET("/dashboard/agents", handleAgents(deps))
	router.GET("/dashboard/api/events", handleSSE(deps.Store))

	return nil
}

// parseTemplates loads the embedded HTML templates with display helpers.
func parseTemplates() (*template.Template, error) {
	tmpl := template.New("dashboard").Funcs(template.FuncMap{
		"timeago": TimeAgo,
	})
	tmpl, err := tmpl.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func handleOverview(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "overview.html", overviewData(deps))
	}
}

func handleMessages(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := msgstore.ListFilter{
			AgentID:  c.Query("agent"),
			Status:   c.Query("status"),
			Type:     c.Query("type"),
			Priority: c.Query("priority"),
			Limit:    100,
		}
		msgs, err := deps.Store.List(filter)
		if err != nil {
			msgs = nil
		}
		c.HTML(http.StatusOK, "messages.html", gin.H{
			"Page":     "messages",
			"Summary":  buildSummary(deps.Store),
			"Messages": msgs,
			"Filter":   filter,
			"AgentIDs": agentIDs(deps.Registry),
		})
	}
}

func handleMessageDetail(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		msg, err := deps.Store.Get(c.Param("message_id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{
				"Page":    "error",
				"Summary": buildSummary(deps.Store),
				"Message": err.Error(),
			})
			return
		}
		c.HTML(http.StatusOK, "message_detail.html", gin.H{
			"Page":        "messages",
			"Summary":     buildSummary(deps.Store),
			"Msg":         msg,
			"ContentHTML": renderMarkdown(msg.Content),
		})
	}
}

func handleAgents(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cards, err := deps.Registry.List()
		if err != nil {
			cards = nil
		}
		c.HTML(http.StatusOK, "agents.html", gin.H{
			"Page":    "agents",
			"Summary": buildSummary(deps.Store),
			"Agents":  cards,
		})
	}
}
