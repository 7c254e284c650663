// Package server exposes the JSON-RPC endpoint and the REST discovery facade
// over a single gin router, with the dashboard mounted alongside when enabled.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/dashboard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/rpc"
)

// Opts holds configuration for the HTTP server. Store and Registry are
// required; StatsDB is only needed when Dashboard is on.
type Opts struct {
	Store     *msgstore.Store
	Registry  *agentcard.Registry
	StatsDB   *gorm.DB
	Port      int
	Dashboard bool
	Out       io.Writer
}

// NewRouter builds the gin engine with all routes registered. Split from
// Start so tests can drive it through httptest.
func NewRouter(opts Opts) (*gin.Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("server: registry is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	dispatcher := rpc.NewDispatcher(opts.Store, opts.Registry, out)
	router.POST("/a2a", rpcHandler(dispatcher))
	router.GET("/a2a/methods", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "methods": dispatcher.Methods()})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/agentcard/:agent_id", getCard(opts.Registry))
	router.GET("/agentcards", listCards(opts.Registry))

	if opts.Dashboard {
		err := dashboard.Register(router, dashboard.Deps{
			Store:    opts.Store,
			Registry: opts.Registry,
			DB:       opts.StatsDB,
		})
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/dashboard")
		})
	}

	return router, nil
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts Opts) error {
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	port := opts.Port
	if port <= 0 {
		port = 8700
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "A2A server running at http://localhost:%d\n", port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// rpcHandler feeds the raw body to the dispatcher. Protocol errors still
// return 200 with an error envelope; only internal errors map to 500.
func rpcHandler(d *rpc.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "read request body"})
			return
		}
		resp := d.DispatchRaw(body)
		status := http.StatusOK
		if resp.Error != nil && resp.Error.Code == rpc.CodeInternalError {
			status = http.StatusInternalServerError
		}
		c.JSON(status, resp)
	}
}

func getCard(registry *agentcard.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		card, err := registry.Get(c.Param("agent_id"))
		if errors.Is(err, agentcard.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "agentcard": card})
	}
}

func listCards(registry *agentcard.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		cards, err := registry.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "count": len(cards), "agentcards": cards})
	}
}
