// A2A MCP server
// Exposes the message store and agent cards to local agent processes over
// stdio. Shares the data directory with the a2a server and CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/config"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/storage"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/tools/a2a"
)

const defaultConfigPath = "a2a.yaml"

// Version is set by -ldflags at build time.
var Version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Println("a2a-mcp " + Version)
			return
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "a2a-mcp: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg.MCP.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "a2a-mcp: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	logger.Printf("Starting A2A MCP server (data dir %s)", cfg.DataDir)

	store := msgstore.New(
		storage.NewFS(filepath.Join(cfg.DataDir, "messages")),
		msgstore.Opts{IdempotentAck: cfg.Messages.IdempotentAck},
	)
	cardsDir := filepath.Join(cfg.DataDir, "agentcards")
	registry := agentcard.NewRegistry(storage.NewFS(cardsDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down", sig)
		cancel()
	}()

	// The registry sync rewrites card files while a stdio session runs.
	watcher, err := agentcard.Watch(ctx, cardsDir, registry, logger.Writer())
	if err != nil {
		logger.Printf("Agent card watch disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	hooks := &server.Hooks{}
	hooks.AddAfterCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest, result *mcp.CallToolResult) {
		if message != nil {
			logger.Printf("Tool called: %s", message.Params.Name)
		}
	})

	mcpServer := server.NewMCPServer(
		"a2a",
		Version,
		server.WithInstructions(a2a.InstructionsText()),
		server.WithHooks(hooks),
	)
	a2a.Register(mcpServer, store, registry, logger)

	logger.Println("Stdio ready")
	stdioSrv := server.NewStdioServer(mcpServer)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Printf("Stdio server stopped: %v", err)
	}

	logger.Println("Server stopped")
}

// loadConfig resolves the config file: A2A_CONFIG when set, a2a.yaml in the
// working directory otherwise. Only the default path is allowed to be absent.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("A2A_CONFIG"); path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(defaultConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// newLogger writes to the configured log file, or stderr when none is set.
// Stdout is never an option here: it carries the MCP protocol.
func newLogger(logFile string) (*log.Logger, func(), error) {
	if logFile == "" {
		return log.New(os.Stderr, "[a2a-mcp] ", log.LstdFlags), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "[a2a-mcp] ", log.LstdFlags), func() { f.Close() }, nil
}
