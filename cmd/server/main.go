// Package main is the entry point for the drivebench-mcp server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesprial/drivebench-mcp/internal/auth"
	"github.com/jamesprial/drivebench-mcp/internal/bench"
	"github.com/jamesprial/drivebench-mcp/internal/config"
	"github.com/jamesprial/drivebench-mcp/internal/probe"
	"github.com/jamesprial/drivebench-mcp/internal/safety"
	"github.com/jamesprial/drivebench-mcp/internal/sequencer"
	"github.com/jamesprial/drivebench-mcp/internal/tools"
	"github.com/jamesprial/drivebench-mcp/internal/volume"
	"github.com/mark3labs/mcp-go/server"
)

const defaultConfigPath = "/config/config.yaml"

func main() {
	cfg := loadConfig()
	config.ApplyEnvOverrides(cfg)

	tokenBefore := cfg.Server.AuthToken
	token, err := config.EnsureAuthToken(cfg)
	if err != nil {
		log.Printf("warning: could not generate auth token: %v — running without authentication", err)
	} else if tokenBefore == "" {
		log.Printf("generated auth token (set DRIVEBENCH_AUTH_TOKEN to persist): %s", token)
	}

	// Open audit log writer if enabled.
	var auditLogger *safety.AuditLogger
	if cfg.Audit.Enabled {
		f, err := os.OpenFile(cfg.Audit.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			log.Printf("warning: could not open audit log %q: %v — audit logging disabled", cfg.Audit.LogPath, err)
		} else {
			auditLogger = safety.NewAuditLogger(f)
			defer f.Close()
		}
	}

	// Build safety components.
	volumeFilter := safety.NewFilter(
		cfg.Safety.Volumes.Allowlist,
		cfg.Safety.Volumes.Denylist,
	)
	benchConfirm := safety.NewConfirmationTracker(sequencer.DestructiveTools)

	// Build the benchmark engine.
	catalog := volume.NewGopsutilCatalog()

	sizes := make([]sequencer.SizeSpec, 0, len(cfg.Bench.Sizes))
	for _, s := range cfg.Bench.Sizes {
		sizes = append(sizes, sequencer.SizeSpec{Label: s.Label, SizeBytes: s.SizeBytes})
	}

	runner := bench.NewChunkedRunner(cfg.Bench.ChunkSizeBytes)
	prober := probe.NewFSProber(os.TempDir())
	seq := sequencer.New(sizes, cfg.Bench.SafetyBufferBytes, prober, runner)

	// Build MCP server.
	mcpServer := server.NewMCPServer(
		"drivebench-mcp",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	// Register all tools.
	var registrations []tools.Registration
	registrations = append(registrations, volume.VolumeTools(catalog, volumeFilter, auditLogger)...)
	registrations = append(registrations, sequencer.BenchTools(seq, catalog, volumeFilter, benchConfirm, auditLogger)...)

	tools.RegisterAll(mcpServer, registrations)

	// Build Streamable HTTP server and wrap with auth middleware.
	httpHandler := server.NewStreamableHTTPServer(mcpServer)
	authMiddleware := auth.NewAuthMiddleware(cfg.Server.AuthToken)
	wrappedHandler := authMiddleware(httpHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           wrappedHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("drivebench-mcp listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	// Stop any in-flight benchmark run so its scratch file gets cleaned up.
	seq.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// loadConfig attempts to read the config file from the path specified by
// DRIVEBENCH_CONFIG_PATH or the default /config/config.yaml. If the file
// cannot be read, DefaultConfig is returned.
func loadConfig() *config.Config {
	path := os.Getenv("DRIVEBENCH_CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Printf("could not load config from %q (%v), using defaults", path, err)
		return config.DefaultConfig()
	}

	log.Printf("loaded config from %q", path)
	return cfg
}
