package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/koifit/internal/config"
	"github.com/claude/koifit/internal/logging"
	koifitmcp "github.com/claude/koifit/internal/mcp"
	"github.com/claude/koifit/internal/metrics"
	"github.com/claude/koifit/internal/server"
	"github.com/claude/koifit/internal/storage"
	"github.com/claude/koifit/internal/web"
	"github.com/claude/koifit/internal/workout"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	initOnly := flag.Bool("init-only", false, "create the database if missing and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log, logFile, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.Info("Koifit starting", "version", Version)

	// Create the store on first run
	created, err := storage.Bootstrap(cfg.Database.Path, false)
	if err != nil {
		log.Error("database bootstrap failed", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	if created {
		log.Info("database created", "path", cfg.Database.Path)
	}

	if *initOnly {
		log.Info("init-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database.Path)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database opened", "path", cfg.Database.Path)

	views, err := web.New()
	if err != nil {
		log.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	svc := workout.NewService(db, log)

	var m *metrics.Manager
	if cfg.Metrics.Enabled {
		m = metrics.New("koifit")
		log.Info("metrics endpoint mounted", "path", "/metrics")
	}
	srv := server.New(svc, views, web.Assets(), m, log)

	if cfg.MCP.Enabled {
		mcpSrv := koifitmcp.New(svc, Version, log)
		srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))
		log.Info("mcp endpoint mounted", "path", "/mcp")
	}

	// Start server on tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr)
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
