// Command koifit-mcp serves the Koifit MCP tools over stdio, reading from a
// running Koifit server's JSON API (typically its tailnet address).
package main

import (
	"flag"
	"log/slog"
	"os"

	koifitmcp "github.com/claude/koifit/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	baseURL := flag.String("url", envOr("KOIFIT_URL", "http://koifit"), "Koifit server base URL")
	flag.Parse()

	// stdout carries the protocol
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s := koifitmcp.New(koifitmcp.NewHTTPClient(*baseURL), Version, log)
	log.Info("koifit-mcp serving stdio", "url", *baseURL)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server failed", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
