// Command koifit-initdb rebuilds the Koifit database from the schema and
// seed data. Any existing file at the configured path is deleted first.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/claude/koifit/internal/config"
	"github.com/claude/koifit/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	dbPath := flag.String("db", "", "database path (overrides config)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	path := cfg.Database.Path
	if *dbPath != "" {
		path = *dbPath
	}

	if _, err := storage.Bootstrap(path, true); err != nil {
		log.Error("rebuild failed", "path", path, "error", err)
		os.Exit(1)
	}
	log.Info("database rebuilt", "path", path)
}
