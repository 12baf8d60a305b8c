// Package main is the entry point for the campus market server.
//
// main stays minimal: read configuration, build the logger, hand both to
// internal/server. Everything else lives in importable packages.
package main

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/campus-market/internal/config"
	"github.com/sakif/campus-market/internal/repository/sqlite"
	"github.com/sakif/campus-market/internal/server"
)

func main() {
	// The standard logger reports config errors: slog is not set up until
	// we know which environment we are in.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	logger := config.NewLogger(cfg.Env, os.Stdout)
	slog.SetDefault(logger)

	// A file-backed catalog needs its directory to exist (like `mkdir -p`).
	if cfg.DBPath != sqlite.MemoryPath {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
