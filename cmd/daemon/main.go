package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenoetrevino/boardsync/internal/config"
	"github.com/thenoetrevino/boardsync/internal/daemon"
	"github.com/thenoetrevino/boardsync/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "config file")
	flag.Parse()

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	closer, err := logging.Init(cfg.Log)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	// Blocks until shutdown
	if err := daemon.Run(ctx, cfg.Server, slog.Default()); err != nil {
		slog.Error("daemon error", "error", err)
		cancel()
		os.Exit(1)
	}

	slog.Info("boardsync daemon shutting down gracefully")
}
