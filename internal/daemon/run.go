package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/boardsync/internal/app"
	"github.com/thenoetrevino/boardsync/internal/config"
	"github.com/thenoetrevino/boardsync/internal/database"
)

// ConfigFrom maps the server section of the config file onto Config.
func ConfigFrom(sc config.ServerConfig) Config {
	return Config{
		Addr:         sc.Addr,
		JWTSecret:    sc.JWTSecret,
		ClientBuffer: sc.ClientBuffer,
		PingInterval: sc.PingInterval,
		PongTimeout:  sc.PongTimeout,
		CallTimeout:  sc.CallTimeout,
	}
}

// Run opens the database, serves until ctx is done and closes everything
// on the way out.
func Run(ctx context.Context, sc config.ServerConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.InitDB(ctx, sc.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	a := app.New(db, app.WithLogger(logger))
	defer func() { _ = a.Close() }()

	server, err := NewServer(ConfigFrom(sc), a, WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("boardsync daemon starting", "addr", sc.Addr, "db", sc.DBPath)
	if err := server.Start(ctx); err != nil {
		return err
	}
	logger.Info("boardsync daemon stopped")
	return nil
}
