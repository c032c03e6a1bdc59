package app

import (
	"log/slog"

	"github.com/thenoetrevino/boardsync/internal/access"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	resolver access.Resolver
	logger   *slog.Logger
}

// WithResolver replaces the store-backed access resolver
func WithResolver(r access.Resolver) Option {
	return func(cfg *appConfig) {
		cfg.resolver = r
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
