package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/boardsync/internal/config"
	"github.com/thenoetrevino/boardsync/internal/events"
)

const conflictRetries = 3

// ErrNoCLI means a command ran without a CLI in its context.
var ErrNoCLI = errors.New("cli not initialized")

// CLI represents the CLI application context: where the daemon is and how
// to authenticate to it. Hub connections are opened on first use.
type CLI struct {
	Config *config.Config
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*events.Client
}

// NewCLI initializes the CLI from cfg. Nothing is dialed yet.
func NewCLI(cfg *config.Config) *CLI {
	return &CLI{
		Config:  cfg,
		logger:  slog.Default().With("component", "cli"),
		clients: make(map[string]*events.Client),
	}
}

// Logger returns the logger commands should use.
func (c *CLI) Logger() *slog.Logger {
	return c.logger
}

// Hub returns an invoker for one-shot calls on hub. The connection is
// shared by every command of this process and does not reconnect; calls
// the store rejects as conflicting are retried.
func (c *CLI) Hub(ctx context.Context, hub string) (events.Invoker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, ok := c.clients[hub]
	if !ok {
		var err error
		client, err = c.Dial(ctx, hub, events.WithReconnect(0, 0))
		if err != nil {
			return nil, err
		}
		c.clients[hub] = client
	}
	return events.Retrying(client, conflictRetries), nil
}

// Dial opens a new client on hub. The caller owns it and must close it.
func (c *CLI) Dial(ctx context.Context, hub string, opts ...events.ClientOption) (*events.Client, error) {
	if c.Config.Client.Token == "" {
		return nil, fmt.Errorf("no access token: set client.token in the config or BOARDSYNC_TOKEN")
	}
	opts = append([]events.ClientOption{events.WithClientLogger(c.logger)}, opts...)
	client, err := events.NewClient(c.Config.Client.ServerURL, hub, c.Config.Client.Token, opts...)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.Config.Client.ServerURL, err)
	}
	return client, nil
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for hub, client := range c.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s client: %w", hub, err))
		}
		delete(c.clients, hub)
	}
	return errors.Join(errs...)
}

type cliKey struct{}

// WithCLI stores c in ctx for the commands run under it.
func WithCLI(ctx context.Context, c *CLI) context.Context {
	return context.WithValue(ctx, cliKey{}, c)
}

// GetCLIFromContext returns the CLI set up by the root command.
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx == nil {
		return nil, ErrNoCLI
	}
	c, ok := ctx.Value(cliKey{}).(*CLI)
	if !ok || c == nil {
		return nil, ErrNoCLI
	}
	return c, nil
}
