// Package cli runs CLI commands against a live daemon in tests. It lives
// apart from testutil because it imports the daemon, whose own tests
// import testutil.
package cli

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thenoetrevino/boardsync/internal/app"
	clipkg "github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/config"
	"github.com/thenoetrevino/boardsync/internal/daemon"
	"github.com/thenoetrevino/boardsync/internal/database"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/testutil"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Env is a daemon on an in-memory database with one seeded board:
// columns Todo and Done, cards a, b, c in Todo. The board is owned by
// "owner"; "editor" and "reader" hold grants.
type Env struct {
	App     *app.App
	Repo    *database.Repository
	URL     string
	BoardID types.ID
	Todo    types.ID
	Done    types.ID
	Cards   []types.ID
}

// SetupCLITest starts the daemon and seeds the board.
func SetupCLITest(t *testing.T) *Env {
	t.Helper()

	a := app.New(testutil.SetupTestDB(t))
	repo := a.Repo()

	env := &Env{App: a, Repo: repo}
	env.BoardID = testutil.CreateTestBoard(t, repo, "owner")
	testutil.Grant(t, repo, env.BoardID, "editor", models.AccessEditor)
	testutil.Grant(t, repo, env.BoardID, "reader", models.AccessReader)
	env.Todo = testutil.CreateTestColumn(t, repo, env.BoardID, "Todo")
	env.Done = testutil.CreateTestColumn(t, repo, env.BoardID, "Done")
	for _, title := range []string{"a", "b", "c"} {
		env.Cards = append(env.Cards, testutil.CreateTestCard(t, repo, env.Todo, title))
	}

	server, err := daemon.NewServer(daemon.Config{
		JWTSecret:       testutil.TestJWTSecret,
		ShutdownTimeout: time.Second,
	}, a)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	ts := httptest.NewServer(server.Handler())
	env.URL = ts.URL
	t.Cleanup(ts.Close)
	t.Cleanup(func() {
		if err := server.Shutdown(); err != nil {
			t.Logf("Warning: daemon shutdown error during cleanup: %v", err)
		}
	})
	return env
}

// ContextFor returns a context carrying a CLI signed in as user.
func (e *Env) ContextFor(t *testing.T, user types.UserID) context.Context {
	t.Helper()

	cfg := config.Default()
	cfg.Client.ServerURL = e.URL
	cfg.Client.Token = testutil.SignToken(t, testutil.TestJWTSecret, user)

	c := clipkg.NewCLI(cfg)
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Logf("Warning: closing CLI: %v", err)
		}
	})
	return clipkg.WithCLI(context.Background(), c)
}
