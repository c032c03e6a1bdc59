package cli

import (
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/testutil"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// ExecuteCLICommand runs cmd with args as user against the env's daemon.
func (e *Env) ExecuteCLICommand(t *testing.T, user types.UserID, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return ExecuteCLICommandWithContext(t, e.ContextFor(t, user), cmd, args...)
}

// ExecuteCLICommandWithContext runs cmd under ctx, which must carry a CLI.
func ExecuteCLICommandWithContext(t *testing.T, ctx context.Context, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return testutil.ExecuteCommand(t, ctx, cmd, args...)
}
