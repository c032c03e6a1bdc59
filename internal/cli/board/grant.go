package board

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// GrantCmd returns the board grant subcommand
func GrantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant or revoke a user's access to a board",
		Long: `Set a user's personal access level on a board. Only the owner may do
this. The user is notified on their open connections.

Examples:
  boardsync board grant --user=bob --level=editor
  boardsync board grant --user=bob --revoke
`,
		RunE: runGrant,
	}

	cmd.Flags().String("board", "", "Board ID (uses BOARDSYNC_BOARD env var if not specified)")
	cmd.Flags().String("user", "", "User ID (required)")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("level", "", "reader or editor")
	cmd.Flags().Bool("revoke", false, "Remove the user's grant")
	cmd.MarkFlagsMutuallyExclusive("level", "revoke")
	cmd.MarkFlagsOneRequired("level", "revoke")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runGrant(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	boardID, err := cli.GetBoardID(cmd)
	if err != nil {
		return formatter.FailWithSuggestion("NO_BOARD", err,
			"Set board with: eval $(boardsync use board <board-id>)")
	}
	user, _ := cmd.Flags().GetString("user")
	level, _ := cmd.Flags().GetString("level")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}
	hub, err := cliInstance.Hub(ctx, events.HubAccess)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}

	if err := events.SetAccess(ctx, hub, boardID, types.UserID(user), level); err != nil {
		return formatter.Fail("ACCESS_ERROR", err)
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success":  true,
			"board_id": boardID,
			"user_id":  user,
			"level":    level,
		})
	}

	if level == "" {
		fmt.Printf("✓ Revoked %s's access to board %s\n", user, boardID)
	} else {
		fmt.Printf("✓ Granted %s %s access to board %s\n", user, level, boardID)
	}
	return nil
}
