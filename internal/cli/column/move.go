package column

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/events"
)

// MoveCmd returns the column move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a column",
		Long: `Move a column so it follows another one, or to the front of the board.

Examples:
  # Place column after another
  boardsync column move --id=01J...A --after=01J...B

  # Move to the front
  boardsync column move --id=01J...A
`,
		RunE: runMove,
	}

	cmd.Flags().String("id", "", "Column ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("after", "", "New predecessor column ID (default: front of the board)")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	columnID, err := cli.GetIDFlag(cmd, "id")
	if err != nil {
		return formatter.Fail("INVALID_ID", err)
	}
	after, err := cli.GetAfterFlag(cmd)
	if err != nil {
		return formatter.Fail("INVALID_AFTER", err)
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}
	hub, err := cliInstance.Hub(ctx, events.HubColumns)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}

	if err := events.MoveColumn(ctx, hub, columnID, after); err != nil {
		return formatter.Fail("COLUMN_MOVE_ERROR", err)
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success":     true,
			"column_id":   columnID,
			"new_prev_id": after,
		})
	}

	if after == nil {
		fmt.Printf("✓ Column %s moved to the front\n", columnID)
	} else {
		fmt.Printf("✓ Column %s moved after %s\n", columnID, *after)
	}
	return nil
}
