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

// CreateCmd returns the column create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new column",
		Long: `Create a new column at the end of a board.

Examples:
  # Human-readable output
  boardsync column create --title="Review" --board=01J...

  # JSON output for agents
  boardsync column create --title="Review" --json

  # Quiet mode for bash capture
  COLUMN_ID=$(boardsync column create --title="Review" --quiet)

  # Create and place after a specific column
  boardsync column create --title="Done" --after=01J...
`,
		RunE: runCreate,
	}

	// Required flags
	cmd.Flags().String("title", "", "Column title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}

	// Optional flags
	cmd.Flags().String("after", "", "Place after this column ID (default: end of board)")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	title, _ := cmd.Flags().GetString("title")

	boardID, err := cli.GetBoardID(cmd)
	if err != nil {
		return formatter.FailWithSuggestion("NO_BOARD", err,
			"Set board with: eval $(boardsync use board <board-id>)")
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

	column, err := events.CreateColumn(ctx, hub, boardID, title)
	if err != nil {
		return formatter.Fail("COLUMN_CREATE_ERROR", err)
	}

	// Columns are appended; --after is a follow-up move.
	if after != nil {
		if err := events.MoveColumn(ctx, hub, column.ID, after); err != nil {
			return formatter.Fail("COLUMN_MOVE_ERROR", err)
		}
		column.PrevID = after
	}

	if formatter.Quiet {
		fmt.Println(column.ID)
		return nil
	}

	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"column":  column,
		})
	}

	fmt.Printf("✓ Column '%s' created successfully (ID: %s)\n", column.Title, column.ID)
	return nil
}
