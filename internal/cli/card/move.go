package card

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/events"
)

// MoveCmd returns the card move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a card within or across columns",
		Long: `Move a card into a column, after another card or to the top.
Only the moved card and its new predecessor are sent; the server relinks
its neighbors.

Examples:
  # Reorder within the same column
  boardsync card move --id=01J...C --to=01J...TODO --after=01J...A

  # Move to the top of another column
  boardsync card move --id=01J...C --to=01J...DONE
`,
		RunE: runMove,
	}

	cmd.Flags().String("id", "", "Card ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("to", "", "Destination column ID (required)")
	if err := cmd.MarkFlagRequired("to"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("after", "", "New predecessor card ID (default: top of the column)")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	cardID, err := cli.GetIDFlag(cmd, "id")
	if err != nil {
		return formatter.Fail("INVALID_ID", err)
	}
	toColumn, err := cli.GetIDFlag(cmd, "to")
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
	hub, err := cliInstance.Hub(ctx, events.HubCards)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}

	if err := events.MoveCard(ctx, hub, cardID, toColumn, after); err != nil {
		return formatter.Fail("CARD_MOVE_ERROR", err)
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success":      true,
			"card_id":      cardID,
			"to_column_id": toColumn,
			"new_prev_id":  after,
		})
	}

	if after == nil {
		fmt.Printf("✓ Card %s moved to the top of column %s\n", cardID, toColumn)
	} else {
		fmt.Printf("✓ Card %s moved after %s in column %s\n", cardID, *after, toColumn)
	}
	return nil
}
