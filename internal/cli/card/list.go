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

// ListCmd returns the card list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards in a column",
		Long: `List the cards of a column, in order.

Examples:
  boardsync card list --column=01J...
  boardsync card list --column=01J... --json
  boardsync card list --column=01J... --quiet
`,
		RunE: runList,
	}

	cmd.Flags().String("column", "", "Column ID (required)")
	if err := cmd.MarkFlagRequired("column"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	columnID, err := cli.GetIDFlag(cmd, "column")
	if err != nil {
		return formatter.Fail("INVALID_ID", err)
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}
	hub, err := cliInstance.Hub(ctx, events.HubCards)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}

	cards, err := events.GetCards(ctx, hub, columnID)
	if err != nil {
		return formatter.Fail("CARD_FETCH_ERROR", err)
	}

	if formatter.Quiet {
		for _, card := range cards {
			fmt.Println(card.ID)
		}
		return nil
	}

	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"cards":   cards,
		})
	}

	if len(cards) == 0 {
		fmt.Printf("No cards in column %s\n", columnID)
		return nil
	}

	fmt.Printf("Cards in column %s:\n", columnID)
	for i, card := range cards {
		fmt.Printf("  %d. %s (ID: %s)\n", i+1, card.Title, card.ID)
	}
	return nil
}
