package card

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
)

// UpdateCmd returns the card update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a card's title or description",
		Long: `Update the title and/or description of a card. At least one of
--title or --description is required. An empty --description clears it.

Examples:
  boardsync card update --id=01J... --title="Fix login redirect"
  boardsync card update --id=01J... --description=""
`,
		RunE: runUpdate,
	}

	cmd.Flags().String("id", "", "Card ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	cardID, err := cli.GetIDFlag(cmd, "id")
	if err != nil {
		return formatter.Fail("INVALID_ID", err)
	}

	titleSet := cmd.Flags().Changed("title")
	descriptionSet := cmd.Flags().Changed("description")
	if !titleSet && !descriptionSet {
		return formatter.FailWithSuggestion("NO_UPDATES",
			fmt.Errorf("%w: nothing to update", models.ErrInvalidArgument),
			"Pass --title and/or --description")
	}
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}
	hub, err := cliInstance.Hub(ctx, events.HubCards)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}

	if titleSet {
		if err := events.UpdateCardTitle(ctx, hub, cardID, title); err != nil {
			return formatter.Fail("CARD_UPDATE_ERROR", err)
		}
	}
	if descriptionSet {
		if err := events.UpdateCardDescription(ctx, hub, cardID, description); err != nil {
			return formatter.Fail("CARD_UPDATE_ERROR", err)
		}
	}

	card, err := events.GetCard(ctx, hub, cardID)
	if err != nil {
		return formatter.Fail("CARD_FETCH_ERROR", err)
	}

	if formatter.Quiet {
		fmt.Println(card.ID)
		return nil
	}
	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"card":    card,
		})
	}

	fmt.Printf("✓ Card %s updated successfully\n", card.ID)
	return nil
}
