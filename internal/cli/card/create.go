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

// CreateCmd returns the card create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new card",
		Long: `Create a card at the end of a column.

Examples:
  boardsync card create --column=01J... --title="Fix login"
  CARD_ID=$(boardsync card create --column=01J... --title="Fix login" --quiet)
  boardsync card create --column=01J... --title="Write docs" --description="Cover the hub protocol"
`,
		RunE: runCreate,
	}

	cmd.Flags().String("column", "", "Column ID (required)")
	if err := cmd.MarkFlagRequired("column"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("title", "", "Card title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("description", "", "Card description")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	columnID, err := cli.GetIDFlag(cmd, "column")
	if err != nil {
		return formatter.Fail("INVALID_ID", err)
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

	card, err := events.CreateCard(ctx, hub, columnID, title, description)
	if err != nil {
		return formatter.Fail("CARD_CREATE_ERROR", err)
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

	fmt.Printf("✓ Card '%s' created successfully (ID: %s)\n", card.Title, card.ID)
	return nil
}
