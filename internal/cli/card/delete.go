package card

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/events"
)

// DeleteCmd returns the card delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a card",
		Long: `Delete a card by ID (requires confirmation unless --force or --quiet).
Its comments and attachments are deleted with it.

Examples:
  boardsync card delete --id=01J...
  boardsync card delete --id=01J... --force
`,
		RunE: runDelete,
	}

	cmd.Flags().String("id", "", "Card ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().Bool("force", false, "Skip confirmation")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	cardID, err := cli.GetIDFlag(cmd, "id")
	if err != nil {
		return formatter.Fail("INVALID_ID", err)
	}
	force, _ := cmd.Flags().GetBool("force")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}
	hub, err := cliInstance.Hub(ctx, events.HubCards)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}

	if !force && !formatter.Quiet && !formatter.JSON {
		card, err := events.GetCard(ctx, hub, cardID)
		if err != nil {
			return formatter.Fail("CARD_NOT_FOUND", err)
		}
		fmt.Printf("Delete card %s: '%s'? (y/N): ", cardID, card.Title)
		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			slog.Debug("Error reading user input", "error", err)
		}
		if r := strings.ToLower(response); r != "y" && r != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := events.DeleteCard(ctx, hub, cardID); err != nil {
		return formatter.Fail("DELETE_ERROR", err)
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"card_id": cardID,
		})
	}

	fmt.Printf("✓ Card %s deleted successfully\n", cardID)
	return nil
}
