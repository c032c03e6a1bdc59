package card

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/cli/styles"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// ShowCmd returns the card show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a card",
		Long: `Show one card with its description and neighbors.

Examples:
  boardsync card show --id=01J...
  boardsync card show --id=01J... --json
  boardsync card show --id=01J... --markdown
`,
		RunE: runShow,
	}

	cmd.Flags().String("id", "", "Card ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}

	cmd.Flags().Bool("markdown", false, "Render the description as markdown")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	cardID, err := cli.GetIDFlag(cmd, "id")
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

	card, err := events.GetCard(ctx, hub, cardID)
	if err != nil {
		return formatter.FailWithSuggestion("CARD_NOT_FOUND", err,
			"Use 'boardsync card list --column=<column-id>' to see available cards")
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

	markdown, _ := cmd.Flags().GetBool("markdown")
	fmt.Println(styles.RenderCard(formatCard(card, markdown)))
	return nil
}

func formatCard(card events.Card, markdown bool) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(card.Title))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(string(card.ID)))
	b.WriteString("\n\n")
	b.WriteString(styles.Field("Column", string(card.ColumnID)) + "\n")
	b.WriteString(styles.Field("After", neighbor(card.PrevID)) + "\n")
	b.WriteString(styles.Field("Before", neighbor(card.NextID)))

	if card.Description != "" {
		b.WriteString("\n")
		b.WriteString(styles.SectionStyle.Render("Description"))
		b.WriteString("\n")
		if markdown {
			b.WriteString(styles.Markdown(card.Description, styles.CardWidth-6))
		} else {
			b.WriteString(styles.ValueStyle.Render(card.Description))
		}
	}
	return b.String()
}

func neighbor(id *types.ID) string {
	if id == nil {
		return "-"
	}
	return string(*id)
}
