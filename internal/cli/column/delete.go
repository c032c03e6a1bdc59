package column

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

// DeleteCmd returns the column delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a column",
		Long: `Delete a column by ID (requires confirmation unless --force or --quiet).

Warning: Deleting a column deletes every card in it.

Examples:
  # Delete with confirmation
  boardsync column delete --id=01J...

  # Skip confirmation
  boardsync column delete --id=01J... --force
`,
		RunE: runDelete,
	}

	cmd.Flags().String("id", "", "Column ID (required)")
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

	columnID, err := cli.GetIDFlag(cmd, "id")
	if err != nil {
		return formatter.Fail("INVALID_ID", err)
	}
	force, _ := cmd.Flags().GetBool("force")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}
	hub, err := cliInstance.Hub(ctx, events.HubColumns)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}

	// Ask for confirmation unless force or quiet mode
	if !force && !formatter.Quiet && !formatter.JSON {
		fmt.Println("⚠ Warning: Deleting a column deletes all of its cards")
		fmt.Printf("Delete column %s? (y/N): ", columnID)
		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			slog.Debug("Error reading user input", "error", err)
		}
		if r := strings.ToLower(response); r != "y" && r != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := events.DeleteColumn(ctx, hub, columnID); err != nil {
		return formatter.Fail("DELETE_ERROR", err)
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success":   true,
			"column_id": columnID,
		})
	}

	fmt.Printf("✓ Column %s deleted successfully\n", columnID)
	return nil
}
