package column

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/events"
)

// ListCmd returns the column list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List columns of a board",
		Long: `List all columns of a board, in order.

Examples:
  # Human-readable list
  boardsync column list --board=01J...

  # JSON output for agents
  boardsync column list --json

  # Quiet mode (one ID per line)
  boardsync column list --quiet
`,
		RunE: runList,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	boardID, err := cli.GetBoardID(cmd)
	if err != nil {
		return formatter.FailWithSuggestion("NO_BOARD", err,
			"Set board with: eval $(boardsync use board <board-id>)")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}
	hub, err := cliInstance.Hub(ctx, events.HubColumns)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}

	columns, err := events.GetColumns(ctx, hub, boardID)
	if err != nil {
		return formatter.Fail("COLUMN_FETCH_ERROR", err)
	}

	if formatter.Quiet {
		for _, col := range columns {
			fmt.Println(col.ID)
		}
		return nil
	}

	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"columns": columns,
		})
	}

	if len(columns) == 0 {
		fmt.Printf("No columns found on board %s\n", boardID)
		return nil
	}

	fmt.Printf("Columns on board %s:\n", boardID)
	for i, col := range columns {
		fmt.Printf("  %d. %s (ID: %s)\n", i+1, col.Title, col.ID)
	}
	return nil
}
