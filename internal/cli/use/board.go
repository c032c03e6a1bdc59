package use

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/events"
)

// BoardCmd returns the use board subcommand
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board [board-id]",
		Short: "Set board context for current shell session",
		Long: `Set the current board context using environment variables.
This command outputs shell commands that should be evaluated:

  eval $(boardsync use board 01J...)     # Use a board
  eval $(boardsync use board --clear)    # Clear board context
  boardsync use board --show             # Show current board

The BOARDSYNC_BOARD environment variable will be set in your current shell
session only. The --board flag on other commands takes precedence over
this environment variable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUseBoard,
	}

	cmd.Flags().Bool("clear", false, "Clear the current board context")
	cmd.Flags().Bool("show", false, "Show the current board context")
	cmd.Flags().Bool("dry-run", false, "Show what would be exported without outputting shell commands")

	return cmd
}

func runUseBoard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	clearFlag, _ := cmd.Flags().GetBool("clear")
	showFlag, _ := cmd.Flags().GetBool("show")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if showFlag {
		current := os.Getenv(cli.BoardEnv)
		if current == "" {
			fmt.Println("No board context set")
			fmt.Println("Use 'eval $(boardsync use board <board-id>)' to set one")
			return nil
		}
		fmt.Printf("Current board: %s\n", current)
		return nil
	}

	if clearFlag {
		if dryRun {
			fmt.Fprintf(os.Stderr, "Would clear %s\n", cli.BoardEnv)
			return nil
		}
		fmt.Printf("unset %s\n", cli.BoardEnv)
		fmt.Fprintf(os.Stderr, "Cleared board context\n")
		return nil
	}

	if len(args) == 0 {
		return &cli.CommandError{
			Code: cli.ExitUsage,
			Err:  fmt.Errorf("board ID required\nUsage: eval $(boardsync use board <board-id>)"),
		}
	}

	boardID, err := cli.ParseID("board", args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return &cli.CommandError{Code: cli.ExitValidation, Err: err}
	}

	// Reading the columns proves the board exists and is visible to us.
	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return err
	}
	hub, err := cliInstance.Hub(ctx, events.HubColumns)
	if err != nil {
		return err
	}
	columns, err := events.GetColumns(ctx, hub, boardID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: board %s: %v\n", boardID, err)
		return &cli.CommandError{Code: cli.ExitCodeFor(err), Err: err}
	}

	if dryRun {
		fmt.Fprintf(os.Stderr, "Would set %s=%s (%d columns)\n", cli.BoardEnv, boardID, len(columns))
		return nil
	}

	fmt.Printf("export %s=%s\n", cli.BoardEnv, boardID)
	fmt.Fprintf(os.Stderr, "Now using board %s (%d columns)\n", boardID, len(columns))
	return nil
}
