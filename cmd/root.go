// Package cmd wires the boardsync command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/cli/board"
	"github.com/thenoetrevino/boardsync/internal/cli/card"
	"github.com/thenoetrevino/boardsync/internal/cli/column"
	"github.com/thenoetrevino/boardsync/internal/cli/use"
	"github.com/thenoetrevino/boardsync/internal/config"
	"github.com/thenoetrevino/boardsync/internal/logging"
)

// NewRootCmd builds the command tree. The CLI and logger are set up once
// flags are parsed; cleanup releases them after the command ran.
func NewRootCmd() (root *cobra.Command, cleanup func()) {
	var (
		cliInstance *cli.CLI
		logCloser   io.Closer
	)

	root = &cobra.Command{
		Use:   "boardsync",
		Short: "boardsync - realtime kanban boards",
		Long: `boardsync keeps kanban boards in sync between everyone looking at them.
Columns and cards are reordered with a single move that every open client
sees right away.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Past flag parsing, errors are not usage errors.
			cmd.SilenceUsage = true

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return &cli.CommandError{Code: cli.ExitUsage, Err: err}
			}
			if server, _ := cmd.Flags().GetString("server"); server != "" {
				cfg.Client.ServerURL = server
			}
			if token, _ := cmd.Flags().GetString("token"); token != "" {
				cfg.Client.Token = token
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.Log.Level = level
			}

			logCloser, err = logging.Init(cfg.Log)
			if err != nil {
				return &cli.CommandError{Code: cli.ExitUsage, Err: err}
			}

			cliInstance = cli.NewCLI(cfg)
			cmd.SetContext(cli.WithCLI(cmd.Context(), cliInstance))
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "Config file (default: ~/.config/boardsync/config.yaml)")
	root.PersistentFlags().String("server", "", "Daemon URL (overrides client.server_url)")
	root.PersistentFlags().String("token", "", "Access token (overrides client.token)")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	root.AddCommand(ServeCmd())
	root.AddCommand(board.BoardCmd())
	root.AddCommand(column.ColumnCmd())
	root.AddCommand(card.CardCmd())
	root.AddCommand(use.UseCmd())

	cleanup = func() {
		if cliInstance != nil {
			if err := cliInstance.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing CLI: %v\n", err)
			}
		}
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}
	return root, cleanup
}

// Execute runs the command line under ctx. Errors already shown by a
// command are not printed again.
func Execute(ctx context.Context) error {
	root, cleanup := NewRootCmd()
	defer cleanup()

	err := root.ExecuteContext(ctx)
	var shown *cli.CommandError
	if err != nil && !errors.As(err, &shown) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
