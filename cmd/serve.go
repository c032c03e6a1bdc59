package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/daemon"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the realtime daemon",
		Long: `Serve the columns, cards and access hubs over websockets until
interrupted. server.jwt_secret (or BOARDSYNC_JWT_SECRET) must be set.

Examples:
  BOARDSYNC_JWT_SECRET=... boardsync serve
  boardsync serve --addr=0.0.0.0:7420 --db=/var/lib/boardsync/boardsync.db
`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().String("db", "", "Database path (overrides server.db_path)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return err
	}
	sc := cliInstance.Config.Server
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		sc.Addr = addr
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		sc.DBPath = db
	}

	return daemon.Run(ctx, sc, slog.Default())
}
