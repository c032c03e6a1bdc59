// Package board holds the board commands: boardsync board ...
package board

import (
	"github.com/spf13/cobra"
)

// BoardCmd returns the board parent command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Create boards, share them and watch them live",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(GrantCmd())
	cmd.AddCommand(WatchCmd())

	return cmd
}
