package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// BoardEnv holds the board set by `boardsync use board`.
const BoardEnv = "BOARDSYNC_BOARD"

// ErrNoBoard means neither --board nor BOARDSYNC_BOARD was given.
var ErrNoBoard = fmt.Errorf("%w: no board specified (use --board or set %s)", models.ErrInvalidArgument, BoardEnv)

// GetBoardID reads the --board flag, falling back to BOARDSYNC_BOARD.
func GetBoardID(cmd *cobra.Command) (types.ID, error) {
	raw, _ := cmd.Flags().GetString("board")
	if raw == "" {
		raw = os.Getenv(BoardEnv)
	}
	if raw == "" {
		return "", ErrNoBoard
	}
	return ParseID("board", raw)
}

// ParseID validates an id given on the command line.
func ParseID(what, raw string) (types.ID, error) {
	id, err := types.ParseID(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid %s id: %v", models.ErrInvalidArgument, what, err)
	}
	return id, nil
}

// GetIDFlag parses a required id flag.
func GetIDFlag(cmd *cobra.Command, name string) (types.ID, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return "", fmt.Errorf("%w: --%s is required", models.ErrInvalidArgument, name)
	}
	return ParseID(name, raw)
}

// GetAfterFlag reads --after, the new predecessor of a moved item. No
// --after means the item goes to the head.
func GetAfterFlag(cmd *cobra.Command) (*types.ID, error) {
	raw, _ := cmd.Flags().GetString("after")
	if raw == "" {
		return nil, nil
	}
	id, err := ParseID("after", raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// AddOutputFlags registers the agent-friendly --json and --quiet flags.
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")
}

// GetFormatter builds the formatter selected by the output flags.
func GetFormatter(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{JSON: jsonOutput, Quiet: quietMode}
}
