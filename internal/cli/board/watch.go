package board

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/cli/styles"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// WatchCmd returns the board watch subcommand
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a board live",
		Long: `Load a board and redraw it whenever anyone moves a column or card.
Runs until interrupted.

Examples:
  boardsync board watch --board=01J...
  boardsync board watch --json   # one JSON snapshot per change
  boardsync board watch --once   # print the board and exit
`,
		RunE: runWatch,
	}

	cmd.Flags().String("board", "", "Board ID (uses BOARDSYNC_BOARD env var if not specified)")
	cmd.Flags().Bool("once", false, "Print the board once and exit")
	cmd.Flags().Bool("json", false, "Output in JSON format")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)
	once, _ := cmd.Flags().GetBool("once")

	boardID, err := cli.GetBoardID(cmd)
	if err != nil {
		return formatter.FailWithSuggestion("NO_BOARD", err,
			"Set board with: eval $(boardsync use board <board-id>)")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}

	columns, err := cliInstance.Dial(ctx, events.HubColumns, events.WithBoard(boardID))
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}
	defer func() { _ = columns.Close() }()
	cards, err := cliInstance.Dial(ctx, events.HubCards, events.WithBoard(boardID))
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}
	defer func() { _ = cards.Close() }()

	w := &watcher{
		board:   boardID,
		columns: columns,
		cards:   cards,
		mirror:  events.NewMirror(boardID, columns, cards, nil),
		out:     os.Stdout,
		json:    formatter.JSON,
		titles:  make(map[types.ID]string),
	}
	if err := w.mirror.Load(ctx); err != nil {
		return formatter.Fail("BOARD_LOAD_ERROR", err)
	}
	if err := w.refreshTitles(ctx); err != nil {
		return formatter.Fail("BOARD_LOAD_ERROR", err)
	}
	if err := w.render(); err != nil {
		return err
	}
	if once {
		return nil
	}

	w.mirror.OnChange(func() {
		if w.missingTitles() {
			if err := w.refreshTitles(ctx); err != nil {
				cliInstance.Logger().Warn("refreshing titles failed", "error", err)
			}
		}
		if err := w.render(); err != nil {
			cliInstance.Logger().Warn("render failed", "error", err)
		}
	})

	columnEvents, err := columns.Listen(ctx)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}
	cardEvents, err := cards.Listen(ctx)
	if err != nil {
		return formatter.Fail("CONNECTION_ERROR", err)
	}
	if err := w.mirror.Follow(ctx, columnEvents, cardEvents); err != nil {
		return formatter.Fail("WATCH_ERROR", err)
	}
	return nil
}

// watcher renders a mirror. Titles are not part of the mirror, so they are
// fetched when an id shows up that has none yet.
type watcher struct {
	board   types.ID
	columns events.Invoker
	cards   events.Invoker
	mirror  *events.Mirror
	out     io.Writer
	json    bool

	mu     sync.Mutex
	titles map[types.ID]string
}

type watchColumn struct {
	ID    types.ID   `json:"id"`
	Title string     `json:"title"`
	Cards []watchRow `json:"cards"`
}

type watchRow struct {
	ID    types.ID `json:"id"`
	Title string   `json:"title"`
}

func (w *watcher) refreshTitles(ctx context.Context) error {
	cols, err := events.GetColumns(ctx, w.columns, w.board)
	if err != nil {
		return err
	}
	titles := make(map[types.ID]string)
	for _, col := range cols {
		titles[col.ID] = col.Title
		cards, err := events.GetCards(ctx, w.cards, col.ID)
		if err != nil {
			return err
		}
		for _, card := range cards {
			titles[card.ID] = card.Title
		}
	}

	w.mu.Lock()
	w.titles = titles
	w.mu.Unlock()
	return nil
}

func (w *watcher) missingTitles() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, col := range w.mirror.Columns() {
		if _, ok := w.titles[col]; !ok {
			return true
		}
		for _, card := range w.mirror.Cards(col) {
			if _, ok := w.titles[card]; !ok {
				return true
			}
		}
	}
	return false
}

func (w *watcher) title(id types.ID) string {
	if t, ok := w.titles[id]; ok {
		return t
	}
	return string(id)
}

func (w *watcher) snapshot() []watchColumn {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []watchColumn
	for _, col := range w.mirror.Columns() {
		c := watchColumn{ID: col, Title: w.title(col), Cards: []watchRow{}}
		for _, card := range w.mirror.Cards(col) {
			c.Cards = append(c.Cards, watchRow{ID: card, Title: w.title(card)})
		}
		out = append(out, c)
	}
	return out
}

func (w *watcher) render() error {
	snap := w.snapshot()

	if w.json {
		return json.NewEncoder(w.out).Encode(map[string]interface{}{
			"board_id": w.board,
			"columns":  snap,
		})
	}

	view := make([]styles.BoardColumn, len(snap))
	for i, col := range snap {
		view[i].Title = col.Title
		for _, card := range col.Cards {
			view[i].Cards = append(view[i].Cards, card.Title)
		}
	}
	_, err := fmt.Fprintln(w.out, styles.RenderBoard(view))
	return err
}
