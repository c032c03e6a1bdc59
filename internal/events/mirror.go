package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/thenoetrevino/boardsync/internal/splice"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// ErrBoardDeleted ends Follow once the followed board is gone.
var ErrBoardDeleted = errors.New("board deleted")

// Mirror is a client's local copy of one board's order. Local moves are
// spliced before they are sent, so the view never waits on the server.
// Remote move notifications go through the same splice. When the server
// rejects a move the mirror re-reads the board instead of trying to undo.
type Mirror struct {
	boardID types.ID
	columns Invoker
	cards   Invoker
	logger  *slog.Logger

	mu       sync.Mutex
	board    *splice.Board
	onChange func()

	resyncs atomic.Int64
}

// NewMirror creates an empty mirror. Call Load before using it.
func NewMirror(boardID types.ID, columns, cards Invoker, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		boardID: boardID,
		columns: columns,
		cards:   cards,
		logger:  logger.With("board", boardID),
		board:   splice.NewBoard(),
	}
}

// OnChange registers fn to run after every change to the mirror.
func (m *Mirror) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Load replaces the mirror with the order the server materializes.
func (m *Mirror) Load(ctx context.Context) error {
	cols, err := GetColumns(ctx, m.columns, m.boardID)
	if err != nil {
		return fmt.Errorf("loading columns: %w", err)
	}

	board := splice.NewBoard()
	for _, col := range cols {
		cards, err := GetCards(ctx, m.cards, col.ID)
		if err != nil {
			return fmt.Errorf("loading cards of %s: %w", col.ID, err)
		}
		ids := make([]types.ID, len(cards))
		for i, card := range cards {
			ids[i] = card.ID
		}
		board.SetColumn(col.ID, ids)
	}

	m.update(func(b **splice.Board) error {
		*b = board
		return nil
	})
	return nil
}

// Columns returns the mirrored column order.
func (m *Mirror) Columns() []types.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Columns()
}

// Cards returns the mirrored card order of a column.
func (m *Mirror) Cards(columnID types.ID) []types.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Cards(columnID)
}

// Resyncs counts how many times the mirror was reloaded after a rejected
// move or because it stopped trusting the event stream.
func (m *Mirror) Resyncs() int64 {
	return m.resyncs.Load()
}

// MoveColumn splices locally and then asks the server to do the same.
func (m *Mirror) MoveColumn(ctx context.Context, moved types.ID, newPrev *types.ID) error {
	err := m.update(func(b **splice.Board) error {
		return (*b).MoveColumn(moved, newPrev)
	})
	if err != nil {
		return err
	}
	if err := MoveColumn(ctx, m.columns, moved, newPrev); err != nil {
		return m.rejected(ctx, MethodMoveColumn, err)
	}
	return nil
}

// MoveCard splices locally and then asks the server to do the same.
func (m *Mirror) MoveCard(ctx context.Context, moved, toColumn types.ID, newPrev *types.ID) error {
	err := m.update(func(b **splice.Board) error {
		return (*b).MoveCard(moved, toColumn, newPrev)
	})
	if err != nil {
		return err
	}
	if err := MoveCard(ctx, m.cards, moved, toColumn, newPrev); err != nil {
		return m.rejected(ctx, MethodMoveCard, err)
	}
	return nil
}

// DropColumn is MoveColumn for a drag that ended at index.
func (m *Mirror) DropColumn(ctx context.Context, moved types.ID, index int) error {
	var newPrev *types.ID
	err := m.update(func(b **splice.Board) error {
		var err error
		newPrev, err = (*b).DropColumn(moved, index)
		return err
	})
	if err != nil {
		return err
	}
	if err := MoveColumn(ctx, m.columns, moved, newPrev); err != nil {
		return m.rejected(ctx, MethodMoveColumn, err)
	}
	return nil
}

// DropCard is MoveCard for a drag that ended at index of toColumn. An empty
// toColumn keeps the card where it is.
func (m *Mirror) DropCard(ctx context.Context, moved, toColumn types.ID, index int) error {
	var newPrev *types.ID
	err := m.update(func(b **splice.Board) error {
		var err error
		newPrev, err = (*b).DropCard(moved, toColumn, index)
		return err
	})
	if err != nil {
		return err
	}
	if err := MoveCard(ctx, m.cards, moved, toColumn, newPrev); err != nil {
		return m.rejected(ctx, MethodMoveCard, err)
	}
	return nil
}

// rejected restores the server's order after a failed optimistic move.
func (m *Mirror) rejected(ctx context.Context, method string, cause error) error {
	m.logger.Info("move rejected, resyncing", "method", method, "error", cause)
	m.resyncs.Add(1)
	if err := m.Load(ctx); err != nil {
		return errors.Join(cause, fmt.Errorf("resync failed: %w", err))
	}
	return cause
}

// Apply replays a server push on the mirror. Events for other boards and
// events that do not affect order are ignored.
func (m *Mirror) Apply(ev Event) error {
	switch ev.Name {
	case EventColumnCreated:
		var p ColumnCreated
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if p.BoardID != m.boardID {
			return nil
		}
		return m.update(func(b **splice.Board) error {
			(*b).AddColumn(p.Column.ID)
			return nil
		})

	case EventColumnMoved:
		var p ColumnMoved
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if p.BoardID != m.boardID {
			return nil
		}
		return m.update(func(b **splice.Board) error {
			return (*b).MoveColumn(p.MovedID, p.NewPrevID)
		})

	case EventColumnDeleted:
		var p ColumnDeleted
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if p.BoardID != m.boardID {
			return nil
		}
		return m.update(func(b **splice.Board) error {
			(*b).RemoveColumn(p.ColumnID)
			return nil
		})

	case EventCardCreated:
		var p CardCreated
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if p.BoardID != m.boardID {
			return nil
		}
		return m.update(func(b **splice.Board) error {
			return (*b).AddCard(p.Card.ColumnID, p.Card.ID)
		})

	case EventCardMoved:
		var p CardMoved
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if p.BoardID != m.boardID {
			return nil
		}
		return m.update(func(b **splice.Board) error {
			return (*b).MoveCard(p.MovedID, p.ToColumnID, p.NewPrevID)
		})

	case EventCardDeleted:
		var p CardDeleted
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if p.BoardID != m.boardID {
			return nil
		}
		return m.update(func(b **splice.Board) error {
			(*b).RemoveCard(p.CardID)
			return nil
		})

	case EventBoardDeleted:
		var p BoardDeleted
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if p.BoardID != m.boardID {
			return nil
		}
		return m.update(func(b **splice.Board) error {
			*b = splice.NewBoard()
			return nil
		})
	}
	return nil
}

// Follow applies events from every stream until ctx is done or all streams
// close. Each stream must come from its own connection. The mirror is
// reloaded from the server when it cannot be trusted any more: an event
// that does not apply, a skipped sequence number, or a resync marker.
// It returns ErrBoardDeleted when the board is deleted, and the reload
// error when the user lost access to it.
func (m *Mirror) Follow(ctx context.Context, streams ...<-chan Event) error {
	type received struct {
		stream int
		ev     Event
	}

	merged := make(chan received)
	var wg sync.WaitGroup
	for i, stream := range streams {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range stream {
				select {
				case merged <- received{stream: i, ev: ev}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	lastSeq := make([]int64, len(streams))
	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-merged:
			if !ok {
				return nil
			}
			ev := r.ev

			if ev.Name == EventResync {
				lastSeq[r.stream] = 0
				if err := m.resync(ctx, "events lost on the client", ev); err != nil {
					return err
				}
				continue
			}

			// Unsequenced events cannot be checked for gaps.
			if ev.Seq != 0 {
				want := lastSeq[r.stream] + 1
				lastSeq[r.stream] = ev.Seq
				if ev.Seq != want {
					// The reload already includes ev.
					if err := m.resync(ctx, "sequence gap", ev, "want", want); err != nil {
						return err
					}
					continue
				}
			}

			if err := m.Apply(ev); err != nil {
				if err := m.resync(ctx, "could not apply event", ev, "error", err); err != nil {
					return err
				}
				continue
			}

			switch ev.Name {
			case EventBoardDeleted:
				var p BoardDeleted
				if ev.Decode(&p) == nil && p.BoardID == m.boardID {
					return ErrBoardDeleted
				}
			case EventAccessChanged:
				// Board hubs only send this to connections taken off the board.
				if err := m.resync(ctx, "access changed", ev); err != nil {
					return err
				}
			}
		}
	}
}

// resync reloads the mirror after it drifted from the server.
func (m *Mirror) resync(ctx context.Context, reason string, ev Event, attrs ...any) error {
	m.logger.Warn(reason+", resyncing", append([]any{"event", ev.Name, "seq", ev.Seq}, attrs...)...)
	m.resyncs.Add(1)
	if err := m.Load(ctx); err != nil {
		return fmt.Errorf("resync failed: %w", err)
	}
	return nil
}

func (m *Mirror) update(fn func(b **splice.Board) error) error {
	m.mu.Lock()
	err := fn(&m.board)
	onChange := m.onChange
	m.mu.Unlock()

	if err == nil && onChange != nil {
		onChange()
	}
	return err
}
