package app

import (
	"context"
	"errors"
	"testing"

	"github.com/thenoetrevino/boardsync/internal/access"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/registry"
	"github.com/thenoetrevino/boardsync/internal/services"
	"github.com/thenoetrevino/boardsync/internal/services/column"
	"github.com/thenoetrevino/boardsync/internal/testutil"
	"github.com/thenoetrevino/boardsync/internal/types"
)

type chanSub chan events.Event

func (c chanSub) Deliver(ev events.Event) bool {
	select {
	case c <- ev:
		return true
	default:
		return false
	}
}

func TestNew(t *testing.T) {
	app := New(testutil.SetupTestDB(t))
	defer func() { _ = app.Close() }()

	if app.ColumnService == nil {
		t.Error("Expected ColumnService to be initialized")
	}
	if app.CardService == nil {
		t.Error("Expected CardService to be initialized")
	}
	if app.CommentService == nil {
		t.Error("Expected CommentService to be initialized")
	}
	if app.BoardService == nil {
		t.Error("Expected BoardService to be initialized")
	}
	if n := len(app.Hubs()); n != 5 {
		t.Errorf("Expected 5 hubs, got %d", n)
	}
	if app.Repo() == nil {
		t.Error("Expected Repo to be initialized")
	}
	for _, hub := range app.Hubs() {
		if app.Registry(hub) == nil {
			t.Errorf("Expected a registry for hub %s", hub)
		}
	}
	if app.Registry("nope") != nil {
		t.Error("Expected no registry for an unknown hub")
	}
}

// Column changes reach connections registered on the columns hub.
func TestNew_WiresColumnNotifications(t *testing.T) {
	app := New(testutil.SetupTestDB(t))
	defer func() { _ = app.Close() }()
	ctx := context.Background()

	board, err := app.Repo().Boards.Create(ctx, "b", "alice", false, nil)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	sub := make(chanSub, 1)
	err = app.Registry(events.HubColumns).Connect("watcher", "bob", registry.Scope{Kind: registry.ScopeBoard, ID: board.ID}, sub)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	_, err = app.ColumnService.Create(ctx, services.Caller{UserID: "alice"}, column.CreateColumnRequest{BoardID: board.ID, Title: "Todo"})
	if err != nil {
		t.Fatalf("Failed to create column: %v", err)
	}

	select {
	case ev := <-sub:
		if ev.Name != events.EventColumnCreated {
			t.Errorf("Expected column_created, got %s", ev.Name)
		}
	default:
		t.Fatal("Expected a notification on the columns hub")
	}
}

func TestWithResolver(t *testing.T) {
	boardID := types.NewID()
	app := New(testutil.SetupTestDB(t), WithResolver(access.Static{}))
	defer func() { _ = app.Close() }()

	_, err := app.ColumnService.GetAll(context.Background(), services.Caller{UserID: "alice"}, boardID)
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("Expected the static resolver to deny access, got %v", err)
	}
}

// Deleting a board tells every hub that follows it, card viewers included.
func TestNew_BoardDeletionReachesEveryHub(t *testing.T) {
	app := New(testutil.SetupTestDB(t))
	defer func() { _ = app.Close() }()
	ctx := context.Background()
	repo := app.Repo()

	boardID := testutil.CreateTestBoard(t, repo, "alice")
	cardID := testutil.CreateTestCard(t, repo, testutil.CreateTestColumn(t, repo, boardID, "Todo"), "x")

	boardScope := registry.Scope{Kind: registry.ScopeBoard, ID: boardID}
	subs := map[string]chanSub{}
	for _, hub := range []string{events.HubBoards, events.HubColumns, events.HubCards} {
		subs[hub] = make(chanSub, 1)
		if err := app.Registry(hub).Connect("w-"+types.ConnID(hub), "alice", boardScope, subs[hub]); err != nil {
			t.Fatalf("Failed to connect on %s: %v", hub, err)
		}
	}
	subs[events.HubComments] = make(chanSub, 1)
	cardScope := registry.Scope{Kind: registry.ScopeCard, ID: cardID, Board: boardID}
	if err := app.Registry(events.HubComments).Connect("w-comments", "alice", cardScope, subs[events.HubComments]); err != nil {
		t.Fatalf("Failed to connect on comments: %v", err)
	}

	if err := app.BoardService.Delete(ctx, services.Caller{UserID: "alice"}, boardID); err != nil {
		t.Fatalf("Failed to delete board: %v", err)
	}

	for hub, sub := range subs {
		select {
		case ev := <-sub:
			if ev.Name != events.EventBoardDeleted {
				t.Errorf("Expected board_deleted on %s, got %s", hub, ev.Name)
			}
		default:
			t.Errorf("Expected board_deleted on the %s hub", hub)
		}
	}
}
