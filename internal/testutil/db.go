package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/thenoetrevino/boardsync/internal/database"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// SetupTestDB creates an in-memory database with the full schema.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDB(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SetupTestRepo is SetupTestDB wrapped in a Repository.
func SetupTestRepo(t *testing.T) *database.Repository {
	t.Helper()
	return database.NewRepository(SetupTestDB(t))
}

// CreateTestBoard creates a private board owned by owner
func CreateTestBoard(t *testing.T, repo *database.Repository, owner types.UserID) types.ID {
	t.Helper()
	board, err := repo.Boards.Create(context.Background(), "Test Board", owner, false, nil)
	if err != nil {
		t.Fatalf("Failed to create test board: %v", err)
	}
	return board.ID
}

// CreateTestColumn appends a column and returns its ID
func CreateTestColumn(t *testing.T, repo *database.Repository, boardID types.ID, title string) types.ID {
	t.Helper()
	col, err := repo.Columns.Create(context.Background(), boardID, title)
	if err != nil {
		t.Fatalf("Failed to create test column: %v", err)
	}
	return col.ID
}

// CreateTestCard appends a card and returns its ID
func CreateTestCard(t *testing.T, repo *database.Repository, columnID types.ID, title string) types.ID {
	t.Helper()
	card, err := repo.Cards.Create(context.Background(), columnID, title, "")
	if err != nil {
		t.Fatalf("Failed to create test card: %v", err)
	}
	return card.ID
}

// Grant gives user a personal level on a board
func Grant(t *testing.T, repo *database.Repository, boardID types.ID, user types.UserID, level models.AccessLevel) {
	t.Helper()
	err := repo.Boards.SetGrant(context.Background(), models.AccessGrant{UserID: user, BoardID: boardID, Level: level})
	if err != nil {
		t.Fatalf("Failed to grant %s to %s: %v", level, user, err)
	}
}

// ColumnOrder returns the materialized column ids of a board
func ColumnOrder(t *testing.T, repo *database.Repository, boardID types.ID) []types.ID {
	t.Helper()
	cols, err := repo.Columns.GetByBoard(context.Background(), boardID)
	if err != nil {
		t.Fatalf("Failed to materialize columns: %v", err)
	}
	ids := make([]types.ID, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}

// CardOrder returns the materialized card ids of a column
func CardOrder(t *testing.T, repo *database.Repository, columnID types.ID) []types.ID {
	t.Helper()
	cards, err := repo.Cards.GetByColumn(context.Background(), columnID)
	if err != nil {
		t.Fatalf("Failed to materialize cards: %v", err)
	}
	ids := make([]types.ID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
