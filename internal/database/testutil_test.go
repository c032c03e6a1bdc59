package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/order"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(context.Background(), MemoryPath)
	require.NoError(t, err, "init test database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestBoard(t *testing.T, repo *Repository, owner types.UserID) types.ID {
	t.Helper()
	board, err := repo.Boards.Create(context.Background(), "Test Board", owner, false, nil)
	require.NoError(t, err)
	return board.ID
}

// createColumns appends columns with the given titles and returns their ids in order.
func createColumns(t *testing.T, repo *Repository, boardID types.ID, titles ...string) []types.ID {
	t.Helper()
	ids := make([]types.ID, 0, len(titles))
	for _, title := range titles {
		col, err := repo.Columns.Create(context.Background(), boardID, title)
		require.NoError(t, err)
		ids = append(ids, col.ID)
	}
	return ids
}

func createCards(t *testing.T, repo *Repository, columnID types.ID, titles ...string) []types.ID {
	t.Helper()
	ids := make([]types.ID, 0, len(titles))
	for _, title := range titles {
		card, err := repo.Cards.Create(context.Background(), columnID, title, "")
		require.NoError(t, err)
		ids = append(ids, card.ID)
	}
	return ids
}

// ============================================================================
// TEST ASSERTION HELPERS
// ============================================================================

func columnOrder(t *testing.T, repo *Repository, boardID types.ID) []types.ID {
	t.Helper()
	cols, err := repo.Columns.GetByBoard(context.Background(), boardID)
	require.NoError(t, err, "column chain must materialize")
	return order.IDs(cols)
}

func cardOrder(t *testing.T, repo *Repository, columnID types.ID) []types.ID {
	t.Helper()
	cards, err := repo.Cards.GetByColumn(context.Background(), columnID)
	require.NoError(t, err, "card chain must materialize")
	return order.IDs(cards)
}

// requireLinks checks the stored pointers of one column.
func requireLinks(t *testing.T, repo *Repository, id types.ID, prev, next *types.ID) {
	t.Helper()
	col, err := repo.Columns.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, types.Deref(prev), types.Deref(col.PrevID), "prev of %s", id)
	require.Equal(t, types.Deref(next), types.Deref(col.NextID), "next of %s", id)
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func level(l models.AccessLevel) *models.AccessLevel { return &l }
