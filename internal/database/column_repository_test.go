package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// TestColumnAppendBuildsChain tests that columns are appended at the tail in creation order
func TestColumnAppendBuildsChain(t *testing.T) {
	t.Parallel()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")

	ids := createColumns(t, repo, board, "Todo", "In Progress", "Done")

	assert.Equal(t, ids, columnOrder(t, repo, board))
	requireLinks(t, repo, ids[0], nil, ids[1].Ptr())
	requireLinks(t, repo, ids[1], ids[0].Ptr(), ids[2].Ptr())
	requireLinks(t, repo, ids[2], ids[1].Ptr(), nil)
}

func TestColumnCreateUnknownBoard(t *testing.T) {
	t.Parallel()
	repo := NewRepository(setupTestDB(t))

	_, err := repo.Columns.Create(context.Background(), types.NewID(), "Orphan")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestColumnGetByBoardEmpty(t *testing.T) {
	t.Parallel()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")

	cols, err := repo.Columns.GetByBoard(context.Background(), board)
	require.NoError(t, err)
	assert.Empty(t, cols)
}

// TestColumnMoveScenario walks the [A, B, C] scenario end to end.
func TestColumnMoveScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")
	ids := createColumns(t, repo, board, "A", "B", "C")
	a, b, c := ids[0], ids[1], ids[2]

	res, err := repo.Columns.Move(ctx, c, a.Ptr())
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, []types.ID{a, c, b}, columnOrder(t, repo, board))

	res, err = repo.Columns.Move(ctx, a, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed, "moving the head to the head is a no-op")
	assert.Equal(t, []types.ID{a, c, b}, columnOrder(t, repo, board))

	deletedFrom, err := repo.Columns.Delete(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, board, deletedFrom)
	assert.Equal(t, []types.ID{a, b}, columnOrder(t, repo, board))
	requireLinks(t, repo, a, nil, b.Ptr())
	requireLinks(t, repo, b, a.Ptr(), nil)
}

func TestColumnMoveIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")
	ids := createColumns(t, repo, board, "A", "B", "C", "D")

	_, err := repo.Columns.Move(ctx, ids[0], ids[2].Ptr())
	require.NoError(t, err)
	once := columnOrder(t, repo, board)

	res, err := repo.Columns.Move(ctx, ids[0], ids[2].Ptr())
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, once, columnOrder(t, repo, board))
	assert.Equal(t, []types.ID{ids[1], ids[2], ids[0], ids[3]}, once)
}

func TestColumnMoveToHead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		n     int
		moved int
	}{
		{"two items tail to head", 2, 1},
		{"middle to head", 5, 2},
		{"tail to head", 5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewRepository(setupTestDB(t))
			board := createTestBoard(t, repo, "owner")
			titles := make([]string, tt.n)
			for i := range titles {
				titles[i] = "col"
			}
			ids := createColumns(t, repo, board, titles...)
			moved := ids[tt.moved]

			_, err := repo.Columns.Move(ctx, moved, nil)
			require.NoError(t, err)

			got := columnOrder(t, repo, board)
			require.Len(t, got, tt.n, "a move relocates, it never duplicates or drops")
			assert.Equal(t, moved, got[0])
			assert.ElementsMatch(t, ids, got)
			requireLinks(t, repo, moved, nil, got[1].Ptr())
		})
	}
}

func TestColumnMoveNeighborCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		moved   int
		newPrev int
		want    []int
	}{
		{"after its own successor", 1, 2, []int{0, 2, 1, 3}},
		{"after its successor from head", 0, 1, []int{1, 0, 2, 3}},
		{"head to tail", 0, 3, []int{1, 2, 3, 0}},
		{"tail after head", 3, 0, []int{0, 3, 1, 2}},
		{"after current predecessor", 2, 1, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewRepository(setupTestDB(t))
			board := createTestBoard(t, repo, "owner")
			ids := createColumns(t, repo, board, "A", "B", "C", "D")

			_, err := repo.Columns.Move(ctx, ids[tt.moved], ids[tt.newPrev].Ptr())
			require.NoError(t, err)

			want := make([]types.ID, len(tt.want))
			for i, idx := range tt.want {
				want[i] = ids[idx]
			}
			assert.Equal(t, want, columnOrder(t, repo, board))
		})
	}
}

func TestColumnMoveRejectsBadArguments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")
	other := createTestBoard(t, repo, "owner")
	ids := createColumns(t, repo, board, "A", "B")
	foreign := createColumns(t, repo, other, "X")

	_, err := repo.Columns.Move(ctx, ids[0], ids[0].Ptr())
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = repo.Columns.Move(ctx, types.NewID(), nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.Columns.Move(ctx, ids[0], types.NewID().Ptr())
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.Columns.Move(ctx, ids[0], foreign[0].Ptr())
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = repo.Columns.Move(ctx, "", nil)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	assert.Equal(t, ids, columnOrder(t, repo, board))
	assert.Equal(t, foreign, columnOrder(t, repo, other))
}

func TestColumnDeleteEnds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")
	ids := createColumns(t, repo, board, "A", "B", "C", "D")

	_, err := repo.Columns.Delete(ctx, ids[0])
	require.NoError(t, err)
	requireLinks(t, repo, ids[1], nil, ids[2].Ptr())

	_, err = repo.Columns.Delete(ctx, ids[3])
	require.NoError(t, err)
	requireLinks(t, repo, ids[2], ids[1].Ptr(), nil)

	assert.Equal(t, []types.ID{ids[1], ids[2]}, columnOrder(t, repo, board))

	_, err = repo.Columns.Delete(ctx, ids[3])
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Appending after deletions still lands at the tail.
	more := createColumns(t, repo, board, "E")
	assert.Equal(t, []types.ID{ids[1], ids[2], more[0]}, columnOrder(t, repo, board))
}

func TestColumnDeleteCascadesCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db)
	board := createTestBoard(t, repo, "owner")
	cols := createColumns(t, repo, board, "Todo", "Done")
	cards := createCards(t, repo, cols[0], "one", "two")
	_, err := repo.Comments.AddComment(ctx, cards[0], "owner", "hi")
	require.NoError(t, err)
	_, err = repo.Comments.AddAttachment(ctx, cards[1], "notes.pdf")
	require.NoError(t, err)

	_, err = repo.Columns.Delete(ctx, cols[0])
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM cards WHERE column_id = ?`, string(cols[0])))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM comments`))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM attachments`))
	assert.Equal(t, []types.ID{cols[1]}, columnOrder(t, repo, board))
}

func TestColumnUpdateTitle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")
	ids := createColumns(t, repo, board, "Old")

	require.NoError(t, repo.Columns.UpdateTitle(ctx, ids[0], "New"))
	col, err := repo.Columns.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "New", col.Title)

	assert.ErrorIs(t, repo.Columns.UpdateTitle(ctx, types.NewID(), "x"), models.ErrNotFound)
	_, err = repo.Columns.GetByID(ctx, types.NewID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// TestUniqueIndexRejectsFork checks the store refuses two rows sharing a next pointer.
func TestUniqueIndexRejectsFork(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db)
	board := createTestBoard(t, repo, "owner")
	ids := createColumns(t, repo, board, "A", "B", "C")

	_, err := db.ExecContext(ctx, `UPDATE columns SET next_id = ? WHERE id = ?`, string(ids[2]), string(ids[0]))
	require.Error(t, err)
	assert.ErrorIs(t, classifyStoreError(err), models.ErrInvariantViolation)
}
