package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

func TestGetAccessResolutionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	private, err := repo.Boards.Create(ctx, "private", "alice", false, nil)
	require.NoError(t, err)
	public, err := repo.Boards.Create(ctx, "public", "alice", true, level(models.AccessReader))
	require.NoError(t, err)

	require.NoError(t, repo.Boards.SetGrant(ctx, models.AccessGrant{UserID: "bob", BoardID: public.ID, Level: models.AccessEditor}))
	require.NoError(t, repo.Boards.SetGrant(ctx, models.AccessGrant{UserID: "carol", BoardID: private.ID, Level: models.AccessReader}))

	tests := []struct {
		name  string
		user  types.UserID
		board types.ID
		want  *models.AccessLevel
	}{
		{"owner is implicit", "alice", private.ID, level(models.AccessOwner)},
		{"personal grant beats public default", "bob", public.ID, level(models.AccessEditor)},
		{"public default applies without grant", "dave", public.ID, level(models.AccessReader)},
		{"grant on private board", "carol", private.ID, level(models.AccessReader)},
		{"no access at all", "dave", private.ID, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Boards.GetAccess(ctx, tt.user, tt.board)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = repo.Boards.GetAccess(ctx, "alice", types.NewID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetGrantReplacesAndRemoves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	boardID := createTestBoard(t, repo, "alice")

	require.NoError(t, repo.Boards.SetGrant(ctx, models.AccessGrant{UserID: "bob", BoardID: boardID, Level: models.AccessReader}))
	require.NoError(t, repo.Boards.SetGrant(ctx, models.AccessGrant{UserID: "bob", BoardID: boardID, Level: models.AccessEditor}))

	got, err := repo.Boards.GetAccess(ctx, "bob", boardID)
	require.NoError(t, err)
	assert.Equal(t, level(models.AccessEditor), got)

	require.NoError(t, repo.Boards.RemoveGrant(ctx, boardID, "bob"))
	got, err = repo.Boards.GetAccess(ctx, "bob", boardID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.Boards.SetGrant(ctx, models.AccessGrant{UserID: "bob", BoardID: boardID, Level: 0})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestBoardDeleteCascadesEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db)
	boardID := createTestBoard(t, repo, "alice")
	cols := createColumns(t, repo, boardID, "a", "b")
	createCards(t, repo, cols[0], "x", "y")
	createCards(t, repo, cols[1], "z")

	require.NoError(t, repo.Boards.Delete(ctx, boardID))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM columns`))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM cards`))
	assert.ErrorIs(t, repo.Boards.Delete(ctx, boardID), models.ErrNotFound)

	got, err := repo.Boards.GetByID(ctx, boardID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetPublicChangesDefaultAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	boardID := createTestBoard(t, repo, "alice")

	require.NoError(t, repo.Boards.SetPublic(ctx, boardID, true, level(models.AccessEditor)))
	got, err := repo.Boards.GetAccess(ctx, "dave", boardID)
	require.NoError(t, err)
	assert.Equal(t, level(models.AccessEditor), got)

	require.NoError(t, repo.Boards.SetPublic(ctx, boardID, false, level(models.AccessEditor)))
	got, err = repo.Boards.GetAccess(ctx, "dave", boardID)
	require.NoError(t, err)
	assert.Nil(t, got)

	board, err := repo.Boards.GetByID(ctx, boardID)
	require.NoError(t, err)
	assert.False(t, board.IsPublic)
	assert.Equal(t, level(models.AccessEditor), board.PublicLevel)

	assert.ErrorIs(t, repo.Boards.SetPublic(ctx, types.NewID(), true, nil), models.ErrNotFound)
	assert.ErrorIs(t, repo.Boards.SetPublic(ctx, boardID, true, level(0)), models.ErrInvalidArgument)
}
