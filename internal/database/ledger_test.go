package database

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/boardsync/internal/splice"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// TestColumnChainSurvivesRandomOperations drives Append/Move/Delete at random
// and checks after every step that the stored chain materializes and agrees
// with the client splice applied to the previous order.
func TestColumnChainSurvivesRandomOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")
	rng := rand.New(rand.NewPCG(7, 42))
	model := splice.NewList()

	for step := 0; step < 300; step++ {
		ids := model.IDs()
		switch op := rng.IntN(10); {
		case op < 3 || len(ids) < 2:
			col, err := repo.Columns.Create(ctx, board, "c")
			require.NoError(t, err, "step %d append", step)
			model.Append(col.ID)

		case op < 9:
			moved := ids[rng.IntN(len(ids))]
			var newPrev *types.ID
			if pick := rng.IntN(len(ids) + 1); pick < len(ids) && ids[pick] != moved {
				newPrev = ids[pick].Ptr()
			}
			_, err := repo.Columns.Move(ctx, moved, newPrev)
			require.NoError(t, err, "step %d move", step)
			require.NoError(t, model.Move(moved, newPrev))

		default:
			victim := ids[rng.IntN(len(ids))]
			_, err := repo.Columns.Delete(ctx, victim)
			require.NoError(t, err, "step %d delete", step)
			model.Remove(victim)
		}

		require.Equal(t, model.IDs(), columnOrder(t, repo, board), "step %d", step)
	}
}

// TestCardChainsSurviveRandomCrossColumnMoves does the same across several
// columns so container changes are exercised.
func TestCardChainsSurviveRandomCrossColumnMoves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	board := createTestBoard(t, repo, "owner")
	cols := createColumns(t, repo, board, "a", "b", "c")
	rng := rand.New(rand.NewPCG(3, 9))

	model := splice.NewBoard()
	for _, col := range cols {
		model.AddColumn(col)
	}
	var all []types.ID
	for i := 0; i < 12; i++ {
		col := cols[i%len(cols)]
		card, err := repo.Cards.Create(ctx, col, "card", "")
		require.NoError(t, err)
		require.NoError(t, model.AddCard(col, card.ID))
		all = append(all, card.ID)
	}

	for step := 0; step < 300; step++ {
		moved := all[rng.IntN(len(all))]
		dest := cols[rng.IntN(len(cols))]
		destCards := model.Cards(dest)

		var newPrev *types.ID
		if pick := rng.IntN(len(destCards) + 1); pick < len(destCards) && destCards[pick] != moved {
			newPrev = destCards[pick].Ptr()
		}

		_, err := repo.Cards.Move(ctx, moved, dest, newPrev)
		require.NoError(t, err, "step %d", step)
		require.NoError(t, model.MoveCard(moved, dest, newPrev))

		total := 0
		for _, col := range cols {
			got := cardOrder(t, repo, col)
			require.Equal(t, model.Cards(col), got, "step %d column %s", step, col)
			total += len(got)
		}
		require.Equal(t, len(all), total, "step %d: cards must never be duplicated or lost", step)
	}
}
