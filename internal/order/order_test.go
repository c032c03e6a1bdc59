package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

func col(id, prev, next string) *models.Column {
	return &models.Column{
		ID:     types.ID(id),
		PrevID: types.ID(prev).Ptr(),
		NextID: types.ID(next).Ptr(),
	}
}

func TestMaterialize_Empty(t *testing.T) {
	t.Parallel()

	got, err := Materialize([]*models.Column{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMaterialize_Single(t *testing.T) {
	t.Parallel()

	got, err := Materialize([]*models.Column{col("A", "", "")})
	require.NoError(t, err)
	assert.Equal(t, []types.ID{"A"}, IDs(got))
}

func TestMaterialize_ShuffledInput(t *testing.T) {
	t.Parallel()

	items := []*models.Column{
		col("C", "B", "D"),
		col("A", "", "B"),
		col("D", "C", ""),
		col("B", "A", "C"),
	}

	got, err := Materialize(items)
	require.NoError(t, err)
	assert.Equal(t, []types.ID{"A", "B", "C", "D"}, IDs(got))
}

func TestMaterialize_Cards(t *testing.T) {
	t.Parallel()

	items := []*models.Card{
		{ID: "y", PrevID: types.ID("x").Ptr()},
		{ID: "x", NextID: types.ID("y").Ptr()},
	}

	got, err := Materialize(items)
	require.NoError(t, err)
	assert.Equal(t, []types.ID{"x", "y"}, IDs(got))
}

func TestMaterialize_InvariantViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []*models.Column
	}{
		{
			name:  "no head",
			items: []*models.Column{col("A", "B", "B"), col("B", "A", "A")},
		},
		{
			name:  "two heads",
			items: []*models.Column{col("A", "", ""), col("B", "", "")},
		},
		{
			name:  "dangling next",
			items: []*models.Column{col("A", "", "Z")},
		},
		{
			name:  "cycle back to head",
			items: []*models.Column{col("A", "", "B"), col("B", "A", "A")},
		},
		{
			name: "unreachable item",
			items: []*models.Column{
				col("A", "", "B"), col("B", "A", ""),
				col("C", "D", "D"), col("D", "C", "C"),
			},
		},
		{
			name:  "back pointer mismatch",
			items: []*models.Column{col("A", "", "B"), col("B", "C", ""), col("C", "A", "")},
		},
		{
			name:  "duplicate id",
			items: []*models.Column{col("A", "", ""), col("A", "", "")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Materialize(tt.items)
			assert.ErrorIs(t, err, models.ErrInvariantViolation)
			assert.ErrorIs(t, Verify(tt.items), models.ErrInvariantViolation)
		})
	}
}
