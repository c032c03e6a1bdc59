package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Unique(t *testing.T) {
	all := []error{ErrNotFound, ErrForbidden, ErrInvalidArgument, ErrInvariantViolation, ErrStorageConflict}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestAccessLevel_Ordering(t *testing.T) {
	assert.True(t, AccessOwner.AtLeast(AccessEditor))
	assert.True(t, AccessEditor.AtLeast(AccessEditor))
	assert.True(t, AccessEditor.AtLeast(AccessReader))
	assert.False(t, AccessReader.AtLeast(AccessEditor))
	assert.False(t, AccessEditor.AtLeast(AccessOwner))
}

func TestAccessLevel_ParseAndString(t *testing.T) {
	tests := []struct {
		name  string
		level AccessLevel
	}{
		{"reader", AccessReader},
		{"editor", AccessEditor},
		{"owner", AccessOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseAccessLevel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.level, parsed)
			assert.Equal(t, tt.name, tt.level.String())
			assert.True(t, tt.level.Valid())
		})
	}

	_, err := ParseAccessLevel("admin")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, AccessLevel(0).Valid())
	assert.Equal(t, "AccessLevel(9)", AccessLevel(9).String())
}
