package events

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thenoetrevino/boardsync/internal/models"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCode     ErrorCode
		wantInternal bool
		wantMessage  string
	}{
		{"not found", fmt.Errorf("%w: card 1", models.ErrNotFound), CodeNotFound, false, ""},
		{"forbidden is opaque", fmt.Errorf("%w: reader access, editor required", models.ErrForbidden), CodeForbidden, false, "access denied"},
		{"invalid argument", fmt.Errorf("%w: title cannot be empty", models.ErrInvalidArgument), CodeInvalidArgument, false, ""},
		{"conflict", fmt.Errorf("moving: %w", models.ErrStorageConflict), CodeConflict, false, ""},
		{"invariant is internal", fmt.Errorf("%w: two heads", models.ErrInvariantViolation), CodeInternal, true, "internal error"},
		{"unknown is internal", errors.New("disk on fire"), CodeInternal, true, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, internal := ClassifyError(tt.err)
			assert.Equal(t, tt.wantCode, wire.Code)
			assert.Equal(t, tt.wantInternal, internal)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, wire.Message)
			}
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	wire, internal := ClassifyError(nil)
	assert.Nil(t, wire)
	assert.False(t, internal)
}

func TestClassifyError_PassesWireErrorsThrough(t *testing.T) {
	original := &Error{Code: CodeUnknownMethod, Message: "Nope"}
	wire, internal := ClassifyError(fmt.Errorf("dispatch: %w", original))
	assert.Same(t, original, wire)
	assert.False(t, internal)
}

func TestWireErrorMatchesSentinels(t *testing.T) {
	assert.ErrorIs(t, &Error{Code: CodeForbidden}, models.ErrForbidden)
	assert.ErrorIs(t, &Error{Code: CodeNotFound}, models.ErrNotFound)
	assert.ErrorIs(t, &Error{Code: CodeInvalidArgument}, models.ErrInvalidArgument)
	assert.ErrorIs(t, &Error{Code: CodeConflict}, models.ErrStorageConflict)
	assert.NotErrorIs(t, &Error{Code: CodeInternal}, models.ErrInvariantViolation)
	assert.Equal(t, "forbidden: access denied", (&Error{Code: CodeForbidden, Message: "access denied"}).Error())
}
