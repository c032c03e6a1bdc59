package user

import (
	"testing"
)

func TestCurrentUserID(t *testing.T) {
	if id := CurrentUserID(); id == "" {
		t.Error("Expected a non-empty user id")
	}
}
