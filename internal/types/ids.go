package types

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ID is an opaque identifier shared by every persisted entity.
// New IDs are ULIDs, so IDs minted by one process sort by creation time.
// The empty ID means "no entity" and is never stored.
type ID string

// NewID mints a new ULID-backed identifier.
func NewID() ID {
	return ID(ulid.Make().String())
}

// ParseID validates a client-supplied identifier.
// Only well-formed ULIDs are accepted so that garbage never reaches a query.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty id")
	}
	parsed, err := ulid.ParseStrict(s)
	if err != nil {
		return "", fmt.Errorf("malformed id %q: %w", s, err)
	}
	return ID(parsed.String()), nil
}

// IsZero reports whether the ID is empty.
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}

// Ptr returns a pointer to id, or nil for the empty ID.
// Linked-list fields use nil for "no neighbor".
func (id ID) Ptr() *ID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// Deref returns the pointed-to ID, or the empty ID for nil.
func Deref(p *ID) ID {
	if p == nil {
		return ""
	}
	return *p
}

// Equal compares two optional IDs, treating nil and empty as the same.
func Equal(a, b *ID) bool {
	return Deref(a) == Deref(b)
}

// UserID identifies an authenticated user. It comes from the bearer
// credential and is not required to be a ULID.
type UserID string

// ConnID identifies one realtime connection.
type ConnID string
