package models

import (
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/types"
)

// AccessLevel is a position on the ordered scale reader < editor < owner.
type AccessLevel int

const (
	AccessReader AccessLevel = iota + 1
	AccessEditor
	AccessOwner
)

var accessLevelNames = map[AccessLevel]string{
	AccessReader: "reader",
	AccessEditor: "editor",
	AccessOwner:  "owner",
}

func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("AccessLevel(%d)", int(l))
}

// Valid reports whether l is one of the defined levels.
func (l AccessLevel) Valid() bool {
	_, ok := accessLevelNames[l]
	return ok
}

// AtLeast reports whether l grants everything min grants.
func (l AccessLevel) AtLeast(min AccessLevel) bool {
	return l >= min
}

// ParseAccessLevel converts the wire/storage name of a level.
func ParseAccessLevel(s string) (AccessLevel, error) {
	for level, name := range accessLevelNames {
		if name == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown access level %q", ErrInvalidArgument, s)
}

// AccessGrant is a stored personal grant. Owners never need one.
type AccessGrant struct {
	UserID  types.UserID
	BoardID types.ID
	Level   AccessLevel
}
