// Package user resolves who is running the CLI locally.
package user

import (
	"os"
	"os/user"

	"github.com/thenoetrevino/boardsync/internal/types"
)

// CurrentUserID returns the system username as a user id, for commands
// that act on the local database without a token.
// It tries, in order: user.Current(), then $USER, then "unknown".
func CurrentUserID() types.UserID {
	currentUser, err := user.Current()
	if err == nil && currentUser.Username != "" {
		return types.UserID(currentUser.Username)
	}
	if username := os.Getenv("USER"); username != "" {
		return types.UserID(username)
	}
	return "unknown"
}
