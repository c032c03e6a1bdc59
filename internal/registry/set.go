package registry

import (
	"slices"

	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Set fans calls out over the registries of several hubs, for changes that
// every view of a board has to hear about.
type Set []*Registry

// NotifyGroup implements events.Notifier.
func (s Set) NotifyGroup(scopeID types.ID, name events.EventName, payload any, except ...types.ConnID) int {
	sent := 0
	for _, r := range s {
		sent += r.NotifyGroup(scopeID, name, payload, except...)
	}
	return sent
}

// NotifyUser implements events.Notifier.
func (s Set) NotifyUser(userID types.UserID, name events.EventName, payload any) int {
	sent := 0
	for _, r := range s {
		sent += r.NotifyUser(userID, name, payload)
	}
	return sent
}

// Viewers merges the viewers of scopeID across hubs.
func (s Set) Viewers(scopeID types.ID) []types.UserID {
	var users []types.UserID
	for _, r := range s {
		users = append(users, r.Viewers(scopeID)...)
	}
	slices.Sort(users)
	return slices.Compact(users)
}

// EvictBoard evicts on every hub and returns the total.
func (s Set) EvictBoard(boardID types.ID, gone func(types.UserID) bool, name events.EventName, payload any, except ...types.ConnID) int {
	evicted := 0
	for _, r := range s {
		evicted += r.EvictBoard(boardID, gone, name, payload, except...)
	}
	return evicted
}

var _ events.Notifier = Set(nil)
