package testutil

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Notification is one recorded call on a RecordingNotifier.
type Notification struct {
	Scope   types.ID
	User    types.UserID
	Name    events.EventName
	Payload json.RawMessage
	Except  []types.ConnID
}

// Decode unmarshals the recorded payload into v.
func (n Notification) Decode(v any) error {
	return json.Unmarshal(n.Payload, v)
}

// Excludes reports whether conn was on the exclusion list.
func (n Notification) Excludes(conn types.ConnID) bool {
	return slices.Contains(n.Except, conn)
}

// RecordingNotifier records every notification instead of delivering it.
type RecordingNotifier struct {
	mu    sync.Mutex
	calls []Notification
}

func (r *RecordingNotifier) NotifyGroup(scopeID types.ID, name events.EventName, payload any, except ...types.ConnID) int {
	r.record(Notification{Scope: scopeID, Name: name, Except: slices.Clone(except)}, payload)
	return 1
}

func (r *RecordingNotifier) NotifyUser(userID types.UserID, name events.EventName, payload any) int {
	r.record(Notification{User: userID, Name: name}, payload)
	return 1
}

func (r *RecordingNotifier) record(n Notification, payload any) {
	raw, _ := json.Marshal(payload)
	n.Payload = raw
	r.mu.Lock()
	r.calls = append(r.calls, n)
	r.mu.Unlock()
}

// Calls returns a copy of everything recorded so far.
func (r *RecordingNotifier) Calls() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Named returns the recorded notifications with the given name.
func (r *RecordingNotifier) Named(name events.EventName) []Notification {
	var out []Notification
	for _, n := range r.Calls() {
		if n.Name == name {
			out = append(out, n)
		}
	}
	return out
}

// Reset forgets everything recorded.
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

var _ events.Notifier = (*RecordingNotifier)(nil)

// Inbox is a registry subscriber that buffers up to its capacity.
type Inbox chan events.Event

func NewInbox(capacity int) Inbox {
	return make(Inbox, capacity)
}

func (in Inbox) Deliver(ev events.Event) bool {
	select {
	case in <- ev:
		return true
	default:
		return false
	}
}

// Drain returns everything buffered without waiting.
func (in Inbox) Drain() []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-in:
			out = append(out, ev)
		default:
			return out
		}
	}
}
