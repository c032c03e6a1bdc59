// Package registry tracks live realtime connections for one hub: who each
// connection belongs to, which board or card it watches, and the groups used
// to route notifications to exactly those connections.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/types"
)

var (
	ErrDuplicateConn = errors.New("connection already registered")
	ErrClosed        = errors.New("registry closed")
)

// Subscriber receives events for one connection. Deliver must not block;
// it returns false when the event was dropped. Subscribers stamp Seq
// themselves, and a dropped event still uses up its number.
type Subscriber interface {
	Deliver(events.Event) bool
}

// ScopeKind says what a connection's scope id refers to.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeBoard
	ScopeCard
)

// Scope is the board or card a connection asked to follow. Board is the
// board a followed card lives on.
type Scope struct {
	Kind  ScopeKind
	ID    types.ID
	Board types.ID
}

// BoardID is the board the scope belongs to, empty for ScopeNone.
func (s Scope) BoardID() types.ID {
	switch {
	case s.Kind == ScopeNone:
		return ""
	case !s.Board.IsZero():
		return s.Board
	case s.Kind == ScopeBoard:
		return s.ID
	}
	return ""
}

func (s Scope) grouped() bool {
	return s.Kind != ScopeNone && !s.ID.IsZero()
}

type entry struct {
	user  types.UserID
	scope Scope
	sub   Subscriber
}

// group is one notification topic. A group that has been emptied is marked
// dead and removed; joiners that raced with removal retry on a fresh group.
type group struct {
	mu      sync.RWMutex
	members map[types.ConnID]Subscriber
	dead    bool
}

// Registry is safe for concurrent use. Lookups never take a global lock.
type Registry struct {
	hub    string
	logger *slog.Logger

	conns  sync.Map // types.ConnID -> *entry
	groups sync.Map // string -> *group

	size      atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	closed    atomic.Bool
}

// Option configures a Registry.
type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates the registry for one hub.
func New(hub string, opts ...Option) *Registry {
	r := &Registry{hub: hub, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("hub", hub)
	return r
}

func scopeKey(id types.ID) string { return "scope:" + string(id) }
func userKey(id types.UserID) string { return "user:" + string(id) }

// Connect records a connection and joins it to its scope and user groups.
func (r *Registry) Connect(conn types.ConnID, user types.UserID, scope Scope, sub Subscriber) error {
	if r.closed.Load() {
		return ErrClosed
	}
	e := &entry{user: user, scope: scope, sub: sub}
	if _, loaded := r.conns.LoadOrStore(conn, e); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateConn, conn)
	}
	r.size.Add(1)

	if scope.grouped() {
		r.join(scopeKey(scope.ID), conn, sub)
	}
	r.join(userKey(user), conn, sub)

	// Close may have swept the map between the check above and the joins,
	// in which case nothing else will take conn out of its groups.
	if r.closed.Load() {
		if r.conns.CompareAndDelete(conn, e) {
			r.size.Add(-1)
		}
		if scope.grouped() {
			r.leave(scopeKey(scope.ID), conn)
		}
		r.leave(userKey(user), conn)
		return ErrClosed
	}

	r.logger.Debug("connection registered", "conn", conn, "user", user, "scope", scope.ID)
	return nil
}

// Disconnect drops every mapping for conn. Unknown connections are ignored.
func (r *Registry) Disconnect(conn types.ConnID) {
	v, ok := r.conns.LoadAndDelete(conn)
	if !ok {
		return
	}
	e := v.(*entry)
	r.size.Add(-1)

	if e.scope.grouped() {
		r.leave(scopeKey(e.scope.ID), conn)
	}
	r.leave(userKey(e.user), conn)

	r.logger.Debug("connection removed", "conn", conn, "user", e.user)
}

// User returns the authenticated user of conn.
func (r *Registry) User(conn types.ConnID) (types.UserID, bool) {
	v, ok := r.conns.Load(conn)
	if !ok {
		return "", false
	}
	return v.(*entry).user, true
}

// Scope returns the scope conn connected with.
func (r *Registry) Scope(conn types.ConnID) (Scope, bool) {
	v, ok := r.conns.Load(conn)
	if !ok {
		return Scope{}, false
	}
	return v.(*entry).scope, true
}

// Len is the number of registered connections.
func (r *Registry) Len() int {
	return int(r.size.Load())
}

// GroupSize is the number of connections following scopeID.
func (r *Registry) GroupSize(scopeID types.ID) int {
	return len(r.members(scopeKey(scopeID)))
}

// Viewers lists, sorted, the distinct users with a connection following scopeID.
func (r *Registry) Viewers(scopeID types.ID) []types.UserID {
	seen := make(map[types.UserID]struct{})
	for conn := range r.members(scopeKey(scopeID)) {
		if user, ok := r.User(conn); ok {
			seen[user] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// EvictBoard moves every connection following boardID, or one of its
// cards, out of its scope group when gone reports true for its user. The
// connection stays registered with no scope, so user-group events still
// reach it. Unless name is empty, each evicted connection outside except
// is sent that event first. It returns how many connections were evicted.
func (r *Registry) EvictBoard(boardID types.ID, gone func(types.UserID) bool, name events.EventName, payload any, except ...types.ConnID) int {
	var ev events.Event
	if name != "" {
		raw, err := json.Marshal(payload)
		if err != nil {
			r.logger.Error("failed to encode event payload", "event", name, "error", err)
			return 0
		}
		ev = events.Event{Name: name, Payload: raw}
	}

	evicted := 0
	r.conns.Range(func(key, v any) bool {
		conn, e := key.(types.ConnID), v.(*entry)
		if boardID.IsZero() || e.scope.BoardID() != boardID || !gone(e.user) {
			return true
		}
		// Losing the swap means the connection went away or was evicted already.
		if !r.conns.CompareAndSwap(conn, e, &entry{user: e.user, sub: e.sub}) {
			return true
		}
		if name != "" && !slices.Contains(except, conn) {
			if e.sub.Deliver(ev) {
				r.delivered.Add(1)
			} else {
				r.dropped.Add(1)
			}
		}
		r.leave(scopeKey(e.scope.ID), conn)
		evicted++
		r.logger.Debug("connection evicted from board", "conn", conn, "user", e.user, "board", boardID)
		return true
	})
	return evicted
}

// NotifyGroup implements events.Notifier.
func (r *Registry) NotifyGroup(scopeID types.ID, name events.EventName, payload any, except ...types.ConnID) int {
	return r.notify(scopeKey(scopeID), name, payload, except)
}

// NotifyUser implements events.Notifier.
func (r *Registry) NotifyUser(userID types.UserID, name events.EventName, payload any) int {
	return r.notify(userKey(userID), name, payload, nil)
}

// Delivered and Dropped are running totals for metrics.
func (r *Registry) Delivered() int64 { return r.delivered.Load() }
func (r *Registry) Dropped() int64 { return r.dropped.Load() }

// Close forgets every connection; later Connect calls fail.
func (r *Registry) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.conns.Range(func(key, _ any) bool {
		r.Disconnect(key.(types.ConnID))
		return true
	})
}

func (r *Registry) notify(key string, name events.EventName, payload any, except []types.ConnID) int {
	members := r.members(key)
	if len(members) == 0 {
		return 0
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("failed to encode event payload", "event", name, "error", err)
		return 0
	}
	ev := events.Event{Name: name, Payload: raw}

	sent := 0
	for conn, sub := range members {
		if slices.Contains(except, conn) {
			continue
		}
		if sub.Deliver(ev) {
			sent++
			r.delivered.Add(1)
			continue
		}
		r.dropped.Add(1)
		r.logger.Warn("client send queue full, event dropped", "conn", conn, "event", name)
	}
	return sent
}

// members snapshots a group so delivery happens without holding its lock.
func (r *Registry) members(key string) map[types.ConnID]Subscriber {
	v, ok := r.groups.Load(key)
	if !ok {
		return nil
	}
	g := v.(*group)
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[types.ConnID]Subscriber, len(g.members))
	for conn, sub := range g.members {
		out[conn] = sub
	}
	return out
}

func (r *Registry) join(key string, conn types.ConnID, sub Subscriber) {
	for {
		v, _ := r.groups.LoadOrStore(key, &group{members: make(map[types.ConnID]Subscriber)})
		g := v.(*group)
		g.mu.Lock()
		if g.dead {
			g.mu.Unlock()
			continue
		}
		g.members[conn] = sub
		g.mu.Unlock()
		return
	}
}

func (r *Registry) leave(key string, conn types.ConnID) {
	v, ok := r.groups.Load(key)
	if !ok {
		return
	}
	g := v.(*group)
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, conn)
	if len(g.members) == 0 && !g.dead {
		g.dead = true
		r.groups.CompareAndDelete(key, g)
	}
}

var _ events.Notifier = (*Registry)(nil)
