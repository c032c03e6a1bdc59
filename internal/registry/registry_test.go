package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// chanSub is a Subscriber backed by a buffered channel.
type chanSub struct {
	ch chan events.Event
}

func newSub(buffer int) *chanSub {
	return &chanSub{ch: make(chan events.Event, buffer)}
}

func (s *chanSub) Deliver(ev events.Event) bool {
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

func (s *chanSub) drain() []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-s.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func board(id types.ID) Scope { return Scope{Kind: ScopeBoard, ID: id} }

func TestConnectAndLookup(t *testing.T) {
	t.Parallel()
	r := New(events.HubColumns)

	require.NoError(t, r.Connect("c1", "alice", board("b1"), newSub(1)))
	assert.ErrorIs(t, r.Connect("c1", "alice", board("b1"), newSub(1)), ErrDuplicateConn)

	user, ok := r.User("c1")
	require.True(t, ok)
	assert.Equal(t, types.UserID("alice"), user)

	scope, ok := r.Scope("c1")
	require.True(t, ok)
	assert.Equal(t, board("b1"), scope)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.GroupSize("b1"))

	r.Disconnect("c1")
	r.Disconnect("c1")
	_, ok = r.User("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.GroupSize("b1"))
}

func TestNotifyGroupExcludesOrigin(t *testing.T) {
	t.Parallel()
	r := New(events.HubCards)
	origin, peer, stranger := newSub(4), newSub(4), newSub(4)

	require.NoError(t, r.Connect("origin", "alice", board("b1"), origin))
	require.NoError(t, r.Connect("peer", "bob", board("b1"), peer))
	require.NoError(t, r.Connect("stranger", "carol", board("b2"), stranger))

	payload := events.CardMoved{BoardID: "b1", MovedID: "x"}
	n := r.NotifyGroup("b1", events.EventCardMoved, payload, "origin")
	assert.Equal(t, 1, n)

	assert.Empty(t, origin.drain(), "the originating connection already applied its change")
	assert.Empty(t, stranger.drain(), "other boards are not notified")

	got := peer.drain()
	require.Len(t, got, 1)
	assert.Equal(t, events.EventCardMoved, got[0].Name)
	var decoded events.CardMoved
	require.NoError(t, got[0].Decode(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNotifyUserReachesEveryConnectionOfUser(t *testing.T) {
	t.Parallel()
	r := New(events.HubAccess)
	a1, a2, b := newSub(1), newSub(1), newSub(1)

	require.NoError(t, r.Connect("a1", "alice", Scope{}, a1))
	require.NoError(t, r.Connect("a2", "alice", board("b9"), a2))
	require.NoError(t, r.Connect("b", "bob", Scope{}, b))

	assert.Equal(t, 2, r.NotifyUser("alice", events.EventAccessChanged, events.AccessChanged{UserID: "alice"}))
	assert.Len(t, a1.drain(), 1)
	assert.Len(t, a2.drain(), 1)
	assert.Empty(t, b.drain())
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()
	r := New(events.HubColumns)
	slow, fast := newSub(1), newSub(8)
	require.NoError(t, r.Connect("slow", "u1", board("b"), slow))
	require.NoError(t, r.Connect("fast", "u2", board("b"), fast))

	for i := 0; i < 3; i++ {
		r.NotifyGroup("b", events.EventColumnMoved, events.ColumnMoved{BoardID: "b"})
	}

	assert.Len(t, slow.drain(), 1)
	fastEvents := fast.drain()
	require.Len(t, fastEvents, 3)
	assert.Equal(t, int64(2), r.Dropped())
	assert.Equal(t, int64(4), r.Delivered())
}

func TestNotifyEmptyGroup(t *testing.T) {
	t.Parallel()
	r := New(events.HubColumns)
	assert.Equal(t, 0, r.NotifyGroup("nobody", events.EventColumnDeleted, nil))
}

func TestConcurrentConnectDisconnect(t *testing.T) {
	t.Parallel()
	r := New(events.HubCards)

	const workers = 32
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				conn := types.ConnID(fmt.Sprintf("w%d-%d", w, i))
				scope := board(types.ID(fmt.Sprintf("b%d", i%3)))
				if err := r.Connect(conn, "user", scope, newSub(1)); err != nil {
					t.Errorf("connect %s: %v", conn, err)
					return
				}
				r.NotifyGroup(scope.ID, events.EventCardCreated, events.CardCreated{})
				if i%2 == 0 {
					r.Disconnect(conn)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*25, r.Len())
	total := r.GroupSize("b0") + r.GroupSize("b1") + r.GroupSize("b2")
	assert.Equal(t, workers*25, total)
}

func TestCloseForgetsEverything(t *testing.T) {
	t.Parallel()
	r := New(events.HubColumns)
	require.NoError(t, r.Connect("c1", "u", board("b"), newSub(1)))

	r.Close()
	r.Close()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.GroupSize("b"))
	assert.ErrorIs(t, r.Connect("c2", "u", board("b"), newSub(1)), ErrClosed)
}

func TestConnectRacingCloseLeavesNothing(t *testing.T) {
	t.Parallel()

	for round := 0; round < 20; round++ {
		r := New(events.HubCards)
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					conn := types.ConnID(fmt.Sprintf("r%d-w%d-%d", round, w, i))
					err := r.Connect(conn, types.UserID(fmt.Sprintf("u%d", w)), board("b"), newSub(1))
					if err != nil && !errors.Is(err, ErrClosed) {
						t.Errorf("connect %s: %v", conn, err)
					}
				}
			}(w)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Close()
		}()
		wg.Wait()

		assert.Equal(t, 0, r.Len(), "round %d", round)
		assert.Equal(t, 0, r.GroupSize("b"), "round %d", round)
		assert.Zero(t, r.NotifyGroup("b", events.EventCardCreated, events.CardCreated{}), "round %d", round)
	}
}

func TestViewersAreDistinctUsers(t *testing.T) {
	t.Parallel()
	r := New(events.HubBoards)

	require.NoError(t, r.Connect("b1", "bob", board("x"), newSub(1)))
	require.NoError(t, r.Connect("a1", "alice", board("x"), newSub(1)))
	require.NoError(t, r.Connect("a2", "alice", board("x"), newSub(1)))
	require.NoError(t, r.Connect("c1", "carol", board("y"), newSub(1)))

	assert.Equal(t, []types.UserID{"alice", "bob"}, r.Viewers("x"))
	assert.Empty(t, r.Viewers("nobody"))
}

func TestEvictBoardRemovesOnlyLostUsers(t *testing.T) {
	t.Parallel()
	r := New(events.HubCards)
	bobBoard, bobCard, aliceBoard, other := newSub(4), newSub(4), newSub(4), newSub(4)

	require.NoError(t, r.Connect("bob-board", "bob", board("b1"), bobBoard))
	require.NoError(t, r.Connect("bob-card", "bob", Scope{Kind: ScopeCard, ID: "k1", Board: "b1"}, bobCard))
	require.NoError(t, r.Connect("alice-board", "alice", board("b1"), aliceBoard))
	require.NoError(t, r.Connect("bob-other", "bob", board("b2"), other))

	gone := func(u types.UserID) bool { return u == "bob" }
	n := r.EvictBoard("b1", gone, events.EventAccessChanged, events.AccessChanged{BoardID: "b1", UserID: "bob"})
	assert.Equal(t, 2, n)

	assert.Equal(t, 1, r.GroupSize("b1"))
	assert.Equal(t, 0, r.GroupSize("k1"))
	assert.Equal(t, 1, r.GroupSize("b2"), "other boards keep their viewers")
	assert.Len(t, bobBoard.drain(), 1)
	assert.Len(t, bobCard.drain(), 1)
	assert.Empty(t, aliceBoard.drain())

	scope, ok := r.Scope("bob-board")
	require.True(t, ok, "an evicted connection stays registered")
	assert.Equal(t, Scope{}, scope)

	r.NotifyGroup("b1", events.EventCardCreated, events.CardCreated{BoardID: "b1"})
	assert.Empty(t, bobBoard.drain(), "evicted connections no longer hear the board")
	assert.Len(t, aliceBoard.drain(), 1)

	assert.Equal(t, 3, r.NotifyUser("bob", events.EventAccessChanged, events.AccessChanged{}), "user groups are untouched")

	assert.Zero(t, r.EvictBoard("b1", gone, "", nil), "eviction is idempotent")
	r.Disconnect("bob-board")
	assert.Equal(t, 3, r.Len())
}

func TestSetFansOut(t *testing.T) {
	t.Parallel()
	cols, cards := New(events.HubColumns), New(events.HubCards)
	set := Set{cols, cards}
	a, b := newSub(4), newSub(4)

	require.NoError(t, cols.Connect("a", "alice", board("b1"), a))
	require.NoError(t, cards.Connect("b", "bob", board("b1"), b))

	assert.Equal(t, 2, set.NotifyGroup("b1", events.EventBoardDeleted, events.BoardDeleted{BoardID: "b1"}))
	assert.Equal(t, []types.UserID{"alice", "bob"}, set.Viewers("b1"))
	assert.Equal(t, 2, set.EvictBoard("b1", func(types.UserID) bool { return true }, "", nil))
	assert.Empty(t, set.Viewers("b1"))
	assert.Len(t, a.drain(), 1)
	assert.Len(t, b.drain(), 1)
}

func TestEvictBoardSkipsExcludedDelivery(t *testing.T) {
	t.Parallel()
	r := New(events.HubBoards)
	origin, peer := newSub(2), newSub(2)
	require.NoError(t, r.Connect("origin", "alice", board("b1"), origin))
	require.NoError(t, r.Connect("peer", "bob", board("b1"), peer))

	all := func(types.UserID) bool { return true }
	assert.Equal(t, 2, r.EvictBoard("b1", all, events.EventBoardDeleted, events.BoardDeleted{BoardID: "b1"}, "origin"))
	assert.Empty(t, origin.drain())
	assert.Len(t, peer.drain(), 1)
	assert.Equal(t, 0, r.GroupSize("b1"))
}
