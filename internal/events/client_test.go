package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// ============================================================================
// Test Helpers
// ============================================================================

// stubHub answers every invocation with handle and can push events.
type stubHub struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader
	handle   func(Message) Message
	conns    chan *websocket.Conn
	queries  chan url.Values
	accepted atomic.Int32
}

func newStubHub(t *testing.T, handle func(Message) Message) *stubHub {
	t.Helper()
	h := &stubHub{
		handle:  handle,
		conns:   make(chan *websocket.Conn, 4),
		queries: make(chan url.Values, 4),
	}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.accepted.Add(1)
		h.queries <- r.URL.Query()
		h.conns <- conn
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == TypeInvoke {
				reply := h.handle(msg)
				reply.Type = TypeResult
				reply.ID = msg.ID
				_ = conn.WriteJSON(reply)
			}
		}
	}))
	t.Cleanup(h.srv.Close)
	return h
}

func connectClient(t *testing.T, serverURL string, opts ...ClientOption) *Client {
	t.Helper()
	client, err := NewClient(serverURL, HubCards, "token", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	return client
}

func echoArgs(msg Message) Message {
	return Message{Result: msg.Args}
}

// ============================================================================
// Tests
// ============================================================================

func TestHubURL(t *testing.T) {
	got, err := hubURL("http://localhost:8080/", HubColumns, "tok", "b1", "")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/hubs/columns?access_token=tok&board_id=b1", got)

	got, err = hubURL("https://example.com/api", HubCards, "tok", "", "c1")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/api/hubs/cards?access_token=tok&card_id=c1", got)

	_, err = hubURL("ftp://example.com", HubCards, "tok", "", "")
	assert.Error(t, err)
}

func TestClient_InvokeRoundTrip(t *testing.T) {
	hub := newStubHub(t, echoArgs)
	client := connectClient(t, hub.srv.URL, WithBoard("board-1"))

	q := <-hub.queries
	assert.Equal(t, "board-1", q.Get("board_id"))
	assert.Equal(t, "token", q.Get("access_token"))

	var got MoveCardArgs
	want := MoveCardArgs{CardID: "c", ToColumnID: "col", NewPrevID: types.ID("p").Ptr()}
	require.NoError(t, client.Invoke(context.Background(), MethodMoveCard, want, &got))
	assert.Equal(t, want.CardID, got.CardID)
	assert.Equal(t, want.ToColumnID, got.ToColumnID)
	assert.True(t, types.Equal(want.NewPrevID, got.NewPrevID))
}

func TestClient_ConcurrentInvokesAreCorrelated(t *testing.T) {
	hub := newStubHub(t, echoArgs)
	client := connectClient(t, hub.srv.URL)

	errs := make(chan error, 20)
	for i := range 20 {
		go func() {
			title := string(rune('a' + i))
			var got CreateColumnArgs
			err := client.Invoke(context.Background(), MethodCreateColumn, CreateColumnArgs{Title: title}, &got)
			if err == nil && got.Title != title {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	for range 20 {
		assert.NoError(t, <-errs)
	}
}

func TestClient_ServerErrorMatchesSentinel(t *testing.T) {
	hub := newStubHub(t, func(Message) Message {
		return Message{Error: &Error{Code: CodeForbidden, Message: "access denied"}}
	})
	client := connectClient(t, hub.srv.URL)

	err := MoveColumn(context.Background(), client, "c1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestClient_ReceivesEvents(t *testing.T) {
	hub := newStubHub(t, echoArgs)
	client := connectClient(t, hub.srv.URL)
	conn := <-hub.conns

	payload, err := json.Marshal(ColumnMoved{BoardID: "b", MovedID: "m"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{
		Version: ProtocolVersion,
		Type:    TypeEvent,
		Event:   &Event{Name: EventColumnMoved, Seq: 9, Payload: payload},
	}))

	events, err := client.Listen(context.Background())
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, EventColumnMoved, ev.Name)
		assert.EqualValues(t, 9, ev.Seq)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event")
	}
	assert.EqualValues(t, 9, client.LastSequence())
}

func TestClient_RejectedHandshake(t *testing.T) {
	hub := newStubHub(t, echoArgs)
	client, err := NewClient(hub.srv.URL, HubCards, "")
	require.NoError(t, err)

	err = client.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	hub := newStubHub(t, echoArgs)
	client := connectClient(t, hub.srv.URL, WithReconnect(5, 10*time.Millisecond))

	first := <-hub.conns
	require.NoError(t, first.Close())

	require.Eventually(t, func() bool {
		return hub.accepted.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		var got GetCardArgs
		err := client.Invoke(context.Background(), MethodGetCard, GetCardArgs{CardID: "x"}, &got)
		return err == nil && got.CardID == "x"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_ReconnectPushesResync(t *testing.T) {
	hub := newStubHub(t, echoArgs)
	client := connectClient(t, hub.srv.URL, WithReconnect(5, 10*time.Millisecond))
	events, err := client.Listen(context.Background())
	require.NoError(t, err)

	first := <-hub.conns
	require.NoError(t, first.Close())

	select {
	case ev := <-events:
		assert.Equal(t, EventResync, ev.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for resync marker")
	}
}

func TestClient_OverflowPushesResync(t *testing.T) {
	hub := newStubHub(t, echoArgs)
	client := connectClient(t, hub.srv.URL)
	conn := <-hub.conns

	payload, err := json.Marshal(ColumnMoved{BoardID: "b", MovedID: "m"})
	require.NoError(t, err)
	const sent = eventBuffer + 16
	for i := int64(1); i <= sent; i++ {
		require.NoError(t, conn.WriteJSON(Message{
			Type:  TypeEvent,
			Event: &Event{Name: EventColumnMoved, Seq: i, Payload: payload},
		}))
	}
	require.Eventually(t, func() bool {
		return client.LastSequence() == sent
	}, 2*time.Second, 10*time.Millisecond)
	assert.Positive(t, client.Dropped())

	events, err := client.Listen(context.Background())
	require.NoError(t, err)
	var last Event
	for len(events) > 0 {
		last = <-events
	}
	assert.Equal(t, EventResync, last.Name, "the newest entry must tell the listener to reload")
}

func TestClient_InvokeAfterClose(t *testing.T) {
	hub := newStubHub(t, echoArgs)
	client := connectClient(t, hub.srv.URL)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	err := client.Invoke(context.Background(), MethodGetCards, GetCardsArgs{}, nil)
	assert.ErrorIs(t, err, ErrClientClosed)

	events, err := client.Listen(context.Background())
	require.NoError(t, err)
	select {
	case _, ok := <-events:
		assert.False(t, ok, "event stream must be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("event stream was not closed")
	}
}

// TestNilClientMethods verifies that calling methods on a nil *Client doesn't panic
func TestNilClientMethods(t *testing.T) {
	var client *Client

	events, err := client.Listen(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	_, ok := <-events
	assert.False(t, ok)

	assert.ErrorIs(t, client.Invoke(context.Background(), MethodGetCards, nil, nil), ErrNotConnected)
	assert.ErrorIs(t, client.Connect(context.Background()), ErrNotConnected)
	assert.NoError(t, client.Close())
}

func TestClientImplementsInvoker(t *testing.T) {
	var _ Invoker = (*Client)(nil)
}
