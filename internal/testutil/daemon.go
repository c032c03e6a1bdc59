package testutil

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// TestJWTSecret signs every token minted by SignToken.
const TestJWTSecret = "boardsync-test-secret"

// SignToken mints an HS256 bearer token for user, valid for an hour.
func SignToken(t *testing.T, secret string, user types.UserID) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   string(user),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// SetupTestClient connects an events.Client for user to a hub of the
// server at serverURL. Cleanup is automatic via t.Cleanup().
func SetupTestClient(t *testing.T, serverURL, hub string, user types.UserID, opts ...events.ClientOption) *events.Client {
	t.Helper()

	client, err := events.NewClient(serverURL, hub, SignToken(t, TestJWTSecret, user), opts...)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("Warning: client close error during cleanup: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}

	return client
}

// DialRaw opens a bare websocket to a hub for frame-level tests. query is
// appended to the hub URL as is. The handshake response is returned even
// when the dial fails so status codes can be asserted.
func DialRaw(serverURL, hub string, query url.Values) (*websocket.Conn, *http.Response, error) {
	u := strings.Replace(serverURL, "http", "ws", 1) + "/hubs/" + hub
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return websocket.DefaultDialer.DialContext(ctx, u, nil)
}

// Events subscribes to a client's event stream.
func Events(t *testing.T, client *events.Client) <-chan events.Event {
	t.Helper()

	ch, err := client.Listen(context.Background())
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	return ch
}

// WaitForEvent waits for an event on a channel with timeout.
// Returns the event if received, or fails the test on timeout.
func WaitForEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) events.Event {
	t.Helper()

	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("Event channel closed unexpectedly")
		}
		return event
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for event after %v", timeout)
		return events.Event{}
	}
}

// WaitForNamedEvent skips events until one called name arrives.
func WaitForNamedEvent(t *testing.T, ch <-chan events.Event, name events.EventName, timeout time.Duration) events.Event {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				t.Fatalf("Event channel closed while waiting for %s", name)
			}
			if event.Name == name {
				return event
			}
		case <-deadline:
			t.Fatalf("Timeout waiting for %s after %v", name, timeout)
			return events.Event{}
		}
	}
}

// WaitForNoEvent verifies that NO event is received within the timeout.
// This is useful for testing that events are NOT sent when they shouldn't be.
func WaitForNoEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) {
	t.Helper()

	select {
	case event := <-ch:
		t.Fatalf("Unexpected event received: %+v", event)
	case <-time.After(timeout):
	}
}

// DrainEvents drains all pending events from a channel (non-blocking).
// Returns the slice of events that were pending.
func DrainEvents(ch <-chan events.Event) []events.Event {
	var pending []events.Event
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return pending
			}
			pending = append(pending, event)
		default:
			return pending
		}
	}
}

// WaitForCondition waits for a condition to become true within the timeout.
// The condition function is called repeatedly until it returns true or timeout.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, description string) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Logf("Timeout waiting for condition: %s", description)
	return false
}
