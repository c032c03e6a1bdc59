package daemon

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// ============================================================================
// Basic Metrics Tests
// ============================================================================

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m == nil {
		t.Fatal("Expected NewMetrics to return non-nil")
	}

	if m.GetInvocations() != 0 {
		t.Errorf("Expected Invocations to be 0, got %d", m.GetInvocations())
	}
	if m.GetInvocationErrors() != 0 {
		t.Errorf("Expected InvocationErrors to be 0, got %d", m.GetInvocationErrors())
	}
	if m.GetConnections() != 0 {
		t.Errorf("Expected Connections to be 0, got %d", m.GetConnections())
	}
	if m.GetRejectedHandshakes() != 0 {
		t.Errorf("Expected RejectedHandshakes to be 0, got %d", m.GetRejectedHandshakes())
	}
	if m.GetConnectedClients() != 0 {
		t.Errorf("Expected ConnectedClients to be 0, got %d", m.GetConnectedClients())
	}

	if time.Since(m.StartTime) > time.Second {
		t.Errorf("Expected StartTime to be recent, got %v", m.StartTime)
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.IncInvocations()
	m.IncInvocations()
	m.IncInvocationErrors()
	m.IncConnections()
	m.IncRejectedHandshakes()
	m.IncRejectedHandshakes()
	m.IncRejectedHandshakes()

	if got := m.GetInvocations(); got != 2 {
		t.Errorf("Expected 2 invocations, got %d", got)
	}
	if got := m.GetInvocationErrors(); got != 1 {
		t.Errorf("Expected 1 invocation error, got %d", got)
	}
	if got := m.GetConnections(); got != 1 {
		t.Errorf("Expected 1 connection, got %d", got)
	}
	if got := m.GetRejectedHandshakes(); got != 3 {
		t.Errorf("Expected 3 rejected handshakes, got %d", got)
	}
}

func TestMetrics_ConnectedClientsGoesUpAndDown(t *testing.T) {
	m := NewMetrics()

	m.AddConnectedClients(1)
	m.AddConnectedClients(1)
	m.AddConnectedClients(-1)

	if got := m.GetConnectedClients(); got != 1 {
		t.Errorf("Expected 1 connected client, got %d", got)
	}
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestMetrics_ConcurrentIncrements(t *testing.T) {
	m := NewMetrics()

	const goroutines = 50
	const perGoroutine = 100

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				m.IncInvocations()
				m.AddConnectedClients(1)
				m.AddConnectedClients(-1)
			}
		}()
	}
	wg.Wait()

	if got := m.GetInvocations(); got != goroutines*perGoroutine {
		t.Errorf("Expected %d invocations, got %d", goroutines*perGoroutine, got)
	}
	if got := m.GetConnectedClients(); got != 0 {
		t.Errorf("Expected 0 connected clients, got %d", got)
	}
}

// ============================================================================
// Snapshot Tests
// ============================================================================

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.IncInvocations()
	m.IncConnections()
	m.AddConnectedClients(1)

	snap := m.GetSnapshot()

	if snap.Invocations != 1 || snap.Connections != 1 || snap.ConnectedClients != 1 {
		t.Errorf("Snapshot does not match counters: %+v", snap)
	}
	if !snap.StartTime.Equal(m.StartTime) {
		t.Errorf("Expected StartTime %v, got %v", m.StartTime, snap.StartTime)
	}
	if snap.Uptime == "" {
		t.Error("Expected Uptime to be set")
	}

	// Later increments do not change an earlier snapshot
	m.IncInvocations()
	if snap.Invocations != 1 {
		t.Errorf("Snapshot changed after increment: %d", snap.Invocations)
	}
}

func TestMetrics_SnapshotJSON(t *testing.T) {
	snap := NewMetrics().GetSnapshot()
	snap.Hubs = map[string]HubStats{"cards": {Connections: 2, EventsDelivered: 5, EventsDropped: 1}}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}
	for _, key := range []string{"invocations", "invocation_errors", "connections", "rejected_handshakes", "connected_clients", "uptime", "hubs"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in snapshot JSON", key)
		}
	}
	hubs := decoded["hubs"].(map[string]any)
	cards := hubs["cards"].(map[string]any)
	if cards["events_dropped"] != float64(1) {
		t.Errorf("Expected events_dropped 1, got %v", cards["events_dropped"])
	}
}
