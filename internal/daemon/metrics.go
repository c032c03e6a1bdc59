package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics tracks daemon statistics using atomic operations for thread-safety
type Metrics struct {
	Invocations        atomic.Int64
	InvocationErrors   atomic.Int64
	Connections        atomic.Int64
	RejectedHandshakes atomic.Int64
	ConnectedClients   atomic.Int32
	StartTime          time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncInvocations increments the invocations counter
func (m *Metrics) IncInvocations() {
	m.Invocations.Add(1)
}

// IncInvocationErrors increments the failed invocations counter
func (m *Metrics) IncInvocationErrors() {
	m.InvocationErrors.Add(1)
}

// IncConnections counts an accepted websocket connection
func (m *Metrics) IncConnections() {
	m.Connections.Add(1)
}

// IncRejectedHandshakes counts a handshake refused for auth or scope
func (m *Metrics) IncRejectedHandshakes() {
	m.RejectedHandshakes.Add(1)
}

// AddConnectedClients adjusts the current connected clients count
func (m *Metrics) AddConnectedClients(delta int32) {
	m.ConnectedClients.Add(delta)
}

// GetInvocations returns the total invocations
func (m *Metrics) GetInvocations() int64 {
	return m.Invocations.Load()
}

// GetInvocationErrors returns the total failed invocations
func (m *Metrics) GetInvocationErrors() int64 {
	return m.InvocationErrors.Load()
}

// GetConnections returns the total accepted connections
func (m *Metrics) GetConnections() int64 {
	return m.Connections.Load()
}

// GetRejectedHandshakes returns the total refused handshakes
func (m *Metrics) GetRejectedHandshakes() int64 {
	return m.RejectedHandshakes.Load()
}

// GetConnectedClients returns the current connected clients count
func (m *Metrics) GetConnectedClients() int32 {
	return m.ConnectedClients.Load()
}

// HubStats is the per-hub delivery view taken from its registry.
type HubStats struct {
	Connections     int   `json:"connections"`
	EventsDelivered int64 `json:"events_delivered"`
	EventsDropped   int64 `json:"events_dropped"`
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	Invocations        int64               `json:"invocations"`
	InvocationErrors   int64               `json:"invocation_errors"`
	Connections        int64               `json:"connections"`
	RejectedHandshakes int64               `json:"rejected_handshakes"`
	ConnectedClients   int32               `json:"connected_clients"`
	Hubs               map[string]HubStats `json:"hubs,omitempty"`
	StartTime          time.Time           `json:"start_time"`
	Uptime             string              `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Invocations:        m.GetInvocations(),
		InvocationErrors:   m.GetInvocationErrors(),
		Connections:        m.GetConnections(),
		RejectedHandshakes: m.GetRejectedHandshakes(),
		ConnectedClients:   m.GetConnectedClients(),
		StartTime:          m.StartTime,
		Uptime:             time.Since(m.StartTime).String(),
	}
}
