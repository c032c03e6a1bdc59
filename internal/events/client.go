package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/boardsync/internal/types"
)

var (
	// ErrNotConnected is returned by calls made before Connect or after the
	// connection was lost for good.
	ErrNotConnected = errors.New("not connected to server")

	// ErrClientClosed is returned by calls made after Close.
	ErrClientClosed = errors.New("client closed")
)

const (
	writeWait      = 5 * time.Second
	readWait       = 60 * time.Second
	eventBuffer    = 64
	defaultDelay   = 1 * time.Second
	defaultRetries = 5
)

// Client is one realtime connection to a hub. It correlates invocations with
// their results, hands server pushes to Listen, and reconnects with
// exponential backoff when the connection drops.
type Client struct {
	endpoint string
	header   http.Header
	dialer   *websocket.Dialer
	logger   *slog.Logger

	maxRetries int
	baseDelay  time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan Message
	closed  bool

	writeMu sync.Mutex

	nextID       atomic.Int64
	lastSequence atomic.Int64
	dropped      atomic.Int64

	events  chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	running chan struct{}
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	boardID    types.ID
	cardID     types.ID
	logger     *slog.Logger
	dialer     *websocket.Dialer
	maxRetries int
	baseDelay  time.Duration
}

// WithBoard scopes the connection to a board's notifications.
func WithBoard(id types.ID) ClientOption {
	return func(c *clientConfig) { c.boardID = id }
}

// WithCard scopes the connection to a single card's notifications.
func WithCard(id types.ID) ClientOption {
	return func(c *clientConfig) { c.cardID = id }
}

func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) { c.logger = logger }
}

func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *clientConfig) { c.dialer = d }
}

// WithReconnect sets how many times and how quickly a lost connection is
// retried. maxRetries of zero disables reconnection.
func WithReconnect(maxRetries int, baseDelay time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// NewClient creates a client for hub on serverURL but does not connect.
// serverURL may use http, https, ws or wss.
func NewClient(serverURL, hub, token string, opts ...ClientOption) (*Client, error) {
	cfg := clientConfig{
		logger:     slog.Default(),
		dialer:     websocket.DefaultDialer,
		maxRetries: defaultRetries,
		baseDelay:  defaultDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	endpoint, err := hubURL(serverURL, hub, token, cfg.boardID, cfg.cardID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		endpoint:   endpoint,
		header:     http.Header{},
		dialer:     cfg.dialer,
		logger:     cfg.logger.With("hub", hub),
		maxRetries: cfg.maxRetries,
		baseDelay:  cfg.baseDelay,
		pending:    make(map[string]chan Message),
		events:     make(chan Event, eventBuffer),
		ctx:        ctx,
		cancel:     cancel,
		running:    make(chan struct{}),
	}, nil
}

func hubURL(serverURL, hub, token string, boardID, cardID types.ID) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url %q: unsupported scheme", serverURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/hubs/" + hub

	q := url.Values{}
	q.Set("access_token", token)
	if !boardID.IsZero() {
		q.Set("board_id", boardID.String())
	}
	if !cardID.IsZero() {
		q.Set("card_id", cardID.String())
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect dials the hub and starts reading. A rejected handshake is
// reported with the HTTP status.
func (c *Client) Connect(ctx context.Context) error {
	if c == nil {
		return ErrNotConnected
	}
	if err := c.dial(ctx); err != nil {
		return err
	}
	go c.run()
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, c.header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return fmt.Errorf("failed to connect: %s: %w", resp.Status, err)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}

	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	c.conn = conn
	return nil
}

// Listen returns the stream of server pushes. The channel is closed when
// the client is closed or reconnection gives up. Events arriving while the
// buffer is full are dropped, so callers must keep draining it. An
// EventResync on the stream means events were lost and local state built
// from earlier events should be reloaded.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	if c == nil {
		ch := make(chan Event)
		close(ch)
		return ch, ErrNotConnected
	}
	return c.events, nil
}

// Invoke calls method with args and decodes the result into result, which
// may be nil. Server-side failures come back as *Error, which matches the
// models sentinels with errors.Is.
func (c *Client) Invoke(ctx context.Context, method string, args, result any) error {
	if c == nil {
		return ErrNotConnected
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encoding %s args: %w", method, err)
	}
	id := strconv.FormatInt(c.nextID.Add(1), 10)
	reply := make(chan Message, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.pending[id] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	msg := Message{Version: ProtocolVersion, Type: TypeInvoke, ID: id, Method: method, Args: raw}
	if err := c.write(conn, msg); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case resp, ok := <-reply:
		if !ok {
			return ErrNotConnected
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("decoding %s result: %w", method, err)
			}
		}
		return nil
	}
}

func (c *Client) write(conn *websocket.Conn, msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// run reads until the connection drops, then reconnects or gives up.
func (c *Client) run() {
	defer close(c.running)
	defer close(c.events)

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		err := c.readMessages(conn)
		c.failPending()

		if c.ctx.Err() != nil {
			return
		}
		c.logger.Warn("connection lost, reconnecting", "error", err)
		if !c.reconnect() {
			c.logger.Error("failed to reconnect, giving up", "attempts", c.maxRetries)
			return
		}
		c.logger.Info("reconnected")
		// Whatever was pushed while disconnected is gone.
		c.push(Event{Name: EventResync})
	}
}

func (c *Client) readMessages(conn *websocket.Conn) error {
	for {
		if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			return err
		}
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		if msg.Version != 0 && msg.Version != ProtocolVersion {
			c.logger.Warn("protocol version mismatch", "got", msg.Version, "want", ProtocolVersion)
		}

		switch msg.Type {
		case TypeResult:
			c.mu.Lock()
			reply, ok := c.pending[msg.ID]
			c.mu.Unlock()
			if ok {
				reply <- msg
			}

		case TypeEvent:
			if msg.Event == nil {
				continue
			}
			c.lastSequence.Store(msg.Event.Seq)
			c.push(*msg.Event)
		}
	}
}

// push hands ev to Listen without blocking. When the buffer is full, ev and
// the oldest buffered event are dropped and a resync marker takes the freed
// slot, so the listener knows to reload instead of trusting what it has.
func (c *Client) push(ev Event) {
	select {
	case c.events <- ev:
		return
	default:
	}

	c.dropped.Add(1)
	c.logger.Warn("event buffer full, event dropped", "event", ev.Name)
	select {
	case <-c.events:
		c.dropped.Add(1)
	default:
	}
	select {
	case c.events <- Event{Name: EventResync}:
	default:
	}
}

// failPending releases every caller waiting on the lost connection.
func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, reply := range c.pending {
		close(reply)
		delete(c.pending, id)
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// reconnect retries the dial with exponential backoff.
func (c *Client) reconnect() bool {
	delay := c.baseDelay
	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
		}

		dialCtx, cancel := context.WithTimeout(c.ctx, writeWait)
		err := c.dial(dialCtx)
		cancel()
		if err == nil {
			return true
		}
		if errors.Is(err, ErrClientClosed) {
			return false
		}
		c.logger.Debug("reconnection attempt failed", "attempt", i+1, "max", c.maxRetries, "retry_in", delay*2, "error", err)
		delay *= 2
	}
	return false
}

// LastSequence is the sequence number of the most recent event received.
func (c *Client) LastSequence() int64 {
	return c.lastSequence.Load()
}

// Dropped counts events discarded because Listen was not drained.
// Server-side drops show up as gaps in Event.Seq instead.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// Close shuts the connection and stops the reader.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()

	err := conn.Close()
	<-c.running
	return err
}
