package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/boardsync/internal/app"
)

// Config holds the daemon's tunables. Zero values get defaults.
type Config struct {
	Addr            string
	JWTSecret       string
	ClientBuffer    int
	PingInterval    time.Duration
	PongTimeout     time.Duration
	CallTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxMessageBytes int64
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:7420"
	}
	if c.ClientBuffer <= 0 {
		c.ClientBuffer = 64
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.PongTimeout <= c.PingInterval {
		c.PongTimeout = c.PingInterval * 3
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = 64 << 10
	}
}

// Server is the realtime front of boardsync: one websocket endpoint per hub
// plus health and metrics over plain HTTP.
type Server struct {
	cfg      Config
	app      *app.App
	auth     *Authenticator
	upgrader websocket.Upgrader
	metrics  *Metrics
	logger   *slog.Logger
	hubs     map[string]*hub
	handler  http.Handler

	ctx    context.Context
	cancel context.CancelFunc
	calls  sync.WaitGroup

	mu           sync.Mutex
	clients      map[*client]struct{}
	httpSrv      *http.Server
	addr         net.Addr
	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a daemon serving the services and registries of a.
func NewServer(cfg Config, a *app.App, opts ...Option) (*Server, error) {
	cfg.applyDefaults()

	auth, err := NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		app:     a,
		auth:    auth,
		metrics: NewMetrics(),
		logger:  slog.Default(),
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Credentials travel as a bearer token, never as cookies.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "daemon")
	s.hubs = s.buildHubs()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /hubs/{hub}", s.handleHub)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /debug/metrics", s.handleMetrics)
	s.handler = mux

	return s, nil
}

// Handler exposes the HTTP routes, for embedding or httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is done or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.logger.Info("daemon listening", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.ctx.Done():
		}
		return s.Shutdown()
	})
	return g.Wait()
}

// Addr is the address the server is listening on, nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown stops accepting connections, closes every client, lets
// in-flight invocations finish and tears down the registries.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down daemon")
		s.cancel()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.mu.Lock()
		srv := s.httpSrv
		clients := make([]*client, 0, len(s.clients))
		for c := range s.clients {
			clients = append(clients, c)
		}
		s.mu.Unlock()

		if srv != nil {
			if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
				err = fmt.Errorf("http shutdown: %w", shutdownErr)
			}
		}
		for _, c := range clients {
			c.close()
		}

		done := make(chan struct{})
		go func() {
			s.calls.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn("in-flight invocations did not finish before shutdown timeout")
		}

		for _, h := range s.hubs {
			h.registry.Close()
		}
	})
	return err
}

// Metrics returns the current counters including per-hub delivery.
func (s *Server) Metrics() MetricsSnapshot {
	snap := s.metrics.GetSnapshot()
	snap.Hubs = make(map[string]HubStats, len(s.hubs))
	for name, h := range s.hubs {
		snap.Hubs[name] = HubStats{
			Connections:     h.registry.Len(),
			EventsDelivered: h.registry.Delivered(),
			EventsDropped:   h.registry.Dropped(),
		}
	}
	return snap
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Metrics())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.metrics.AddConnectedClients(1)
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		s.metrics.AddConnectedClients(-1)
	}
}
