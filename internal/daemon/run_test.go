package daemon

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thenoetrevino/boardsync/internal/config"
	"github.com/thenoetrevino/boardsync/internal/testutil"
)

func TestConfigFrom(t *testing.T) {
	sc := config.Default().Server
	sc.JWTSecret = "s"
	cfg := ConfigFrom(sc)
	if cfg.Addr != sc.Addr || cfg.JWTSecret != "s" || cfg.PingInterval != sc.PingInterval {
		t.Errorf("Config not carried over: %+v", cfg)
	}
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve a port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	sc := config.Default().Server
	sc.Addr = addr
	sc.DBPath = filepath.Join(t.TempDir(), "boardsync.db")
	sc.JWTSecret = testutil.TestJWTSecret

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, sc, nil) }()

	up := testutil.WaitForCondition(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, "daemon healthy")
	if !up {
		cancel()
		t.Fatal("Daemon never became healthy")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_RequiresSecret(t *testing.T) {
	sc := config.Default().Server
	sc.DBPath = filepath.Join(t.TempDir(), "boardsync.db")
	sc.JWTSecret = ""

	err := Run(context.Background(), sc, nil)
	if err == nil || !strings.Contains(strings.ToLower(err.Error()), "secret") {
		t.Errorf("Expected missing secret error, got %v", err)
	}
}
