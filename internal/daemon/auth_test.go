package daemon

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/thenoetrevino/boardsync/internal/testutil"
)

func TestNewAuthenticator_RequiresSecret(t *testing.T) {
	if _, err := NewAuthenticator(""); err == nil {
		t.Fatal("Expected error for empty secret")
	}
}

func TestAuthenticate(t *testing.T) {
	auth, err := NewAuthenticator("secret")
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "alice"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{name: "valid", token: testutil.SignToken(t, "secret", "alice"), want: "alice"},
		{name: "missing", token: "", wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
		{name: "wrong secret", token: testutil.SignToken(t, "other", "alice"), wantErr: true},
		{name: "expired", token: expired, wantErr: true},
		{name: "no subject", token: noSubject, wantErr: true},
		{name: "other algorithm", token: hs512, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := auth.Authenticate(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthorized) {
					t.Fatalf("Expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate failed: %v", err)
			}
			if string(user) != tt.want {
				t.Errorf("Expected user %q, got %q", tt.want, user)
			}
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/hubs/cards?access_token=query-token", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	if got := tokenFromRequest(r); got != "query-token" {
		t.Errorf("Expected query token to win, got %q", got)
	}

	r = httptest.NewRequest("GET", "/hubs/cards", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	if got := tokenFromRequest(r); got != "header-token" {
		t.Errorf("Expected header token, got %q", got)
	}

	r = httptest.NewRequest("GET", "/hubs/cards", nil)
	r.Header.Set("Authorization", "Basic abc")
	if got := tokenFromRequest(r); got != "" {
		t.Errorf("Expected no token, got %q", got)
	}
}
