package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func staticMode(role string) Authenticator {
	return AuthenticatorFunc(func(ctx context.Context, headers http.Header) (*Identity, error) {
		return &Identity{
			DefaultRole:  role,
			AllowedRoles: map[string]RoleGrant{role: {}},
		}, nil
	})
}

func TestModeSelector(t *testing.T) {
	ctx := context.Background()

	selector, err := NewModeSelector(staticMode("default-role"),
		WithAlternativeMode("internal", staticMode("internal-role")),
	)
	if err != nil {
		t.Fatalf("NewModeSelector: %v", err)
	}

	t.Run("absent mode header uses default mode", func(t *testing.T) {
		id, err := selector.Authenticate(ctx, http.Header{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.DefaultRole != "default-role" {
			t.Fatalf("role = %q", id.DefaultRole)
		}
	})

	t.Run("mode header selects alternative mode", func(t *testing.T) {
		h := http.Header{}
		h.Set(DefaultModeHeader, "internal")
		id, err := selector.Authenticate(ctx, h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.DefaultRole != "internal-role" {
			t.Fatalf("role = %q", id.DefaultRole)
		}
	})

	t.Run("unknown mode fails authentication", func(t *testing.T) {
		h := http.Header{}
		h.Set(DefaultModeHeader, "nope")
		_, err := selector.Authenticate(ctx, h)
		if !errors.Is(err, ErrUnknownAuthMode) {
			t.Fatalf("expected ErrUnknownAuthMode, got %v", err)
		}
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("unknown mode should also be unauthorized, got %v", err)
		}
	})

	t.Run("custom mode header", func(t *testing.T) {
		custom, err := NewModeSelector(staticMode("default-role"),
			WithModeHeader("X-Auth-Mode"),
			WithAlternativeMode("internal", staticMode("internal-role")),
		)
		if err != nil {
			t.Fatalf("NewModeSelector: %v", err)
		}
		h := http.Header{}
		h.Set("X-Auth-Mode", "internal")
		id, err := custom.Authenticate(ctx, h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.DefaultRole != "internal-role" {
			t.Fatalf("role = %q", id.DefaultRole)
		}
	})

	t.Run("nil default mode is rejected", func(t *testing.T) {
		if _, err := NewModeSelector(nil); err == nil {
			t.Fatal("expected error for nil default mode")
		}
	})
}

func TestNoAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to admin", func(t *testing.T) {
		id, err := NewNoAuth("").Authenticate(ctx, http.Header{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.DefaultRole != "admin" {
			t.Fatalf("role = %q", id.DefaultRole)
		}
		grant, ok := id.Grant("admin")
		if !ok {
			t.Fatal("admin grant missing")
		}
		if !grant.AllowsRequestVariable("x-hasura-user-id") {
			t.Fatal("noauth grant should admit any request variable")
		}
	})

	t.Run("fixed role", func(t *testing.T) {
		id, err := NewNoAuth("viewer").Authenticate(ctx, http.Header{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.DefaultRole != "viewer" {
			t.Fatalf("role = %q", id.DefaultRole)
		}
	})
}
