package jwtauth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func headerWith(name, value string) http.Header {
	h := http.Header{}
	h.Set(name, value)
	return h
}

func TestExtractRoleClaims(t *testing.T) {
	t.Run("full namespace", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": "user-1",
			DefaultClaimsNamespace: map[string]any{
				"x-hasura-default-role":  "user",
				"x-hasura-allowed-roles": []any{"user", "editor"},
				"x-hasura-user-id":       "42",
				"x-hasura-org-id":        float64(7),
				"unrelated":              "ignored",
			},
		}
		rc, err := ExtractRoleClaims(claims, DefaultClaimsNamespace)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rc.DefaultRole != "user" {
			t.Fatalf("default role = %q", rc.DefaultRole)
		}
		if len(rc.AllowedRoles) != 2 {
			t.Fatalf("allowed roles = %v", rc.AllowedRoles)
		}
		if rc.Variables["x-hasura-user-id"] != "42" {
			t.Fatalf("variables = %v", rc.Variables)
		}
		if rc.Variables["x-hasura-org-id"] != "7" {
			t.Fatalf("numeric claim not stringified: %v", rc.Variables)
		}
		if _, ok := rc.Variables["unrelated"]; ok {
			t.Fatalf("non x-hasura claim admitted: %v", rc.Variables)
		}
	})

	t.Run("missing namespace", func(t *testing.T) {
		_, err := ExtractRoleClaims(jwt.MapClaims{"sub": "user-1"}, DefaultClaimsNamespace)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("missing default role", func(t *testing.T) {
		claims := jwt.MapClaims{
			DefaultClaimsNamespace: map[string]any{
				"x-hasura-allowed-roles": []any{"user"},
			},
		}
		if _, err := ExtractRoleClaims(claims, DefaultClaimsNamespace); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("missing allowed roles", func(t *testing.T) {
		claims := jwt.MapClaims{
			DefaultClaimsNamespace: map[string]any{
				"x-hasura-default-role": "user",
			},
		}
		if _, err := ExtractRoleClaims(claims, DefaultClaimsNamespace); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("non-string allowed role", func(t *testing.T) {
		claims := jwt.MapClaims{
			DefaultClaimsNamespace: map[string]any{
				"x-hasura-default-role":  "user",
				"x-hasura-allowed-roles": []any{"user", 3},
			},
		}
		if _, err := ExtractRoleClaims(claims, DefaultClaimsNamespace); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("custom namespace", func(t *testing.T) {
		claims := jwt.MapClaims{
			"https://example.com/claims": map[string]any{
				"x-hasura-default-role":  "viewer",
				"x-hasura-allowed-roles": []any{"viewer"},
			},
		}
		rc, err := ExtractRoleClaims(claims, "https://example.com/claims")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rc.DefaultRole != "viewer" {
			t.Fatalf("default role = %q", rc.DefaultRole)
		}
	})
}

func TestTokenFromHeaders(t *testing.T) {
	t.Run("bearer scheme stripped", func(t *testing.T) {
		h := headerWith("Authorization", "Bearer abc.def.ghi")
		tok, err := TokenFromHeaders(h, "Authorization")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok != "abc.def.ghi" {
			t.Fatalf("token = %q", tok)
		}
	})

	t.Run("raw token accepted", func(t *testing.T) {
		h := headerWith("Authorization", "abc.def.ghi")
		tok, err := TokenFromHeaders(h, "Authorization")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok != "abc.def.ghi" {
			t.Fatalf("token = %q", tok)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		if _, err := TokenFromHeaders(headerWith("X-Other", "v"), "Authorization"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
