package sessions

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gqlws/server-go/auth"
)

func identityFixture() *auth.Identity {
	return &auth.Identity{
		DefaultRole: "user",
		AllowedRoles: map[string]auth.RoleGrant{
			"user": {
				Variables:        map[string]string{"x-hasura-user-id": "42"},
				RequestVariables: []string{"x-hasura-org-id"},
			},
			"editor": {
				RequestVariables: []string{auth.RequestVariablesWildcard},
			},
		},
	}
}

func TestRoleAuthorizer(t *testing.T) {
	ctx := context.Background()
	authz := RoleAuthorizer{}

	t.Run("default role when none requested", func(t *testing.T) {
		s, err := authz.Authorize(ctx, identityFixture(), http.Header{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Role != "user" {
			t.Fatalf("role = %q", s.Role)
		}
		if s.Variables[RoleVariable] != "user" {
			t.Fatalf("session variables missing role: %v", s.Variables)
		}
	})

	t.Run("requested role from effective headers", func(t *testing.T) {
		h := http.Header{}
		h.Set("x-hasura-role", "editor")
		s, err := authz.Authorize(ctx, identityFixture(), h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Role != "editor" {
			t.Fatalf("role = %q", s.Role)
		}
	})

	t.Run("role outside allowed set is rejected", func(t *testing.T) {
		h := http.Header{}
		h.Set("x-hasura-role", "admin")
		_, err := authz.Authorize(ctx, identityFixture(), h)
		if !errors.Is(err, ErrRoleNotAllowed) {
			t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
		}
	})

	t.Run("grant variables win over client input", func(t *testing.T) {
		h := http.Header{}
		h.Set("x-hasura-user-id", "999")
		s, err := authz.Authorize(ctx, identityFixture(), h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := s.Variables["x-hasura-user-id"]; got != "42" {
			t.Fatalf("client overrode granted variable: %q", got)
		}
	})

	t.Run("request variables honor the allow-list", func(t *testing.T) {
		h := http.Header{}
		h.Set("x-hasura-org-id", "acme")
		h.Set("x-hasura-is-owner", "true")
		s, err := authz.Authorize(ctx, identityFixture(), h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := s.Variables["x-hasura-org-id"]; got != "acme" {
			t.Fatalf("allow-listed variable dropped: %v", s.Variables)
		}
		if _, ok := s.Variables["x-hasura-is-owner"]; ok {
			t.Fatalf("disallowed variable admitted: %v", s.Variables)
		}
	})

	t.Run("wildcard grant admits any variable", func(t *testing.T) {
		h := http.Header{}
		h.Set("x-hasura-role", "editor")
		h.Set("x-hasura-is-owner", "true")
		s, err := authz.Authorize(ctx, identityFixture(), h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := s.Variables["x-hasura-is-owner"]; got != "true" {
			t.Fatalf("wildcard variable dropped: %v", s.Variables)
		}
	})

	t.Run("non x-hasura headers never become variables", func(t *testing.T) {
		h := http.Header{}
		h.Set("x-hasura-role", "editor")
		h.Set("Authorization", "Bearer secret")
		s, err := authz.Authorize(ctx, identityFixture(), h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for name := range s.Variables {
			if name == "authorization" {
				t.Fatalf("credential leaked into session variables: %v", s.Variables)
			}
		}
	})
}
