// Package authtest provides fake authenticators for tests.
package authtest

import (
	"context"
	"net/http"
	"sync"

	"github.com/gqlws/server-go/auth"
)

// Static is a fake authenticator that returns a fixed identity or error
// and records how many times it was invoked.
type Static struct {
	Identity *auth.Identity
	Err      error

	mu    sync.Mutex
	calls int
}

// NewStatic builds a Static fake that authenticates every request as the
// given role.
func NewStatic(role string) *Static {
	return &Static{
		Identity: &auth.Identity{
			DefaultRole: role,
			AllowedRoles: map[string]auth.RoleGrant{
				role: {RequestVariables: []string{auth.RequestVariablesWildcard}},
			},
		},
	}
}

// NewFailing builds a Static fake that rejects every request with err.
func NewFailing(err error) *Static {
	return &Static{Err: err}
}

// Authenticate implements auth.Authenticator.
func (s *Static) Authenticate(ctx context.Context, headers http.Header) (*auth.Identity, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Identity, nil
}

// Calls reports how many times Authenticate ran.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
