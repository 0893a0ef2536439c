package auth

import (
	"context"
	"net/http"
)

// NoAuth is an Authenticator for development and trusted-perimeter
// deployments: every connection resolves to a fixed role without any
// credential check. Clients may supply arbitrary session variables.
type NoAuth struct {
	// Role assumed by every connection. Defaults to "admin".
	Role string
	// Variables are asserted on every session of Role.
	Variables map[string]string
}

// NewNoAuth builds a NoAuth authenticator for the given role. An empty
// role defaults to "admin".
func NewNoAuth(role string) *NoAuth {
	if role == "" {
		role = "admin"
	}
	return &NoAuth{Role: role}
}

// Authenticate implements Authenticator. It never fails.
func (n *NoAuth) Authenticate(ctx context.Context, headers http.Header) (*Identity, error) {
	role := n.Role
	if role == "" {
		role = "admin"
	}
	return &Identity{
		DefaultRole: role,
		AllowedRoles: map[string]RoleGrant{
			role: {
				Variables:        n.Variables,
				RequestVariables: []string{RequestVariablesWildcard},
			},
		},
	}, nil
}
