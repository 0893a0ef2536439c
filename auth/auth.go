package auth

import (
	"context"
	"errors"
	"net/http"
)

// ErrUnauthorized indicates authentication failed or no valid credentials
// were supplied.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUnknownAuthMode indicates the mode-selection header named a mode that
// is not configured.
var ErrUnknownAuthMode = errors.New("unknown auth mode")

// RequestVariablesWildcard, used in RoleGrant.RequestVariables, allows the
// client to supply any session variable through the effective headers.
const RequestVariablesWildcard = "*"

// Identity is an authenticated principal: the roles it may assume and the
// session variables each role carries. It says nothing about
// authorization; pairing an identity with a concrete role and variable
// set is the authorizer's job.
type Identity struct {
	// DefaultRole is assumed when the client does not request a role.
	DefaultRole string
	// AllowedRoles maps each assumable role to its grant.
	AllowedRoles map[string]RoleGrant
}

// RoleGrant describes what a single role is entitled to.
type RoleGrant struct {
	// Variables are session variables asserted by the authenticator
	// (lowercase x-hasura-* keys). They always win over client input.
	Variables map[string]string
	// RequestVariables lists the session-variable names the client may
	// additionally supply via effective headers. Nil means none; a single
	// RequestVariablesWildcard entry means all.
	RequestVariables []string
}

// Grant returns the grant for role, if the identity may assume it.
func (id *Identity) Grant(role string) (RoleGrant, bool) {
	g, ok := id.AllowedRoles[role]
	return g, ok
}

// AllowsRequestVariable reports whether the client may supply the named
// session variable under this grant.
func (g RoleGrant) AllowsRequestVariable(name string) bool {
	for _, v := range g.RequestVariables {
		if v == RequestVariablesWildcard || v == name {
			return true
		}
	}
	return false
}

// Authenticator validates the effective headers of a connection and
// resolves them to an identity. Implementations may perform network I/O
// (token introspection, webhook calls) and must honor ctx cancellation.
// They should return an error wrapping ErrUnauthorized for invalid
// credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, headers http.Header) (*Identity, error)
}

// The AuthenticatorFunc type is an adapter to allow the use of ordinary
// functions as authenticators.
type AuthenticatorFunc func(ctx context.Context, headers http.Header) (*Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, headers http.Header) (*Identity, error) {
	return f(ctx, headers)
}
