package sessions

import (
	"context"
	"errors"
	"net/http"

	"github.com/gqlws/server-go/auth"
)

const (
	// RoleVariable is the session variable carrying the active role. As a
	// header it lets the client request a role; as a session variable it
	// records the role that was granted.
	RoleVariable = "x-hasura-role"

	// VariablePrefix marks headers that are session-variable candidates.
	VariablePrefix = "x-hasura-"
)

// ErrRoleNotAllowed indicates the requested role is not among the
// identity's allowed roles.
var ErrRoleNotAllowed = errors.New("role not allowed")

// Variables is a session-variable set keyed by lowercase x-hasura-* names.
type Variables map[string]string

// Session is the authorized context a connection operates under once
// initialized. It is immutable after creation; later operations read it
// from the connection's initialization state.
type Session struct {
	Role      string
	Variables Variables
}

// Authorizer pairs an authenticated identity with the connection's
// effective headers and produces a session, or rejects the pairing.
// Implementations may perform I/O and must honor ctx cancellation.
type Authorizer interface {
	Authorize(ctx context.Context, identity *auth.Identity, headers http.Header) (*Session, error)
}

// The AuthorizerFunc type is an adapter to allow the use of ordinary
// functions as authorizers.
type AuthorizerFunc func(ctx context.Context, identity *auth.Identity, headers http.Header) (*Session, error)

func (f AuthorizerFunc) Authorize(ctx context.Context, identity *auth.Identity, headers http.Header) (*Session, error) {
	return f(ctx, identity, headers)
}
