package sessions

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gqlws/server-go/auth"
)

// RoleAuthorizer is the default Authorizer. Role selection: the
// x-hasura-role effective header if present, else the identity's default
// role; the selected role must be in the identity's allowed set. Session
// variables are the role grant's asserted variables layered over any
// client-supplied x-hasura-* headers the grant admits.
type RoleAuthorizer struct{}

var _ Authorizer = RoleAuthorizer{}

// Authorize implements Authorizer. It is pure: no I/O, ctx is accepted
// only to satisfy the contract shared with I/O-bound authorizers.
func (RoleAuthorizer) Authorize(ctx context.Context, identity *auth.Identity, headers http.Header) (*Session, error) {
	role := headers.Get(RoleVariable)
	if role == "" {
		role = identity.DefaultRole
	}
	grant, ok := identity.Grant(role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoleNotAllowed, role)
	}

	vars := make(Variables)
	for name, values := range headers {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, VariablePrefix) || lower == RoleVariable {
			continue
		}
		// Variables the grant does not admit are dropped, not rejected:
		// clients routinely forward header bags wholesale.
		if !grant.AllowsRequestVariable(lower) {
			continue
		}
		if len(values) > 0 {
			vars[lower] = values[0]
		}
	}
	// Authenticator-asserted variables always win over client input.
	for name, value := range grant.Variables {
		vars[strings.ToLower(name)] = value
	}
	vars[RoleVariable] = role

	return &Session{Role: role, Variables: vars}, nil
}
