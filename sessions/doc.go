// Package sessions defines the authorized session bound to a connection
// after successful initialization: a role plus the session-variable set
// visible to downstream execution, and the Authorizer that derives it
// from an authenticated identity and the connection's effective headers.
package sessions
