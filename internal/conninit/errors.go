package conninit

import (
	"fmt"

	"github.com/gqlws/server-go/gqlws"
)

// Kind enumerates the closed internal error taxonomy of initialization.
// Adding a kind forces a classification decision in Classify.
type Kind int

const (
	// KindAlreadyInitialized is a protocol-sequencing violation: a
	// connection_init on an already-initialized connection.
	KindAlreadyInitialized Kind = iota
	// KindInvalidHeaderName marks a payload header whose name is not a
	// valid header field token.
	KindInvalidHeaderName
	// KindInvalidHeaderValue marks a payload header whose value is not a
	// valid header field value.
	KindInvalidHeaderValue
	// KindAuthentication wraps an opaque authenticator failure.
	KindAuthentication
	// KindAuthorization wraps an opaque authorizer failure.
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindAlreadyInitialized:
		return "already_initialized"
	case KindInvalidHeaderName:
		return "invalid_header_name"
	case KindInvalidHeaderValue:
		return "invalid_header_value"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is an initialization failure. The detail here is for logs and
// traces only; Classify decides the wire-visible shape.
type Error struct {
	Kind Kind
	// Header names the offending header for the invalid-header kinds.
	Header string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAlreadyInitialized:
		return "connection already initialized"
	case KindInvalidHeaderName:
		return fmt.Sprintf("invalid header name %q", e.Header)
	case KindInvalidHeaderValue:
		return fmt.Sprintf("invalid value for header %q", e.Header)
	case KindAuthentication:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	case KindAuthorization:
		return fmt.Sprintf("authorization failed: %v", e.Err)
	}
	return fmt.Sprintf("initialization failed (%s)", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify collapses the taxonomy into the two wire-visible signals.
// AlreadyInitialized is the only kind a client may distinguish; every
// other kind, including any future one that misses an explicit case,
// surfaces as the generic Forbidden signal.
func Classify(err *Error) gqlws.CloseError {
	switch err.Kind {
	case KindAlreadyInitialized:
		return gqlws.TooManyInitRequests()
	case KindInvalidHeaderName, KindInvalidHeaderValue, KindAuthentication, KindAuthorization:
		return gqlws.Forbidden()
	}
	return gqlws.Forbidden()
}
