package gqlws

import "fmt"

// Close codes defined by the graphql-transport-ws protocol. The server
// terminates a connection with one of these instead of a protocol
// message when the violation is connection-scoped.
const (
	CloseBadRequest               = 4400
	CloseUnauthorized             = 4401
	CloseForbidden                = 4403
	CloseSubprotocolNotAcceptable = 4406
	CloseInitTimeout              = 4408
	CloseSubscriberAlreadyExists  = 4409
	CloseTooManyInitRequests      = 4429
)

// CloseError is a wire-visible close signal: a protocol close code plus
// the reason text sent in the close frame.
type CloseError struct {
	Code   int
	Reason string
}

func (e CloseError) Error() string {
	return fmt.Sprintf("websocket close %d: %s", e.Code, e.Reason)
}

// Forbidden is the single generic failure signal for any initialization
// failure other than duplicate-init. It deliberately carries no detail
// about the underlying cause.
func Forbidden() CloseError {
	return CloseError{Code: CloseForbidden, Reason: "Forbidden"}
}

// TooManyInitRequests signals a connection_init received on an already
// initialized connection.
func TooManyInitRequests() CloseError {
	return CloseError{Code: CloseTooManyInitRequests, Reason: "Too many initialisation requests"}
}

// Unauthorized signals a non-init operation attempted before the
// connection was initialized.
func Unauthorized() CloseError {
	return CloseError{Code: CloseUnauthorized, Reason: "Unauthorized"}
}

// BadRequest signals an unparseable or protocol-violating frame.
func BadRequest(reason string) CloseError {
	return CloseError{Code: CloseBadRequest, Reason: reason}
}

// InitTimeout signals that no connection_init arrived within the
// server's initialization window.
func InitTimeout() CloseError {
	return CloseError{Code: CloseInitTimeout, Reason: "Connection initialisation timeout"}
}

// SubprotocolNotAcceptable signals an upgrade that did not offer the
// graphql-transport-ws subprotocol.
func SubprotocolNotAcceptable() CloseError {
	return CloseError{Code: CloseSubprotocolNotAcceptable, Reason: "Subprotocol not acceptable"}
}

// SubscriberAlreadyExists signals a subscribe reusing an id that is
// still live on the connection.
func SubscriberAlreadyExists(id string) CloseError {
	return CloseError{Code: CloseSubscriberAlreadyExists, Reason: fmt.Sprintf("Subscriber for %s already exists", id)}
}
