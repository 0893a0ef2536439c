package wsserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gqlws/server-go/gqlws"
	"github.com/gqlws/server-go/sessions"
)

// Executor runs subscribe operations on an initialized connection. It
// receives the session and effective headers bound at initialization;
// both are immutable. Emit sends one execution result to the client;
// returning nil completes the operation, returning an error surfaces it
// as an operation error message. Execute must honor ctx cancellation:
// the context ends when the client completes the operation or the
// connection closes.
type Executor interface {
	Execute(ctx context.Context, session *sessions.Session, headers http.Header, payload *gqlws.SubscribePayload, emit func(result json.RawMessage) error) error
}

// The ExecutorFunc type is an adapter to allow the use of ordinary
// functions as executors.
type ExecutorFunc func(ctx context.Context, session *sessions.Session, headers http.Header, payload *gqlws.SubscribePayload, emit func(result json.RawMessage) error) error

func (f ExecutorFunc) Execute(ctx context.Context, session *sessions.Session, headers http.Header, payload *gqlws.SubscribePayload, emit func(result json.RawMessage) error) error {
	return f(ctx, session, headers, payload, emit)
}
