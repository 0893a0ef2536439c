package conninit

import (
	"context"
	"net/http"

	"golang.org/x/net/http/httpguts"

	"github.com/gqlws/server-go/auth"
	"github.com/gqlws/server-go/gqlws"
	"github.com/gqlws/server-go/internal/telemetry"
	"github.com/gqlws/server-go/sessions"
)

// Initialize runs one initialization attempt against the state the
// caller currently holds: validate the payload, merge headers, then
// authenticate and authorize. On success it returns the session and the
// effective headers that become the connection's Initialized state; it
// never mutates the state itself. The only suspension points are the
// authenticate and authorize calls.
func Initialize(
	ctx context.Context,
	state InitState,
	handshakeHeaders http.Header,
	authn auth.Authenticator,
	authz sessions.Authorizer,
	payload *gqlws.InitPayload,
) (session *sessions.Session, effective http.Header, initErr *Error) {
	err := telemetry.WithSpan(ctx, "initialize", func(ctx context.Context) error {
		switch state.(type) {
		case Initialized:
			// Rejected before any parsing or collaborator call: a replayed
			// init must stay O(1) and side-effect free.
			return &Error{Kind: KindAlreadyInitialized}
		case NotInitialized:
		}

		var payloadHeaders http.Header
		if payload != nil {
			var perr *Error
			payloadHeaders, perr = ParseHeaders(payload.Headers)
			if perr != nil {
				return perr
			}
		}

		effective = MergeHeaders(payloadHeaders, handshakeHeaders)

		identity, aerr := authn.Authenticate(ctx, effective)
		if aerr != nil {
			return &Error{Kind: KindAuthentication, Err: aerr}
		}

		var serr error
		session, serr = authz.Authorize(ctx, identity, effective)
		if serr != nil {
			return &Error{Kind: KindAuthorization, Err: serr}
		}
		return nil
	})
	if err != nil {
		// Every failure path above returns *Error.
		return nil, nil, err.(*Error)
	}
	return session, effective, nil
}

// ParseHeaders validates and converts the payload's header mapping. Any
// syntactically invalid name or value fails the whole operation before a
// merge or collaborator call can see it.
func ParseHeaders(m map[string]string) (http.Header, *Error) {
	headers := make(http.Header, len(m))
	for name, value := range m {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, &Error{Kind: KindInvalidHeaderName, Header: name}
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, &Error{Kind: KindInvalidHeaderValue, Header: name}
		}
		headers.Set(name, value)
	}
	return headers, nil
}

// MergeHeaders combines payload and handshake headers into the effective
// set. The connection_init message arrives while the connection is still
// untrusted, so a client could forge sensitive headers injected by an
// upstream gateway during the handshake; on any key collision the
// handshake value wins.
func MergeHeaders(payloadHeaders, handshakeHeaders http.Header) http.Header {
	merged := make(http.Header, len(payloadHeaders)+len(handshakeHeaders))
	for name, values := range payloadHeaders {
		merged[name] = append([]string(nil), values...)
	}
	for name, values := range handshakeHeaders {
		merged[name] = append([]string(nil), values...)
	}
	return merged
}
