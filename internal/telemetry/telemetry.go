// Package telemetry provides the OpenTelemetry span helpers used to
// bracket protocol operations. Spans are instrumentation only: the
// wrappers never alter return values or error propagation.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/gqlws/server-go"

var (
	tracer     trace.Tracer
	tracerOnce sync.Once
)

// Tracer returns the package tracer, resolving it from the global
// provider on first use. Without a configured provider this is a no-op
// tracer.
func Tracer() trace.Tracer {
	tracerOnce.Do(func() {
		tracer = otel.Tracer(scopeName)
	})
	return tracer
}

// StartSpan starts a span with the given name and options.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// WithSpan runs fn inside a span with the given name. The error returned
// by fn is recorded on the span and passed through unchanged.
func WithSpan(ctx context.Context, name string, fn func(ctx context.Context) error, opts ...trace.SpanStartOption) error {
	ctx, span := StartSpan(ctx, name, opts...)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// Attribute keys for connection and initialization spans.
const (
	AttrConnectionID  = "connection.id"
	AttrClientAddr    = "client.address"
	AttrMessageType   = "message.type"
	AttrInitErrorKind = "init.error_kind"
	AttrSessionRole   = "session.role"
)

// ConnectionID returns an attribute for the server-assigned connection id.
func ConnectionID(id string) attribute.KeyValue {
	return attribute.String(AttrConnectionID, id)
}

// ClientAddr returns an attribute for the remote client address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// MessageType returns an attribute for the protocol message kind.
func MessageType(t string) attribute.KeyValue {
	return attribute.String(AttrMessageType, t)
}

// InitErrorKind returns an attribute for the internal initialization
// error kind. Spans are the only place the kind is visible; the wire
// signal never carries it.
func InitErrorKind(kind string) attribute.KeyValue {
	return attribute.String(AttrInitErrorKind, kind)
}

// SessionRole returns an attribute for the authorized session role.
func SessionRole(role string) attribute.KeyValue {
	return attribute.String(AttrSessionRole, role)
}
