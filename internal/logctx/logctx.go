// Package logctx decorates slog records with connection-scoped
// attributes carried in the context, so every log line emitted while
// handling a connection identifies it without threading loggers around.
package logctx

import (
	"context"
	"log/slog"
)

type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if cd, ok := ctx.Value(connDataKey{}).(*ConnData); ok {
		r.AddAttrs(slog.Group("conn",
			slog.String("id", cd.ConnectionID),
			slog.String("remote_addr", cd.RemoteAddr),
		))
	}

	if md, ok := ctx.Value(msgDataKey{}).(*MessageData); ok {
		r.AddAttrs(slog.Group("msg",
			slog.String("type", md.Type),
			slog.String("id", md.ID),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type connDataKey struct{}

type ConnData struct {
	ConnectionID string
	RemoteAddr   string
}

func WithConn(ctx context.Context, cd *ConnData) context.Context {
	return context.WithValue(ctx, connDataKey{}, cd)
}

type msgDataKey struct{}

type MessageData struct {
	Type string
	ID   string
}

func WithMessage(ctx context.Context, md *MessageData) context.Context {
	return context.WithValue(ctx, msgDataKey{}, md)
}
