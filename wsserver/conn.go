package wsserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"

	"github.com/gqlws/server-go/gqlws"
	"github.com/gqlws/server-go/internal/conninit"
	"github.com/gqlws/server-go/internal/logctx"
	"github.com/gqlws/server-go/internal/telemetry"
)

const closeWriteTimeout = 5 * time.Second

// connection is the per-connection server state. Connections share
// nothing with each other; within one connection the init state cell is
// the only cross-goroutine mutable state besides the write mutex.
type connection struct {
	id string
	h  *Handler
	ws *websocket.Conn

	// handshakeHeaders were captured from the upgrade request and are
	// outside client control from that point on.
	handshakeHeaders http.Header
	remoteAddr       string

	state *conninit.StateCell

	writeMu   sync.Mutex
	closeOnce sync.Once

	initTimer *time.Timer

	subMu sync.Mutex
	subs  map[string]context.CancelFunc
}

func newConnection(h *Handler, ws *websocket.Conn, r *http.Request) *connection {
	return &connection{
		id:               uuid.NewString(),
		h:                h,
		ws:               ws,
		handshakeHeaders: r.Header.Clone(),
		remoteAddr:       r.RemoteAddr,
		state:            conninit.NewStateCell(),
		subs:             make(map[string]context.CancelFunc),
	}
}

// run drives the read loop until the peer disconnects or a protocol
// violation closes the connection.
func (c *connection) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = logctx.WithConn(ctx, &logctx.ConnData{ConnectionID: c.id, RemoteAddr: c.remoteAddr})

	c.h.metrics.ConnectionOpened()
	defer c.h.metrics.ConnectionClosed()
	defer c.ws.Close()

	c.h.log.InfoContext(ctx, "connection opened")
	defer c.h.log.InfoContext(ctx, "connection closed")

	if c.h.cfg.ReadLimit > 0 {
		c.ws.SetReadLimit(c.h.cfg.ReadLimit)
	}
	if d := c.h.cfg.ConnectionInitTimeout; d > 0 {
		c.initTimer = time.AfterFunc(d, func() {
			if _, ok := c.state.Snapshot().(conninit.Initialized); !ok {
				c.closeWith(gqlws.InitTimeout())
			}
		})
		defer c.initTimer.Stop()
	}

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var msg gqlws.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.closeWith(gqlws.BadRequest("invalid message"))
			return
		}
		c.dispatch(ctx, &msg)
	}
}

// dispatch routes one inbound message. Initialization and subscribe
// handling run as their own goroutines, so a slow collaborator call
// never stalls the read loop; the state cell serializes what must be
// serialized.
func (c *connection) dispatch(ctx context.Context, msg *gqlws.ClientMessage) {
	ctx = logctx.WithMessage(ctx, &logctx.MessageData{Type: string(msg.Type), ID: msg.ID})

	switch msg.Type {
	case gqlws.MessageConnectionInit:
		payload, err := msg.InitPayload()
		if err != nil {
			c.closeWith(gqlws.BadRequest("invalid connection_init payload"))
			return
		}
		go c.handleConnectionInit(ctx, payload)

	case gqlws.MessagePing:
		_ = c.send(gqlws.Pong(msg.Payload))

	case gqlws.MessagePong:
		// Keepalive reply; nothing to do.

	case gqlws.MessageSubscribe:
		switch st := c.state.Snapshot().(type) {
		case conninit.NotInitialized:
			c.closeWith(gqlws.Unauthorized())
		case conninit.Initialized:
			c.handleSubscribe(ctx, msg, st)
		}

	case gqlws.MessageComplete:
		c.cancelSubscription(msg.ID)

	default:
		c.closeWith(gqlws.BadRequest("unknown message type"))
	}
}

// handleConnectionInit consumes one connection_init message. It holds
// the state cell's guard for the whole attempt, including the
// network-bound authenticate/authorize calls, so concurrent attempts on
// this connection serialize here.
func (c *connection) handleConnectionInit(ctx context.Context, payload *gqlws.InitPayload) {
	_ = telemetry.WithSpan(ctx, "handle_connection_init", func(ctx context.Context) error {
		guard := c.state.Acquire()
		defer guard.Release()

		session, headers, initErr := conninit.Initialize(ctx, guard.State(), c.handshakeHeaders, c.h.authn, c.h.authz, payload)
		if initErr != nil {
			span := trace.SpanFromContext(ctx)
			span.SetAttributes(telemetry.InitErrorKind(initErr.Kind.String()))
			// Cause detail stays in logs and traces; the wire sees only
			// the classified signal.
			c.h.log.WarnContext(ctx, "connection init rejected",
				slog.String("kind", initErr.Kind.String()),
				slog.String("err", initErr.Error()),
			)
			c.h.metrics.InitFailed(initErr.Kind.String())
			c.closeWith(conninit.Classify(initErr))
			return initErr
		}

		guard.SetInitialized(session, headers)
		if c.initTimer != nil {
			c.initTimer.Stop()
		}
		c.h.metrics.InitSucceeded()
		c.h.log.InfoContext(ctx, "connection initialized", slog.String("role", session.Role))
		trace.SpanFromContext(ctx).SetAttributes(telemetry.SessionRole(session.Role))

		// The ack goes out before the guard is released: nothing can
		// observe Initialized ahead of the acknowledgment.
		return c.send(gqlws.ConnectionAck())
	}, trace.WithAttributes(telemetry.ConnectionID(c.id), telemetry.ClientAddr(c.remoteAddr)))
}

func (c *connection) handleSubscribe(ctx context.Context, msg *gqlws.ClientMessage, st conninit.Initialized) {
	if msg.ID == "" {
		c.closeWith(gqlws.BadRequest("subscribe requires an id"))
		return
	}
	if c.h.executor == nil {
		_ = c.send(gqlws.ErrorMessage(msg.ID, "subscriptions are not supported by this server"))
		return
	}
	payload, err := msg.SubscribePayload()
	if err != nil {
		c.closeWith(gqlws.BadRequest("invalid subscribe payload"))
		return
	}

	opCtx, cancel := context.WithCancel(ctx)
	c.subMu.Lock()
	if _, exists := c.subs[msg.ID]; exists {
		c.subMu.Unlock()
		cancel()
		c.closeWith(gqlws.SubscriberAlreadyExists(msg.ID))
		return
	}
	c.subs[msg.ID] = cancel
	c.subMu.Unlock()

	go func() {
		defer c.cancelSubscription(msg.ID)
		emit := func(result json.RawMessage) error {
			return c.send(gqlws.Next(msg.ID, result))
		}
		err := telemetry.WithSpan(opCtx, "handle_subscribe", func(ctx context.Context) error {
			return c.h.executor.Execute(ctx, st.Session, st.Headers, payload, emit)
		}, trace.WithAttributes(telemetry.ConnectionID(c.id)))
		if err != nil {
			if opCtx.Err() != nil {
				return
			}
			c.h.log.WarnContext(opCtx, "subscribe failed", slog.String("err", err.Error()))
			_ = c.send(gqlws.ErrorMessage(msg.ID, err.Error()))
			return
		}
		_ = c.send(gqlws.Complete(msg.ID))
	}()
}

func (c *connection) cancelSubscription(id string) {
	c.subMu.Lock()
	cancel, ok := c.subs[id]
	if ok {
		delete(c.subs, id)
	}
	c.subMu.Unlock()
	if ok {
		cancel()
	}
}

// send marshals and writes one protocol message. gorilla permits a
// single writer at a time, so writes serialize on writeMu.
func (c *connection) send(msg gqlws.ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// closeWith emits a close frame carrying the given signal and tears the
// connection down. Only the first close wins.
func (c *connection) closeWith(ce gqlws.CloseError) {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		frame := websocket.FormatCloseMessage(ce.Code, ce.Reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, frame, time.Now().Add(closeWriteTimeout))
		_ = c.ws.Close()
	})
}
