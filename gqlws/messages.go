package gqlws

import (
	"encoding/json"
	"fmt"
)

// Subprotocol is the Sec-WebSocket-Protocol value clients must offer
// during the upgrade handshake.
const Subprotocol = "graphql-transport-ws"

// MessageType identifies a protocol message kind.
type MessageType string

const (
	// Client -> server.
	MessageConnectionInit MessageType = "connection_init"
	MessageSubscribe      MessageType = "subscribe"

	// Server -> client.
	MessageConnectionAck MessageType = "connection_ack"
	MessageNext          MessageType = "next"
	MessageError         MessageType = "error"

	// Bidirectional.
	MessagePing     MessageType = "ping"
	MessagePong     MessageType = "pong"
	MessageComplete MessageType = "complete"
)

// ClientMessage is the envelope of every inbound protocol message. The
// payload stays raw until the dispatcher knows which kind it is handling.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InitPayload is the optional body of a connection_init message. Headers
// declared here are untrusted client input until merged with the
// handshake headers.
type InitPayload struct {
	Headers map[string]string `json:"headers,omitempty"`
}

// InitPayload decodes the message body as a connection_init payload.
// A missing body yields (nil, nil): the protocol allows payload-less
// initialization.
func (m *ClientMessage) InitPayload() (*InitPayload, error) {
	if len(m.Payload) == 0 {
		return nil, nil
	}
	var p InitPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode connection_init payload: %w", err)
	}
	return &p, nil
}

// SubscribePayload is the body of a subscribe message. Execution is
// delegated to the embedding server's executor; this package only
// carries the shape across the wire.
type SubscribePayload struct {
	OperationName string          `json:"operationName,omitempty"`
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	Extensions    json.RawMessage `json:"extensions,omitempty"`
}

// SubscribePayload decodes the message body as a subscribe payload.
func (m *ClientMessage) SubscribePayload() (*SubscribePayload, error) {
	var p SubscribePayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode subscribe payload: %w", err)
	}
	return &p, nil
}

// ServerMessage is the envelope of every outbound protocol message.
type ServerMessage struct {
	Type    MessageType     `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConnectionAck builds the acknowledgment sent on the first (and only)
// successful initialization of a connection.
func ConnectionAck() ServerMessage {
	return ServerMessage{Type: MessageConnectionAck}
}

// Pong builds the reply to an inbound ping, echoing its payload.
func Pong(payload json.RawMessage) ServerMessage {
	return ServerMessage{Type: MessagePong, Payload: payload}
}

// Next builds an execution result message for the given operation id.
func Next(id string, payload json.RawMessage) ServerMessage {
	return ServerMessage{Type: MessageNext, ID: id, Payload: payload}
}

// Complete builds the terminal message for the given operation id.
func Complete(id string) ServerMessage {
	return ServerMessage{Type: MessageComplete, ID: id}
}

// ErrorMessage builds an operation error message carrying a list of
// GraphQL error objects.
func ErrorMessage(id string, messages ...string) ServerMessage {
	type gqlError struct {
		Message string `json:"message"`
	}
	errs := make([]gqlError, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, gqlError{Message: m})
	}
	payload, _ := json.Marshal(errs)
	return ServerMessage{Type: MessageError, ID: id, Payload: payload}
}
