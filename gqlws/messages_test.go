package gqlws

import (
	"encoding/json"
	"testing"
)

func TestInitPayload(t *testing.T) {
	t.Run("absent payload is nil, not an error", func(t *testing.T) {
		msg := &ClientMessage{Type: MessageConnectionInit}
		p, err := msg.InitPayload()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p != nil {
			t.Fatalf("expected nil payload, got %v", p)
		}
	})

	t.Run("headers decode", func(t *testing.T) {
		msg := &ClientMessage{
			Type:    MessageConnectionInit,
			Payload: json.RawMessage(`{"headers":{"x-hasura-role":"user"}}`),
		}
		p, err := msg.InitPayload()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Headers["x-hasura-role"] != "user" {
			t.Fatalf("headers = %v", p.Headers)
		}
	})

	t.Run("malformed payload errors", func(t *testing.T) {
		msg := &ClientMessage{Type: MessageConnectionInit, Payload: json.RawMessage(`[1,2]`)}
		if _, err := msg.InitPayload(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestErrorMessage(t *testing.T) {
	msg := ErrorMessage("op-1", "boom")
	if msg.Type != MessageError || msg.ID != "op-1" {
		t.Fatalf("got %q id=%q", msg.Type, msg.ID)
	}
	var errs []struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(msg.Payload, &errs); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(errs) != 1 || errs[0].Message != "boom" {
		t.Fatalf("errors = %v", errs)
	}
}

func TestCloseSignals(t *testing.T) {
	if got := Forbidden(); got.Code != CloseForbidden || got.Reason != "Forbidden" {
		t.Fatalf("Forbidden() = %v", got)
	}
	if got := TooManyInitRequests(); got.Code != CloseTooManyInitRequests {
		t.Fatalf("TooManyInitRequests() = %v", got)
	}
}
