// Package webhookauth implements the webhook auth mode: the connection's
// effective headers are forwarded to a configured endpoint, which decides
// the caller's session variables. The public auth package adapts this
// into an Authenticator.
package webhookauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates the webhook rejected the request (401/403).
var ErrUnauthorized = errors.New("webhookauth: unauthorized")

// responseLimit bounds how much of the webhook response body is read.
const responseLimit = 1 << 20

// Config describes the webhook endpoint.
type Config struct {
	// URL of the webhook endpoint.
	URL string
	// Method is http.MethodGet or http.MethodPost (default). GET forwards
	// the effective headers as request headers; POST sends them as a JSON
	// body of shape {"headers":{...}}.
	Method string
	// Client performs the call. Defaults to http.DefaultClient; supply
	// one to control TLS, proxies or timeouts.
	Client *http.Client
}

// Webhook calls the configured endpoint to decide authentication.
type Webhook struct {
	cfg Config
}

// New validates cfg and builds a Webhook.
func New(cfg Config) (*Webhook, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook url is required")
	}
	switch cfg.Method {
	case "":
		cfg.Method = http.MethodPost
	case http.MethodGet, http.MethodPost:
	default:
		return nil, fmt.Errorf("unsupported webhook method %q", cfg.Method)
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &Webhook{cfg: cfg}, nil
}

// Decide calls the webhook with the effective headers. A 200 response
// must carry a JSON object of session variables (x-hasura-* strings); a
// 401 or 403 maps to ErrUnauthorized. Anything else is an operational
// error.
func (w *Webhook) Decide(ctx context.Context, headers http.Header) (map[string]string, error) {
	req, err := w.buildRequest(ctx, headers)
	if err != nil {
		return nil, err
	}
	resp, err := w.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: webhook returned %d", ErrUnauthorized, resp.StatusCode)
	default:
		return nil, fmt.Errorf("webhook returned unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseLimit))
	if err != nil {
		return nil, fmt.Errorf("webhook response: %w", err)
	}
	var vars map[string]string
	if err := json.Unmarshal(body, &vars); err != nil {
		return nil, fmt.Errorf("webhook response is not an object of strings: %w", err)
	}

	lowered := make(map[string]string, len(vars))
	for name, value := range vars {
		lowered[strings.ToLower(name)] = value
	}
	return lowered, nil
}

func (w *Webhook) buildRequest(ctx context.Context, headers http.Header) (*http.Request, error) {
	if w.cfg.Method == http.MethodGet {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("webhook request: %w", err)
		}
		req.Header = headers.Clone()
		return req, nil
	}

	payload := make(map[string]string, len(headers))
	for name := range headers {
		payload[name] = headers.Get(name)
	}
	body, err := json.Marshal(map[string]any{"headers": payload})
	if err != nil {
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
