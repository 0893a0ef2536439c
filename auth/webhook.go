package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gqlws/server-go/internal/webhookauth"
)

const roleVariable = "x-hasura-role"

// WebhookConfig describes the webhook auth mode: an endpoint that
// receives the connection's effective headers and answers with the
// caller's session variables.
type WebhookConfig struct {
	// URL of the webhook endpoint.
	URL string
	// Method is http.MethodGet or http.MethodPost (default).
	Method string
	// Client performs the webhook call; defaults to http.DefaultClient.
	Client *http.Client
	// RequestVariables lists session-variable names the client may supply
	// in addition to the webhook's response. See RoleGrant.
	RequestVariables []string
}

// NewWebhook returns an Authenticator for the webhook auth mode. The
// webhook's 200 response must be a JSON object of x-hasura-* strings
// including x-hasura-role; a 401/403 response rejects the caller.
func NewWebhook(cfg WebhookConfig) (Authenticator, error) {
	w, err := webhookauth.New(webhookauth.Config{
		URL:    cfg.URL,
		Method: cfg.Method,
		Client: cfg.Client,
	})
	if err != nil {
		return nil, err
	}
	return &webhookAdapter{w: w, requestVariables: append([]string(nil), cfg.RequestVariables...)}, nil
}

type webhookAdapter struct {
	w                *webhookauth.Webhook
	requestVariables []string
}

func (ad *webhookAdapter) Authenticate(ctx context.Context, headers http.Header) (*Identity, error) {
	vars, err := ad.w.Decide(ctx, headers)
	if err != nil {
		if errors.Is(err, webhookauth.ErrUnauthorized) {
			return nil, errors.Join(ErrUnauthorized, err)
		}
		return nil, err
	}

	role, ok := vars[roleVariable]
	if !ok || role == "" {
		return nil, fmt.Errorf("%w: webhook response missing %s", ErrUnauthorized, roleVariable)
	}
	granted := make(map[string]string, len(vars)-1)
	for name, value := range vars {
		if name == roleVariable {
			continue
		}
		granted[name] = value
	}
	return &Identity{
		DefaultRole: role,
		AllowedRoles: map[string]RoleGrant{
			role: {Variables: granted, RequestVariables: ad.requestVariables},
		},
	}, nil
}
