package auth

import (
	"context"
	"fmt"
	"net/http"
)

// DefaultModeHeader is the header consulted to pick an alternative auth
// mode when none is configured explicitly.
const DefaultModeHeader = "X-Hasura-Auth-Mode"

// ModeSelector is an Authenticator that dispatches to one of several
// configured modes based on a request header. The header is read from the
// effective headers, so a handshake-pinned mode cannot be overridden by
// the connection_init payload.
type ModeSelector struct {
	header      string
	defaultMode Authenticator
	alternative map[string]Authenticator
}

// ModeSelectorOption configures a ModeSelector.
type ModeSelectorOption func(*ModeSelector)

// WithModeHeader overrides the header consulted for mode selection.
func WithModeHeader(name string) ModeSelectorOption {
	return func(s *ModeSelector) { s.header = name }
}

// WithAlternativeMode registers an alternative mode reachable by sending
// the given value in the mode header.
func WithAlternativeMode(name string, a Authenticator) ModeSelectorOption {
	return func(s *ModeSelector) { s.alternative[name] = a }
}

// NewModeSelector builds a selector that uses defaultMode when the mode
// header is absent or empty.
func NewModeSelector(defaultMode Authenticator, opts ...ModeSelectorOption) (*ModeSelector, error) {
	if defaultMode == nil {
		return nil, fmt.Errorf("default auth mode is required")
	}
	s := &ModeSelector{
		header:      DefaultModeHeader,
		defaultMode: defaultMode,
		alternative: make(map[string]Authenticator),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ModeHeader returns the header name consulted for mode selection.
func (s *ModeSelector) ModeHeader() string { return s.header }

// Authenticate implements Authenticator.
func (s *ModeSelector) Authenticate(ctx context.Context, headers http.Header) (*Identity, error) {
	mode := headers.Get(s.header)
	if mode == "" {
		return s.defaultMode.Authenticate(ctx, headers)
	}
	a, ok := s.alternative[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", ErrUnauthorized, ErrUnknownAuthMode, mode)
	}
	return a.Authenticate(ctx, headers)
}
