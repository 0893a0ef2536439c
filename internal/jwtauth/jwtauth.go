// Package jwtauth implements the JWT auth mode: bearer tokens validated
// against a JWKS, with role information read from a configurable claims
// namespace. The public auth package adapts this into an Authenticator.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultClaimsNamespace is the claim holding the x-hasura-* map.
const DefaultClaimsNamespace = "claims.jwt.hasura.io"

// DefaultTokenHeader is the effective header carrying the bearer token.
const DefaultTokenHeader = "Authorization"

// ErrUnauthorized indicates the token failed validation (signature,
// issuer, audience, time claims) or carried unusable role claims.
var ErrUnauthorized = errors.New("jwtauth: unauthorized")

// Config controls validation behavior for bearer tokens.
type Config struct {
	Issuer            string
	ExpectedAudiences []string
	AllowedAlgs       []string
	Leeway            time.Duration
	// ClaimsNamespace is the top-level claim containing the role map.
	ClaimsNamespace string
	// TokenHeader is the effective header the bearer token travels in.
	TokenHeader string
}

// DefaultConfig returns a Config with safe algorithm, leeway, namespace
// and header defaults.
func DefaultConfig() *Config {
	return &Config{
		AllowedAlgs:     []string{"RS256"},
		Leeway:          60 * time.Second,
		ClaimsNamespace: DefaultClaimsNamespace,
		TokenHeader:     DefaultTokenHeader,
	}
}

func (c *Config) fillDefaults() {
	if len(c.AllowedAlgs) == 0 {
		c.AllowedAlgs = []string{"RS256"}
	}
	if c.Leeway == 0 {
		c.Leeway = 60 * time.Second
	}
	if c.ClaimsNamespace == "" {
		c.ClaimsNamespace = DefaultClaimsNamespace
	}
	if c.TokenHeader == "" {
		c.TokenHeader = DefaultTokenHeader
	}
}

// RoleClaims is the role information extracted from a validated token's
// claims namespace.
type RoleClaims struct {
	DefaultRole  string
	AllowedRoles []string
	// Variables carries the remaining x-hasura-* entries of the namespace.
	Variables map[string]string
}

// Authenticator validates bearer tokens and extracts role claims.
type Authenticator interface {
	CheckAuthentication(ctx context.Context, tok string) (*RoleClaims, error)
}

// TokenFromHeaders extracts the bearer token from the named effective
// header, tolerating a missing "Bearer" scheme prefix.
func TokenFromHeaders(headers http.Header, headerName string) (string, error) {
	raw := strings.TrimSpace(headers.Get(headerName))
	if raw == "" {
		return "", fmt.Errorf("%w: missing %s header", ErrUnauthorized, headerName)
	}
	if scheme, tok, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok), nil
	}
	return raw, nil
}

type validatingAuthenticator struct {
	cfg     *Config
	keyfunc jwt.Keyfunc
}

// NewStatic constructs an authenticator that validates tokens against a
// statically configured issuer, audiences and JWKS URL (no discovery).
// JWKS keys auto-refresh in the background.
func NewStatic(ctx context.Context, cfg *Config, jwksURL string) (Authenticator, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if len(cfg.ExpectedAudiences) == 0 {
		return nil, errors.New("at least one expected audience required")
	}
	if jwksURL == "" {
		return nil, errors.New("jwks url required")
	}
	cfg.fillDefaults()

	kf, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("jwks init failed: %w", err)
	}
	return newValidating(cfg, kf.Keyfunc), nil
}

// NewFromDiscovery performs OIDC discovery to obtain the jwks_uri for the
// issuer, then behaves like NewStatic.
func NewFromDiscovery(ctx context.Context, cfg *Config) (Authenticator, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed for %q: %w", cfg.Issuer, err)
	}
	var meta struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("oidc discovery document: %w", err)
	}
	if meta.JWKSURI == "" {
		return nil, fmt.Errorf("oidc discovery for %q yielded no jwks_uri", cfg.Issuer)
	}
	return NewStatic(ctx, cfg, meta.JWKSURI)
}

func newValidating(cfg *Config, kf jwt.Keyfunc) *validatingAuthenticator {
	return &validatingAuthenticator{cfg: cfg, keyfunc: func(t *jwt.Token) (any, error) {
		alg := t.Method.Alg()
		for _, a := range cfg.AllowedAlgs {
			if alg == a {
				return kf(t)
			}
		}
		return nil, fmt.Errorf("disallowed alg: %s", alg)
	}}
}

// CheckAuthentication implements Authenticator.
func (a *validatingAuthenticator) CheckAuthentication(ctx context.Context, tok string) (*RoleClaims, error) {
	if tok == "" {
		return nil, fmt.Errorf("%w: empty token", ErrUnauthorized)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods(a.cfg.AllowedAlgs),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithLeeway(a.cfg.Leeway),
	)
	parsed, err := parser.Parse(tok, a.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: token parse/verify failed: %v", ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims type", ErrUnauthorized)
	}
	if !audIntersects(claims["aud"], a.cfg.ExpectedAudiences) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrUnauthorized)
	}
	rc, err := ExtractRoleClaims(claims, a.cfg.ClaimsNamespace)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func audIntersects(aud any, wants []string) bool {
	wantSet := map[string]struct{}{}
	for _, w := range wants {
		wantSet[w] = struct{}{}
	}
	switch v := aud.(type) {
	case string:
		_, ok := wantSet[v]
		return ok
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				if _, ok2 := wantSet[s]; ok2 {
					return true
				}
			}
		}
	case []string:
		for _, s := range v {
			if _, ok := wantSet[s]; ok {
				return true
			}
		}
	}
	return false
}

var _ Authenticator = (*validatingAuthenticator)(nil)
