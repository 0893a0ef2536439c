package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gqlws/server-go/internal/jwtauth"
)

// JWTOption configures optional aspects of the JWT auth mode (algorithms,
// leeway, claims namespace, token header). Issuer and audience are
// required formal arguments to the constructors.
type JWTOption func(*jwtauth.Config)

// WithAllowedAlgs restricts allowed JWS algorithms. "none" is never
// allowed. Defaults to ["RS256"].
func WithAllowedAlgs(algs ...string) JWTOption {
	return func(c *jwtauth.Config) {
		c.AllowedAlgs = append([]string(nil), algs...)
	}
}

// WithLeeway sets clock skew tolerance for time-based claims.
func WithLeeway(d time.Duration) JWTOption {
	return func(c *jwtauth.Config) { c.Leeway = d }
}

// WithClaimsNamespace overrides the claim holding the x-hasura-* role
// map. Defaults to "claims.jwt.hasura.io".
func WithClaimsNamespace(ns string) JWTOption {
	return func(c *jwtauth.Config) { c.ClaimsNamespace = ns }
}

// WithTokenHeader overrides the effective header the bearer token is
// read from. Defaults to "Authorization".
func WithTokenHeader(name string) JWTOption {
	return func(c *jwtauth.Config) { c.TokenHeader = name }
}

// NewJWT returns an Authenticator for the JWT auth mode, validating
// bearer tokens against a statically configured JWKS URL.
func NewJWT(ctx context.Context, issuer, jwksURL, audience string, opts ...JWTOption) (Authenticator, error) {
	cfg := jwtauth.DefaultConfig()
	cfg.Issuer = issuer
	cfg.ExpectedAudiences = []string{audience}
	for _, opt := range opts {
		opt(cfg)
	}
	internal, err := jwtauth.NewStatic(ctx, cfg, jwksURL)
	if err != nil {
		return nil, err
	}
	return &jwtAdapter{a: internal, tokenHeader: cfg.TokenHeader}, nil
}

// NewJWTFromDiscovery returns an Authenticator for the JWT auth mode,
// locating the issuer's JWKS via OIDC discovery.
func NewJWTFromDiscovery(ctx context.Context, issuer, audience string, opts ...JWTOption) (Authenticator, error) {
	cfg := jwtauth.DefaultConfig()
	cfg.Issuer = issuer
	cfg.ExpectedAudiences = []string{audience}
	for _, opt := range opts {
		opt(cfg)
	}
	internal, err := jwtauth.NewFromDiscovery(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &jwtAdapter{a: internal, tokenHeader: cfg.TokenHeader}, nil
}

// jwtAdapter wraps the internal validator to satisfy the public interface.
type jwtAdapter struct {
	a           jwtauth.Authenticator
	tokenHeader string
}

func (ad *jwtAdapter) Authenticate(ctx context.Context, headers http.Header) (*Identity, error) {
	tok, err := jwtauth.TokenFromHeaders(headers, ad.tokenHeader)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}
	rc, err := ad.a.CheckAuthentication(ctx, tok)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}

	allowed := make(map[string]RoleGrant, len(rc.AllowedRoles))
	for _, role := range rc.AllowedRoles {
		// Variables come from the token alone; JWT mode admits no
		// client-supplied session variables.
		allowed[role] = RoleGrant{Variables: rc.Variables}
	}
	return &Identity{DefaultRole: rc.DefaultRole, AllowedRoles: allowed}, nil
}
