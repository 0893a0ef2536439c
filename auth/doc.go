// Package auth defines the authentication surface of the server: the
// Identity produced by a successful authentication, the Authenticator
// contract implemented by the configured auth modes, and the
// mode-selecting authenticator that dispatches on a request header.
//
// Authenticators receive the connection's effective headers (payload
// headers merged under the handshake headers) and nothing else; any
// credentials they need must travel in those headers.
package auth
