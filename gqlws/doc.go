// Package gqlws defines the wire types of the graphql-transport-ws
// subprotocol: the client and server message envelopes, the
// connection_init payload, and the close signals the server emits
// around connection initialization.
package gqlws
