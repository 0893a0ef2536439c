// Package wsserver is the WebSocket transport for the
// graphql-transport-ws subprotocol. It upgrades HTTP requests, captures
// the handshake headers, and drives each connection through the
// initialization handshake before handing subscribe operations to the
// configured executor.
package wsserver
