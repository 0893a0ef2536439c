// Package conninit implements the trust-establishing transition of a
// connection: validating the connection_init payload, merging client and
// handshake headers under a fixed precedence, authenticating and
// authorizing the result, and guarding the per-connection initialization
// state so at most one transition ever succeeds.
package conninit
