// Package server implements the HTTP and WebSocket server of the HTMX
// playground.
//
// The HTTP side is a static route table of HTMX demo endpoints backed by an
// in-memory todo store and the fragment renderer. The WebSocket side is a
// chat Hub: every open connection is registered, each inbound message is
// stamped with a process-wide sequence id and broadcast to all clients, and a
// heartbeat task periodically reports the connected client count.
//
// The implementation is organized into specialized files for configuration,
// origin policy, hub management, clients, routing, and HTTP handlers.
package server
