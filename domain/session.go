// Package domain contains core concepts of the chat system.
// This file defines the Session capability and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"github.com/google/uuid"
)

// QuitSentinel is the reserved line value recognized by a session's inbound
// loop as a graceful-disconnect signal. Comparison is case-insensitive.
const QuitSentinel = "quit"

// Session is one connected participant and its delivery capability.
// The registry and the hub are written once against this interface;
// socket-backed and virtual (web) participants are two implementations.
type Session interface {
	// ID is the opaque handle a session is registered under.
	ID() uuid.UUID
	// Name is the display name supplied by the join handshake.
	Name() string
	// Send queues one line for delivery. It must not block on a slow
	// transport; a session that cannot accept the line returns an error.
	Send(text string) error
	// Alive reports whether the session can still receive lines.
	// It transitions true to false exactly once.
	Alive() bool
	// Close releases the underlying transport. Safe to call twice.
	Close() error
}
