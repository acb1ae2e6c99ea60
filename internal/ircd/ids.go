package ircd

import "github.com/google/uuid"

// SessionID opaquely identifies one connection for the lifetime of the
// process. Keying state by network address would conflate identity with
// address (a client reconnecting from the same source port, or behind a
// NAT shared with another client, must not collide); a generated SessionID
// avoids that entirely.
type SessionID string

// NewSessionID generates a fresh, process-unique session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}
