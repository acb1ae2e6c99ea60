package ircd

import (
	"io"
	"log"
	"net"
	"sync"
	"time"
)

// State is a Session's place in the registration state machine:
// NEW -> NICK_SET -> REGISTERED -> CLOSING.
type State int

const (
	StateNew State = iota
	StateNickSet
	StateRegistered
	StateClosing
)

// Session is a per-connection record: the writer handle, current nickname,
// user string, registration state, and last-activity timestamp. All fields
// that change after creation are guarded by mu, including the socket
// writes themselves, so many goroutines (command handlers, room broadcasts,
// the idle reaper) can all address the same Session concurrently without a
// dedicated writer goroutine.
type Session struct {
	ID SessionID

	conn       net.Conn
	RemoteAddr string

	mu               sync.Mutex
	nick             string
	user             string
	realName         string
	state            State
	lastActivity     time.Time
	closing          bool
	closeOnce        sync.Once
	loggedSendFailure bool

	// botAuthenticated marks this session as the server's one exempted bot.
	// Set only by the BOT_AUTH command handler.
	botAuthenticated bool
}

// NewSession wraps an accepted connection in a Session.
func NewSession(conn net.Conn) *Session {
	return &Session{
		ID:           NewSessionID(),
		conn:         conn,
		RemoteAddr:   conn.RemoteAddr().String(),
		state:        StateNew,
		lastActivity: time.Now(),
	}
}

// Nick returns the session's current nickname, or "" if none has been set.
func (s *Session) Nick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nick
}

// SetNick sets the session's nickname.
func (s *Session) SetNick(nick string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nick = nick
	if s.state == StateNew {
		s.state = StateNickSet
	}
}

// User returns the session's USER string, or "" if not yet registered.
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// RealName returns the session's declared real name.
func (s *Session) RealName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.realName
}

// CompleteRegistration records the USER string/real name and promotes the
// session to Registered. Invariant 3 (registered implies nick and user are
// both set) is established here: callers must have already set a nick.
func (s *Session) CompleteRegistration(user, realName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.realName = realName
	s.state = StateRegistered
}

// State returns the session's current registration state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Registered reports whether NICK and USER have both completed.
func (s *Session) Registered() bool {
	return s.State() == StateRegistered
}

// IsBot reports whether this session authenticated as the bot via BOT_AUTH.
func (s *Session) IsBot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.botAuthenticated
}

// MarkBot flags this session as the authenticated bot.
func (s *Session) MarkBot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.botAuthenticated = true
}

// Touch updates the last-activity timestamp to now.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// IdleSince returns how long it has been since the session last did
// anything.
func (s *Session) IdleSince() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActivity)
}

// Send writes one already-CRLF-terminated line to the session's socket.
// It is safe for many concurrent callers: writes are serialized by mu, the
// same mutex that guards the session's other fields.
//
// A write failure is logged at most once and flips the session into
// Closing; it is never propagated to the caller, so a failing Session never
// interrupts a Room broadcast's fan-out loop.
func (s *Session) Send(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return
	}

	if _, err := io.WriteString(s.conn, line); err != nil {
		if !s.loggedSendFailure {
			log.Printf("session %s: write error: %s", s.ID, err)
			s.loggedSendFailure = true
		}
		s.state = StateClosing
		s.closing = true
	}
}

// Closing reports whether the session has been marked for teardown, whether
// due to a write failure, idle reap, or explicit close.
func (s *Session) Closing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Close shuts down the underlying connection. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closing = true
		s.state = StateClosing
		s.mu.Unlock()

		if err := s.conn.Close(); err != nil {
			log.Printf("session %s: error closing connection: %s", s.ID, err)
		}
	})
}

func (s *Session) String() string {
	nick := s.Nick()
	if len(nick) == 0 {
		nick = "*"
	}
	return nick + " " + s.RemoteAddr
}
