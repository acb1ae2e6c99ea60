package ircd

import (
	"github.com/horgh/chatd/internal/reply"
	"github.com/horgh/chatd/internal/wire"
)

// Dispatcher parses one line from a Session and routes it to a verb
// handler. It owns per-verb registration-state checks and the error-reply
// policy; it has no socket-framing concerns of its own.
type Dispatcher struct {
	Registry  *Registry
	Host      string
	BotSecret string
}

// NewDispatcher builds a Dispatcher bound to reg, replying as host and
// checking BOT_AUTH against botSecret.
func NewDispatcher(reg *Registry, host, botSecret string) *Dispatcher {
	return &Dispatcher{Registry: reg, Host: host, BotSecret: botSecret}
}

// Dispatch parses line and invokes the matching verb handler. It returns
// true if the session should be torn down as a result (QUIT).
func (d *Dispatcher) Dispatch(s *Session, line string) (shouldClose bool) {
	msg, err := wire.ParseLine(line)
	if err != nil {
		// Blank or malformed lines are ignored rather than disconnecting the
		// session. They do not Touch the session, but the connection handler
		// still refreshes the reaper's deadline for every line it reads.
		return false
	}
	if len(msg.Command) == 0 {
		return false
	}

	s.Touch()

	switch msg.Command {
	case "NICK":
		d.handleNick(s, msg.Params)
	case "USER":
		d.handleUser(s, msg.Params)
	case "JOIN":
		d.requireRegistered(s, msg.Params, d.handleJoin)
	case "PART":
		d.requireRegistered(s, msg.Params, d.handlePart)
	case "PRIVMSG":
		d.requireRegistered(s, msg.Params, d.handlePrivmsg)
	case "TOPIC":
		d.requireRegistered(s, msg.Params, d.handleTopic)
	case "NAMES":
		d.requireRegistered(s, msg.Params, d.handleNames)
	case "KICK":
		d.requireRegistered(s, msg.Params, d.handleKick)
	case "MODE":
		d.requireRegistered(s, msg.Params, d.handleMode)
	case "QUIT":
		d.handleQuit(s)
		return true
	case "BOT_AUTH":
		d.handleBotAuth(s, msg.Params)
	default:
		s.Send(reply.UnknownCommand421(d.Host, nickOrStar(s), msg.Command))
	}

	return false
}

// requireRegistered runs handler only if s has completed registration. An
// unregistered session that sends a room-interaction verb is silently
// ignored: none of the numeric codes in the reply vocabulary describe "not
// registered yet," so there is nothing truthful to reply with. The idle
// reaper disconnects a client stuck in this state once it has sent no line
// for the idle limit.
func (d *Dispatcher) requireRegistered(s *Session, params []string, handler func(*Session, []string)) {
	if !s.Registered() {
		return
	}
	handler(s, params)
}

func nickOrStar(s *Session) string {
	if nick := s.Nick(); len(nick) > 0 {
		return nick
	}
	return "*"
}
