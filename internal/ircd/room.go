package ircd

import (
	"sort"
	"sync"

	"github.com/horgh/chatd/internal/reply"
)

// Room is a named fan-out group of Sessions, with topic, ban-list, and
// mute-list state, all guarded by the Room's own mutex. Lock order across
// the server is always Registry -> Room -> Session, and no handler ever
// holds two Room locks at once.
type Room struct {
	Name string

	mu      sync.Mutex
	members map[SessionID]*Session
	topic   string
	banned  map[string]struct{}
	muted   map[string]struct{}
}

// NewRoom creates an empty Room.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[SessionID]*Session),
		banned:  make(map[string]struct{}),
		muted:   make(map[string]struct{}),
	}
}

// Join adds s to the room's members. Idempotent.
func (r *Room) Join(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[s.ID] = s
}

// Part removes s from the room's members. A no-op if s was not a member.
func (r *Room) Part(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, s.ID)
}

// Has reports whether s is currently a member.
func (r *Room) Has(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[s.ID]
	return ok
}

// IsEmpty reports whether the room has no members.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0
}

// members snapshot under lock, for fan-out, so the Room lock can be released
// before performing any (potentially slow) Session.Send calls.
func (r *Room) memberSnapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	return out
}

// Broadcast sends line to every member except exclude (which may be nil to
// exclude no one). The member list is copied under the room lock and then
// the lock is released before any Session.Send call, so a slow or wedged
// client cannot hold up other rooms or the registry.
func (r *Room) Broadcast(line string, exclude *Session) {
	for _, m := range r.memberSnapshot() {
		if exclude != nil && m.ID == exclude.ID {
			continue
		}
		m.Send(line)
	}
}

// Topic returns the room's current topic and whether one is set.
func (r *Room) Topic() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topic, len(r.topic) > 0
}

// SetTopic sets the room's topic.
func (r *Room) SetTopic(topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topic = topic
}

// IsBanned reports whether nick (canonicalized) is on the ban list.
func (r *Room) IsBanned(nick string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.banned[nick]
	return ok
}

// IsMuted reports whether nick (canonicalized) is on the mute list.
func (r *Room) IsMuted(nick string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.muted[nick]
	return ok
}

// Ban adds nick to the ban list. Idempotent. Banning also forces any
// current member matching that nickname out of the room: Ban returns the
// matching Session, if any, so the caller can force-part them outside the
// room lock.
func (r *Room) Ban(nick string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.banned[nick] = struct{}{}
	return r.memberByNickLocked(nick)
}

// Unban removes nick from the ban list. Idempotent.
func (r *Room) Unban(nick string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.banned, nick)
}

// Mute adds nick to the mute list. Idempotent.
func (r *Room) Mute(nick string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.muted[nick] = struct{}{}
}

// Unmute removes nick from the mute list. Idempotent.
func (r *Room) Unmute(nick string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.muted, nick)
}

func (r *Room) memberByNickLocked(nick string) *Session {
	for _, m := range r.members {
		if canonicalizeNick(m.Nick()) == nick {
			return m
		}
	}
	return nil
}

// RemoveByNick force-removes a member matching nick, if present, without
// taking the ban/mute path. Used by KICK.
func (r *Room) RemoveByNick(nick string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.memberByNickLocked(nick)
	if m != nil {
		delete(r.members, m.ID)
	}
	return m
}

// Names renders the member list as RPL_NAMREPLY 353's space-separated body.
// Each member appears exactly once, and nicks are sorted, so the order is
// stable across calls.
func (r *Room) Names() string {
	members := r.memberSnapshot()
	nicks := make([]string, 0, len(members))
	for _, m := range members {
		nicks = append(nicks, m.Nick())
	}
	sort.Strings(nicks)
	out := ""
	for i, n := range nicks {
		if i > 0 {
			out += " "
		}
		out += n
	}
	return out
}

// SendNames sends the 353/366 pair to target for this room.
func (r *Room) SendNames(host string, target *Session) {
	target.Send(reply.NamReply353(host, target.Nick(), r.Name, r.Names()))
	target.Send(reply.EndOfNames366(host, target.Nick(), r.Name))
}
