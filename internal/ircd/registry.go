package ircd

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/horgh/chatd/internal/reply"
)

// Registry holds the process-wide indexes: sessions, nickname -> Session,
// room name -> Room. It is the sole owner of Sessions and Rooms; a Room
// holds only non-owning references. All three indexes and the live
// bot-nick value are guarded by one mutex, since many independent
// connection handlers mutate this state directly and concurrently.
type Registry struct {
	Host string

	mu       sync.Mutex
	sessions map[SessionID]*Session
	nicks    map[string]*Session // canonical nick -> session
	rooms    map[string]*Room    // canonical name -> room

	botNick string
}

// NewRegistry creates an empty Registry. host is used as the server name in
// numeric reply prefixes.
func NewRegistry(host string) *Registry {
	return &Registry{
		Host:     host,
		sessions: make(map[SessionID]*Session),
		nicks:    make(map[string]*Session),
		rooms:    make(map[string]*Room),
	}
}

// AddSession registers a newly-accepted session.
func (reg *Registry) AddSession(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.sessions[s.ID] = s
}

// Sessions returns a snapshot of all live sessions.
func (reg *Registry) Sessions() []*Session {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]*Session, 0, len(reg.sessions))
	for _, s := range reg.sessions {
		out = append(out, s)
	}
	return out
}

// FindByNick looks up a session by nickname (any case).
func (reg *Registry) FindByNick(nick string) *Session {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.nicks[canonicalizeNick(nick)]
}

// AssignNick assigns wanted to s, if free, and returns the actual nick
// used. If wanted is already live, AssignNick synthesizes
// "<wanted><4-digit-decimal>" by appending a uniformly random value in
// [1000,9999], retrying on the vanishingly unlikely chance the suffixed
// name also collides. When the nick was changed from the wanted value,
// changed reports true so the caller can notify the session.
func (reg *Registry) AssignNick(s *Session, wanted string) (actual string, changed bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	canon := canonicalizeNick(wanted)
	actual = wanted

	if existing, ok := reg.nicks[canon]; ok && existing.ID != s.ID {
		for {
			candidate := fmt.Sprintf("%s%04d", wanted, 1000+rand.Intn(9000))
			candidateCanon := canonicalizeNick(candidate)
			if _, taken := reg.nicks[candidateCanon]; !taken {
				actual = candidate
				canon = candidateCanon
				changed = true
				break
			}
		}
	}

	oldNick := s.Nick()
	oldCanon := canonicalizeNick(oldNick)
	if len(oldNick) > 0 && reg.nicks[oldCanon] == s {
		delete(reg.nicks, oldCanon)
	}

	reg.nicks[canon] = s
	s.SetNick(actual)

	if s.IsBot() || (reg.botNick != "" && len(oldNick) > 0 && reg.botNick == oldCanon) {
		reg.botNick = canon
	}

	return actual, changed
}

// SetBotNick records which canonical nickname is the authenticated bot, for
// idle-reap exemption and auto-rejoin on kick.
func (reg *Registry) SetBotNick(nick string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.botNick = canonicalizeNick(nick)
}

// IsBotNick reports whether nick is the currently authenticated bot's
// nickname.
func (reg *Registry) IsBotNick(nick string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.botNick != "" && reg.botNick == canonicalizeNick(nick)
}

// GetOrCreateRoom returns the Room for name, creating it if necessary. name
// must already be canonicalized and begin with '#'.
func (reg *Registry) GetOrCreateRoom(name string) (*Room, error) {
	if !isValidChannel(name) {
		return nil, fmt.Errorf("invalid channel name: %s", name)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		r = NewRoom(name)
		reg.rooms[name] = r
	}
	return r, nil
}

// FindRoom looks up an existing room without creating it.
func (reg *Registry) FindRoom(name string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[name]
	return r, ok
}

// DropRoomIfEmpty removes name from the room index if it has no members, so
// an empty room is never reachable via the index.
func (reg *Registry) DropRoomIfEmpty(name string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[name]
	if !ok {
		return
	}
	if r.IsEmpty() {
		delete(reg.rooms, name)
	}
}

// RoomsContaining returns every room a session is currently a member of, by
// scanning all rooms. A Session holds no back-pointer to its rooms, so
// membership is always discovered this way rather than cached.
func (reg *Registry) RoomsContaining(s *Session) []*Room {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.Unlock()

	out := make([]*Room, 0)
	for _, r := range rooms {
		if r.Has(s) {
			out = append(out, r)
		}
	}
	return out
}

// RemoveSession tears a session down: it releases s's nickname, removes it
// from every room it is a member of (broadcasting QUIT to peers in each,
// since this path is the common disconnect path for QUIT, I/O failure, and
// idle reap alike), and drops any room that becomes empty as a result.
// Idempotent.
func (reg *Registry) RemoveSession(s *Session) {
	nick := s.Nick()

	for _, r := range reg.RoomsContaining(s) {
		r.Part(s)
		r.Broadcast(reply.Quit(nick), nil)
		reg.DropRoomIfEmpty(r.Name)
	}

	reg.mu.Lock()
	canon := canonicalizeNick(nick)
	if existing, ok := reg.nicks[canon]; ok && existing.ID == s.ID {
		delete(reg.nicks, canon)
	}
	delete(reg.sessions, s.ID)
	if reg.botNick == canon {
		reg.botNick = ""
	}
	reg.mu.Unlock()
}
