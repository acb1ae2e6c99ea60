package ircd

import (
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Reaper disconnects sessions that have gone idle longer than idleLimit,
// checking every checkInterval. It tracks one cache entry per live
// SessionID whose expiration is reset on every Track call (the connection
// handler calls it after every inbound line); when an entry's TTL lapses without being refreshed, the
// cache's eviction callback drives the disconnect.
type Reaper struct {
	cache    *gocache.Cache
	registry *Registry
}

// NewReaper builds a Reaper bound to reg. A session whose nickname is the
// currently authenticated bot is exempt: its entry is quietly renewed
// instead of evicted.
func NewReaper(reg *Registry, idleLimit, checkInterval time.Duration) *Reaper {
	r := &Reaper{
		cache:    gocache.New(idleLimit, checkInterval),
		registry: reg,
	}
	r.cache.OnEvicted(r.onEvicted)
	return r
}

// Track records (or refreshes) s's idle deadline.
func (r *Reaper) Track(s *Session) {
	r.cache.SetDefault(string(s.ID), s)
}

// Stop does nothing: it does not halt the background janitor goroutine,
// and no further evictions are prevented by calling it.
func (r *Reaper) Stop() {
	// go-cache has no exported Stop; its janitor goroutine is reclaimed
	// when the Cache itself becomes unreachable, which happens once the
	// Reaper is dropped at shutdown.
}

func (r *Reaper) onEvicted(_ string, value interface{}) {
	s, ok := value.(*Session)
	if !ok {
		return
	}

	if r.registry.IsBotNick(s.Nick()) {
		r.Track(s)
		return
	}

	if s.Closing() {
		return
	}

	log.Printf("session %s: idle timeout", s)

	r.registry.RemoveSession(s)
	s.Close()
}
