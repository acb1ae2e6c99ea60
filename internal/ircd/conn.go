package ircd

import (
	"bufio"
	"io"
	"log"
	"net"
)

// Handler drives one accepted connection: it frames inbound lines, updates
// session activity, and invokes the Dispatcher. It owns the full lifecycle
// of a single Session from accept to teardown.
type Handler struct {
	Dispatcher *Dispatcher
	Registry   *Registry
	Reaper     *Reaper
}

// NewHandler builds a Handler sharing the given Dispatcher, Registry, and
// Reaper across every connection.
func NewHandler(d *Dispatcher, reg *Registry, reaper *Reaper) *Handler {
	return &Handler{Dispatcher: d, Registry: reg, Reaper: reaper}
}

// Serve runs the read loop for one accepted connection until the peer
// closes it, an I/O error occurs, or the client sends QUIT. It always
// leaves the session fully removed from the Registry and the socket
// closed before returning.
func (h *Handler) Serve(conn net.Conn) {
	s := NewSession(conn)
	h.Registry.AddSession(s)
	if h.Reaper != nil {
		h.Reaper.Track(s)
	}

	log.Printf("session %s: connected", s)

	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			shouldClose := h.Dispatcher.Dispatch(s, line)
			if h.Reaper != nil {
				h.Reaper.Track(s)
			}
			// A failed write marks the session Closing; treat that as the
			// end of the connection.
			if shouldClose || s.Closing() {
				break
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("session %s: read error: %s", s, err)
			}
			break
		}
	}

	h.Registry.RemoveSession(s)
	s.Close()
	log.Printf("session %s: disconnected", s)
}
