package ircd

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// Server binds the listening socket, accepts connections, and spawns a
// Handler per connection. It orchestrates shutdown by closing the
// listener and every live session's socket.
type Server struct {
	Config   Config
	Registry *Registry
	Handler  *Handler
	Reaper   *Reaper

	listener net.Listener

	wg sync.WaitGroup
}

// NewServer wires a Registry, Dispatcher, Reaper, and Handler together from
// cfg. It does not yet bind a socket; call ListenAndServe for that.
func NewServer(cfg Config) *Server {
	reg := NewRegistry(cfg.Host)
	reaper := NewReaper(reg, cfg.IdleLimit, cfg.CheckInterval)
	dispatcher := NewDispatcher(reg, cfg.Host, cfg.BotSecret)
	handler := NewHandler(dispatcher, reg, reaper)

	return &Server{
		Config:   cfg,
		Registry: reg,
		Handler:  handler,
		Reaper:   reaper,
	}
}

// ListenAndServe binds the configured host:port and accepts connections
// until Shutdown is called or Accept fails permanently. Binding the
// wildcard "::" yields the kernel's usual dual-stack v4-mapped-v6 socket;
// "::1" accepts IPv6 loopback connections only, and an explicit IPv4 host
// binds IPv4-only.
func (srv *Server) ListenAndServe() error {
	addr := net.JoinHostPort(srv.Config.Host, fmt.Sprintf("%d", srv.Config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return pkgerrors.Wrapf(err, "unable to listen on %s", addr)
	}
	srv.listener = ln

	log.Printf("listening on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return pkgerrors.Wrap(err, "accept failed")
		}

		srv.wg.Add(1)
		go func() {
			defer srv.wg.Done()
			srv.Handler.Serve(conn)
		}()
	}
}

// Shutdown stops accepting new connections, closes every live session's
// socket, and waits for their Handler goroutines to finish.
func (srv *Server) Shutdown() {
	if srv.listener != nil {
		if err := srv.listener.Close(); err != nil {
			log.Printf("error closing listener: %s", err)
		}
	}

	for _, s := range srv.Registry.Sessions() {
		s.Close()
	}

	srv.wg.Wait()
	srv.Reaper.Stop()
}

