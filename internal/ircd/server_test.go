package ircd

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	srv := NewServer(cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	require.Eventually(t, func() bool { return srv.listener != nil }, time.Second, 5*time.Millisecond)

	t.Cleanup(func() {
		srv.Shutdown()
		require.NoError(t, <-errCh)
	})
	return srv
}

func TestServerAcceptsAndRegistersClients(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("NICK alice\r\nUSER alice 0 * :alice\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, "001 alice")

	require.Eventually(t, func() bool {
		return len(srv.Registry.Sessions()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestServerShutdownClosesLiveSessions(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("NICK bob\r\nUSER bob 0 * :bob\r\n"))
	require.NoError(t, err)

	// Drain the whole 001/002/004 welcome triplet so nothing is left unread
	// when the raw Read below runs.
	reader := bufio.NewReader(conn)
	for i := 0; i < 3; i++ {
		_, err = reader.ReadString('\n')
		require.NoError(t, err)
	}

	srv.Shutdown()

	buf := make([]byte, 16)
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn.Read(buf)
	require.Error(t, err) // connection should be closed by Shutdown
}
