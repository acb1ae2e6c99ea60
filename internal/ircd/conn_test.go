package ircd

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func dialLoopback(t *testing.T, h *Handler) (net.Conn, chan string) {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	go h.Serve(serverConn)

	recv := make(chan string, 64)
	go func() {
		scanner := bufio.NewScanner(clientConn)
		for scanner.Scan() {
			recv <- strings.TrimRight(scanner.Text(), "\r")
		}
		close(recv)
	}()

	t.Cleanup(func() { _ = clientConn.Close() })
	return clientConn, recv
}

func readLine(t *testing.T, recv chan string) string {
	t.Helper()
	select {
	case line, ok := <-recv:
		if !ok {
			t.Fatal("connection closed with no more lines")
		}
		return line
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a line")
		return ""
	}
}

func TestServeRegistersAndClosesOnQuit(t *testing.T) {
	reg := NewRegistry("::1")
	d := NewDispatcher(reg, "::1", "")
	h := NewHandler(d, reg, nil)

	conn, recv := dialLoopback(t, h)

	_, err := conn.Write([]byte("NICK alice\r\nUSER alice 0 * :alice\r\n"))
	require.NoError(t, err)
	readLine(t, recv) // 001
	readLine(t, recv) // 002
	readLine(t, recv) // 004

	require.Equal(t, 1, len(reg.Sessions()))

	_, err = conn.Write([]byte("QUIT\r\n"))
	require.NoError(t, err)

	_, ok := <-recv
	require.False(t, ok, "connection should be closed after QUIT")
	require.Equal(t, 0, len(reg.Sessions()))
}

func TestServeRemovesSessionOnAbruptClose(t *testing.T) {
	reg := NewRegistry("::1")
	d := NewDispatcher(reg, "::1", "")
	h := NewHandler(d, reg, nil)

	conn, recv := dialLoopback(t, h)

	_, err := conn.Write([]byte("NICK alice\r\nUSER alice 0 * :alice\r\n"))
	require.NoError(t, err)
	readLine(t, recv)
	readLine(t, recv)
	readLine(t, recv)
	require.Equal(t, 1, len(reg.Sessions()))

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return len(reg.Sessions()) == 0
	}, time.Second, 10*time.Millisecond)
}
