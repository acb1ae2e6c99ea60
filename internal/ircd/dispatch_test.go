package ircd

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testSession wires a Dispatcher-facing Session to an in-memory net.Pipe
// so tests can drive real Session/Dispatcher code without binding a TCP
// port. Lines the session sends are collected on recv.
type testSession struct {
	session *Session
	recv    chan string
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	s := NewSession(serverConn)

	recv := make(chan string, 64)
	go func() {
		scanner := bufio.NewScanner(clientConn)
		for scanner.Scan() {
			recv <- strings.TrimRight(scanner.Text(), "\r")
		}
		close(recv)
	}()

	t.Cleanup(func() { _ = clientConn.Close() })
	return &testSession{session: s, recv: recv}
}

func (ts *testSession) next(t *testing.T) string {
	t.Helper()
	select {
	case line, ok := <-ts.recv:
		if !ok {
			t.Fatal("session closed with no more lines")
		}
		return line
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a line")
		return ""
	}
}

func (ts *testSession) expectNone(t *testing.T) {
	t.Helper()
	select {
	case line, ok := <-ts.recv:
		if ok {
			t.Fatalf("expected no line, got %q", line)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestDispatcher() (*Dispatcher, *Registry) {
	reg := NewRegistry("::1")
	return NewDispatcher(reg, "::1", "sesame"), reg
}

func register(t *testing.T, d *Dispatcher, nick string) *testSession {
	t.Helper()
	ts := newTestSession(t)
	d.Registry.AddSession(ts.session)
	d.Dispatch(ts.session, "NICK "+nick+"\r\n")
	d.Dispatch(ts.session, "USER "+nick+" 0 * :"+nick+"\r\n")
	require.Equal(t, ":::1 001 "+nick+" :Welcome to the IRC server!", ts.next(t))
	require.Equal(t, ":::1 002 "+nick+" :Your host is ::1", ts.next(t))
	require.Equal(t, ":::1 004 "+nick+" ::1", ts.next(t))
	return ts
}

func TestRegistrationWelcomeTriplet(t *testing.T) {
	d, _ := newTestDispatcher()
	register(t, d, "alice")
}

func TestNickCollisionAutoSuffix(t *testing.T) {
	d, _ := newTestDispatcher()
	register(t, d, "alice")

	bob := newTestSession(t)
	d.Registry.AddSession(bob.session)
	d.Dispatch(bob.session, "NICK alice\r\n")

	notice := bob.next(t)
	require.True(t, strings.HasPrefix(notice, ":::1 NOTICE "))
	require.Contains(t, notice, "you are now known as alice")
	require.NotEqual(t, "alice", bob.session.Nick())
	require.True(t, strings.HasPrefix(bob.session.Nick(), "alice"))
}

func TestJoinBroadcastAndNames(t *testing.T) {
	d, _ := newTestDispatcher()
	alice := register(t, d, "alice")
	bob := register(t, d, "bob")

	d.Dispatch(bob.session, "JOIN #room\r\n")
	require.Equal(t, ":bob JOIN #room", bob.next(t))
	require.Equal(t, ":::1 353 bob = #room :bob", bob.next(t))
	require.Equal(t, ":::1 366 bob #room :End of /NAMES list.", bob.next(t))

	d.Dispatch(alice.session, "JOIN #room\r\n")
	require.Equal(t, ":alice JOIN #room", bob.next(t))
	require.Equal(t, ":alice JOIN #room", alice.next(t))

	namLine := alice.next(t)
	require.Contains(t, namLine, "alice")
	require.Contains(t, namLine, "bob")
	require.Equal(t, ":::1 366 alice #room :End of /NAMES list.", alice.next(t))
}

func TestPrivmsgExcludesSender(t *testing.T) {
	d, _ := newTestDispatcher()
	alice := register(t, d, "alice")
	bob := register(t, d, "bob")

	d.Dispatch(alice.session, "JOIN #room\r\n")
	alice.next(t)
	alice.next(t)
	alice.next(t)

	d.Dispatch(bob.session, "JOIN #room\r\n")
	bob.next(t)
	bob.next(t)
	bob.next(t)
	require.Equal(t, ":bob JOIN #room", alice.next(t))

	d.Dispatch(alice.session, "PRIVMSG #room :hi\r\n")
	require.Equal(t, ":alice PRIVMSG #room :hi", bob.next(t))
	alice.expectNone(t)
}

func TestBanForceParts(t *testing.T) {
	d, _ := newTestDispatcher()
	alice := register(t, d, "alice")
	carol := register(t, d, "carol")

	d.Dispatch(alice.session, "JOIN #room\r\n")
	alice.next(t)
	alice.next(t)
	alice.next(t)

	d.Dispatch(carol.session, "JOIN #room\r\n")
	carol.next(t)
	carol.next(t)
	carol.next(t)
	require.Equal(t, ":carol JOIN #room", alice.next(t))

	d.Dispatch(carol.session, "MODE #room +b alice\r\n")

	require.Equal(t, ":alice PART #room", alice.next(t))
	require.Equal(t, ":alice PART #room", carol.next(t))

	modeLine := carol.next(t)
	require.Equal(t, ":::1 324 carol #room +b alice", modeLine)

	d.Dispatch(alice.session, "JOIN #room\r\n")
	require.Equal(t, ":::1 478 alice #room :Cannot join channel (banned)", alice.next(t))
}

func TestUnknownVerbReplies421(t *testing.T) {
	d, _ := newTestDispatcher()
	alice := register(t, d, "alice")
	d.Dispatch(alice.session, "FROBNICATE\r\n")
	require.Equal(t, ":::1 421 alice FROBNICATE :Unknown command", alice.next(t))
}

func TestBotAuthSuccessAndFailure(t *testing.T) {
	d, _ := newTestDispatcher()
	alice := register(t, d, "alice")

	d.Dispatch(alice.session, "BOT_AUTH wrong\r\n")
	require.Equal(t, ":::1 NOTICE alice :BOT_AUTH_FAILURE", alice.next(t))
	require.False(t, alice.session.IsBot())

	d.Dispatch(alice.session, "BOT_AUTH sesame\r\n")
	require.Equal(t, ":::1 900 alice :BOT_AUTH_SUCCESS alice", alice.next(t))
	require.True(t, alice.session.IsBot())
	require.True(t, d.Registry.IsBotNick("alice"))
}

func TestUnregisteredCommandIsIgnored(t *testing.T) {
	d, _ := newTestDispatcher()
	ts := newTestSession(t)
	d.Registry.AddSession(ts.session)

	d.Dispatch(ts.session, "JOIN #room\r\n")
	ts.expectNone(t)
}
