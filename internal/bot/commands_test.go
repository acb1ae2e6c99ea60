package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCommand(t *testing.T) {
	verb, rest := splitCommand("slap bob")
	require.Equal(t, "slap", verb)
	require.Equal(t, "bob", rest)

	verb, rest = splitCommand("hello")
	require.Equal(t, "hello", verb)
	require.Equal(t, "", rest)
}

func TestSlapWithExplicitTarget(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "slap bob")
	require.Equal(t, "PRIVMSG #room :alice slaps bob with a trout!", nextLine(t, recv))
}

func TestSlapSelfTarget(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "slap bot")
	require.Equal(t, "PRIVMSG #room :Ugh, alice... You're so bad at this game...", nextLine(t, recv))
}

func TestSlapNoTargetNoOthers(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "slap")
	require.Equal(t, "PRIVMSG #room :alice has no one to slap!", nextLine(t, recv))
}

func TestCmdTopicQuery(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "topic")
	require.Equal(t, "TOPIC #room", nextLine(t, recv))
}

func TestCmdTopicSet(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "topic new subject")
	require.Equal(t, "TOPIC #room :new subject", nextLine(t, recv))
}

func TestCmdModerateMissingTarget(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "ban")
	require.Equal(t, "PRIVMSG #room :Usage: !ban <nickname>", nextLine(t, recv))
}

func TestCmdModerateBan(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "ban carol")
	require.Equal(t, "MODE #room +b carol", nextLine(t, recv))
	require.Equal(t, "PRIVMSG #room :carol has been banned from #room", nextLine(t, recv))
}

func TestCmdModerateKick(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "kick carol")
	require.Equal(t, "KICK #room carol :Kicked by alice", nextLine(t, recv))
	require.Equal(t, "PRIVMSG #room :carol kicked by alice", nextLine(t, recv))
}

func TestCmdModerateMuteSelfTracksMutedFlag(t *testing.T) {
	b, recv := newTestBot(t)
	b.handleCommand("alice", "mute bot")
	require.Equal(t, "MODE #room +m bot", nextLine(t, recv))
	require.Equal(t, "PRIVMSG #room :bot has been muted in #room", nextLine(t, recv))
	require.True(t, b.muted)
}
