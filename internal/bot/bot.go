// Package bot implements an in-process client that speaks the same
// line protocol as the server: it registers, joins one room, and reacts to
// chat commands and private messages addressed to it.
package bot

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"math/rand"
	"net"
	"strings"
	"sync"

	"github.com/horgh/chatd/internal/wire"
)

// Bot is a single-room chat client. All mutable state (member list, topic,
// mute flag, active poll) is guarded by mu since the read loop and any
// poll timer goroutine touch it concurrently.
type Bot struct {
	Addr    string
	Name    string
	Channel string
	Secret  string // BOT_AUTH secret; empty skips authentication

	Facts FactSource

	conn   net.Conn
	writer *bufio.Writer

	mu      sync.Mutex
	members []string
	topic   string
	muted   bool
	poll    *poll
}

// New builds a Bot. facts may be nil, in which case private-message
// auto-replies are skipped.
func New(addr, name, channel, secret string, facts FactSource) *Bot {
	return &Bot{
		Addr:    addr,
		Name:    name,
		Channel: channel,
		Secret:  secret,
		Facts:   facts,
	}
}

// Connect dials addr, registers, optionally authenticates as the server's
// exempted bot, and joins Channel. Call Run afterward to process incoming
// lines.
func (b *Bot) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", b.Addr)
	if err != nil {
		return fmt.Errorf("unable to connect to %s: %w", b.Addr, err)
	}

	b.conn = conn
	b.writer = bufio.NewWriter(conn)

	b.send(fmt.Sprintf("NICK %s", b.Name))
	b.send(fmt.Sprintf("USER %s 0 * :%s", b.Name, b.Name))

	if len(b.Secret) > 0 {
		b.send(fmt.Sprintf("BOT_AUTH %s", b.Secret))
	}

	b.send(fmt.Sprintf("JOIN %s", b.Channel))

	return nil
}

// Run processes lines from the server until the connection closes or ctx
// is done.
func (b *Bot) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = b.conn.Close()
		case <-done:
		}
	}()

	reader := bufio.NewReader(b.conn)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			b.handleLine(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			return err
		}
	}
}

// send writes one command line to the server, appending CRLF. If the bot
// has been muted in its channel, PRIVMSGs to the channel are replaced with
// a notice that it is muted, mirroring the server-side mute it is subject
// to like any other member.
func (b *Bot) send(line string) {
	b.mu.Lock()
	muted := b.muted
	b.mu.Unlock()

	if muted && strings.HasPrefix(line, "PRIVMSG "+b.Channel+" ") {
		line = fmt.Sprintf("PRIVMSG %s :I am muted and cannot talk right now.", b.Channel)
	}

	if _, err := b.writer.WriteString(line + "\r\n"); err != nil {
		log.Printf("bot: write error: %s", err)
		return
	}
	if err := b.writer.Flush(); err != nil {
		log.Printf("bot: flush error: %s", err)
	}
}

// say sends a PRIVMSG to the bot's channel.
func (b *Bot) say(text string) {
	b.send(fmt.Sprintf("PRIVMSG %s :%s", b.Channel, text))
}

func (b *Bot) handleLine(line string) {
	msg, err := wire.ParseLine(line)
	if err != nil {
		return
	}

	switch msg.Command {
	case "353": // RPL_NAMREPLY
		if len(msg.Params) < 4 {
			return
		}
		b.setMembers(strings.Fields(msg.Params[3]))

	case "332": // RPL_TOPIC
		if len(msg.Params) < 3 {
			return
		}
		b.setTopic(msg.Params[2])

	case "331": // RPL_NOTOPIC
		b.setTopic("")

	case "TOPIC":
		if len(msg.Params) < 2 {
			return
		}
		b.setTopic(msg.Params[1])

	case "JOIN":
		b.send(fmt.Sprintf("NAMES %s", b.Channel))

	case "PRIVMSG":
		b.handlePrivmsg(msg)
	}
}

func (b *Bot) handlePrivmsg(msg wire.Message) {
	if len(msg.Params) < 2 {
		return
	}
	// Peer lines from the server prefix with a bare nick ("nick", not
	// "nick!user@host"), so the sender is Prefix itself, not SourceNick().
	sender := msg.Prefix
	target := msg.Params[0]
	text := msg.Params[1]

	if strings.HasPrefix(text, "!") {
		b.handleCommand(sender, strings.TrimPrefix(text, "!"))
	}

	if target == b.Name {
		b.replyPrivate(sender)
	}
}

func (b *Bot) setMembers(members []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.members = members
}

func (b *Bot) setTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topic = topic
}

// otherMembers returns the current member list excluding sender and the
// bot's own name.
func (b *Bot) otherMembers(sender string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.members))
	for _, m := range b.members {
		if m != sender && m != b.Name {
			out = append(out, m)
		}
	}
	return out
}

func randomChoice(options []string) string {
	return options[rand.Intn(len(options))]
}
