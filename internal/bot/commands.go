package bot

import (
	"fmt"
	"strings"
)

// handleCommand dispatches a chat command (the text after '!' in a
// channel PRIVMSG) to its handler.
func (b *Bot) handleCommand(sender, command string) {
	verb, rest := splitCommand(command)

	switch verb {
	case "hello":
		b.say(fmt.Sprintf("Hello, %s!", sender))
	case "slap":
		b.slap(sender, rest)
	case "topic":
		b.cmdTopic(rest)
	case "poll":
		b.cmdPoll(sender, rest)
	case "vote":
		b.cmdVote(sender, rest)
	case "kick":
		b.cmdModerate(sender, verb, "KICK", rest, fmt.Sprintf("%%s kicked by %s", sender))
	case "ban":
		b.cmdModerate(sender, verb, "+b", rest, "%s has been banned from "+b.Channel)
	case "unban":
		b.cmdModerate(sender, verb, "-b", rest, "%s has been unbanned from "+b.Channel)
	case "mute":
		b.cmdModerate(sender, verb, "+m", rest, "%s has been muted in "+b.Channel)
	case "unmute":
		b.cmdModerate(sender, verb, "-m", rest, "%s has been unmuted in "+b.Channel)
	}
}

func splitCommand(command string) (verb, rest string) {
	fields := strings.SplitN(strings.TrimSpace(command), " ", 2)
	verb = fields[0]
	if len(fields) > 1 {
		rest = strings.TrimSpace(fields[1])
	}
	return verb, rest
}

// slap picks target from rest, or a random other room member if none was
// given, and announces a trout-slap.
func (b *Bot) slap(sender, target string) {
	others := b.otherMembers(sender)

	switch {
	case target == b.Name:
		b.say(fmt.Sprintf("Ugh, %s... You're so bad at this game...", sender))
	case target != "":
		b.say(fmt.Sprintf("%s slaps %s with a trout!", sender, target))
	case len(others) > 0:
		b.say(fmt.Sprintf("%s slaps %s with a trout!", sender, randomChoice(others)))
	default:
		b.say(fmt.Sprintf("%s has no one to slap!", sender))
	}
}

// cmdTopic reads the current topic with no argument, or sets a new one.
func (b *Bot) cmdTopic(newTopic string) {
	if len(newTopic) == 0 {
		b.send(fmt.Sprintf("TOPIC %s", b.Channel))
		return
	}
	b.send(fmt.Sprintf("TOPIC %s :%s", b.Channel, newTopic))
}

// cmdModerate issues a moderation command (KICK or a MODE flag) against a
// single nickname argument on the sender's behalf, then announces it.
// verb is the chat-command name (for the usage message); action is the
// underlying protocol verb or MODE flag to send.
func (b *Bot) cmdModerate(sender, verb, action, target, announceFmt string) {
	if len(target) == 0 {
		b.say(fmt.Sprintf("Usage: !%s <nickname>", verb))
		return
	}

	if action == "KICK" {
		b.send(fmt.Sprintf("KICK %s %s :Kicked by %s", b.Channel, target, sender))
	} else {
		b.send(fmt.Sprintf("MODE %s %s %s", b.Channel, action, target))
	}

	b.say(fmt.Sprintf(announceFmt, target))

	// Set muted after announcing, or a self-mute would suppress its own
	// announcement.
	if target == b.Name && (action == "+m" || action == "-m") {
		b.mu.Lock()
		b.muted = action == "+m"
		b.mu.Unlock()
	}
}
