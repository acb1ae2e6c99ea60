package ircd

import (
	"fmt"

	"github.com/horgh/chatd/internal/reply"
)

// handleNick implements NICK <name>: assign or change the session's
// nickname. 431 if no name was given. A rename on an already-registered
// session is announced to the session itself and to every peer sharing a
// room with it.
func (d *Dispatcher) handleNick(s *Session, params []string) {
	if len(params) == 0 || len(params[0]) == 0 {
		s.Send(reply.NoNicknameGiven431(d.Host, nickOrStar(s)))
		return
	}

	oldNick := s.Nick()
	wasRegistered := s.Registered()

	actual, changed := d.Registry.AssignNick(s, params[0])

	if changed {
		s.Send(reply.Notice(d.Host, actual,
			fmt.Sprintf("Nickname %s is already in use; you are now known as %s", params[0], actual)))
	}

	if !wasRegistered {
		return
	}

	announce := reply.Nick(oldNick, actual)
	s.Send(announce)
	for _, r := range d.Registry.RoomsContaining(s) {
		r.Broadcast(announce, s)
	}
}

// handleUser implements USER <user> <mode> <unused> :<realname>: completes
// registration. 431 if NICK has not been set yet. On success the 001/002/004
// welcome triplet is sent.
func (d *Dispatcher) handleUser(s *Session, params []string) {
	if s.State() != StateNickSet {
		s.Send(reply.NoNicknameGiven431(d.Host, nickOrStar(s)))
		return
	}
	if len(params) < 4 {
		s.Send(reply.NeedMoreParams461(d.Host, nickOrStar(s), "USER"))
		return
	}

	s.CompleteRegistration(params[0], params[3])

	nick := s.Nick()
	s.Send(reply.Welcome001(d.Host, nick))
	s.Send(reply.YourHost002(d.Host, nick))
	s.Send(reply.MyInfo004(d.Host, nick))
}

// handleJoin implements JOIN <#chan>. 403 if the name does not begin '#';
// 478 if the session's nick is banned from the room. A successful JOIN
// broadcasts to every member (including the joiner) and then sends the
// 353/366 NAMES pair to the joiner alone.
func (d *Dispatcher) handleJoin(s *Session, params []string) {
	if len(params) == 0 {
		s.Send(reply.NeedMoreParams461(d.Host, s.Nick(), "JOIN"))
		return
	}

	name := canonicalizeChannel(params[0])
	if !isValidChannel(name) {
		s.Send(reply.NoSuchChannel403(d.Host, s.Nick(), params[0]))
		return
	}

	room, err := d.Registry.GetOrCreateRoom(name)
	if err != nil {
		s.Send(reply.NoSuchChannel403(d.Host, s.Nick(), params[0]))
		return
	}

	if room.IsBanned(canonicalizeNick(s.Nick())) {
		s.Send(reply.BannedFromChan478(d.Host, s.Nick(), room.Name))
		return
	}

	if room.Has(s) {
		return
	}

	room.Join(s)
	room.Broadcast(reply.Join(s.Nick(), room.Name), nil)
	room.SendNames(d.Host, s)
}

// handlePart implements PART <#chan>. 442 if the session is not a member.
func (d *Dispatcher) handlePart(s *Session, params []string) {
	if len(params) == 0 {
		s.Send(reply.NeedMoreParams461(d.Host, s.Nick(), "PART"))
		return
	}

	name := canonicalizeChannel(params[0])
	room, ok := d.Registry.FindRoom(name)
	if !ok || !room.Has(s) {
		s.Send(reply.NotOnChannel442(d.Host, s.Nick(), params[0]))
		return
	}

	room.Broadcast(reply.Part(s.Nick(), room.Name), nil)
	room.Part(s)
	d.Registry.DropRoomIfEmpty(room.Name)
}

// handlePrivmsg implements PRIVMSG <target> :<text>. A '#'-prefixed target
// is a room: 403 if it does not exist, 442 if the sender is not a member,
// 404 if the sender is banned or muted there. Otherwise the target is a
// nickname: 401 if no session holds it.
func (d *Dispatcher) handlePrivmsg(s *Session, params []string) {
	if len(params) < 2 {
		s.Send(reply.NeedMoreParams461(d.Host, s.Nick(), "PRIVMSG"))
		return
	}

	target, text := params[0], params[1]

	if isValidChannel(canonicalizeChannel(target)) {
		name := canonicalizeChannel(target)
		room, ok := d.Registry.FindRoom(name)
		if !ok {
			s.Send(reply.NoSuchChannel403(d.Host, s.Nick(), target))
			return
		}
		if !room.Has(s) {
			s.Send(reply.NotOnChannel442(d.Host, s.Nick(), target))
			return
		}
		canon := canonicalizeNick(s.Nick())
		if room.IsBanned(canon) || room.IsMuted(canon) {
			s.Send(reply.CannotSendToChan404(d.Host, s.Nick(), target))
			return
		}
		room.Broadcast(reply.Privmsg(s.Nick(), room.Name, text), s)
		return
	}

	dest := d.Registry.FindByNick(target)
	if dest == nil {
		s.Send(reply.NoSuchNick401(d.Host, s.Nick(), target))
		return
	}
	dest.Send(reply.Privmsg(s.Nick(), target, text))
}

// handleTopic implements TOPIC <#chan> [:<topic>]. 442 if the sender is not
// a member. With a topic parameter the new topic is set and broadcast;
// without one the current topic (or its absence) is reported to the
// sender alone.
func (d *Dispatcher) handleTopic(s *Session, params []string) {
	if len(params) == 0 {
		s.Send(reply.NeedMoreParams461(d.Host, s.Nick(), "TOPIC"))
		return
	}

	name := canonicalizeChannel(params[0])
	room, ok := d.Registry.FindRoom(name)
	if !ok || !room.Has(s) {
		s.Send(reply.NotOnChannel442(d.Host, s.Nick(), params[0]))
		return
	}

	if len(params) > 1 {
		room.SetTopic(params[1])
		room.Broadcast(reply.TopicSet(s.Nick(), room.Name, params[1]), nil)
		return
	}

	topic, set := room.Topic()
	if !set {
		s.Send(reply.NoTopic331(d.Host, s.Nick(), room.Name))
		return
	}
	s.Send(reply.Topic332(d.Host, s.Nick(), room.Name, topic))
}

// handleNames implements NAMES <#chan>. 442 if the room is unknown.
func (d *Dispatcher) handleNames(s *Session, params []string) {
	if len(params) == 0 {
		s.Send(reply.NeedMoreParams461(d.Host, s.Nick(), "NAMES"))
		return
	}

	name := canonicalizeChannel(params[0])
	room, ok := d.Registry.FindRoom(name)
	if !ok {
		s.Send(reply.NotOnChannel442(d.Host, s.Nick(), params[0]))
		return
	}

	room.SendNames(d.Host, s)
}

// handleKick implements KICK <#chan> <target>. 442 if the sender is not a
// member; 401 if target is not a member; 481 if target equals the sender.
// The bot's own nickname is rejoined automatically if kicked, since the
// protocol treats BOT_AUTH as an idle-reap exemption, not a ban.
func (d *Dispatcher) handleKick(s *Session, params []string) {
	if len(params) < 2 {
		s.Send(reply.NeedMoreParams461(d.Host, s.Nick(), "KICK"))
		return
	}

	name := canonicalizeChannel(params[0])
	targetNick := params[1]

	room, ok := d.Registry.FindRoom(name)
	if !ok || !room.Has(s) {
		s.Send(reply.NotOnChannel442(d.Host, s.Nick(), params[0]))
		return
	}

	if canonicalizeNick(targetNick) == canonicalizeNick(s.Nick()) {
		s.Send(reply.NoPrivileges481(d.Host, s.Nick(), room.Name))
		return
	}

	target := room.RemoveByNick(canonicalizeNick(targetNick))
	if target == nil {
		s.Send(reply.NoSuchNick401(d.Host, s.Nick(), targetNick))
		return
	}

	room.Broadcast(reply.Kick(s.Nick(), room.Name, target.Nick()), nil)
	d.Registry.DropRoomIfEmpty(room.Name)

	if d.Registry.IsBotNick(target.Nick()) {
		room.Join(target)
		room.Broadcast(reply.Join(target.Nick(), room.Name), nil)
	}
}

// handleMode implements MODE <#chan> <flag> <target> for flag in
// {+b,-b,+m,-m}. 442 if the room is unknown. A successful change is
// announced to every member with RPL_CHANNELMODEIS (324), addressed to
// each of them in turn since a numeric reply names its own recipient.
// +b additionally force-parts target if currently a member.
func (d *Dispatcher) handleMode(s *Session, params []string) {
	if len(params) < 3 {
		s.Send(reply.NeedMoreParams461(d.Host, s.Nick(), "MODE"))
		return
	}

	name := canonicalizeChannel(params[0])
	flag := params[1]
	targetNick := params[2]
	targetCanon := canonicalizeNick(targetNick)

	room, ok := d.Registry.FindRoom(name)
	if !ok {
		s.Send(reply.NotOnChannel442(d.Host, s.Nick(), params[0]))
		return
	}

	switch flag {
	case "+b":
		if member := room.Ban(targetCanon); member != nil {
			room.Broadcast(reply.Part(member.Nick(), room.Name), nil)
			room.Part(member)
			d.Registry.DropRoomIfEmpty(room.Name)
		}
	case "-b":
		room.Unban(targetCanon)
	case "+m":
		room.Mute(targetCanon)
	case "-m":
		room.Unmute(targetCanon)
	default:
		s.Send(reply.UnknownCommand421(d.Host, s.Nick(), "MODE"))
		return
	}

	for _, member := range room.memberSnapshot() {
		member.Send(reply.ChannelModeIs324(d.Host, member.Nick(), room.Name, flag, targetNick))
	}
}

// handleQuit implements QUIT: announce departure to every peer sharing a
// room, then tear the session down. The connection handler closes the
// socket once Dispatch reports the session should stop.
func (d *Dispatcher) handleQuit(s *Session) {
	d.Registry.RemoveSession(s)
}

// handleBotAuth implements BOT_AUTH <secret>. A match against the
// configured secret (non-empty) marks this session as the exempted bot and
// replies 900; anything else gets a failure NOTICE instead, never a
// numeric, since BOT_AUTH is not part of the core reply vocabulary's
// registration/room flow.
func (d *Dispatcher) handleBotAuth(s *Session, params []string) {
	if len(params) == 0 || len(d.BotSecret) == 0 || params[0] != d.BotSecret {
		s.Send(reply.Notice(d.Host, nickOrStar(s), "BOT_AUTH_FAILURE"))
		return
	}

	s.MarkBot()
	d.Registry.SetBotNick(s.Nick())
	s.Send(reply.BotAuth900(d.Host, s.Nick()))
}
