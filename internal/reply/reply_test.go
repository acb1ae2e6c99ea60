package reply

import "testing"

func TestWelcomeTriplet(t *testing.T) {
	host := "::1"
	got := Welcome001(host, "alice") + YourHost002(host, "alice") + MyInfo004(host, "alice")
	want := ":::1 001 alice :Welcome to the IRC server!\r\n" +
		":::1 002 alice :Your host is ::1\r\n" +
		":::1 004 alice ::1\r\n"
	if got != want {
		t.Errorf("welcome triplet = %q, wanted %q", got, want)
	}
}

func TestNamReplySequence(t *testing.T) {
	host := "::1"
	got := NamReply353(host, "bob", "#room", "bob") + EndOfNames366(host, "bob", "#room")
	want := ":::1 353 bob = #room :bob\r\n" +
		":::1 366 bob #room :End of /NAMES list.\r\n"
	if got != want {
		t.Errorf("names sequence = %q, wanted %q", got, want)
	}
}

func TestBannedFromChan(t *testing.T) {
	got := BannedFromChan478("::1", "alice", "#room")
	want := ":::1 478 alice #room :Cannot join channel (banned)\r\n"
	if got != want {
		t.Errorf("got %q, wanted %q", got, want)
	}
}

func TestUnregisteredTargetNick(t *testing.T) {
	got := NeedMoreParams461("::1", "", "USER")
	want := ":::1 461 * USER :Not enough parameters\r\n"
	if got != want {
		t.Errorf("got %q, wanted %q", got, want)
	}
}

func TestPeerLines(t *testing.T) {
	if got, want := Join("bob", "#room"), ":bob JOIN #room\r\n"; got != want {
		t.Errorf("Join() = %q, wanted %q", got, want)
	}
	if got, want := Kick("carol", "#room", "alice"), ":carol KICK #room alice :Kicked by carol\r\n"; got != want {
		t.Errorf("Kick() = %q, wanted %q", got, want)
	}
	if got, want := Quit("alice"), ":alice QUIT :Client Quit\r\n"; got != want {
		t.Errorf("Quit() = %q, wanted %q", got, want)
	}
}
