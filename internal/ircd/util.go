package ircd

import "strings"

// maxChannelLength follows the 50 byte limit from RFC 2812.
const maxChannelLength = 50

// canonicalizeNick converts a nick to its canonical (lookup) form. It does
// not check validity or strip whitespace; callers must do that separately.
func canonicalizeNick(n string) string {
	return strings.ToLower(n)
}

// canonicalizeChannel converts a channel name to its canonical form.
func canonicalizeChannel(c string) string {
	return strings.ToLower(c)
}

// isValidChannel checks a channel name for validity: must begin with '#'
// and be non-empty and under the length limit. Call after
// canonicalizeChannel.
func isValidChannel(c string) bool {
	if len(c) == 0 || len(c) > maxChannelLength {
		return false
	}
	return c[0] == '#'
}
