package wire

import (
	"strings"

	"github.com/horgh/irc"
)

// ParseLine parses one line into a Message. The line may already be
// CRLF-terminated; if not (a bare LF, or nothing at all), one is appended
// before delegating to the underlying parser, which requires it.
func ParseLine(line string) (Message, error) {
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimRight(line, "\r\n") + "\r\n"
	}
	return irc.ParseMessage(line)
}
