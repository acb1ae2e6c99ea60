// Package wire implements line-oriented protocol framing: parsing an inbound
// line into a Message and encoding an outbound Message back into a
// CRLF-terminated line.
//
// Lines are tolerant of either CRLF or bare LF termination on input, but
// always emit CRLF, and are truncated rather than rejected if encoding would
// exceed MaxLineLength.
package wire

import "github.com/horgh/irc"

// MaxLineLength is the maximum protocol message length, CRLF included.
const MaxLineLength = irc.MaxLineLength

// Message holds one parsed protocol line: an optional Prefix, a Command
// (verb or 3-digit numeric), and its Params. The last Param may have come
// from a ':'-prefixed trailing parameter and may contain spaces.
//
// See RFC 1459/2812 section 2.3.1.
type Message = irc.Message
