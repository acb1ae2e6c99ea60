package wire

// Encode renders a Message as a wire-ready, CRLF-terminated line. If
// encoding would exceed MaxLineLength the line is truncated rather than
// rejected, so the result is always safe to write. The underlying
// encoder's error is discarded, so a caller cannot tell whether the line
// was truncated.
func Encode(m Message) string {
	line, _ := m.Encode()
	return line
}
