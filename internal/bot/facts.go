package bot

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"

	wordwrap "github.com/mitchellh/go-wordwrap"
)

// factLineBudget keeps a wrapped fact comfortably under the 512-byte line
// limit once it is framed as "PRIVMSG <nick> :<text>\r\n".
const factLineBudget = 400

// FactSource supplies a random joke or fact for the bot to send back when
// someone PRIVMSGs it directly.
type FactSource interface {
	Fact() string
}

// FileFactSource reads one fact per line from a text file, picking a
// random one on each call. Its zero value is not usable; build one with
// NewFileFactSource.
type FileFactSource struct {
	path string
}

// NewFileFactSource builds a FactSource backed by a newline-delimited
// text file at path.
func NewFileFactSource(path string) *FileFactSource {
	return &FileFactSource{path: path}
}

// Fact returns a random line from the backing file, word-wrapped to stay
// well under the wire line-length limit. A missing or empty file yields a
// fixed explanatory string rather than an error, since a bad fact file
// should never be fatal to the bot.
func (f *FileFactSource) Fact() string {
	lines, err := readLines(f.path)
	if err != nil {
		return "jokes file not found."
	}
	if len(lines) == 0 {
		return "jokes file is empty."
	}
	return wordwrap.WrapString(lines[rand.Intn(len(lines))], factLineBudget)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// replyPrivate answers a direct PRIVMSG to the bot with a random fact, if
// a FactSource is configured. Each line of a wrapped fact is sent as its
// own PRIVMSG.
func (b *Bot) replyPrivate(sender string) {
	if b.Facts == nil {
		return
	}
	for _, part := range strings.Split(b.Facts.Fact(), "\n") {
		b.send(fmt.Sprintf("PRIVMSG %s :%s", sender, part))
	}
}
