package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const pollDuration = 45 * time.Second

// poll is an in-memory, timed vote tallied entirely by the bot; the server
// has no notion of polls.
type poll struct {
	question string
	options  []string
	votes    map[string]int
	voters   map[string]struct{}
}

// cmdPoll implements !poll "<question>" <opt1>;<opt2>;...
func (b *Bot) cmdPoll(sender, rest string) {
	usage := `Invalid poll format. Usage: !poll "<question>" <option1>;<option2>;...`

	first := strings.Index(rest, `"`)
	if first == -1 {
		b.say(usage)
		return
	}
	second := strings.Index(rest[first+1:], `"`)
	if second == -1 {
		b.say(usage)
		return
	}
	second += first + 1

	question := strings.TrimSpace(rest[first+1 : second])
	optionsPart := strings.TrimSpace(rest[second+1:])

	var options []string
	for _, opt := range strings.Split(optionsPart, ";") {
		opt = strings.TrimSpace(opt)
		if len(opt) > 0 {
			options = append(options, opt)
		}
	}
	if len(options) < 2 {
		b.say("Error: A poll must have at least 2 options.")
		return
	}

	b.mu.Lock()
	if b.poll != nil {
		b.mu.Unlock()
		b.say("There is already an active poll. Wait for it to end.")
		return
	}
	b.poll = &poll{
		question: question,
		options:  options,
		votes:    make(map[string]int),
		voters:   make(map[string]struct{}),
	}
	b.mu.Unlock()

	b.say(fmt.Sprintf("Poll started by %s", sender))
	b.say(fmt.Sprintf(`Question: "%s"`, question))
	b.say("Options: " + strings.Join(options, ", "))
	b.say(fmt.Sprintf("Type !vote <option> to vote. Time limit: %s.", pollDuration))

	time.AfterFunc(pollDuration, b.endPoll)
}

// cmdVote implements !vote <option>.
func (b *Bot) cmdVote(sender, option string) {
	b.mu.Lock()
	p := b.poll
	if p == nil {
		b.mu.Unlock()
		b.say("No active poll.")
		return
	}
	if _, voted := p.voters[sender]; voted {
		b.mu.Unlock()
		b.say(fmt.Sprintf("%s, you have already voted in this poll.", sender))
		return
	}
	if len(option) == 0 {
		b.mu.Unlock()
		b.say("Invalid vote format. Usage: !vote <option>")
		return
	}

	var matched string
	for _, o := range p.options {
		if strings.EqualFold(o, option) {
			matched = o
			break
		}
	}
	if len(matched) == 0 {
		valid := strings.Join(p.options, ", ")
		b.mu.Unlock()
		b.say(fmt.Sprintf("%s, invalid vote option. Valid options: %s", sender, valid))
		return
	}

	p.votes[matched]++
	p.voters[sender] = struct{}{}
	b.mu.Unlock()

	b.say(fmt.Sprintf("%s, your vote has been registered for %s.", sender, matched))
}

// endPoll tallies and announces the result, then clears the active poll.
// It runs on its own timer goroutine, so it takes mu like any other
// handler touching poll state.
func (b *Bot) endPoll() {
	b.mu.Lock()
	p := b.poll
	b.poll = nil
	b.mu.Unlock()

	if p == nil {
		return
	}

	total := 0
	for _, v := range p.votes {
		total += v
	}

	results := make([]string, 0, len(p.options))
	for _, opt := range p.options {
		votes := p.votes[opt]
		pct := 0.0
		if total > 0 {
			pct = float64(votes) / float64(total) * 100
		}
		results = append(results, fmt.Sprintf("%s: %d votes (%s%%)", opt, votes, strconv.FormatFloat(pct, 'f', 2, 64)))
	}

	b.say(fmt.Sprintf("Poll ended for '%s'", p.question))
	b.say("Results: " + strings.Join(results, ", "))
}
