// Package chat implements the chat and identity policy: spam throttling,
// text sanitization, profanity filtering, privileged command dispatch, and
// display-name validation.
package chat

import (
	"errors"
	"html"
	"strings"
	"time"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/player"
)

// ErrSpam is returned when a message arrives before the sender's spam
// window has elapsed.
var ErrSpam = errors.New("chat message rejected: spam window not elapsed")

// SpamWarning is the private corrective reply sent to a throttled player,
// attributed to the synthetic "Server" sender.
const SpamWarning = "Chat message ignored: You have to wait longer between sending chat messages"

// ServerSender is the synthetic sender name reserved for server messages.
// Players cannot claim it.
const ServerSender = "Server"

const (
	minNameLen = 3
	maxNameLen = 14
	maxChatLen = 200
)

// Policy holds the process-wide chat policy state. All methods are pure
// apart from the spam timestamp each accepted message stamps on the player.
type Policy struct {
	interval time.Duration
	censor   *Censor
	now      func() time.Time
}

// Option configures a Policy.
type Option func(*Policy)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) { p.now = now }
}

// WithCensor overrides the profanity filter.
func WithCensor(c *Censor) Option {
	return func(p *Policy) { p.censor = c }
}

// NewPolicy creates a chat Policy with the given minimum interval between
// accepted messages per player.
func NewPolicy(interval time.Duration, opts ...Option) *Policy {
	p := &Policy{
		interval: interval,
		censor:   StandardCensor(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Accept runs an ordinary chat message through the policy on behalf of the
// sending player. On success it returns the transformed message text and
// stamps the player's last-accepted timestamp; a message inside the spam
// window returns ErrSpam and leaves the player untouched.
func (p *Policy) Accept(sender *player.Player, text string) (string, error) {
	if !sender.TryChat(p.now(), p.interval) {
		return "", ErrSpam
	}
	return p.Sanitize(text), nil
}

// Sanitize normalizes chat text: surrounding whitespace is trimmed, the
// message is truncated to the maximum chat length, and profanity is
// censored.
func (p *Policy) Sanitize(text string) string {
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > maxChatLen {
		text = string(runes[:maxChatLen])
	}
	return p.censor.Apply(text)
}

// IsNameValid reports whether a candidate display name is acceptable: 3-14
// bytes, not the reserved server sender, and unchanged by HTML escaping
// followed by the profanity filter. A name that escaping or censoring would
// alter is rejected outright rather than silently rewritten.
func (p *Policy) IsNameValid(name string) bool {
	if len(name) < minNameLen || len(name) > maxNameLen {
		return false
	}
	if strings.EqualFold(name, ServerSender) {
		return false
	}
	sanitized := p.censor.Apply(html.EscapeString(name))
	return sanitized == name
}
