package chat

import (
	"strings"
	"testing"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/player"
)

// fakeClock returns a controllable time source.
func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestPolicy_AcceptFirstMessage(t *testing.T) {
	now, _ := fakeClock(time.Unix(1000, 0))
	p := NewPolicy(3*time.Second, WithClock(now))
	sender := player.New(1, 5, "Mario")

	msg, err := p.Accept(sender, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg)
}

func TestPolicy_RejectWithinSpamWindow(t *testing.T) {
	now, advance := fakeClock(time.Unix(1000, 0))
	p := NewPolicy(3*time.Second, WithClock(now))
	sender := player.New(1, 5, "Mario")

	_, err := p.Accept(sender, "first")
	require.NoError(t, err)

	advance(time.Second)
	_, err = p.Accept(sender, "second")
	assert.ErrorIs(t, err, ErrSpam)
}

func TestPolicy_AcceptAfterWindowElapsed(t *testing.T) {
	now, advance := fakeClock(time.Unix(1000, 0))
	p := NewPolicy(3*time.Second, WithClock(now))
	sender := player.New(1, 5, "Mario")

	_, err := p.Accept(sender, "first")
	require.NoError(t, err)

	advance(3 * time.Second)
	_, err = p.Accept(sender, "second")
	assert.NoError(t, err)
}

func TestPolicy_RejectedMessageDoesNotResetWindow(t *testing.T) {
	now, advance := fakeClock(time.Unix(1000, 0))
	p := NewPolicy(3*time.Second, WithClock(now))
	sender := player.New(1, 5, "Mario")

	_, err := p.Accept(sender, "first")
	require.NoError(t, err)

	advance(2 * time.Second)
	_, err = p.Accept(sender, "spam")
	require.ErrorIs(t, err, ErrSpam)

	// One more second completes the original window.
	advance(time.Second)
	_, err = p.Accept(sender, "third")
	assert.NoError(t, err)
}

func TestPolicy_SanitizeTrimsAndTruncates(t *testing.T) {
	p := NewPolicy(time.Second)

	assert.Equal(t, "hello", p.Sanitize("  hello  "))

	long := strings.Repeat("a", 250)
	assert.Len(t, p.Sanitize(long), 200)
}

func TestPolicy_SanitizeCensorsProfanity(t *testing.T) {
	p := NewPolicy(time.Second)
	out := p.Sanitize("well shit happens")
	assert.Equal(t, "well **** happens", out)
}

func TestPolicy_SanitizeCensorsAfterMultiByteRune(t *testing.T) {
	p := NewPolicy(time.Second)
	assert.Equal(t, "Ⱥ***", p.Sanitize("Ⱥass"))
}

func TestPolicy_IsNameValid(t *testing.T) {
	p := NewPolicy(time.Second)

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"too short", "ab", false},
		{"minimum length", "abc", true},
		{"maximum length clean", "FourteenChars1", true},
		{"too long", "FifteenChars123", false},
		{"reserved upper", "SERVER", false},
		{"reserved lower", "server", false},
		{"reserved mixed", "SeRvEr", false},
		{"html markup", "<script>abc", false},
		{"ampersand", "Tom&Jerry", false},
		{"profanity", "shithead", false},
		{"ordinary", "Mario", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, p.IsNameValid(tt.input), "name %q", tt.input)
		})
	}
}

func TestPropertyValidNamesSurviveSanitization(t *testing.T) {
	p := NewPolicy(time.Second)
	rapid.Check(t, func(t *rapid.T) {
		// Letters and digits from the full Unicode tables, not just ASCII:
		// multi-byte runes change length under case folding.
		name := rapid.StringOfN(rapid.RuneFrom(nil, unicode.L, unicode.N), 1, 14, -1).Draw(t, "name")
		if p.IsNameValid(name) {
			if p.Sanitize(name) != name {
				t.Fatalf("valid name %q altered by sanitization", name)
			}
		}
	})
}

func TestPropertySanitizeKeepsUTF8Valid(t *testing.T) {
	p := NewPolicy(time.Second)
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		got := p.Sanitize(text)
		if !utf8.ValidString(got) {
			t.Fatalf("sanitizing %q produced invalid UTF-8 %q", text, got)
		}
	})
}

func TestPropertyNamesOutsideLengthBoundsInvalid(t *testing.T) {
	p := NewPolicy(time.Second)
	rapid.Check(t, func(t *rapid.T) {
		short := rapid.StringMatching(`[A-Za-z]{0,2}`).Draw(t, "short")
		if p.IsNameValid(short) {
			t.Fatalf("name %q shorter than 3 bytes accepted", short)
		}
		long := rapid.StringMatching(`[A-Za-z]{15,30}`).Draw(t, "long")
		if p.IsNameValid(long) {
			t.Fatalf("name %q longer than 14 bytes accepted", long)
		}
	})
}
