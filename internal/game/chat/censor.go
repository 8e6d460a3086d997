package chat

import "unicode"

// defaultBannedWords is the standard profanity list applied to chat text and
// candidate display names. Matching is case-insensitive and substring-based,
// the same policy the legacy filter used.
var defaultBannedWords = []string{
	"ass",
	"bastard",
	"bitch",
	"cock",
	"cunt",
	"dick",
	"fag",
	"fuck",
	"nigg",
	"piss",
	"shit",
	"slut",
	"twat",
	"whore",
}

// Censor replaces every banned-word occurrence in s with asterisks. The
// word list is fixed at process start.
type Censor struct {
	words [][]rune
}

// StandardCensor returns a Censor with the default banned-word list.
func StandardCensor() *Censor {
	return NewCensor(defaultBannedWords)
}

// NewCensor returns a Censor with a caller-supplied word list. Words are
// matched case-insensitively.
func NewCensor(words []string) *Censor {
	c := &Censor{words: make([][]rune, 0, len(words))}
	for _, w := range words {
		c.words = append(c.words, foldRunes(w))
	}
	return c
}

// Apply returns s with every banned occurrence replaced by one '*' per
// rune. Matching runs on rune-folded copies, never byte offsets: case
// folding can change a rune's encoded length, so byte positions in the
// folded text do not line up with the original.
func (c *Censor) Apply(s string) string {
	runes := []rune(s)
	folded := foldRunes(s)
	censored := false
	for _, w := range c.words {
		if len(w) == 0 {
			continue
		}
		for i := 0; i+len(w) <= len(folded); i++ {
			if !runesMatchAt(folded, w, i) {
				continue
			}
			for j := i; j < i+len(w); j++ {
				runes[j] = '*'
			}
			censored = true
			i += len(w) - 1
		}
	}
	if !censored {
		return s
	}
	return string(runes)
}

// foldRunes lowercases s rune by rune, preserving the rune count.
func foldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func runesMatchAt(s, word []rune, i int) bool {
	for j, r := range word {
		if s[i+j] != r {
			return false
		}
	}
	return true
}
