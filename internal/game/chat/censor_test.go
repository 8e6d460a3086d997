package chat

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCensor_CleanTextUnchanged(t *testing.T) {
	c := StandardCensor()
	assert.Equal(t, "hello world", c.Apply("hello world"))
}

func TestCensor_ReplacesMatch(t *testing.T) {
	c := NewCensor([]string{"bad"})
	assert.Equal(t, "*** day", c.Apply("bad day"))
}

func TestCensor_CaseInsensitive(t *testing.T) {
	c := NewCensor([]string{"bad"})
	assert.Equal(t, "*** day", c.Apply("BaD day"))
}

func TestCensor_MultipleOccurrences(t *testing.T) {
	c := NewCensor([]string{"bad"})
	assert.Equal(t, "*** and ***", c.Apply("bad and BAD"))
}

func TestCensor_SubstringMatch(t *testing.T) {
	c := NewCensor([]string{"bad"})
	assert.Equal(t, "em***ded", c.Apply("embadded"))
}

// Case folding can widen a rune's encoding: 'Ⱥ' (2 bytes) folds to 'ⱥ'
// (3 bytes). A match after such a rune must still replace the right runes.
func TestCensor_MatchAfterWideningFold(t *testing.T) {
	c := NewCensor([]string{"bad"})
	got := c.Apply("Ⱥbad")
	assert.Equal(t, "Ⱥ***", got)
	assert.True(t, utf8.ValidString(got))
}

// 'İ' (2 bytes) folds to 'i' (1 byte), shifting byte offsets the other way.
func TestCensor_MatchAfterNarrowingFold(t *testing.T) {
	c := NewCensor([]string{"bad"})
	got := c.Apply("İİbad")
	assert.Equal(t, "İİ***", got)
	assert.True(t, utf8.ValidString(got))
}

func TestCensor_MultiByteCleanTextUnchanged(t *testing.T) {
	c := StandardCensor()
	assert.Equal(t, "naïve Ⱥrrow", c.Apply("naïve Ⱥrrow"))
}

func TestCensor_MatchAtEndAfterWideningFold(t *testing.T) {
	c := StandardCensor()
	got := c.Apply("Ⱥass")
	assert.Equal(t, "Ⱥ***", got)
	assert.True(t, utf8.ValidString(got))
}
