package tokenutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateFast(t *testing.T) {
	assert.Equal(t, 0, EstimateFast(""))
	assert.Equal(t, 0, EstimateFast("   "))
	assert.Equal(t, 1, EstimateFast("hi"))

	// 40 runes over 8 words: runes/4 wins.
	text := strings.Repeat("abcd ", 8)
	assert.Equal(t, 9, EstimateFast(text))

	// Many short words: word count wins.
	short := strings.Repeat("a ", 20)
	assert.Equal(t, 20, EstimateFast(short))
}

func TestCountTokensNonEmpty(t *testing.T) {
	assert.Greater(t, CountTokens("Go is a programming language"), 0)
	assert.Equal(t, 0, CountTokens(""))
}

func TestCountTokensMonotonicInLength(t *testing.T) {
	short := CountTokens("one sentence about Go")
	long := CountTokens(strings.Repeat("one sentence about Go. ", 20))
	assert.Greater(t, long, short)
}

func TestTruncateToTokens(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)

	truncated := TruncateToTokens(text, 10)
	assert.Less(t, len(truncated), len(text))
	assert.True(t, strings.HasSuffix(truncated, "..."))

	// A generous budget leaves the text alone.
	assert.Equal(t, "short text", TruncateToTokens("short text", 1000))

	// A non-positive budget is a no-op.
	assert.Equal(t, text, TruncateToTokens(text, 0))
}
