package main

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsRunesIntact(t *testing.T) {
	korean := "안녕하세요 반갑습니다"

	got := truncate(korean, 7)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "안녕하세요 반…", got)

	// Short strings pass through untouched.
	assert.Equal(t, korean, truncate(korean, 100))
	assert.Equal(t, "abc", truncate("abc", 3))
}

func TestOneLineFlattensAndTruncates(t *testing.T) {
	got := oneLine("첫 번째 줄\n두 번째 줄\t\t끝", 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "첫 번째 줄 두 번…", got)

	assert.Equal(t, "a b c", oneLine("  a\n b\t c  ", 60))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("12345678-abcd-efgh"))
	assert.Equal(t, "short", shortID("short"))
}
