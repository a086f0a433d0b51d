package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "StarNet", 32, "StarNet"},
		{"exact", strings.Repeat("a", 32), 32, strings.Repeat("a", 32)},
		{"long", strings.Repeat("b", 40), 32, strings.Repeat("b", 32)},
		{"empty", "", 32, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestTruncateCountsCharacters(t *testing.T) {
	in := strings.Repeat("a", 31) + "é"
	assert.Equal(t, in, Truncate(in, 32))

	got := Truncate(strings.Repeat("é", 40), 32)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 32, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("é", 32), got)

	assert.Equal(t, "", Truncate("abc", 0))
}

func TestOrDefaultCountsCharacters(t *testing.T) {
	got := OrDefault(strings.Repeat("日", 40), 32, "d")
	assert.Equal(t, 32, utf8.RuneCountInString(got))
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "Untitled Post", OrDefault("", 32, "Untitled Post"))
	assert.Equal(t, "Hello", OrDefault("Hello", 32, "Untitled Post"))
	assert.Len(t, OrDefault(strings.Repeat("x", 50), 32, "d"), 32)
}

func TestNilIfEmpty(t *testing.T) {
	assert.Nil(t, NilIfEmpty(""))
	if got := NilIfEmpty("x"); assert.NotNil(t, got) {
		assert.Equal(t, "x", *got)
	}
}

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"welcome", "welcome"},
		{"Getting Started!", "GettingStarted"},
		{"a/b?c=d", "abcd"},
		{"2023-rules", "2023-rules"},
		{"日本語", ""},
		{"   ", ""},
		{"日日日日日" + strings.Repeat("a", 30), strings.Repeat("a", 27)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSlug(tt.in, 32))
		})
	}
}
