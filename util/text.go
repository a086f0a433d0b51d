package util

import (
	"strings"
)

// Truncate keeps the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// OrDefault returns s truncated to n, or def when s is empty.
func OrDefault(s string, n int, def string) string {
	if s == "" {
		return def
	}
	return Truncate(s, n)
}

// NilIfEmpty maps "" to nil so optional columns store NULL.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SanitizeSlug truncates to n and then drops everything outside [0-9a-zA-Z-].
func SanitizeSlug(s string, n int) string {
	s = Truncate(s, n)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
			return r
		}
		return -1
	}, s)
}
