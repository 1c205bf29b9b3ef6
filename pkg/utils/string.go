// Package utils provides common string helpers.
package utils

import (
	"strings"
	"unicode/utf8"
)

// NormalizeWhitespace replaces runs of whitespace with a single space.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString shortens str to at most maxRunes characters, marking the cut with "...".
func TruncateString(str string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(str) <= maxRunes {
		return str
	}

	runes := []rune(str)

	return string(runes[:maxRunes]) + "..."
}

// EscapeTableCell makes text safe to place inside a markdown table cell.
func EscapeTableCell(str string) string {
	str = NormalizeWhitespace(str)

	return strings.ReplaceAll(str, "|", `\|`)
}
