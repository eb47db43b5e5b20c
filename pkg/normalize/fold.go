package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonical returns s in Unicode NFC.
func Canonical(s string) string {
	return norm.NFC.String(s)
}

// Unaccented lowercases s and strips combining marks (Élodie -> elodie).
func Unaccented(s string) string {
	out, _, _ := transform.String(stripAccents, strings.ToLower(s))
	return out
}

// Preview shortens s to width runes for single-line display.
// Newlines are shown as \n. width <= 0 disables truncation.
func Preview(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width]) + "..."
}
