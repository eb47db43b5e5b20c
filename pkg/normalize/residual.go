package normalize

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Residual counts whole-word, case-insensitive occurrences of each term.
// Terms that do not occur are left out of the map. Text and terms are
// compared in NFC, so a decomposed "données" still counts. Terms that differ
// only in case are counted once, under the first spelling given.
func Residual(text string, terms []string) (map[string]int, error) {
	return residual(text, terms, Canonical)
}

// ResidualUnaccented is Residual with accents ignored, so "donnees" counts
// toward "données".
func ResidualUnaccented(text string, terms []string) (map[string]int, error) {
	return residual(text, terms, Unaccented)
}

func residual(text string, terms []string, fold func(string) string) (map[string]int, error) {
	found := make(map[string]int)
	if len(terms) == 0 {
		return found, nil
	}
	folded := fold(text)
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		key := strings.ToLower(fold(term))
		if seen[key] {
			continue
		}
		seen[key] = true
		n, err := countWord(folded, fold(term))
		if err != nil {
			return nil, fmt.Errorf("residual %q: %w", term, err)
		}
		if n > 0 {
			found[term] += n
		}
	}
	return found, nil
}

func countWord(text, word string) (int, error) {
	if word == "" {
		return 0, nil
	}
	re, err := regexp2.Compile(`(?<!\w)`+regexp2.Escape(word)+`(?!\w)`, regexp2.IgnoreCase)
	if err != nil {
		return 0, err
	}
	n := 0
	m, err := re.FindStringMatch(text)
	for m != nil && err == nil {
		n++
		m, err = re.FindNextMatch(m)
	}
	return n, err
}
