// CLAUDE:SUMMARY Pure text normalizer: applies an ordered rule list and reports applied rules and residual terms.
package normalize

import (
	"fmt"
	"sort"

	"github.com/hazyhaar/docnorm/pkg/rules"
)

// Applied records a rule that matched and changed the text.
type Applied struct {
	Rule    string
	Matches int
	From    string
	To      string
}

// Result is the output of one normalization pass.
type Result struct {
	Text     string
	Applied  []Applied
	Residual map[string]int
}

// AppliedCount returns how many rules changed the text.
func (r *Result) AppliedCount() int {
	return len(r.Applied)
}

// ResidualTerms returns the residual terms found, sorted.
func (r *Result) ResidualTerms() []string {
	return SortedTerms(r.Residual)
}

// SortedTerms returns the keys of a residual report in sorted order.
func SortedTerms(found map[string]int) []string {
	terms := make([]string, 0, len(found))
	for t := range found {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Normalize applies rs to text in order, each rule seeing the output of the
// previous one, then scans the result for residual terms.
// A rule that matches nothing, or rewrites text to itself, is not counted.
func Normalize(text string, rs []*rules.Rule, residual []string) (*Result, error) {
	res := &Result{Text: text}
	for _, rule := range rs {
		out, err := rule.Apply(res.Text)
		if err != nil {
			return nil, err
		}
		if out.Matches == 0 || out.Text == res.Text {
			continue
		}
		res.Text = out.Text
		res.Applied = append(res.Applied, Applied{
			Rule:    rule.Name(),
			Matches: out.Matches,
			From:    out.From,
			To:      out.To,
		})
	}

	counts, err := Residual(res.Text, residual)
	if err != nil {
		return nil, err
	}
	res.Residual = counts
	return res, nil
}

// Stable reports whether a second pass over text leaves it unchanged.
func Stable(text string, rs []*rules.Rule) (bool, error) {
	again, err := Normalize(text, rs, nil)
	if err != nil {
		return false, fmt.Errorf("second pass: %w", err)
	}
	return again.Text == text, nil
}
