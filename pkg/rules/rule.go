// CLAUDE:SUMMARY Compiled replacement rules (literal, pattern, computed) applied in order to in-memory text.
package rules

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Kind selects how a rule's matcher is interpreted.
type Kind string

const (
	// KindLiteral matches an exact, case-sensitive substring.
	KindLiteral Kind = "literal"
	// KindPattern matches a regular expression. Word boundaries (\b) are
	// Unicode-aware, so accented words anchor correctly.
	KindPattern Kind = "pattern"
)

// Match is one pattern match handed to a computed replacement.
// Groups[0] is the whole match; unmatched groups are empty.
type Match struct {
	Text   string
	Groups []string
}

// Rule is an immutable (matcher, replacement) pair.
type Rule struct {
	name     string
	kind     Kind
	source   string
	template string
	re       *regexp2.Regexp
	eval     func(Match) string
}

// Outcome describes the effect of one rule application.
// From and To are what the progress report shows for the rule.
type Outcome struct {
	Text    string
	Matches int
	From    string
	To      string
}

// Literal returns a rule replacing every non-overlapping occurrence of from.
// Regex metacharacters in from have no special meaning.
func Literal(from, to string) *Rule {
	return &Rule{name: from, kind: KindLiteral, source: from, template: to}
}

// Pattern compiles a regex rule. The template may reference groups as $1 or ${name}.
func Pattern(expr, template string, ignoreCase bool) (*Rule, error) {
	re, err := compile(expr, ignoreCase)
	if err != nil {
		return nil, err
	}
	return &Rule{name: expr, kind: KindPattern, source: expr, template: template, re: re}, nil
}

// PatternFunc compiles a regex rule whose replacement is computed per match.
func PatternFunc(expr string, fn func(Match) string, ignoreCase bool) (*Rule, error) {
	if fn == nil {
		return nil, fmt.Errorf("pattern %q: nil replacement func", expr)
	}
	re, err := compile(expr, ignoreCase)
	if err != nil {
		return nil, err
	}
	return &Rule{name: expr, kind: KindPattern, source: expr, re: re, eval: fn}, nil
}

// MustPattern is like Pattern but panics on a bad expression.
func MustPattern(expr, template string, ignoreCase bool) *Rule {
	r, err := Pattern(expr, template, ignoreCase)
	if err != nil {
		panic(err)
	}
	return r
}

func compile(expr string, ignoreCase bool) (*regexp2.Regexp, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	opts := regexp2.None
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", expr, err)
	}
	return re, nil
}

// WithName returns a copy of r labelled name.
func (r *Rule) WithName(name string) *Rule {
	c := *r
	if name != "" {
		c.name = name
	}
	return &c
}

// Name returns the rule label (the matcher when unnamed).
func (r *Rule) Name() string { return r.name }

// Kind returns the matcher kind.
func (r *Rule) Kind() Kind { return r.kind }

// Computed reports whether replacements come from a function.
func (r *Rule) Computed() bool { return r.eval != nil }

// Apply runs the rule once over text. A rule that matches nothing returns
// text unchanged with Matches == 0.
func (r *Rule) Apply(text string) (Outcome, error) {
	switch {
	case r.kind == KindLiteral:
		return r.applyLiteral(text), nil
	case r.eval != nil:
		return r.applyFunc(text)
	default:
		return r.applyTemplate(text)
	}
}

func (r *Rule) applyLiteral(text string) Outcome {
	if r.source == "" {
		return Outcome{Text: text}
	}
	n := strings.Count(text, r.source)
	if n == 0 {
		return Outcome{Text: text}
	}
	return Outcome{
		Text:    strings.ReplaceAll(text, r.source, r.template),
		Matches: n,
		From:    r.source,
		To:      r.template,
	}
}

func (r *Rule) applyTemplate(text string) (Outcome, error) {
	n, err := r.count(text)
	if err != nil || n == 0 {
		return Outcome{Text: text}, err
	}
	out, err := r.re.Replace(text, r.template, -1, -1)
	if err != nil {
		return Outcome{Text: text}, fmt.Errorf("rule %q: %w", r.name, err)
	}
	return Outcome{Text: out, Matches: n, From: r.source, To: r.template}, nil
}

// span is a match position in runes, as regexp2 reports it.
type span struct {
	index, length int
	repl          string
}

// applyFunc collects every match first, then splices replacements from the
// end of the text backward so earlier offsets stay valid.
func (r *Rule) applyFunc(text string) (Outcome, error) {
	runes := []rune(text)
	var spans []span
	m, err := r.re.FindRunesMatch(runes)
	for m != nil && err == nil {
		spans = append(spans, span{index: m.Index, length: m.Length, repl: r.eval(toMatch(m))})
		m, err = r.re.FindNextMatch(m)
	}
	if err != nil {
		return Outcome{Text: text}, fmt.Errorf("rule %q: %w", r.name, err)
	}
	if len(spans) == 0 {
		return Outcome{Text: text}, nil
	}

	first := spans[0]
	from := string(runes[first.index : first.index+first.length])

	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		tail := append([]rune(s.repl), runes[s.index+s.length:]...)
		runes = append(runes[:s.index], tail...)
	}
	return Outcome{Text: string(runes), Matches: len(spans), From: from, To: first.repl}, nil
}

func (r *Rule) count(text string) (int, error) {
	n := 0
	m, err := r.re.FindStringMatch(text)
	for m != nil && err == nil {
		n++
		m, err = r.re.FindNextMatch(m)
	}
	if err != nil {
		return 0, fmt.Errorf("rule %q: %w", r.name, err)
	}
	return n, nil
}

func toMatch(m *regexp2.Match) Match {
	groups := m.Groups()
	out := Match{Text: m.String(), Groups: make([]string, len(groups))}
	for i := range groups {
		out.Groups[i] = groups[i].String()
	}
	return out
}
