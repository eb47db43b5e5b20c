// CLAUDE:SUMMARY Rule-set YAML schema: ordered replacement rules plus the residual terms to report afterward.
package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet is one ordered rule table. Declaration order is application order.
type RuleSet struct {
	ID          string     `yaml:"id" json:"id"`
	Version     string     `yaml:"version,omitempty" json:"version,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	SourceLang  string     `yaml:"source_lang,omitempty" json:"source_lang,omitempty"`
	TargetLang  string     `yaml:"target_lang,omitempty" json:"target_lang,omitempty"`
	Rules       []RuleSpec `yaml:"rules" json:"rules"`
	Residual    []string   `yaml:"residual,omitempty" json:"residual,omitempty"`

	// Origin is the file the set was read from, or "builtin".
	Origin string `yaml:"-" json:"origin"`
}

// RuleSpec is the declarative form of a Rule.
//
// A pattern rule with Within set is a computed rule: each match is rewritten
// by applying the Within substitutions to the matched text, in order.
type RuleSpec struct {
	Name       string         `yaml:"name,omitempty" json:"name,omitempty"`
	Kind       Kind           `yaml:"kind,omitempty" json:"kind,omitempty"`
	Match      string         `yaml:"match" json:"match"`
	Replace    string         `yaml:"replace,omitempty" json:"replace,omitempty"`
	IgnoreCase bool           `yaml:"ignore_case,omitempty" json:"ignore_case,omitempty"`
	Within     []Substitution `yaml:"within,omitempty" json:"within,omitempty"`
}

// Substitution is a literal from -> to pair used inside computed rules.
type Substitution struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// LoadRuleSet reads and validates a rule-set YAML file.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set %s: %w", path, err)
	}
	return ParseRuleSet(data, path)
}

// ParseRuleSet parses rule-set YAML. origin names the source in errors.
func ParseRuleSet(data []byte, origin string) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rule set %s: %w", origin, err)
	}
	rs.Origin = origin
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks the set without compiling patterns.
func (rs *RuleSet) Validate() error {
	if rs.ID == "" {
		return fmt.Errorf("rule set %s: missing id", rs.Origin)
	}
	for i := range rs.Rules {
		spec := &rs.Rules[i]
		if spec.Kind == "" {
			spec.Kind = KindLiteral
		}
		if spec.Match == "" {
			return fmt.Errorf("rule set %s: rule %d: empty match", rs.ID, i)
		}
		switch spec.Kind {
		case KindLiteral:
			if spec.IgnoreCase {
				return fmt.Errorf("rule set %s: rule %d: ignore_case requires kind pattern", rs.ID, i)
			}
			if len(spec.Within) > 0 {
				return fmt.Errorf("rule set %s: rule %d: within requires kind pattern", rs.ID, i)
			}
		case KindPattern:
			for j, sub := range spec.Within {
				if sub.From == "" {
					return fmt.Errorf("rule set %s: rule %d: within %d: empty from", rs.ID, i, j)
				}
			}
		default:
			return fmt.Errorf("rule set %s: rule %d: unknown kind %q", rs.ID, i, spec.Kind)
		}
	}
	for i, term := range rs.Residual {
		if strings.TrimSpace(term) == "" {
			return fmt.Errorf("rule set %s: residual term %d is empty", rs.ID, i)
		}
	}
	return nil
}

// Compile builds the ordered rule list.
func (rs *RuleSet) Compile() ([]*Rule, error) {
	compiled := make([]*Rule, 0, len(rs.Rules))
	for i, spec := range rs.Rules {
		r, err := spec.compile()
		if err != nil {
			return nil, fmt.Errorf("rule set %s: rule %d: %w", rs.ID, i, err)
		}
		compiled = append(compiled, r)
	}
	return compiled, nil
}

func (spec RuleSpec) compile() (*Rule, error) {
	switch spec.Kind {
	case KindLiteral, "":
		return Literal(spec.Match, spec.Replace).WithName(spec.Name), nil
	case KindPattern:
		if len(spec.Within) > 0 {
			subs := spec.Within
			r, err := PatternFunc(spec.Match, func(m Match) string {
				s := m.Text
				for _, sub := range subs {
					s = strings.ReplaceAll(s, sub.From, sub.To)
				}
				return s
			}, spec.IgnoreCase)
			if err != nil {
				return nil, err
			}
			return r.WithName(spec.Name), nil
		}
		r, err := Pattern(spec.Match, spec.Replace, spec.IgnoreCase)
		if err != nil {
			return nil, err
		}
		return r.WithName(spec.Name), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", spec.Kind)
	}
}

// Marshal renders the set back to YAML.
func (rs *RuleSet) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("marshal rule set %s: %w", rs.ID, err)
	}
	return data, nil
}
