package rules

import _ "embed"

// BuiltinID is the id of the embedded rule set.
const BuiltinID = "fr-en-docs"

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin returns a fresh copy of the embedded French to English rule set.
func Builtin() *RuleSet {
	rs, err := ParseRuleSet(builtinYAML, "builtin")
	if err != nil {
		panic(err)
	}
	return rs
}
