package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSet = `id: sample
version: "1"
description: test set
source_lang: fr
target_lang: en
rules:
  - match: "Cette méthode vérifie"
    replace: "This method checks"
  - name: found-users
    kind: pattern
    match: 'Trouvé .+ utilisateurs'
    within:
      - {from: "utilisateurs", to: "users"}
      - {from: "Trouvé", to: "Found"}
  - kind: pattern
    match: '\bvalide\b'
    replace: valid
    ignore_case: true
residual:
  - méthode
  - valide
`

func TestParseRuleSet(t *testing.T) {
	rs, err := ParseRuleSet([]byte(sampleSet), "sample.yaml")
	if err != nil {
		t.Fatalf("ParseRuleSet: %v", err)
	}
	if rs.ID != "sample" || rs.Origin != "sample.yaml" || rs.SourceLang != "fr" {
		t.Errorf("header = %+v", rs)
	}
	if len(rs.Rules) != 3 || len(rs.Residual) != 2 {
		t.Fatalf("rules = %d, residual = %d", len(rs.Rules), len(rs.Residual))
	}
	if rs.Rules[0].Kind != KindLiteral {
		t.Errorf("default kind = %q, want literal", rs.Rules[0].Kind)
	}

	compiled, err := rs.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if compiled[1].Name() != "found-users" || !compiled[1].Computed() {
		t.Errorf("rule 1 = %q computed=%v", compiled[1].Name(), compiled[1].Computed())
	}

	text := `Cette méthode vérifie. Log("Trouvé {n} utilisateurs"). VALIDE.`
	for _, r := range compiled {
		out, err := r.Apply(text)
		if err != nil {
			t.Fatal(err)
		}
		text = out.Text
	}
	want := `This method checks. Log("Found {n} users"). valid.`
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestParseRuleSetErrors(t *testing.T) {
	tests := []struct {
		name, yaml, wantErr string
	}{
		{"missing id", "rules: []\n", "missing id"},
		{"empty match", "id: x\nrules:\n  - replace: y\n", "empty match"},
		{"unknown kind", "id: x\nrules:\n  - {kind: glob, match: a}\n", "unknown kind"},
		{"within on literal", "id: x\nrules:\n  - match: a\n    within: [{from: a, to: b}]\n", "within requires kind pattern"},
		{"ignore_case on literal", "id: x\nrules:\n  - {match: a, ignore_case: true}\n", "ignore_case requires kind pattern"},
		{"empty within from", "id: x\nrules:\n  - kind: pattern\n    match: a\n    within: [{from: '', to: b}]\n", "empty from"},
		{"empty residual", "id: x\nresidual: ['  ']\n", "residual term 0 is empty"},
		{"bad yaml", "id: [\n", "parse rule set"},
	}
	for _, tt := range tests {
		_, err := ParseRuleSet([]byte(tt.yaml), "t.yaml")
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestCompileBadPattern(t *testing.T) {
	rs, err := ParseRuleSet([]byte("id: x\nrules:\n  - {match: a, replace: b}\n  - {kind: pattern, match: '(', replace: b}\n"), "t.yaml")
	if err != nil {
		t.Fatalf("ParseRuleSet: %v", err)
	}
	_, err = rs.Compile()
	if err == nil || !strings.Contains(err.Error(), "rule 1") {
		t.Errorf("Compile error = %v, want one naming rule 1", err)
	}
}

func TestLoadRuleSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	if err := os.WriteFile(path, []byte(sampleSet), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := LoadRuleSet(path)
	if err != nil {
		t.Fatalf("LoadRuleSet: %v", err)
	}
	if rs.Origin != path {
		t.Errorf("Origin = %q, want %q", rs.Origin, path)
	}

	if _, err := LoadRuleSet(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	rs, err := ParseRuleSet([]byte(sampleSet), "sample.yaml")
	if err != nil {
		t.Fatal(err)
	}
	data, err := rs.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := ParseRuleSet(data, "again")
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, data)
	}
	if len(again.Rules) != len(rs.Rules) || again.Rules[1].Within[1].To != "Found" {
		t.Errorf("round trip lost rules: %+v", again.Rules)
	}
}
