package main

import (
	"fmt"
	"io"

	"github.com/hazyhaar/docnorm/pkg/normalize"
	"github.com/hazyhaar/docnorm/pkg/rules"
)

// reporter writes the human-readable run report. Nothing parses it.
type reporter struct {
	w     io.Writer
	width int
}

func (r *reporter) line(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *reporter) header(set *rules.RuleSet, n int) {
	r.line("Applying %d rules from %s...", n, set.ID)
}

func (r *reporter) applied(res *normalize.Result) {
	for _, a := range res.Applied {
		r.line("  ✓ %s → %s", normalize.Preview(a.From, r.width), normalize.Preview(a.To, r.width))
	}
	r.line("")
	r.line("Applied %d rules", res.AppliedCount())
}

func (r *reporter) residual(found map[string]int, terms []string) {
	r.line("")
	if len(terms) == 0 {
		r.line("No residual terms found.")
		return
	}
	r.line("Residual terms (%d unique):", len(terms))
	for _, t := range terms {
		r.line("  - %s (%d)", t, found[t])
	}
}
