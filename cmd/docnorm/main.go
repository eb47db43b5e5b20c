package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hazyhaar/docnorm/pkg/document"
	"github.com/hazyhaar/docnorm/pkg/normalize"
	"github.com/hazyhaar/docnorm/pkg/rules"
)

const (
	exitOK       = 0
	exitFatal    = 1
	exitUsage    = 2
	exitResidual = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "apply":
		return cmdApply(args[1:], stdout, stderr)
	case "check":
		return cmdCheck(args[1:], stdout, stderr)
	case "rules":
		return cmdRules(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: docnorm <command> [flags] [path]

Commands:
  apply   Apply a rule set to a document and rewrite it in place
  check   Report residual terms in a document without changing it
  rules   List known rule sets or dump one as YAML
`)
}

func cmdApply(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	dryRun := fs.Bool("dry-run", false, "report changes without writing the document")
	verify := fs.Bool("verify", false, "check that a second pass would change nothing")
	preview := fs.Int("preview", 0, "truncate report previews to this many characters")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := common.resolve(fs)
	if err != nil {
		fmt.Fprintf(stderr, "docnorm: %v\n", err)
		return exitFatal
	}
	logger := newLogger(stderr, cfg.LogLevel)
	if *preview > 0 {
		cfg.PreviewWidth = *preview
	}
	if cfg.Document == "" {
		logger.Error("no document given (argument or config document)")
		return exitUsage
	}

	set, compiled, err := loadRules(cfg)
	if err != nil {
		logger.Error("load rules", "error", err)
		return exitFatal
	}
	logger.Debug("rules compiled", "set", set.ID, "origin", set.Origin, "rules", len(compiled))

	doc, err := document.Load(cfg.Document, document.Options{
		SourceEncoding: cfg.SourceEncoding,
		TargetEncoding: cfg.TargetEncoding,
	})
	if err != nil {
		logger.Error("load document", "class", errorClass(err), "error", err)
		return exitFatal
	}
	logger.Info("document loaded", "path", doc.Path, "bytes", doc.Size, "encoding", doc.Encoding, "bom", doc.HadBOM)

	res, err := normalize.Normalize(doc.Text, compiled, set.Residual)
	if err != nil {
		logger.Error("normalize", "error", err)
		return exitFatal
	}

	if *verify {
		stable, err := normalize.Stable(res.Text, compiled)
		if err != nil {
			logger.Error("verify", "error", err)
			return exitFatal
		}
		if !stable {
			logger.Warn("rule set is not idempotent on this document; a second run would change it again", "set", set.ID)
		}
	}

	rep := &reporter{w: stdout, width: cfg.PreviewWidth}
	rep.header(set, len(compiled))
	rep.applied(res)

	if *dryRun {
		rep.line("Dry run: %s not written", doc.Path)
	} else {
		if err := doc.Save(res.Text); err != nil {
			logger.Error("save document", "class", errorClass(err), "error", err)
			return exitFatal
		}
		logger.Info("document saved", "path", doc.Path, "encoding", doc.TargetEncoding)
		rep.line("File updated: %s", doc.Path)
	}

	rep.residual(res.Residual, res.ResidualTerms())
	if cfg.Strict && len(res.Residual) > 0 {
		return exitResidual
	}
	return exitOK
}

func cmdCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	terms := fs.String("terms", "", "comma-separated residual terms (default: the rule set's)")
	unaccented := fs.Bool("unaccented", false, "ignore accents when matching terms")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := common.resolve(fs)
	if err != nil {
		fmt.Fprintf(stderr, "docnorm: %v\n", err)
		return exitFatal
	}
	logger := newLogger(stderr, cfg.LogLevel)
	if cfg.Document == "" {
		logger.Error("no document given (argument or config document)")
		return exitUsage
	}

	var wanted []string
	if *terms != "" {
		for _, t := range strings.Split(*terms, ",") {
			if t = strings.TrimSpace(t); t != "" {
				wanted = append(wanted, t)
			}
		}
	} else {
		set, _, err := loadRules(cfg)
		if err != nil {
			logger.Error("load rules", "error", err)
			return exitFatal
		}
		wanted = set.Residual
	}

	doc, err := document.Load(cfg.Document, document.Options{SourceEncoding: cfg.SourceEncoding})
	if err != nil {
		logger.Error("load document", "class", errorClass(err), "error", err)
		return exitFatal
	}

	scan := normalize.Residual
	if *unaccented {
		scan = normalize.ResidualUnaccented
	}
	found, err := scan(doc.Text, wanted)
	if err != nil {
		logger.Error("residual scan", "error", err)
		return exitFatal
	}

	rep := &reporter{w: stdout, width: cfg.PreviewWidth}
	rep.residual(found, normalize.SortedTerms(found))
	if cfg.Strict && len(found) > 0 {
		return exitResidual
	}
	return exitOK
}

func cmdRules(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rules", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesDir := fs.String("rules-dir", "", "directory of rule-set YAML files")
	dump := fs.String("dump", "", "print the rule set with this id (or path) as YAML")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	reg := rules.NewRegistry(*rulesDir)
	if err := reg.Load(); err != nil {
		fmt.Fprintf(stderr, "docnorm: %v\n", err)
		return exitFatal
	}

	if *dump != "" {
		set, err := reg.Resolve(*dump)
		if err != nil {
			fmt.Fprintf(stderr, "docnorm: %v\n", err)
			return exitFatal
		}
		data, err := set.Marshal()
		if err != nil {
			fmt.Fprintf(stderr, "docnorm: %v\n", err)
			return exitFatal
		}
		if _, err := stdout.Write(data); err != nil {
			fmt.Fprintf(stderr, "docnorm: write rule set: %v\n", err)
			return exitFatal
		}
		return exitOK
	}

	fmt.Fprintf(stdout, "Rule sets (%d):\n\n", reg.Count())
	for _, info := range reg.List() {
		lang := ""
		if info.SourceLang != "" || info.TargetLang != "" {
			lang = fmt.Sprintf(" [%s -> %s]", info.SourceLang, info.TargetLang)
		}
		fmt.Fprintf(stdout, "  %-20s %4d rules  %3d residual%s  %s\n", info.ID, info.Rules, info.Residual, lang, info.Description)
	}
	return exitOK
}

// loadRules resolves and compiles the configured rule set.
func loadRules(cfg config) (*rules.RuleSet, []*rules.Rule, error) {
	reg := rules.NewRegistry(cfg.RulesDir)
	if err := reg.Load(); err != nil {
		return nil, nil, err
	}
	set, err := reg.Resolve(cfg.Rules)
	if err != nil {
		return nil, nil, err
	}
	compiled, err := set.Compile()
	if err != nil {
		return nil, nil, err
	}
	return set, compiled, nil
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, document.ErrRead):
		return "read"
	case errors.Is(err, document.ErrWrite):
		return "write"
	case errors.Is(err, document.ErrEncoding):
		return "encoding"
	default:
		return "other"
	}
}
