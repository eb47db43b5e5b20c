package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hazyhaar/docnorm/pkg/document"
	"github.com/hazyhaar/docnorm/pkg/rules"
	"gopkg.in/yaml.v3"
)

type config struct {
	Document       string `yaml:"document"`
	Rules          string `yaml:"rules"`
	RulesDir       string `yaml:"rules_dir"`
	SourceEncoding string `yaml:"source_encoding"`
	TargetEncoding string `yaml:"target_encoding"`
	Strict         bool   `yaml:"strict"`
	PreviewWidth   int    `yaml:"preview_width"`
	LogLevel       string `yaml:"log_level"`
}

const defaultConfigPath = "docnorm.yaml"

func defaultConfig() config {
	return config{
		Rules:          rules.BuiltinID,
		SourceEncoding: document.DefaultEncoding,
		TargetEncoding: document.DefaultEncoding,
		PreviewWidth:   60,
		LogLevel:       "info",
	}
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the user named it explicitly.
func loadConfig(path string, explicit bool) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// commonFlags are shared by apply and check. Values only override the config
// when the flag was set on the command line.
type commonFlags struct {
	config         string
	rules          string
	rulesDir       string
	sourceEncoding string
	targetEncoding string
	strict         bool
	verbose        bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", defaultConfigPath, "path to config file")
	fs.StringVar(&c.rules, "rules", "", "rule set id or path to a rule-set YAML file")
	fs.StringVar(&c.rulesDir, "rules-dir", "", "directory of rule-set YAML files")
	fs.StringVar(&c.sourceEncoding, "source-encoding", "", "encoding of the document on disk")
	fs.StringVar(&c.targetEncoding, "target-encoding", "", "encoding to write the document with")
	fs.BoolVar(&c.strict, "strict", false, "exit with status 3 when residual terms remain")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
}

// resolve loads the config file and applies explicitly set flags on top.
func (c *commonFlags) resolve(fs *flag.FlagSet) (config, error) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(c.config, set["config"])
	if err != nil {
		return cfg, err
	}
	if set["rules"] {
		cfg.Rules = c.rules
	}
	if set["rules-dir"] {
		cfg.RulesDir = c.rulesDir
	}
	if set["source-encoding"] {
		cfg.SourceEncoding = c.sourceEncoding
	}
	if set["target-encoding"] {
		cfg.TargetEncoding = c.targetEncoding
	}
	if set["strict"] {
		cfg.Strict = c.strict
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	if path := fs.Arg(0); path != "" {
		cfg.Document = path
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
