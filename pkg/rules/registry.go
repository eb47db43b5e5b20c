package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry holds the built-in rule set plus every set found in a directory.
type Registry struct {
	sets map[string]*RuleSet
	dir  string
}

// NewRegistry creates a registry for dir. An empty dir means built-in only.
func NewRegistry(dir string) *Registry {
	return &Registry{
		sets: map[string]*RuleSet{BuiltinID: Builtin()},
		dir:  dir,
	}
}

// Load scans the rules directory for *.yaml and *.yml files.
// A file whose id is already taken is an error.
func (r *Registry) Load() error {
	sets := map[string]*RuleSet{BuiltinID: Builtin()}
	if r.dir == "" {
		r.sets = sets
		return nil
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("read rules dir %s: %w", r.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		rs, err := LoadRuleSet(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return err
		}
		if prev, ok := sets[rs.ID]; ok {
			return fmt.Errorf("rule set id %q defined twice (%s, %s)", rs.ID, prev.Origin, rs.Origin)
		}
		sets[rs.ID] = rs
	}
	r.sets = sets
	return nil
}

// Get returns a rule set by id.
func (r *Registry) Get(id string) (*RuleSet, error) {
	rs, ok := r.sets[id]
	if !ok {
		return nil, fmt.Errorf("unknown rule set: %q", id)
	}
	return rs, nil
}

// Resolve accepts either a rule-set id or a path to a YAML file.
func (r *Registry) Resolve(ref string) (*RuleSet, error) {
	if ref == "" {
		ref = BuiltinID
	}
	if rs, ok := r.sets[ref]; ok {
		return rs, nil
	}
	if isYAML(ref) || strings.ContainsRune(ref, filepath.Separator) {
		return LoadRuleSet(ref)
	}
	return r.Get(ref)
}

// Info is the summary of a rule set shown by the rules command.
type Info struct {
	ID          string `json:"id"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	SourceLang  string `json:"source_lang,omitempty"`
	TargetLang  string `json:"target_lang,omitempty"`
	Rules       int    `json:"rules"`
	Residual    int    `json:"residual"`
	Origin      string `json:"origin"`
}

// List returns every rule set, sorted by id.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.sets))
	for _, rs := range r.sets {
		infos = append(infos, Info{
			ID:          rs.ID,
			Version:     rs.Version,
			Description: rs.Description,
			SourceLang:  rs.SourceLang,
			TargetLang:  rs.TargetLang,
			Rules:       len(rs.Rules),
			Residual:    len(rs.Residual),
			Origin:      rs.Origin,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Count returns the number of known rule sets.
func (r *Registry) Count() int {
	return len(r.sets)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
