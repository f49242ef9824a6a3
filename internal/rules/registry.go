package rules

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Registry holds the loaded rule definitions keyed by normalized name.
// It is filled once by Load and is read-only afterwards, so it can be shared
// between goroutines without locking.
type Registry struct {
	rules      map[string]*Rule
	duplicates []string
	log        *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger that receives load and lookup diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rules: make(map[string]*Rule),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load builds a registry from raw records in one call.
func Load(records []RawRule, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.Load(records)
	return r
}

// Load normalizes and stores the given records and returns how many were
// stored. Broken records and formula entries are skipped with a warning;
// a name seen twice is overwritten by the later record.
// Load must finish before the registry is handed to other goroutines.
func (r *Registry) Load(records []RawRule) int {
	stored := 0
	for i, raw := range records {
		name := NormalizeName(raw.Name)
		if name == "" {
			r.log.Warn("rule record without name skipped",
				zap.Int("index", i), zap.String("source", raw.Source))
			continue
		}

		rule := &Rule{
			Name:         name,
			RussianName:  raw.RussianName,
			Type:         RuleType(NormalizeName(raw.Type)),
			Dependencies: NormalizeNames(raw.Dependencies),
			Influence:    NormalizeNames(raw.Influence),
			Formulas:     r.parseFormulas(name, raw),
			Source:       raw.Source,
		}

		if prev, ok := r.rules[name]; ok {
			r.duplicates = append(r.duplicates, name)
			r.log.Warn("duplicate rule name, later definition wins",
				zap.String("rule", name),
				zap.String("previous_source", prev.Source),
				zap.String("source", raw.Source))
		}
		r.rules[name] = rule
		stored++
	}
	return stored
}

func (r *Registry) parseFormulas(rule string, raw RawRule) []RuleFormula {
	formulas := make([]RuleFormula, 0, len(raw.CalculateFormulas))
	for i, entry := range raw.CalculateFormulas {
		text, _ := entry["formula"].(string)
		if strings.TrimSpace(text) == "" {
			r.log.Warn("formula entry without formula skipped",
				zap.String("rule", rule), zap.Int("index", i), zap.String("source", raw.Source))
			continue
		}

		f := RuleFormula{
			Formula:       text,
			Conditions:    make(map[string]string),
			RawConditions: make(map[string]string),
		}
		for key, value := range entry {
			if key == "formula" {
				continue
			}
			str, err := conditionString(value)
			if err != nil {
				r.log.Warn("formula condition skipped",
					zap.String("rule", rule), zap.String("condition", key), zap.Error(err))
				continue
			}
			f.RawConditions[key] = str
			f.Conditions[NormalizeName(key)] = NormalizeName(str)
		}
		formulas = append(formulas, f)
	}
	return formulas
}

// Rule looks a rule up by name, ignoring case and separator style.
func (r *Registry) Rule(name string) (*Rule, bool) {
	rule, ok := r.rules[NormalizeName(name)]
	return rule, ok
}

// RussianName returns the display name of a rule. A miss is logged because it
// usually means the caller and the rule data disagree.
func (r *Registry) RussianName(name string) (string, bool) {
	rule, ok := r.Rule(name)
	if !ok {
		r.log.Warn("russian name requested for unknown rule", zap.String("rule", name))
		return "", false
	}
	return rule.RussianName, true
}

// Dependencies resolves the dependency names of a rule. Names that do not
// resolve are dropped.
func (r *Registry) Dependencies(name string) []*Rule {
	rule, ok := r.Rule(name)
	if !ok {
		return nil
	}
	deps := make([]*Rule, 0, len(rule.Dependencies))
	for _, dep := range rule.Dependencies {
		if d, ok := r.rules[dep]; ok {
			deps = append(deps, d)
		}
	}
	return deps
}

// DependencyNames returns the dependency names of a rule without resolving them.
func (r *Registry) DependencyNames(name string) []string {
	rule, ok := r.Rule(name)
	if !ok {
		return nil
	}
	return rule.Dependencies
}

// Formulas returns the candidate formulas of a rule, or nil.
func (r *Registry) Formulas(name string) []RuleFormula {
	rule, ok := r.Rule(name)
	if !ok {
		return nil
	}
	return rule.Formulas
}

// DependentNames returns the sorted names of every rule that lists target as
// a dependency. When typeFilter is given only rules of those types count.
func (r *Registry) DependentNames(target string, typeFilter ...RuleType) []string {
	target = NormalizeName(target)
	seen := make(map[string]struct{})
	for _, rule := range r.rules {
		if len(typeFilter) > 0 && !hasType(rule.Type, typeFilter) {
			continue
		}
		for _, dep := range rule.Dependencies {
			if dep == target {
				seen[rule.Name] = struct{}{}
				break
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func hasType(t RuleType, types []RuleType) bool {
	for _, want := range types {
		if RuleType(NormalizeName(string(want))) == t {
			return true
		}
	}
	return false
}

// PrimaryStatForSkill returns the ability score a skill is based on: its
// first dependency of type stat, or the built-in table when the rule data
// does not say.
func (r *Registry) PrimaryStatForSkill(skill string) (string, bool) {
	if rule, ok := r.Rule(skill); ok {
		for _, dep := range rule.Dependencies {
			if d, ok := r.rules[dep]; ok && d.Type == TypeStat {
				return d.Name, true
			}
		}
	}
	return DefaultStatForSkill(skill)
}

// SkillNames returns every skill rule name, sorted. With no skill rules loaded
// it returns the built-in list so a sheet never renders without skills.
func (r *Registry) SkillNames() []string {
	skills := r.RulesByType(TypeSkill)
	if len(skills) == 0 {
		r.log.Warn("no skill rules loaded, using built-in skill list")
		return DefaultSkillNames()
	}
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

// RulesByType returns the rules of one type sorted by name.
func (r *Registry) RulesByType(t RuleType) []*Rule {
	t = RuleType(NormalizeName(string(t)))
	var out []*Rule
	for _, rule := range r.All() {
		if rule.Type == t {
			out = append(out, rule)
		}
	}
	return out
}

// All returns every rule sorted by name.
func (r *Registry) All() []*Rule {
	out := make([]*Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of loaded rules.
func (r *Registry) Len() int {
	return len(r.rules)
}
