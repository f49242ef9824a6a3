package rules

// RuleType tags a rule with its category. Callers use it to filter
// dependents; the evaluator never interprets it.
type RuleType string

const (
	TypeStat    RuleType = "stat"
	TypeSkill   RuleType = "skill"
	TypeDerived RuleType = "derived"
	TypeBase    RuleType = "base"
	TypeContext RuleType = "context"
)

// RuleFormula is one candidate formula of a rule together with the
// conditions under which it applies.
type RuleFormula struct {
	// Formula is an arithmetic expression with {TOKEN} placeholders.
	Formula string
	// Conditions holds normalized key/value pairs that must all match the
	// caller's filters. An empty map marks the unconditional fallback.
	Conditions map[string]string
	// RawConditions keeps the authored strings for diagnostics and display.
	RawConditions map[string]string
}

// Specificity is the number of conditions the formula declares.
func (f RuleFormula) Specificity() int {
	return len(f.Conditions)
}

// Unconditional reports whether the formula applies under any filter set.
func (f RuleFormula) Unconditional() bool {
	return len(f.Conditions) == 0
}

// Rule describes how one character statistic is derived.
type Rule struct {
	Name         string
	RussianName  string
	Type         RuleType
	Dependencies []string
	Influence    []string
	Formulas     []RuleFormula
	// Source names the document the rule was loaded from, if known.
	Source string
}

// RawRule is a rule record as authored in a rule document. Every key of a
// calculate_formulas entry other than "formula" is a match condition.
type RawRule struct {
	Name              string           `yaml:"name" json:"name"`
	RussianName       string           `yaml:"russian_name" json:"russian_name"`
	Type              string           `yaml:"type" json:"type"`
	Dependencies      []string         `yaml:"dependencies" json:"dependencies"`
	Influence         []string         `yaml:"influence" json:"influence"`
	CalculateFormulas []map[string]any `yaml:"calculate_formulas" json:"calculate_formulas"`

	Source string `yaml:"-" json:"-"`
}
