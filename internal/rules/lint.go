package rules

import (
	"fmt"
	"sort"
)

// IssueKind classifies a problem found by Lint.
type IssueKind string

const (
	IssueDuplicate         IssueKind = "duplicate"
	IssueDangling          IssueKind = "dangling"
	IssueMultipleFallbacks IssueKind = "multiple_fallbacks"
	IssueBadFormula        IssueKind = "bad_formula"
)

// Issue is one authoring problem in the loaded rule data.
type Issue struct {
	Rule    string
	Kind    IssueKind
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s]: %s", i.Rule, i.Kind, i.Message)
}

// Lint reports authoring problems that loading tolerates: duplicate names,
// dependency or influence names that resolve to nothing, more than one
// unconditional formula, and formulas rejected by validate (may be nil).
// Issues are ordered by rule name.
func (r *Registry) Lint(validate func(formula string) error) []Issue {
	var issues []Issue

	dups := append([]string(nil), r.duplicates...)
	sort.Strings(dups)
	for _, name := range dups {
		issues = append(issues, Issue{Rule: name, Kind: IssueDuplicate, Message: "defined more than once, last definition kept"})
	}

	for _, rule := range r.All() {
		for _, dep := range rule.Dependencies {
			if _, ok := r.rules[dep]; !ok {
				issues = append(issues, Issue{Rule: rule.Name, Kind: IssueDangling, Message: fmt.Sprintf("dependency %q is not a rule", dep)})
			}
		}
		for _, inf := range rule.Influence {
			if _, ok := r.rules[inf]; !ok {
				issues = append(issues, Issue{Rule: rule.Name, Kind: IssueDangling, Message: fmt.Sprintf("influence %q is not a rule", inf)})
			}
		}

		fallbacks := 0
		for _, f := range rule.Formulas {
			if f.Unconditional() {
				fallbacks++
			}
			if validate == nil {
				continue
			}
			if err := validate(f.Formula); err != nil {
				issues = append(issues, Issue{Rule: rule.Name, Kind: IssueBadFormula, Message: fmt.Sprintf("%q: %v", f.Formula, err)})
			}
		}
		if fallbacks > 1 {
			issues = append(issues, Issue{Rule: rule.Name, Kind: IssueMultipleFallbacks, Message: fmt.Sprintf("%d unconditional formulas, only the first is reachable", fallbacks)})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Rule < issues[j].Rule })
	return issues
}
