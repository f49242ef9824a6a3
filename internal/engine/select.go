package engine

import (
	"github.com/suderio/draconic-rules/internal/rules"
)

// Select picks the most specific formula whose conditions all hold under
// filters. Formulas without conditions always qualify and act as the
// fallback; on equal specificity the earlier formula wins. It reports false
// when nothing qualifies.
func Select(formulas []rules.RuleFormula, filters map[string]string) (rules.RuleFormula, bool) {
	norm := rules.NormalizeFilters(filters)

	best := -1
	for i, f := range formulas {
		if !eligible(f, norm) {
			continue
		}
		if best < 0 || f.Specificity() > formulas[best].Specificity() {
			best = i
		}
	}
	if best < 0 {
		return rules.RuleFormula{}, false
	}
	return formulas[best], true
}

func eligible(f rules.RuleFormula, filters map[string]string) bool {
	for k, v := range f.Conditions {
		got, ok := filters[rules.NormalizeName(k)]
		if !ok || got != rules.NormalizeName(v) {
			return false
		}
	}
	return true
}
