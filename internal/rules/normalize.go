package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var separatorRun = regexp.MustCompile(`[\s\-]+`)

// NormalizeName turns a rule, condition key or condition value into
// lower_snake_case. It is idempotent.
func NormalizeName(s string) string {
	return separatorRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}

// NormalizeToken turns a formula token or context key into UPPER_SNAKE_CASE.
// "{Strength_Mod}", "STRENGTH_MOD" and "strength mod" all map to STRENGTH_MOD.
func NormalizeToken(s string) string {
	return separatorRun.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), "_")
}

// NormalizeNames normalizes every name and drops the blank ones.
func NormalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if norm := NormalizeName(n); norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

// NormalizeFilters normalizes both keys and values of a filter set the same
// way formula conditions are normalized.
func NormalizeFilters(filters map[string]string) map[string]string {
	out := make(map[string]string, len(filters))
	for k, v := range filters {
		out[NormalizeName(k)] = NormalizeName(v)
	}
	return out
}

// conditionString coerces an authored condition value to its string form.
func conditionString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported condition value %v (%T)", v, v)
	}
}
