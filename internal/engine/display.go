package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/suderio/draconic-rules/internal/rules"
)

var (
	tokenPattern    = regexp.MustCompile(`\{([^{}]*)\}`)
	functionPattern = regexp.MustCompile(`(?i)\b(?:math\.)?(min|max|abs|floor|ceil)\s*\(`)
)

// FormatSignedValue renders 3 as "+3", -2 as "-2" and 0, NaN or an infinity
// as "0".
func FormatSignedValue(v float64) string {
	v = finite(v)
	s := strconv.FormatFloat(v, 'f', -1, 64)
	switch {
	case v > 0:
		return "+" + s
	case v < 0:
		return s
	}
	return "0"
}

// Display replaces each {TOKEN} in formula by its parenthesized signed value
// from ctx (0 when absent) and lower-cases the math function names. Keys of
// ctx are normalized like token names. The result is meant for tooltips and
// audit output, not for evaluation.
func Display(formula string, ctx map[string]float64) string {
	ctx = NormalizeContext(ctx)
	out := tokenPattern.ReplaceAllStringFunc(formula, func(m string) string {
		name := rules.NormalizeToken(m[1 : len(m)-1])
		return "(" + FormatSignedValue(ctx[name]) + ")"
	})
	return functionPattern.ReplaceAllStringFunc(out, func(m string) string {
		m = strings.ToLower(m)
		return strings.TrimPrefix(m, "math.")
	})
}

// Tokens returns the distinct normalized token names referenced by formula,
// in first-seen order.
func Tokens(formula string) []string {
	matches := tokenPattern.FindAllStringSubmatch(formula, -1)
	seen := make(map[string]struct{}, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		name := rules.NormalizeToken(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tokens = append(tokens, name)
	}
	return tokens
}
