package engine

import (
	"math"

	"github.com/suderio/draconic-rules/internal/parser"
	"github.com/suderio/draconic-rules/internal/rules"

	"go.uber.org/zap"
)

// Result is the outcome of evaluating one formula against one context.
type Result struct {
	// Value is always finite; any failure yields 0.
	Value float64
	// Display is the formula with every token replaced by its signed value.
	Display string
	// Tokens lists the distinct normalized tokens in first-seen order.
	Tokens []string
	// Formula is the formula that was evaluated.
	Formula string
	// Err explains why Value was forced to 0. It is informational: callers
	// that only render a sheet can ignore it.
	Err error
}

// Evaluator evaluates rule formulas. It holds no state between calls and is
// safe for concurrent use.
type Evaluator struct {
	log *zap.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger that receives evaluation failures.
func WithLogger(log *zap.Logger) Option {
	return func(ev *Evaluator) {
		if log != nil {
			ev.log = log
		}
	}
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts ...Option) *Evaluator {
	ev := &Evaluator{log: zap.NewNop()}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Evaluate substitutes the context into formula and computes it. It never
// panics or returns an error: malformed formulas, unknown functions and
// non-finite results are logged and evaluate to 0.
func (ev *Evaluator) Evaluate(formula string, ctx map[string]float64) Result {
	norm := NormalizeContext(ctx)
	res := Result{
		Display: Display(formula, norm),
		Tokens:  Tokens(formula),
		Formula: formula,
	}

	expr, err := parser.Parse(formula)
	if err != nil {
		return ev.fail(res, err)
	}

	v, err := expr.Eval(func(token string) float64 {
		return norm[rules.NormalizeToken(token)]
	})
	if err != nil {
		return ev.fail(res, err)
	}
	res.Value = v
	return res
}

func (ev *Evaluator) fail(res Result, err error) Result {
	ev.log.Warn("formula evaluation failed",
		zap.String("formula", res.Formula), zap.Error(err))
	res.Value = 0
	res.Err = err
	return res
}

// FormulaSource is anything that can list the candidate formulas of a rule.
// *rules.Registry satisfies it.
type FormulaSource interface {
	Formulas(name string) []rules.RuleFormula
}

// EvaluateRule selects the best formula of a rule for the given filters and
// evaluates it. It reports false when the rule has no applicable formula;
// callers are expected to fall back to their own default calculation.
func (ev *Evaluator) EvaluateRule(src FormulaSource, rule string, filters map[string]string, ctx map[string]float64) (Result, bool) {
	f, ok := Select(src.Formulas(rule), filters)
	if !ok {
		return Result{}, false
	}
	return ev.Evaluate(f.Formula, ctx), true
}

// Validate parses a formula without evaluating it.
func Validate(formula string) error {
	_, err := parser.Parse(formula)
	return err
}

// NormalizeContext upper-snake-cases every key and replaces NaN and
// infinities with 0. When several keys normalize to the same token, the key
// already in normalized form wins, otherwise the lexically smallest key.
func NormalizeContext(ctx map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(ctx))
	from := make(map[string]string, len(ctx))
	for k, v := range ctx {
		name := rules.NormalizeToken(k)
		if prev, ok := from[name]; ok && !preferKey(k, prev, name) {
			continue
		}
		out[name] = finite(v)
		from[name] = k
	}
	return out
}

func preferKey(k, prev, name string) bool {
	switch {
	case prev == name:
		return false
	case k == name:
		return true
	}
	return k < prev
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
