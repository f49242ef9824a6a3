package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suderio/draconic-rules/internal/data"
	"github.com/suderio/draconic-rules/internal/engine"
	"github.com/suderio/draconic-rules/internal/rules"
	"github.com/suderio/draconic-rules/internal/sheet"
)

// Outcome is the result of running one scenario.
type Outcome struct {
	Name    string
	Source  string
	Passed  bool
	Value   float64
	Display string
	// Err is set when the scenario could not be run at all; a failed
	// expectation is reported through Passed only.
	Err error
}

// Runner evaluates scenarios against a rule registry.
type Runner struct {
	reg    *rules.Registry
	ev     *engine.Evaluator
	calc   *sheet.Calculator
	loader *data.Loader
	env    *Env
}

// NewRunner creates a Runner. loader is used to read the character documents
// scenarios refer to and may be nil when no scenario needs one.
func NewRunner(reg *rules.Registry, ev *engine.Evaluator, loader *data.Loader) (*Runner, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}
	return &Runner{
		reg:    reg,
		ev:     ev,
		calc:   sheet.NewCalculator(reg, ev),
		loader: loader,
		env:    env,
	}, nil
}

// Run executes one scenario.
func (r *Runner) Run(s Scenario) Outcome {
	out := Outcome{Name: s.Name, Source: s.Source}
	if s.Expect == "" {
		out.Err = errors.New("scenario has no expect expression")
		return out
	}
	if s.Rule == "" && s.Formula == "" && s.Character == "" {
		out.Err = errors.New("scenario needs a rule, a formula or a character")
		return out
	}

	ctx := make(map[string]float64)
	values := make(map[string]float64)
	if s.Character != "" {
		sh, err := r.computeSheet(s)
		if err != nil {
			out.Err = err
			return out
		}
		for k, v := range sh.Context {
			ctx[k] = v
		}
		values = sh.Values()
	}
	for k, v := range engine.NormalizeContext(s.Context) {
		ctx[k] = v
	}

	var res engine.Result
	selected := false
	switch {
	case s.Formula != "":
		res, selected = r.ev.Evaluate(s.Formula, ctx), true
	case s.Rule != "":
		res, selected = r.ev.EvaluateRule(r.reg, s.Rule, s.Filters, ctx)
	}

	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}
	tokens := res.Tokens
	if tokens == nil {
		tokens = []string{}
	}

	passed, err := r.env.Eval(s.Expect, map[string]any{
		"value":    res.Value,
		"display":  res.Display,
		"tokens":   tokens,
		"formula":  res.Formula,
		"selected": selected,
		"error":    errText,
		"sheet":    values,
	})
	out.Value = res.Value
	out.Display = res.Display
	out.Passed = passed
	out.Err = err
	return out
}

// RunAll executes every scenario in order.
func (r *Runner) RunAll(list []Scenario) []Outcome {
	outcomes := make([]Outcome, len(list))
	for i, s := range list {
		outcomes[i] = r.Run(s)
	}
	return outcomes
}

func (r *Runner) computeSheet(s Scenario) (*sheet.Sheet, error) {
	if r.loader == nil {
		return nil, errors.New("scenario refers to a character but no data loader is configured")
	}
	ref := s.Character
	if s.Source != "" && !filepath.IsAbs(ref) {
		if candidate := filepath.Join(filepath.Dir(s.Source), ref); fileExists(candidate) {
			ref = candidate
		}
	}
	c, err := r.loader.LoadCharacter(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load character for scenario %s: %w", s.Name, err)
	}
	return r.calc.Compute(c), nil
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
