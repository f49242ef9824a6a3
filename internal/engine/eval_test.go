package engine

import (
	"math"
	"sync"
	"testing"

	"github.com/suderio/draconic-rules/internal/parser"
	"github.com/suderio/draconic-rules/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedEvaluator() (*Evaluator, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewEvaluator(WithLogger(zap.New(core))), logs
}

func TestEvaluate(t *testing.T) {
	ev := NewEvaluator()

	t.Run("Round trip display", func(t *testing.T) {
		res := ev.Evaluate("{DEX_MOD} + {PROF}", map[string]float64{"DEX_MOD": 3, "PROF": 2})
		require.NoError(t, res.Err)
		assert.Equal(t, 5.0, res.Value)
		assert.Equal(t, "(+3) + (+2)", res.Display)
		assert.Equal(t, []string{"DEX_MOD", "PROF"}, res.Tokens)
	})

	t.Run("Proficiency bonus by level", func(t *testing.T) {
		res := ev.Evaluate("floor(({LEVEL} - 1) / 4) + 2", map[string]float64{"LEVEL": 9})
		require.NoError(t, res.Err)
		assert.Equal(t, 4.0, res.Value)
		assert.Equal(t, "floor(((+9) - 1) / 4) + 2", res.Display)
	})

	t.Run("Token spellings resolve to one context entry", func(t *testing.T) {
		ctx := map[string]float64{"strength mod": 4}
		for _, formula := range []string{"{Strength_Mod}", "{STRENGTH_MOD}", "{strength mod}", "{ strength-mod }"} {
			res := ev.Evaluate(formula, ctx)
			assert.Equal(t, 4.0, res.Value, formula)
			assert.Equal(t, []string{"STRENGTH_MOD"}, res.Tokens, formula)
		}
	})

	t.Run("Missing and non-finite context values count as zero", func(t *testing.T) {
		res := ev.Evaluate("{A} + {B} + {C} + 1", map[string]float64{"B": math.NaN(), "C": math.Inf(1)})
		require.NoError(t, res.Err)
		assert.Equal(t, 1.0, res.Value)
		assert.Equal(t, "(0) + (0) + (0) + 1", res.Display)
	})

	t.Run("Tokens are deduplicated in first-seen order", func(t *testing.T) {
		res := ev.Evaluate("{B} + {a} * {b} - {A}", nil)
		assert.Equal(t, []string{"B", "A"}, res.Tokens)
	})

	t.Run("Function names are shown lower-case", func(t *testing.T) {
		res := ev.Evaluate("MIN({X}, 2) + Abs({Y})", map[string]float64{"X": -1, "Y": -3})
		require.NoError(t, res.Err)
		assert.Equal(t, 2.0, res.Value)
		assert.Equal(t, "min((-1), 2) + abs((-3))", res.Display)
	})
}

func TestEvaluateFailsSoft(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    error
	}{
		{"Injected statement", "{X}; alert(1)", parser.ErrSyntax},
		{"Letters after substitution", "{X} + constructor", parser.ErrSyntax},
		{"Unknown function", "pow({X}, 2)", parser.ErrUnknownFunction},
		{"Division by zero", "{X} / 0", parser.ErrNonFinite},
		{"Empty formula", "", parser.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, logs := observedEvaluator()
			var res Result
			assert.NotPanics(t, func() {
				res = ev.Evaluate(tt.formula, map[string]float64{"X": 5})
			})
			assert.Equal(t, 0.0, res.Value)
			assert.ErrorIs(t, res.Err, tt.want)
			assert.Equal(t, 1, logs.FilterMessage("formula evaluation failed").Len())
		})
	}
}

func TestFormatSignedValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "+3"},
		{-2, "-2"},
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{math.NaN(), "0"},
		{math.Inf(1), "0"},
		{math.Inf(-1), "0"},
		{1.5, "+1.5"},
		{-0.25, "-0.25"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSignedValue(tt.in))
	}
}

func TestSelect(t *testing.T) {
	formulas := []rules.RuleFormula{
		{Formula: "10", Conditions: map[string]string{}},
		{Formula: "12", Conditions: map[string]string{"armor_type": "heavy"}},
	}

	t.Run("Most specific wins", func(t *testing.T) {
		f, ok := Select(formulas, map[string]string{"armor_type": "heavy"})
		require.True(t, ok)
		assert.Equal(t, "12", f.Formula)
	})

	t.Run("Falls back to the unconditional formula", func(t *testing.T) {
		f, ok := Select(formulas, map[string]string{"armor_type": "light"})
		require.True(t, ok)
		assert.Equal(t, "10", f.Formula)

		f, ok = Select(formulas, nil)
		require.True(t, ok)
		assert.Equal(t, "10", f.Formula)
	})

	t.Run("Filters are normalized", func(t *testing.T) {
		f, ok := Select(formulas, map[string]string{"Armor Type": " HEAVY "})
		require.True(t, ok)
		assert.Equal(t, "12", f.Formula)
	})

	t.Run("Every condition must hold", func(t *testing.T) {
		candidates := []rules.RuleFormula{
			{Formula: "a", Conditions: map[string]string{"proficiency": "expert", "advantage": "true"}},
			{Formula: "b", Conditions: map[string]string{"proficiency": "expert"}},
		}
		f, ok := Select(candidates, map[string]string{"proficiency": "expert"})
		require.True(t, ok)
		assert.Equal(t, "b", f.Formula)

		f, ok = Select(candidates, map[string]string{"proficiency": "expert", "advantage": "true"})
		require.True(t, ok)
		assert.Equal(t, "a", f.Formula)
	})

	t.Run("Earlier formula wins a tie", func(t *testing.T) {
		candidates := []rules.RuleFormula{
			{Formula: "first", Conditions: map[string]string{"armor_type": "medium"}},
			{Formula: "second", Conditions: map[string]string{"shield": "true"}},
		}
		f, ok := Select(candidates, map[string]string{"armor_type": "medium", "shield": "true"})
		require.True(t, ok)
		assert.Equal(t, "first", f.Formula)
	})

	t.Run("Nothing eligible and no fallback", func(t *testing.T) {
		_, ok := Select(formulas[1:], map[string]string{"armor_type": "none"})
		assert.False(t, ok)

		_, ok = Select(nil, nil)
		assert.False(t, ok)
	})
}

func TestArmorClassScenario(t *testing.T) {
	reg := rules.Load([]rules.RawRule{{
		Name: "armor_class",
		Type: "derived",
		CalculateFormulas: []map[string]any{
			{"formula": "{BASE_AC} + {DEX_MOD}"},
			{"formula": "{ARMOR_BONUS} + min({DEX_MOD}, 2)", "armor_type": "medium"},
		},
	}})
	ev := NewEvaluator()
	ctx := map[string]float64{"DEX_MOD": 2, "ARMOR_BONUS": 14, "BASE_AC": 10}

	res, ok := ev.EvaluateRule(reg, "armor_class", map[string]string{"armor_type": "medium"}, ctx)
	require.True(t, ok)
	assert.Equal(t, 16.0, res.Value)
	assert.Equal(t, "(+14) + min((+2), 2)", res.Display)

	res, ok = ev.EvaluateRule(reg, "armor_class", map[string]string{"armor_type": "none"}, ctx)
	require.True(t, ok)
	assert.Equal(t, 12.0, res.Value)

	_, ok = ev.EvaluateRule(reg, "unknown", nil, ctx)
	assert.False(t, ok)
}

func TestEvaluateConcurrently(t *testing.T) {
	ev := NewEvaluator()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(level float64) {
			defer wg.Done()
			res := ev.Evaluate("floor(({LEVEL} - 1) / 4) + 2", map[string]float64{"LEVEL": level})
			assert.Equal(t, math.Floor((level-1)/4)+2, res.Value)
		}(float64(i + 1))
	}
	wg.Wait()
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("{A} + max({B}, 1)"))
	assert.Error(t, Validate("{A} +"))
}

func TestNormalizeContextCollisions(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx := NormalizeContext(map[string]float64{"dex_mod": 5, "DEX_MOD": 2, "Dex Mod": 7})
		require.Equal(t, map[string]float64{"DEX_MOD": 2}, ctx)

		ctx = NormalizeContext(map[string]float64{"dex_mod": 5, "Dex-Mod": 7})
		require.Equal(t, map[string]float64{"DEX_MOD": 7}, ctx)
	}
}

func TestDisplayNormalizesContext(t *testing.T) {
	assert.Equal(t, "(+3) + (-1)", Display("{DEX_MOD} + {str mod}", map[string]float64{"dex_mod": 3, "STR_MOD": -1}))
}
