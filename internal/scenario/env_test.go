package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCELEnv(t *testing.T) {
	env, err := NewEnv()
	require.NoError(t, err)

	vars := map[string]any{
		"value":    16.0,
		"display":  "(+14) + min((+2), 2)",
		"tokens":   []string{"ARMOR_BONUS", "DEX_MOD"},
		"formula":  "{ARMOR_BONUS} + min({DEX_MOD}, 2)",
		"selected": true,
		"error":    "",
		"sheet":    map[string]float64{"armor_class": 16},
	}

	t.Run("Basic Boolean Expression", func(t *testing.T) {
		out, err := env.Eval("value == 16.0 && selected", vars)
		assert.NoError(t, err)
		assert.True(t, out)
	})

	t.Run("Cross type comparison", func(t *testing.T) {
		out, err := env.Eval("value > 15 && value < 17", vars)
		assert.NoError(t, err)
		assert.True(t, out)
	})

	t.Run("Custom Signed Function", func(t *testing.T) {
		out, err := env.Eval("signed(value) == '+16' && signed(-2.0) == '-2' && signed(0.0) == '0'", vars)
		assert.NoError(t, err)
		assert.True(t, out)
	})

	t.Run("Strings and lists", func(t *testing.T) {
		out, err := env.Eval("display.startsWith('(+14)') && 'DEX_MOD' in tokens && size(tokens) == 2", vars)
		assert.NoError(t, err)
		assert.True(t, out)
	})

	t.Run("Sheet values", func(t *testing.T) {
		out, err := env.Eval("sheet['armor_class'] == value", vars)
		assert.NoError(t, err)
		assert.True(t, out)
	})

	t.Run("Failed expectation", func(t *testing.T) {
		out, err := env.Eval("value == 12.0", vars)
		assert.NoError(t, err)
		assert.False(t, out)
	})

	t.Run("Non boolean expression", func(t *testing.T) {
		_, err := env.Eval("value + 1.0", vars)
		assert.Error(t, err)
	})

	t.Run("Unknown variable", func(t *testing.T) {
		_, err := env.Eval("actor.dex > 10", vars)
		assert.Error(t, err)
	})
}
