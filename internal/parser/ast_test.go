package parser_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/suderio/draconic-rules/internal/parser"
)

func values(m map[string]float64) parser.Resolver {
	return func(token string) float64 { return m[token] }
}

func TestParseArithmetic(t *testing.T) {
	tests := []struct {
		formula string
		want    float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 - 3", 3},
		{"20 / 4 / 5", 1},
		{"-3 + 5", 2},
		{"--3", 3},
		{"+2 * -2", -4},
		{".5 + 1.5", 2},
		{"7 / 2", 3.5},
		{"floor(7 / 2)", 3},
		{"ceil(7 / 2)", 4},
		{"abs(2 - 9)", 7},
		{"min(4, 2, 8)", 2},
		{"MAX(4, 2, 8)", 8},
		{"Floor(-0.5)", -1},
		{"min(1 / 0, 3)", 3},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			expr, err := parser.Parse(tt.formula)
			if err != nil {
				t.Fatalf("Failed to parse: %v", err)
			}
			got, err := expr.Eval(nil)
			if err != nil {
				t.Fatalf("Failed to eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseTokens(t *testing.T) {
	expr, err := parser.Parse("{DEX_MOD} + min({Dex Mod}, 2) + {PROF}")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	refs := expr.Refs()
	want := []string{"DEX_MOD", "Dex Mod", "PROF"}
	if len(refs) != len(want) {
		t.Fatalf("Expected refs %v, got %v", want, refs)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("Expected ref %d to be %q, got %q", i, want[i], refs[i])
		}
	}

	got, err := expr.Eval(values(map[string]float64{"DEX_MOD": 3, "Dex Mod": 1, "PROF": 2}))
	if err != nil {
		t.Fatalf("Failed to eval: %v", err)
	}
	if got != 6 {
		t.Errorf("Expected 6, got %v", got)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    error
	}{
		{"Injected statement", "{X}; alert(1)", parser.ErrSyntax},
		{"Bare identifier", "x + 1", parser.ErrSyntax},
		{"Dangling operator", "1 +", parser.ErrSyntax},
		{"Unbalanced parenthesis", "(1 + 2", parser.ErrSyntax},
		{"Property access", "Math.min(1, 2)", parser.ErrSyntax},
		{"Empty", "", parser.ErrSyntax},
		{"Unknown function", "sqrt(4)", parser.ErrUnknownFunction},
		{"Empty min", "min()", parser.ErrArity},
		{"Two argument floor", "floor(1, 2)", parser.ErrArity},
		{"Too long", strings.Repeat("1+", parser.MaxFormulaLength) + "1", parser.ErrFormulaTooLong},
		{"Too many tokens", strings.TrimSuffix(strings.Repeat("{A}+", parser.MaxTokenRefs+1), "+"), parser.ErrTooManyTokens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.formula)
			if err == nil {
				t.Fatalf("Expected %q to be rejected", tt.formula)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEvalNonFinite(t *testing.T) {
	for _, formula := range []string{"1 / 0", "0 / 0", "floor(-1 / 0)"} {
		expr, err := parser.Parse(formula)
		if err != nil {
			t.Fatalf("Failed to parse %q: %v", formula, err)
		}
		got, err := expr.Eval(nil)
		if !errors.Is(err, parser.ErrNonFinite) {
			t.Errorf("%q: expected ErrNonFinite, got %v", formula, err)
		}
		if got != 0 || math.IsNaN(got) {
			t.Errorf("%q: expected 0, got %v", formula, got)
		}
	}
}
