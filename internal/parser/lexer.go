package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer splits a formula into tokens. Any character outside these rules is
// a lexing error, which is what keeps arbitrary input from being evaluated.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Token", Pattern: `\{[^{}]*\}`},
	{Name: "Number", Pattern: `(?:\d+\.?\d*|\.\d+)`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Operator", Pattern: `[-+*/(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Build creates our parser based on the struct tags in `ast.go`
func Build() *participle.Parser[Expression] {
	return participle.MustBuild[Expression](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
	)
}

var formulaParser = Build()

const (
	// MaxFormulaLength bounds the size of a formula in bytes.
	MaxFormulaLength = 256
	// MaxTokenRefs bounds the number of {TOKEN} references in a formula.
	MaxTokenRefs = 32
)

// Parse parses a formula into an expression tree, enforcing the size limits.
func Parse(formula string) (*Expression, error) {
	if len(formula) > MaxFormulaLength {
		return nil, ErrFormulaTooLong
	}
	expr, err := formulaParser.ParseString("", formula)
	if err != nil {
		return nil, MapError(formula, err)
	}
	if n := len(expr.Refs()); n > MaxTokenRefs {
		return nil, fmt.Errorf("%w: %d references", ErrTooManyTokens, n)
	}
	if err := expr.check(); err != nil {
		return nil, err
	}
	return expr, nil
}
