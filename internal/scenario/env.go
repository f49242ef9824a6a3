package scenario

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/suderio/draconic-rules/internal/engine"
)

// Env manages the CEL environment used for scenario expectations.
type Env struct {
	env *cel.Env
}

// NewEnv declares the variables an expectation can read:
//
//	value     double            evaluated result
//	display   string            display expression
//	tokens    list(string)      tokens referenced by the formula
//	formula   string            the formula that was evaluated
//	selected  bool              whether a formula applied at all
//	error     string            evaluation error, empty on success
//	sheet     map(string,double) computed sheet values, when a character is given
func NewEnv() (*Env, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		cel.CrossTypeNumericComparisons(true),

		cel.Variable("value", cel.DoubleType),
		cel.Variable("display", cel.StringType),
		cel.Variable("tokens", cel.ListType(cel.StringType)),
		cel.Variable("formula", cel.StringType),
		cel.Variable("selected", cel.BoolType),
		cel.Variable("error", cel.StringType),
		cel.Variable("sheet", cel.MapType(cel.StringType, cel.DoubleType)),

		cel.Function("signed",
			cel.Overload("signed_double",
				[]*cel.Type{cel.DoubleType},
				cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					v, ok := val.(types.Double)
					if !ok {
						return types.NewErr("signed: expected double, got %s", val.Type())
					}
					return types.String(engine.FormatSignedValue(float64(v)))
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Env{env: env}, nil
}

// Check compiles an expectation and verifies it yields a bool.
func (e *Env) Check(expression string) (cel.Program, error) {
	ast, iss := e.env.Compile(expression)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", iss.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expectation must be a bool expression, got %s", t)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program error: %w", err)
	}
	return prg, nil
}

// Eval executes an expectation against the provided variables.
func (e *Env) Eval(expression string, vars map[string]any) (bool, error) {
	prg, err := e.Check(expression)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("CEL eval error: %w", err)
	}
	passed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expectation returned %v, not a bool", out.Value())
	}
	return passed, nil
}
