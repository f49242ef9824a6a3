package parser

import (
	"fmt"
	"math"
	"strings"
)

// Resolver returns the value of a token. It receives the text between the
// braces exactly as written.
type Resolver func(token string) float64

// Expression is a sum of terms: Term (("+" | "-") Term)*
type Expression struct {
	Left  *Term     `parser:"@@"`
	Right []*OpTerm `parser:"@@*"`
}

// OpTerm is one additive step of an Expression.
type OpTerm struct {
	Operator string `parser:"@(\"+\" | \"-\")"`
	Term     *Term  `parser:"@@"`
}

// Term is a product of unary factors: Unary (("*" | "/") Unary)*
type Term struct {
	Left  *Unary      `parser:"@@"`
	Right []*OpFactor `parser:"@@*"`
}

// OpFactor is one multiplicative step of a Term.
type OpFactor struct {
	Operator string `parser:"@(\"*\" | \"/\")"`
	Factor   *Unary `parser:"@@"`
}

// Unary is a signed factor.
type Unary struct {
	Sign    string   `parser:"  ( @(\"-\" | \"+\")"`
	Unary   *Unary   `parser:"    @@ )"`
	Primary *Primary `parser:"| @@"`
}

// Primary is a literal, a {TOKEN}, a function call or a parenthesized expression.
type Primary struct {
	Number *float64    `parser:"  @Number"`
	Token  *string     `parser:"| @Token"`
	Call   *Call       `parser:"| @@"`
	Sub    *Expression `parser:"| \"(\" @@ \")\""`
}

// Call applies one of the math functions min, max, abs, floor or ceil.
// Names are case-insensitive.
type Call struct {
	Name string        `parser:"@Ident \"(\""`
	Args []*Expression `parser:"( @@ ( \",\" @@ )* )? \")\""`
}

// TokenName strips the braces from a {TOKEN} literal.
func TokenName(raw string) string {
	return strings.TrimSuffix(strings.TrimPrefix(raw, "{"), "}")
}

// Eval computes the expression. Only the final result is checked for
// finiteness, so min(1/0, 3) is still 3.
func (e *Expression) Eval(resolve Resolver) (float64, error) {
	v, err := e.eval(resolve)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

func (e *Expression) eval(resolve Resolver) (float64, error) {
	acc, err := e.Left.eval(resolve)
	if err != nil {
		return 0, err
	}
	for _, op := range e.Right {
		v, err := op.Term.eval(resolve)
		if err != nil {
			return 0, err
		}
		if op.Operator == "+" {
			acc += v
		} else {
			acc -= v
		}
	}
	return acc, nil
}

func (t *Term) eval(resolve Resolver) (float64, error) {
	acc, err := t.Left.eval(resolve)
	if err != nil {
		return 0, err
	}
	for _, op := range t.Right {
		v, err := op.Factor.eval(resolve)
		if err != nil {
			return 0, err
		}
		if op.Operator == "*" {
			acc *= v
		} else {
			acc /= v
		}
	}
	return acc, nil
}

func (u *Unary) eval(resolve Resolver) (float64, error) {
	if u.Primary != nil {
		return u.Primary.eval(resolve)
	}
	v, err := u.Unary.eval(resolve)
	if err != nil {
		return 0, err
	}
	if u.Sign == "-" {
		return -v, nil
	}
	return v, nil
}

func (p *Primary) eval(resolve Resolver) (float64, error) {
	switch {
	case p.Number != nil:
		return *p.Number, nil
	case p.Token != nil:
		if resolve == nil {
			return 0, nil
		}
		return resolve(TokenName(*p.Token)), nil
	case p.Call != nil:
		return p.Call.eval(resolve)
	case p.Sub != nil:
		return p.Sub.eval(resolve)
	}
	return 0, fmt.Errorf("empty operand")
}

func (c *Call) eval(resolve Resolver) (float64, error) {
	args := make([]float64, len(c.Args))
	for i, a := range c.Args {
		v, err := a.eval(resolve)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	switch strings.ToLower(c.Name) {
	case "min":
		return fold(args, math.Min), nil
	case "max":
		return fold(args, math.Max), nil
	case "abs":
		return math.Abs(args[0]), nil
	case "floor":
		return math.Floor(args[0]), nil
	case "ceil":
		return math.Ceil(args[0]), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFunction, c.Name)
}

func fold(args []float64, f func(a, b float64) float64) float64 {
	acc := args[0]
	for _, v := range args[1:] {
		acc = f(acc, v)
	}
	return acc
}

// arity lists the accepted argument counts; -1 means "one or more".
var arity = map[string]int{
	"min":   -1,
	"max":   -1,
	"abs":   1,
	"floor": 1,
	"ceil":  1,
}

// check validates function names and argument counts so that Eval never
// has to guess.
func (e *Expression) check() error {
	var err error
	e.walk(func(p *Primary) {
		if err != nil || p.Call == nil {
			return
		}
		name := strings.ToLower(p.Call.Name)
		want, ok := arity[name]
		switch {
		case !ok:
			err = fmt.Errorf("%w: %s", ErrUnknownFunction, p.Call.Name)
		case want == -1 && len(p.Call.Args) == 0:
			err = fmt.Errorf("%w: %s needs at least one argument", ErrArity, name)
		case want > 0 && len(p.Call.Args) != want:
			err = fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrArity, name, want, len(p.Call.Args))
		}
	})
	return err
}

// Refs returns the raw token names in the order they appear, duplicates included.
func (e *Expression) Refs() []string {
	var refs []string
	e.walk(func(p *Primary) {
		if p.Token != nil {
			refs = append(refs, TokenName(*p.Token))
		}
	})
	return refs
}

// walk visits every Primary in source order.
func (e *Expression) walk(fn func(*Primary)) {
	e.Left.walk(fn)
	for _, op := range e.Right {
		op.Term.walk(fn)
	}
}

func (t *Term) walk(fn func(*Primary)) {
	t.Left.walk(fn)
	for _, op := range t.Right {
		op.Factor.walk(fn)
	}
}

func (u *Unary) walk(fn func(*Primary)) {
	if u.Primary == nil {
		u.Unary.walk(fn)
		return
	}
	p := u.Primary
	fn(p)
	switch {
	case p.Call != nil:
		for _, a := range p.Call.Args {
			a.walk(fn)
		}
	case p.Sub != nil:
		p.Sub.walk(fn)
	}
}
