package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
)

var (
	ErrSyntax          = errors.New("syntax error")
	ErrFormulaTooLong  = fmt.Errorf("formula longer than %d bytes", MaxFormulaLength)
	ErrTooManyTokens   = fmt.Errorf("formula references more than %d tokens", MaxTokenRefs)
	ErrUnknownFunction = errors.New("unknown function")
	ErrArity           = errors.New("wrong number of arguments")
	ErrNonFinite       = errors.New("result is not a finite number")
)

// MapError takes a raw formula and a participle error, and returns a message a
// rule author can act on. The result always wraps ErrSyntax.
func MapError(input string, err error) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return fmt.Errorf("%w in %q: %v", ErrSyntax, input, err)
	}

	pos := perr.Position()
	if pos.Offset >= len(input) {
		return fmt.Errorf("%w in %q: formula ends too early", ErrSyntax, input)
	}
	return fmt.Errorf("%w in %q at column %d: %s", ErrSyntax, input, pos.Column, perr.Message())
}
