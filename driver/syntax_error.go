package driver

import (
	"fmt"
	"strings"

	"github.com/nihei9/moka/grammar"
	"github.com/nihei9/moka/grammar/symbol"
)

// ParseContext describes the state of a parser at the time a parse failed.
type ParseContext struct {
	// Stack holds the kinds on the working stack from bottom to top.
	Stack []string

	// Token is the token the parser was processing. It is the EOF token when the input ran out, and nil
	// when a semantic action of a production failed after a non-terminal.
	Token *symbol.Token

	// Pos is the position of the failure.
	Pos symbol.Position
}

func (c *ParseContext) describe() string {
	if c.Token == nil {
		return fmt.Sprintf("stack: [%v]", strings.Join(c.Stack, " "))
	}
	return fmt.Sprintf("stack: [%v], token: %v", strings.Join(c.Stack, " "), c.Token)
}

// UnexpectedTokenError reports a token that no pattern can consume. When the input ran out while the
// working stack still held unreduced terminals, Token is the EOF token.
type UnexpectedTokenError struct {
	ParseContext

	// Expected holds the terminal kinds the parser could have consumed.
	Expected []string
}

func (e *UnexpectedTokenError) Error() string {
	var b strings.Builder
	if e.Token.EOF {
		fmt.Fprintf(&b, "%v: unexpected end of input", e.Pos)
	} else {
		fmt.Fprintf(&b, "%v: unexpected token: %v", e.Pos, e.Token)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(e.Expected, ", "))
	}
	fmt.Fprintf(&b, "; %v", e.describe())
	return b.String()
}

// IncompleteParseError reports that the input ran out while the working stack held something other than a
// single start symbol.
type IncompleteParseError struct {
	ParseContext

	Start string
}

func (e *IncompleteParseError) Error() string {
	return fmt.Sprintf("%v: incomplete parse; the input must be reduced to a single %v; %v", e.Pos, e.Start, e.describe())
}

// ActionError reports that a semantic action rejected its arguments. When the rejected value belongs to a
// terminal, Rule is nil and Name is the kind of the terminal.
type ActionError struct {
	ParseContext

	Rule  *grammar.Rule
	Name  string
	Cause error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%v: semantic action %v failed: %v; %v", e.Pos, e.Name, e.Cause, e.describe())
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}
