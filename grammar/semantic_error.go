package grammar

import (
	"fmt"
	"strings"
)

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	ErrEmptyLHS             = newSemanticError("a production needs a non-empty LHS")
	ErrEmptyPattern         = newSemanticError("a pattern needs at least one symbol kind")
	ErrNoAction             = newSemanticError("a production needs a semantic action")
	ErrInvalidPattern       = newSemanticError("invalid pattern")
	ErrCyclicUnitProduction = newSemanticError("productions having a single symbol form a cycle")
	ErrRegistryBuilt        = newSemanticError("a registry builder cannot be used after building")
)

// DuplicatePatternError reports that a production has the same LHS and the same pattern as a production
// registered before it.
type DuplicatePatternError struct {
	LHS     string
	Pattern []string

	// Name is the name of the rejected production.
	Name string

	// First is the number of the production registered first.
	First int
}

func (e *DuplicatePatternError) Error() string {
	return fmt.Sprintf("duplicate pattern; LHS: %v, pattern: %v, rule: %v, already registered as production #%v",
		e.LHS, strings.Join(e.Pattern, " "), e.Name, e.First)
}

// BuildErrors is a list of errors recorded while populating a registry.
type BuildErrors []error

func (e BuildErrors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v", e[0])
	for _, err := range e[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to inspect each recorded error.
func (e BuildErrors) Unwrap() []error {
	return e
}
