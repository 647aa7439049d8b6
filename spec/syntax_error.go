package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrInvalidToken     = newSyntaxError("invalid token")
	synErrInvalidEscSeq    = newSyntaxError("invalid escape sequence")
	synErrEmptyPattern     = newSyntaxError("a pattern must include at least one character")
	synErrZeroPos          = newSyntaxError("a position must be greater than or equal to 1")
	synErrUnknownDirective = newSyntaxError("unknown directive")

	// syntax errors
	synErrNoRuleName        = newSyntaxError("a rule must start with its LHS")
	synErrNoAlias           = newSyntaxError("`as` must be followed by a rule name")
	synErrNoColon           = newSyntaxError("the colon must precede a pattern")
	synErrNoSemicolon       = newSyntaxError("the semicolon is missing at the last of a rule")
	synErrNoElement         = newSyntaxError("a pattern needs at least one element")
	synErrGroupUnclosed     = newSyntaxError("unclosed group")
	synErrGroupNoElement    = newSyntaxError("a group needs at least one element")
	synErrDirNoKind         = newSyntaxError("a directive needs a kind name")
	synErrDirNoPattern      = newSyntaxError("%token and %skip need a pattern")
	synErrActionInvalidElem = newSyntaxError("an action consists of strings and positions")
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
	return fmt.Sprintf("semantic error: %s", e.message)
}

var (
	semErrNoRule         = newSemanticError("a grammar must have at least one rule")
	semErrDuplicateStart = newSemanticError("%start is specified more than once")
	semErrUndefinedStart = newSemanticError("no rule produces the start symbol")
	semErrDuplicateKind  = newSemanticError("a lexical kind is defined more than once")
	semErrTokenIsLHS     = newSemanticError("a lexical kind cannot be the LHS of a rule")
	semErrUndefinedKind  = newSemanticError("a kind is neither a lexical kind nor the LHS of a rule")
	semErrSkipKindInRule = newSemanticError("a skipped kind cannot appear in a pattern")
	semErrPosOutOfRange  = newSemanticError("a position exceeds the number of elements")
	semErrNoToken        = newSemanticError("a grammar needs at least one lexical kind")
	semErrInvalidLexSpec = newSemanticError("invalid lexical specification")
)
