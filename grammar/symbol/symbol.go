package symbol

import "fmt"

// KindEOF is the kind name of the end-of-input token. The name contains `<` and `>` to avoid conflicting with
// user-defined kinds.
const KindEOF = "<eof>"

// KindInvalid is the kind name of a token that no lexical pattern matched.
const KindInvalid = "<invalid>"

// Position is a position in a source. Row and Col are 0-based; String prints them 1-based.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%v:%v", p.Row+1, p.Col+1)
}

// Token is a terminal produced by a lexer.
type Token struct {
	// Kind is a lexical category such as `T_IDENT`.
	Kind string

	// Lexeme is the raw text the token was read from.
	Lexeme string

	Pos Position

	// Index is the ordinal of the token in its stream.
	Index int

	// When this field is true, it means the token is the end of input.
	EOF bool
}

func NewToken(kind string, lexeme string) *Token {
	return &Token{
		Kind:   kind,
		Lexeme: lexeme,
	}
}

func NewEOFToken(pos Position, index int) *Token {
	return &Token{
		Kind:  KindEOF,
		Pos:   pos,
		Index: index,
		EOF:   true,
	}
}

func (t *Token) String() string {
	if t.EOF {
		return KindEOF
	}
	return fmt.Sprintf("%v %q", t.Kind, t.Lexeme)
}

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
)

func (k symbolKind) String() string {
	return string(k)
}

// Symbol is an element of a working stack. A terminal symbol wraps a token, and a non-terminal symbol carries
// an attribute synthesized by a reduction. A symbol has no setter, so its attribute never changes once the
// symbol is built.
type Symbol[A any] struct {
	kind     string
	symKind  symbolKind
	attr     A
	tok      *Token
	pos      Position
	children int
}

// NewTerminal returns a terminal symbol for `tok` carrying `attr`.
func NewTerminal[A any](tok *Token, attr A) *Symbol[A] {
	return &Symbol[A]{
		kind:    tok.Kind,
		symKind: symbolKindTerminal,
		attr:    attr,
		tok:     tok,
		pos:     tok.Pos,
	}
}

// NewNonTerminal returns a non-terminal symbol of `kind` carrying `attr`. `pos` is the position of the leftmost
// symbol the reduction consumed, and `children` is the number of consumed symbols.
func NewNonTerminal[A any](kind string, attr A, pos Position, children int) *Symbol[A] {
	return &Symbol[A]{
		kind:     kind,
		symKind:  symbolKindNonTerminal,
		attr:     attr,
		pos:      pos,
		children: children,
	}
}

func (s *Symbol[A]) Kind() string {
	return s.kind
}

func (s *Symbol[A]) IsTerminal() bool {
	return s.symKind == symbolKindTerminal
}

func (s *Symbol[A]) Attribute() A {
	return s.attr
}

// Token returns the token of a terminal symbol, or nil for a non-terminal symbol.
func (s *Symbol[A]) Token() *Token {
	return s.tok
}

func (s *Symbol[A]) Position() Position {
	return s.pos
}

// ChildCount returns the number of symbols a non-terminal symbol was reduced from.
func (s *Symbol[A]) ChildCount() int {
	return s.children
}

func (s *Symbol[A]) String() string {
	if s.IsTerminal() {
		return s.tok.String()
	}
	return fmt.Sprintf("%v (%v)", s.kind, s.symKind)
}

// Kinds returns the kinds of `syms` in order.
func Kinds[A any](syms []*Symbol[A]) []string {
	kinds := make([]string, len(syms))
	for i, sym := range syms {
		kinds[i] = sym.kind
	}
	return kinds
}
