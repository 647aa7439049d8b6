package spec

import (
	"io"
	"strconv"
	"strings"
	"sync"

	verr "github.com/nihei9/moka/error"
	"github.com/nihei9/moka/grammar/symbol"
	"github.com/nihei9/moka/lexer"
)

type tokenKind string

const (
	tokenKindDirective  = tokenKind("directive")
	tokenKindID         = tokenKind("id")
	tokenKindLiteral    = tokenKind("literal")
	tokenKindString     = tokenKind("string")
	tokenKindPosition   = tokenKind("$")
	tokenKindArrow      = tokenKind("=>")
	tokenKindColon      = tokenKind(":")
	tokenKindSemicolon  = tokenKind(";")
	tokenKindGroupOpen  = tokenKind("(")
	tokenKindGroupClose = tokenKind(")")
	tokenKindOption     = tokenKind("?")
	tokenKindEOF        = tokenKind("eof")
	tokenKindInvalid    = tokenKind("invalid")
)

// Position is a position in a grammar file. Row and Col are 1-based.
type Position struct {
	Row int
	Col int
}

func newPosition(pos symbol.Position) Position {
	return Position{
		Row: pos.Row + 1,
		Col: pos.Col + 1,
	}
}

type token struct {
	kind tokenKind
	text string
	num  int
	pos  Position
}

var (
	lexSpecOnce sync.Once
	lexSpec     *lexer.Spec
	lexSpecErr  error
)

// grammarLexSpec returns the lexical specification of grammar files.
func grammarLexSpec() (*lexer.Spec, error) {
	lexSpecOnce.Do(func() {
		lexSpec, lexSpecErr = lexer.Compile([]*lexer.Entry{
			{Kind: "white_space", Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`, Skip: true},
			{Kind: "comment", Pattern: `[#][^\u{000A}]*`, Skip: true},
			{Kind: string(tokenKindDirective), Pattern: `[%][a-z]+`},
			{Kind: string(tokenKindID), Pattern: `[A-Za-z_][0-9A-Za-z_]*`},
			{Kind: string(tokenKindLiteral), Pattern: `'([^'\\\u{000A}]|\\[^\u{000A}])*'`},
			{Kind: string(tokenKindString), Pattern: `"([^"\\\u{000A}]|\\[^\u{000A}])*"`},
			{Kind: string(tokenKindPosition), Pattern: `[$][0-9]+`},
			{Kind: string(tokenKindArrow), Pattern: "=>", Literal: true},
			{Kind: string(tokenKindColon), Pattern: ":", Literal: true},
			{Kind: string(tokenKindSemicolon), Pattern: ";", Literal: true},
			{Kind: string(tokenKindGroupOpen), Pattern: "(", Literal: true},
			{Kind: string(tokenKindGroupClose), Pattern: ")", Literal: true},
			{Kind: string(tokenKindOption), Pattern: "?", Literal: true},
		})
	})
	return lexSpec, lexSpecErr
}

type specLexer struct {
	toks *lexer.TokenStream
}

func newLexer(src io.Reader) (*specLexer, error) {
	s, err := grammarLexSpec()
	if err != nil {
		return nil, err
	}
	toks, err := s.NewTokenStream(src)
	if err != nil {
		return nil, err
	}
	return &specLexer{
		toks: toks,
	}, nil
}

func (l *specLexer) next() (*token, error) {
	tok, err := l.toks.Next()
	if err != nil {
		return nil, err
	}

	pos := newPosition(tok.Pos)
	if tok.EOF {
		return &token{
			kind: tokenKindEOF,
			pos:  pos,
		}, nil
	}

	switch tokenKind(tok.Kind) {
	case tokenKindDirective:
		// Remove '%' character.
		return &token{
			kind: tokenKindDirective,
			text: tok.Lexeme[1:],
			pos:  pos,
		}, nil
	case tokenKindID:
		return &token{
			kind: tokenKindID,
			text: tok.Lexeme,
			pos:  pos,
		}, nil
	case tokenKindLiteral:
		text, ok := unescapeLiteral(tok.Lexeme[1 : len(tok.Lexeme)-1])
		if !ok {
			return nil, &verr.SpecError{
				Cause:  synErrInvalidEscSeq,
				Detail: tok.Lexeme,
				Row:    pos.Row,
				Col:    pos.Col,
			}
		}
		return &token{
			kind: tokenKindLiteral,
			text: text,
			pos:  pos,
		}, nil
	case tokenKindString:
		// The escape sequences in a string are interpreted by its user because a string is either a regular
		// expression or a piece of an action.
		return &token{
			kind: tokenKindString,
			text: tok.Lexeme[1 : len(tok.Lexeme)-1],
			pos:  pos,
		}, nil
	case tokenKindPosition:
		// Remove '$' character and convert to an integer.
		num, err := strconv.Atoi(tok.Lexeme[1:])
		if err != nil {
			return nil, &verr.SpecError{
				Cause:  err,
				Detail: tok.Lexeme,
				Row:    pos.Row,
				Col:    pos.Col,
			}
		}
		if num == 0 {
			return nil, &verr.SpecError{
				Cause: synErrZeroPos,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		return &token{
			kind: tokenKindPosition,
			num:  num,
			pos:  pos,
		}, nil
	case tokenKindArrow, tokenKindColon, tokenKindSemicolon, tokenKindGroupOpen, tokenKindGroupClose, tokenKindOption:
		return &token{
			kind: tokenKind(tok.Kind),
			pos:  pos,
		}, nil
	default:
		return &token{
			kind: tokenKindInvalid,
			text: tok.Lexeme,
			pos:  pos,
		}, nil
	}
}

// unescapeLiteral interprets \' and \\ in a literal pattern.
func unescapeLiteral(s string) (string, bool) {
	var b strings.Builder
	escaped := false
	for _, c := range s {
		if escaped {
			if c != '\'' && c != '\\' {
				return "", false
			}
			b.WriteRune(c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(c)
	}
	return b.String(), true
}

// regExpOf returns the regular expression a string denotes. \" is a delimiter of the grammar file, so
// it's interpreted here, and other escape sequences are left to maleeni.
func regExpOf(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

// textOf interprets the escape sequences of Go string literals in a string used in an action.
func textOf(s string) (string, bool) {
	text, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return "", false
	}
	return text, true
}
