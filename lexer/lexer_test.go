package lexer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/moka/grammar/symbol"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func genVariableEntries() []*Entry {
	return []*Entry{
		{Kind: "T_VAR_DEC", Pattern: "var", Literal: true},
		{Kind: "T_IDENT", Pattern: "[A-Za-z_][0-9A-Za-z_]*"},
		{Kind: "T_ASSIGN", Pattern: "=", Literal: true},
		{Kind: "T_NUMBER", Pattern: "[0-9]+"},
		{Kind: "T_EOL", Pattern: ";", Literal: true},
		{Kind: "WS", Pattern: "[\\u{0009}\\u{000A}\\u{000D}\\u{0020}]+", Skip: true},
	}
}

func TestTokenStream_Next(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "moka.lexer")
	defer teardown()

	tests := []struct {
		caption string
		src     string
		tokens  []*symbol.Token
	}{
		{
			caption: "a keyword takes precedence over an identifier of the same length",
			src:     "var x = 1;",
			tokens: []*symbol.Token{
				{Kind: "T_VAR_DEC", Lexeme: "var", Pos: symbol.Position{Row: 0, Col: 0}},
				{Kind: "T_IDENT", Lexeme: "x", Pos: symbol.Position{Row: 0, Col: 4}},
				{Kind: "T_ASSIGN", Lexeme: "=", Pos: symbol.Position{Row: 0, Col: 6}},
				{Kind: "T_NUMBER", Lexeme: "1", Pos: symbol.Position{Row: 0, Col: 8}},
				{Kind: "T_EOL", Lexeme: ";", Pos: symbol.Position{Row: 0, Col: 9}},
			},
		},
		{
			caption: "the longest match wins",
			src:     "variable;",
			tokens: []*symbol.Token{
				{Kind: "T_IDENT", Lexeme: "variable", Pos: symbol.Position{Row: 0, Col: 0}},
				{Kind: "T_EOL", Lexeme: ";", Pos: symbol.Position{Row: 0, Col: 8}},
			},
		},
		{
			caption: "positions count rows",
			src:     "var x;\nvar y;",
			tokens: []*symbol.Token{
				{Kind: "T_VAR_DEC", Lexeme: "var", Pos: symbol.Position{Row: 0, Col: 0}},
				{Kind: "T_IDENT", Lexeme: "x", Pos: symbol.Position{Row: 0, Col: 4}},
				{Kind: "T_EOL", Lexeme: ";", Pos: symbol.Position{Row: 0, Col: 5}},
				{Kind: "T_VAR_DEC", Lexeme: "var", Pos: symbol.Position{Row: 1, Col: 0}},
				{Kind: "T_IDENT", Lexeme: "y", Pos: symbol.Position{Row: 1, Col: 4}},
				{Kind: "T_EOL", Lexeme: ";", Pos: symbol.Position{Row: 1, Col: 5}},
			},
		},
		{
			caption: "an unknown character becomes an invalid token",
			src:     "var !",
			tokens: []*symbol.Token{
				{Kind: "T_VAR_DEC", Lexeme: "var", Pos: symbol.Position{Row: 0, Col: 0}},
				{Kind: symbol.KindInvalid, Lexeme: "!", Pos: symbol.Position{Row: 0, Col: 4}},
			},
		},
		{
			caption: "an empty source yields only the end of input",
			src:     "",
		},
	}
	s, err := Compile(genVariableEntries())
	if err != nil {
		t.Fatal(err)
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			ts, err := s.NewTokenStream(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			for n, expected := range tt.tokens {
				tok, err := ts.Next()
				if err != nil {
					t.Fatal(err)
				}
				if tok.EOF {
					t.Fatalf("unexpected end of input; want: %v", expected)
				}
				if tok.Kind != expected.Kind || tok.Lexeme != expected.Lexeme || tok.Pos != expected.Pos {
					t.Fatalf("unexpected token; want: %v at %v, got: %v at %v", expected, expected.Pos, tok, tok.Pos)
				}
				if tok.Index != n {
					t.Fatalf("unexpected index; want: %v, got: %v", n, tok.Index)
				}
			}

			// The end of input repeats.
			for n := 0; n < 2; n++ {
				tok, err := ts.Next()
				if err != nil {
					t.Fatal(err)
				}
				if !tok.EOF {
					t.Fatalf("the end of input is expected; got: %v", tok)
				}
				if tok.Index != len(tt.tokens) {
					t.Fatalf("unexpected index of the end of input; want: %v, got: %v", len(tt.tokens), tok.Index)
				}
			}
		})
	}
}

func TestSpec_Kinds(t *testing.T) {
	s, err := Compile(genVariableEntries())
	if err != nil {
		t.Fatal(err)
	}
	kinds := fmt.Sprint(s.Kinds())
	if kinds != "[T_VAR_DEC T_IDENT T_ASSIGN T_NUMBER T_EOL]" {
		t.Fatalf("unexpected kinds: %v", kinds)
	}
	if len(s.Entries()) != 6 {
		t.Fatalf("unexpected entry count: %v", len(s.Entries()))
	}
}

func TestCompile_Error(t *testing.T) {
	tests := []struct {
		caption string
		entries []*Entry
		detail  string
	}{
		{
			caption: "a specification needs entries",
			entries: nil,
		},
		{
			caption: "a kind must not be empty",
			entries: []*Entry{
				{Kind: "", Pattern: "a"},
			},
		},
		{
			caption: "a kind must not be defined twice",
			entries: []*Entry{
				{Kind: "T_A", Pattern: "a"},
				{Kind: "T_A", Pattern: "b"},
			},
			detail: "T_A",
		},
		{
			caption: "a pattern must not be empty",
			entries: []*Entry{
				{Kind: "T_A", Pattern: ""},
			},
			detail: "T_A",
		},
		{
			caption: "the kind of the end of input is reserved",
			entries: []*Entry{
				{Kind: symbol.KindEOF, Pattern: "a"},
			},
			detail: symbol.KindEOF,
		},
		{
			caption: "an invalid pattern is reported with its kind",
			entries: []*Entry{
				{Kind: "T_A", Pattern: "a"},
				{Kind: "T_BROKEN", Pattern: "[a"},
			},
			detail: "T_BROKEN",
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			_, err := Compile(tt.entries)
			if err == nil {
				t.Fatal("Compile must fail")
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Fatalf("an error message must contain %v; got: %v", tt.detail, err)
			}
		})
	}
}
