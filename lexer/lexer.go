package lexer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/nihei9/moka/grammar/symbol"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'moka.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("moka.lexer")
}

// Entry defines a lexical kind.
type Entry struct {
	// Kind is the kind name tokens of this entry carry, such as `T_IDENT`.
	Kind string

	// Pattern is a regular expression in the maleeni syntax, or a plain string when Literal is true.
	Pattern string

	Literal bool

	// When Skip is true, a lexer drops the tokens of this entry.
	Skip bool
}

// Spec is a compiled lexical specification. When several entries match the longest prefix of the input,
// the entry defined first wins.
type Spec struct {
	entries []*Entry
	clspec  *mlspec.CompiledLexSpec

	// kinds and skip are indexed by the kind IDs of maleeni.
	kinds []string
	skip  []bool
}

// Compile compiles `entries` into a Spec.
func Compile(entries []*Entry) (*Spec, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("a lexical specification needs at least one entry")
	}

	// maleeni accepts only snake_case kind names, so each kind gets an internal name.
	internal2Kind := map[string]*Entry{}
	kinds := map[string]struct{}{}
	mlEntries := make([]*mlspec.LexEntry, 0, len(entries))
	for i, e := range entries {
		switch {
		case e.Kind == "":
			return nil, fmt.Errorf("entry #%v has no kind", i+1)
		case e.Kind == symbol.KindEOF || e.Kind == symbol.KindInvalid:
			return nil, fmt.Errorf("%v is a reserved kind", e.Kind)
		case e.Pattern == "":
			return nil, fmt.Errorf("%v has an empty pattern", e.Kind)
		}
		if _, ok := kinds[e.Kind]; ok {
			return nil, fmt.Errorf("%v is defined more than once", e.Kind)
		}
		kinds[e.Kind] = struct{}{}

		pattern := e.Pattern
		if e.Literal {
			pattern = mlspec.EscapePattern(pattern)
		}
		name := fmt.Sprintf("k_%v", i+1)
		internal2Kind[name] = e
		mlEntries = append(mlEntries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(name),
			Pattern: mlspec.LexPattern(pattern),
		})
	}

	clspec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Entries: mlEntries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0], internal2Kind)
			for _, cErr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cErr, internal2Kind)
			}
			return nil, errors.New(b.String())
		}
		return nil, err
	}

	s := &Spec{
		entries: entries,
		clspec:  clspec,
		kinds:   make([]string, len(clspec.KindNames)),
		skip:    make([]bool, len(clspec.KindNames)),
	}
	for id, name := range clspec.KindNames {
		if name == mlspec.LexKindNameNil {
			continue
		}
		e, ok := internal2Kind[name.String()]
		if !ok {
			return nil, fmt.Errorf("kind '%v' was not found in the lexical specification", name)
		}
		s.kinds[id] = e.Kind
		s.skip[id] = e.Skip
	}

	return s, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError, internal2Kind map[string]*Entry) {
	kind := fmt.Sprint(cErr.Kind)
	if e, ok := internal2Kind[kind]; ok {
		kind = e.Kind
	}
	fmt.Fprintf(w, "%v: %v", kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

// Entries returns the entries in definition order.
func (s *Spec) Entries() []*Entry {
	return s.entries
}

// Kinds returns the kinds tokens of this specification can carry. Skipped kinds are excluded.
func (s *Spec) Kinds() []string {
	kinds := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Skip {
			continue
		}
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// NewTokenStream returns a stream of the tokens `src` consists of.
func (s *Spec) NewTokenStream(src io.Reader) (*TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(s.clspec), src)
	if err != nil {
		return nil, err
	}
	return &TokenStream{
		spec: s,
		lex:  lex,
	}, nil
}

// TokenStream yields tokens read by maleeni. A character sequence no entry matches becomes a token of kind
// symbol.KindInvalid, and the parser rejects it like any other unexpected token.
type TokenStream struct {
	spec  *Spec
	lex   *mldriver.Lexer
	index int
	eof   *symbol.Token
}

func (ts *TokenStream) Next() (*symbol.Token, error) {
	if ts.eof != nil {
		return ts.eof, nil
	}

	for {
		tok, err := ts.lex.Next()
		if err != nil {
			return nil, err
		}

		pos := symbol.Position{
			Row: tok.Row,
			Col: tok.Col,
		}
		if tok.EOF {
			ts.eof = symbol.NewEOFToken(pos, ts.index)
			return ts.eof, nil
		}

		var kind string
		if tok.Invalid {
			tracer().Debugf("invalid input at %v: %q", pos, tok.Lexeme)
			kind = symbol.KindInvalid
		} else {
			if ts.spec.skip[tok.KindID] {
				continue
			}
			kind = ts.spec.kinds[tok.KindID]
		}

		t := &symbol.Token{
			Kind:   kind,
			Lexeme: string(tok.Lexeme),
			Pos:    pos,
			Index:  ts.index,
		}
		ts.index++
		return t, nil
	}
}
