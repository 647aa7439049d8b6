package driver

import "github.com/nihei9/moka/grammar/symbol"

// TokenStream is a finite sequence of terminals. After the last token, Next returns a token whose EOF
// field is true, and keeps returning it.
type TokenStream interface {
	Next() (*symbol.Token, error)
}

type sliceTokenStream struct {
	toks []*symbol.Token
	next int
	eof  *symbol.Token
}

// NewSliceTokenStream returns a TokenStream yielding `toks`. Index fields are renumbered in order, and a
// token without a position is placed at column Index.
func NewSliceTokenStream(toks ...*symbol.Token) TokenStream {
	ts := make([]*symbol.Token, len(toks))
	for i, tok := range toks {
		t := *tok
		t.Index = i
		if t.Pos == (symbol.Position{}) {
			t.Pos = symbol.Position{Row: 0, Col: i}
		}
		ts[i] = &t
	}

	var eofPos symbol.Position
	if len(ts) > 0 {
		last := ts[len(ts)-1]
		eofPos = symbol.Position{
			Row: last.Pos.Row,
			Col: last.Pos.Col + len([]rune(last.Lexeme)),
		}
	}

	return &sliceTokenStream{
		toks: ts,
		eof:  symbol.NewEOFToken(eofPos, len(ts)),
	}
}

func (s *sliceTokenStream) Next() (*symbol.Token, error) {
	if s.next >= len(s.toks) {
		return s.eof, nil
	}
	tok := s.toks[s.next]
	s.next++
	return tok, nil
}
