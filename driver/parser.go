package driver

import (
	"fmt"

	"github.com/nihei9/moka/grammar"
	"github.com/nihei9/moka/grammar/symbol"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'moka.driver'.
func tracer() tracing.Trace {
	return tracing.Select("moka.driver")
}

// TerminalValue computes the attribute a terminal symbol carries from its token.
type TerminalValue[A any] func(tok *symbol.Token) (A, error)

// Lexeme is a TerminalValue for grammars synthesizing text. A terminal carries its lexeme.
func Lexeme(tok *symbol.Token) (string, error) {
	return tok.Lexeme, nil
}

type parserConfig struct {
	start string
}

type ParserOption func(c *parserConfig) error

// StartSymbol sets the kind a successful parse must reduce its input to. By default, the start symbol is
// the LHS of the first registered production.
func StartSymbol(kind string) ParserOption {
	return func(c *parserConfig) error {
		if kind == "" {
			return fmt.Errorf("a start symbol must be a non-empty kind")
		}
		c.start = kind
		return nil
	}
}

// Parser reduces terminal streams using productions of a registry. A parser holds no state of a parse, so
// one parser can run parses on different goroutines at the same time.
type Parser[A any] struct {
	reg     *grammar.Registry[A]
	termVal TerminalValue[A]
	start   string
}

func NewParser[A any](reg *grammar.Registry[A], termVal TerminalValue[A], opts ...ParserOption) (*Parser[A], error) {
	if reg == nil {
		return nil, fmt.Errorf("a parser needs a registry")
	}
	if termVal == nil {
		return nil, fmt.Errorf("a parser needs a terminal value function")
	}

	c := &parserConfig{}
	for _, opt := range opts {
		err := opt(c)
		if err != nil {
			return nil, err
		}
	}

	if c.start == "" {
		if prod, ok := reg.Production(1); ok {
			c.start = prod.LHS
		}
	} else if reg.Len() > 0 && !reg.IsNonTerminal(c.start) {
		return nil, fmt.Errorf("no production produces the start symbol %v", c.start)
	}

	return &Parser[A]{
		reg:     reg,
		termVal: termVal,
		start:   c.start,
	}, nil
}

// Start returns the kind of the start symbol.
func (p *Parser[A]) Start() string {
	return p.start
}

// Parse reduces `toks` to a single start symbol and returns its attribute.
func (p *Parser[A]) Parse(toks TokenStream) (A, error) {
	return p.ParseWithActions(toks, nil)
}

// ParseWithActions is the same as Parse except that it reports the progress of the parse to `act`.
func (p *Parser[A]) ParseWithActions(toks TokenStream, act SemanticActionSet) (A, error) {
	if act == nil {
		act = nopActionSet{}
	}
	r := &run[A]{
		Parser: p,
		toks:   toks,
		act:    act,
	}
	v, err := r.parse()
	if err != nil {
		act.Reject(err)
		var zero A
		return zero, err
	}
	act.Accept()
	return v, nil
}

// run is the state of a single parse.
type run[A any] struct {
	*Parser[A]
	toks  TokenStream
	act   SemanticActionSet
	stack []*symbol.Symbol[A]
	kinds []string
}

func (r *run[A]) parse() (A, error) {
	var zero A
	for {
		if prod, ok := r.reg.Match(r.kinds); ok {
			err := r.reduce(prod)
			if err != nil {
				return zero, err
			}
			continue
		}

		tok, err := r.toks.Next()
		if err != nil {
			return zero, err
		}
		if tok.EOF {
			return r.finish(tok)
		}

		err = r.shift(tok)
		if err != nil {
			return zero, err
		}
	}
}

func (r *run[A]) shift(tok *symbol.Token) error {
	tracer().Debugf("shift %v at %v", tok, tok.Pos)

	attr, err := r.termVal(tok)
	if err != nil {
		return &ActionError{
			ParseContext: r.context(tok),
			Name:         tok.Kind,
			Cause:        err,
		}
	}
	r.push(symbol.NewTerminal(tok, attr))
	r.act.Shift(tok)

	// A terminal that no pattern can consume stays on the stack forever, so the parse fails here rather
	// than at the end of input.
	if !r.reg.Viable(r.kinds) && !r.isAccepting() {
		below := r.kinds[:len(r.kinds)-1]
		return &UnexpectedTokenError{
			ParseContext: r.context(tok),
			Expected:     r.reg.Expected(r.start, below),
		}
	}
	return nil
}

func (r *run[A]) reduce(prod *grammar.Production[A]) error {
	n := len(prod.Pattern)
	handle := r.stack[len(r.stack)-n:]
	attrs := make([]A, n)
	for i, sym := range handle {
		attrs[i] = sym.Attribute()
	}

	attr, err := prod.Apply(attrs)
	if err != nil {
		tracer().Errorf("semantic action of production #%v (%v) failed: %v", prod.Num, prod.Name, err)
		ctx := r.context(handle[n-1].Token())
		ctx.Pos = handle[0].Position()
		return &ActionError{
			ParseContext: ctx,
			Rule:         &prod.Rule,
			Name:         prod.Name,
			Cause:        err,
		}
	}

	pos := handle[0].Position()
	r.pop(n)
	r.push(symbol.NewNonTerminal(prod.LHS, attr, pos, n))

	tracer().Debugf("reduce #%v %v", prod.Num, &prod.Rule)
	r.act.Reduce(&prod.Rule, pos)

	return nil
}

func (r *run[A]) finish(eof *symbol.Token) (A, error) {
	var zero A
	if r.isAccepting() {
		return r.stack[0].Attribute(), nil
	}

	for _, sym := range r.stack {
		if sym.IsTerminal() {
			return zero, &UnexpectedTokenError{
				ParseContext: r.context(eof),
				Expected:     r.reg.Expected(r.start, r.kinds),
			}
		}
	}

	return zero, &IncompleteParseError{
		ParseContext: r.context(eof),
		Start:        r.start,
	}
}

func (r *run[A]) isAccepting() bool {
	return len(r.stack) == 1 && r.kinds[0] == r.start
}

func (r *run[A]) context(tok *symbol.Token) ParseContext {
	stack := make([]string, len(r.kinds))
	copy(stack, r.kinds)
	ctx := ParseContext{
		Stack: stack,
		Token: tok,
	}
	if tok != nil {
		ctx.Pos = tok.Pos
	}
	return ctx
}

func (r *run[A]) push(sym *symbol.Symbol[A]) {
	r.stack = append(r.stack, sym)
	r.kinds = append(r.kinds, sym.Kind())
}

func (r *run[A]) pop(n int) {
	r.stack = r.stack[:len(r.stack)-n]
	r.kinds = r.kinds[:len(r.kinds)-n]
}
