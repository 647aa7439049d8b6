package spec

import (
	"io"

	verr "github.com/nihei9/moka/error"
)

type RootNode struct {
	Directives []*DirectiveNode
	Rules      []*RuleNode
}

// DirectiveNode is `%start KIND`, `%token KIND PATTERN`, or `%skip KIND PATTERN`.
type DirectiveNode struct {
	Name    string
	Kind    string
	Pattern string

	// When Literal is true, Pattern matches itself. Otherwise, Pattern is a regular expression.
	Literal bool

	// Source is the path of the file the directive was read from. It is empty for an unnamed source.
	Source string

	Pos Position
}

type RuleNode struct {
	LHS      string
	Name     string
	Elements []*ElementNode

	// Action is nil when a rule has no `=>`.
	Action *ActionNode

	Source string
	Pos    Position
}

// ElementNode is a kind or a group of elements in a pattern.
type ElementNode struct {
	Kind     string
	Group    []*ElementNode
	Optional bool
	Pos      Position
}

type ActionNode struct {
	Elements []*ActionElementNode
}

// ActionElementNode is either a piece of text or a reference `$n` to the n-th element of a pattern.
type ActionElementNode struct {
	Text     string
	Position int
	Pos      Position
}

func raiseSyntaxError(synErr *SyntaxError, pos Position) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   pos.Row,
		Col:   pos.Col,
	})
}

// fatalError is an error that stops parsing, such as an I/O error.
type fatalError struct {
	err error
}

// Parse parses a grammar file. When the file has syntax errors, Parse keeps parsing from the next rule
// or directive and returns all of them as verr.SpecErrors.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return root, nil
}

type parser struct {
	lex       *specLexer
	peekedTok *token
	lastTok   *token
	errs      verr.SpecErrors
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			fErr, ok := err.(*fatalError)
			if !ok {
				panic(err)
			}
			retErr = fErr.err
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for !p.parseItem(root) {
	}
	return root
}

// parseItem parses a directive or a rule. It returns true when it reaches the end of input.
func (p *parser) parseItem(root *RootNode) (eof bool) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		specErr, ok := err.(*verr.SpecError)
		if !ok {
			panic(err)
		}
		p.errs = append(p.errs, specErr)
		p.skipOverError()
	}()

	if p.consume(tokenKindEOF) {
		return true
	}
	if p.consume(tokenKindDirective) {
		root.Directives = append(root.Directives, p.parseDirective())
		return false
	}
	root.Rules = append(root.Rules, p.parseRule())
	return false
}

// skipOverError skips tokens until the end of the broken rule or the beginning of the next directive.
// Errors in the skipped tokens are not reported.
func (p *parser) skipOverError() {
	for {
		tok, ok := p.tryPeek()
		if !ok {
			continue
		}
		switch tok.kind {
		case tokenKindEOF, tokenKindDirective:
			return
		}
		p.peekedTok = nil
		if tok.kind == tokenKindSemicolon {
			return
		}
	}
}

func (p *parser) tryPeek() (tok *token, ok bool) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		if _, isSpecErr := err.(*verr.SpecError); !isSpecErr {
			panic(err)
		}
		tok = nil
		ok = false
	}()
	return p.peek(), true
}

func (p *parser) parseDirective() *DirectiveNode {
	dirTok := p.lastTok
	dir := &DirectiveNode{
		Name: dirTok.text,
		Pos:  dirTok.pos,
	}
	switch dir.Name {
	case "start", "token", "skip":
	default:
		panic(&verr.SpecError{
			Cause:  synErrUnknownDirective,
			Detail: dir.Name,
			Row:    dirTok.pos.Row,
			Col:    dirTok.pos.Col,
		})
	}

	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrDirNoKind, p.peek().pos)
	}
	dir.Kind = p.lastTok.text
	if dir.Name == "start" {
		return dir
	}

	switch {
	case p.consume(tokenKindLiteral):
		dir.Pattern = p.lastTok.text
		dir.Literal = true
	case p.consume(tokenKindString):
		dir.Pattern = regExpOf(p.lastTok.text)
	default:
		raiseSyntaxError(synErrDirNoPattern, p.peek().pos)
	}
	if dir.Pattern == "" {
		raiseSyntaxError(synErrEmptyPattern, p.lastTok.pos)
	}
	return dir
}

func (p *parser) parseRule() *RuleNode {
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoRuleName, p.peek().pos)
	}
	rule := &RuleNode{
		LHS: p.lastTok.text,
		Pos: p.lastTok.pos,
	}

	if p.consume(tokenKindID) {
		if p.lastTok.text != "as" {
			raiseSyntaxError(synErrNoColon, p.lastTok.pos)
		}
		if !p.consume(tokenKindID) {
			raiseSyntaxError(synErrNoAlias, p.peek().pos)
		}
		rule.Name = p.lastTok.text
	}
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(synErrNoColon, p.peek().pos)
	}

	rule.Elements = p.parseElements()
	if len(rule.Elements) == 0 {
		raiseSyntaxError(synErrNoElement, p.peek().pos)
	}

	if p.consume(tokenKindArrow) {
		rule.Action = p.parseAction()
	}

	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(synErrNoSemicolon, p.peek().pos)
	}
	return rule
}

func (p *parser) parseElements() []*ElementNode {
	elems := []*ElementNode{}
	for {
		var elem *ElementNode
		switch {
		case p.consume(tokenKindID):
			elem = &ElementNode{
				Kind: p.lastTok.text,
				Pos:  p.lastTok.pos,
			}
		case p.consume(tokenKindGroupOpen):
			pos := p.lastTok.pos
			group := p.parseElements()
			if len(group) == 0 {
				raiseSyntaxError(synErrGroupNoElement, pos)
			}
			if !p.consume(tokenKindGroupClose) {
				raiseSyntaxError(synErrGroupUnclosed, pos)
			}
			elem = &ElementNode{
				Group: group,
				Pos:   pos,
			}
		default:
			return elems
		}
		if p.consume(tokenKindOption) {
			elem.Optional = true
		}
		elems = append(elems, elem)
	}
}

func (p *parser) parseAction() *ActionNode {
	act := &ActionNode{
		Elements: []*ActionElementNode{},
	}
	for {
		switch {
		case p.consume(tokenKindString):
			text, ok := textOf(p.lastTok.text)
			if !ok {
				panic(&verr.SpecError{
					Cause:  synErrInvalidEscSeq,
					Detail: p.lastTok.text,
					Row:    p.lastTok.pos.Row,
					Col:    p.lastTok.pos.Col,
				})
			}
			act.Elements = append(act.Elements, &ActionElementNode{
				Text: text,
				Pos:  p.lastTok.pos,
			})
		case p.consume(tokenKindLiteral):
			act.Elements = append(act.Elements, &ActionElementNode{
				Text: p.lastTok.text,
				Pos:  p.lastTok.pos,
			})
		case p.consume(tokenKindPosition):
			act.Elements = append(act.Elements, &ActionElementNode{
				Position: p.lastTok.num,
				Pos:      p.lastTok.pos,
			})
		default:
			tok := p.peek()
			if tok.kind != tokenKindSemicolon {
				raiseSyntaxError(synErrActionInvalidElem, tok.pos)
			}
			return act
		}
	}
}

func (p *parser) peek() *token {
	if p.peekedTok == nil {
		p.peekedTok = p.read()
	}
	return p.peekedTok
}

func (p *parser) read() *token {
	tok, err := p.lex.next()
	if err != nil {
		if specErr, ok := err.(*verr.SpecError); ok {
			panic(specErr)
		}
		panic(&fatalError{
			err: err,
		})
	}
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek()
	if tok.kind == tokenKindInvalid {
		p.peekedTok = nil
		panic(&verr.SpecError{
			Cause:  synErrInvalidToken,
			Detail: tok.text,
			Row:    tok.pos.Row,
			Col:    tok.pos.Col,
		})
	}
	if tok.kind == expected {
		p.peekedTok = nil
		p.lastTok = tok
		return true
	}
	return false
}
