package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/nihei9/moka/grammar"
	"github.com/nihei9/moka/grammar/symbol"
)

// SemanticActionSet observes a parse. Unlike the semantic actions of productions, these callbacks cannot
// change the result of a parse.
type SemanticActionSet interface {
	// Shift runs when the parser shifts a terminal onto the working stack.
	Shift(tok *symbol.Token)

	// Reduce runs after the parser reduced the top of the working stack by `rule`. `pos` is the position of
	// the leftmost consumed symbol.
	Reduce(rule *grammar.Rule, pos symbol.Position)

	// Accept runs when the parser accepts an input.
	Accept()

	// Reject runs when a parse fails. `err` is the error Parse returns.
	Reject(err error)
}

type nopActionSet struct{}

func (nopActionSet) Shift(tok *symbol.Token)                        {}
func (nopActionSet) Reduce(rule *grammar.Rule, pos symbol.Position) {}
func (nopActionSet) Accept()                                        {}
func (nopActionSet) Reject(err error)                               {}

var _ SemanticActionSet = &TraceActionSet{}

// TraceActionSet writes a line per parser action.
type TraceActionSet struct {
	w io.Writer
}

func NewTraceActionSet(w io.Writer) *TraceActionSet {
	return &TraceActionSet{
		w: w,
	}
}

func (a *TraceActionSet) Shift(tok *symbol.Token) {
	fmt.Fprintf(a.w, "%v: shift %v\n", tok.Pos, tok)
}

func (a *TraceActionSet) Reduce(rule *grammar.Rule, pos symbol.Position) {
	fmt.Fprintf(a.w, "%v: reduce #%v %v (%v)\n", pos, rule.Num, rule, rule.Name)
}

func (a *TraceActionSet) Accept() {
	fmt.Fprintf(a.w, "accept\n")
}

func (a *TraceActionSet) Reject(err error) {
	fmt.Fprintf(a.w, "reject\n")
}

var _ SemanticActionSet = &SyntaxTreeActionSet{}

// SyntaxTreeActionSet builds the derivation tree of a parse.
type SyntaxTreeActionSet struct {
	semStack *semanticStack
	tree     *Node
}

func NewSyntaxTreeActionSet() *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		semStack: newSemanticStack(),
	}
}

func (a *SyntaxTreeActionSet) Shift(tok *symbol.Token) {
	a.semStack.push(&Node{
		Type:     NodeTypeTerminal,
		KindName: tok.Kind,
		Text:     tok.Lexeme,
		Row:      tok.Pos.Row,
		Col:      tok.Pos.Col,
	})
}

func (a *SyntaxTreeActionSet) Reduce(rule *grammar.Rule, pos symbol.Position) {
	a.semStack.push(&Node{
		Type:     NodeTypeNonTerminal,
		KindName: rule.LHS,
		RuleName: rule.Name,
		Row:      pos.Row,
		Col:      pos.Col,
		Children: a.semStack.pop(len(rule.Pattern)),
	})
}

func (a *SyntaxTreeActionSet) Accept() {
	top := a.semStack.pop(1)
	a.tree = top[0]
}

func (a *SyntaxTreeActionSet) Reject(err error) {
	a.semStack = newSemanticStack()
	a.tree = nil
}

// Tree returns the tree when the parser has accepted an input. If the parse failed, the return value is nil.
func (a *SyntaxTreeActionSet) Tree() *Node {
	return a.tree
}

type semanticStack struct {
	frames []*Node
}

func newSemanticStack() *semanticStack {
	return &semanticStack{
		frames: make([]*Node, 0, 100),
	}
}

func (s *semanticStack) push(f *Node) {
	s.frames = append(s.frames, f)
}

func (s *semanticStack) pop(n int) []*Node {
	fs := make([]*Node, n)
	copy(fs, s.frames[len(s.frames)-n:])
	s.frames = s.frames[:len(s.frames)-n]

	return fs
}

type NodeType int

const (
	NodeTypeTerminal    = NodeType(1)
	NodeTypeNonTerminal = NodeType(2)
)

type Node struct {
	Type     NodeType
	KindName string

	// RuleName is the name of the production that built a non-terminal node.
	RuleName string

	Text     string
	Row      int
	Col      int
	Children []*Node
}

func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeTypeTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Text     string   `json:"text"`
			Row      int      `json:"row"`
			Col      int      `json:"col"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Text:     n.Text,
			Row:      n.Row,
			Col:      n.Col,
		})
	case NodeTypeNonTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			RuleName string   `json:"rule_name"`
			Children []*Node  `json:"children"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			RuleName: n.RuleName,
			Children: n.Children,
		})
	default:
		return nil, fmt.Errorf("invalid node type: %v", n.Type)
	}
}

// PrintTree prints a tree whose root is `node`.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Type == NodeTypeTerminal {
		fmt.Fprintf(w, "%v%v %v\n", ruledLine, node.KindName, strconv.Quote(node.Text))
		return
	}

	if node.RuleName != "" && node.RuleName != node.KindName {
		fmt.Fprintf(w, "%v%v (%v)\n", ruledLine, node.KindName, node.RuleName)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}
