package driver

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/moka/grammar"
	"github.com/nihei9/moka/grammar/symbol"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type testSemAct struct {
	actLog []string
}

func (a *testSemAct) Shift(tok *symbol.Token) {
	a.actLog = append(a.actLog, fmt.Sprintf("shift/%v", tok.Kind))
}

func (a *testSemAct) Reduce(rule *grammar.Rule, pos symbol.Position) {
	a.actLog = append(a.actLog, fmt.Sprintf("reduce/%v", rule.LHS))
}

func (a *testSemAct) Accept() {
	a.actLog = append(a.actLog, "accept")
}

func (a *testSemAct) Reject(err error) {
	a.actLog = append(a.actLog, "reject")
}

func TestParserWithSemanticAction(t *testing.T) {
	tests := []struct {
		caption string
		src     []*symbol.Token
		actLog  []string
	}{
		{
			caption: "the parser reports shifts and reductions in order",
			src: []*symbol.Token{
				tok("T_VAR_DEC", "var"),
				tok("T_IDENT", "x"),
				tok("T_ASSIGN", "="),
				tok("T_NUMBER", "1"),
				tok("T_EOL", ";"),
			},
			actLog: []string{
				"shift/T_VAR_DEC",
				"shift/T_IDENT",
				"reduce/S_VAR_DEC",
				"shift/T_ASSIGN",
				"shift/T_NUMBER",
				"reduce/S_DATA",
				"reduce/S_VAR_ASSIGN",
				"shift/T_EOL",
				"reduce/S_STATEMENT",
				"accept",
			},
		},
		{
			caption: "the parser rejects an input after reporting the shift of the unexpected token",
			src: []*symbol.Token{
				tok("T_VAR_DEC", "var"),
				tok("T_EOL", ";"),
			},
			actLog: []string{
				"shift/T_VAR_DEC",
				"shift/T_EOL",
				"reject",
			},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			p, err := NewParser(genVariableRegistry(t), Lexeme)
			if err != nil {
				t.Fatal(err)
			}

			semAct := &testSemAct{}
			p.ParseWithActions(NewSliceTokenStream(tt.src...), semAct)

			if len(semAct.actLog) != len(tt.actLog) {
				t.Fatalf("unexpected action log; want: %+v, got: %+v", tt.actLog, semAct.actLog)
			}
			for i, e := range tt.actLog {
				if semAct.actLog[i] != e {
					t.Fatalf("unexpected action log; want: %+v, got: %+v", tt.actLog, semAct.actLog)
				}
			}
		})
	}
}

func TestTraceActionSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "moka.driver")
	defer teardown()

	p, err := NewParser(genVariableRegistry(t), Lexeme)
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	_, err = p.ParseWithActions(NewSliceTokenStream(
		tok("T_VAR_DEC", "var"),
		tok("T_IDENT", "x"),
		tok("T_EOL", ";"),
	), NewTraceActionSet(&b))
	if err != nil {
		t.Fatal(err)
	}

	expected := `1:1: shift T_VAR_DEC "var"
1:2: shift T_IDENT "x"
1:1: reduce #3 S_VAR_DEC: T_VAR_DEC T_IDENT (S_VAR_DEC)
1:3: shift T_EOL ";"
1:1: reduce #2 S_STATEMENT: S_VAR_DEC T_EOL (S_STATEMENT_VAR_DEC)
accept
`
	if b.String() != expected {
		t.Fatalf("unexpected trace; want:\n%v\ngot:\n%v", expected, b.String())
	}
}

func TestSyntaxTreeActionSet(t *testing.T) {
	p, err := NewParser(genVariableRegistry(t), Lexeme)
	if err != nil {
		t.Fatal(err)
	}

	treeAct := NewSyntaxTreeActionSet()
	_, err = p.ParseWithActions(NewSliceTokenStream(
		tok("T_VAR_DEC", "var"),
		tok("T_IDENT", "x"),
		tok("T_EOL", ";"),
	), treeAct)
	if err != nil {
		t.Fatal(err)
	}

	tree := treeAct.Tree()
	if tree == nil {
		t.Fatal("an accepted parse must build a tree")
	}

	var b strings.Builder
	PrintTree(&b, tree)
	expected := `S_STATEMENT (S_STATEMENT_VAR_DEC)
├─ S_VAR_DEC
│  ├─ T_VAR_DEC "var"
│  └─ T_IDENT "x"
└─ T_EOL ";"
`
	if b.String() != expected {
		t.Fatalf("unexpected tree; want:\n%v\ngot:\n%v", expected, b.String())
	}

	j, err := json.Marshal(tree.Children[0].Children[1])
	if err != nil {
		t.Fatal(err)
	}
	expectedJSON := `{"type":1,"kind_name":"T_IDENT","text":"x","row":0,"col":1}`
	if string(j) != expectedJSON {
		t.Fatalf("unexpected JSON; want: %v, got: %v", expectedJSON, string(j))
	}

	_, err = p.ParseWithActions(NewSliceTokenStream(tok("T_IDENT", "x")), treeAct)
	if err == nil {
		t.Fatal("a parse must fail")
	}
	if treeAct.Tree() != nil {
		t.Fatal("a rejected parse must not leave a tree")
	}
}
