package spec

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	verr "github.com/nihei9/moka/error"
)

func TestParse(t *testing.T) {
	src := `
# comment
%start S_LIST
%token T_A 'a'
%token T_QUOT '\''
%token T_STR "\"[a-z]*\""
%skip WS "[\u{0009}\u{0020}]+"

S_LIST as list : T_A (T_COMMA T_A)? T_SEMI? => "[" $1 $3 "]" '!' ;
S_ITEM : T_A ;
`
	root, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	expectedDirs := []*DirectiveNode{
		{Name: "start", Kind: "S_LIST", Pos: Position{Row: 3, Col: 1}},
		{Name: "token", Kind: "T_A", Pattern: "a", Literal: true, Pos: Position{Row: 4, Col: 1}},
		{Name: "token", Kind: "T_QUOT", Pattern: "'", Literal: true, Pos: Position{Row: 5, Col: 1}},
		{Name: "token", Kind: "T_STR", Pattern: `"[a-z]*"`, Pos: Position{Row: 6, Col: 1}},
		{Name: "skip", Kind: "WS", Pattern: `[\u{0009}\u{0020}]+`, Pos: Position{Row: 7, Col: 1}},
	}
	if len(root.Directives) != len(expectedDirs) {
		t.Fatalf("unexpected directive count; want: %v, got: %v", len(expectedDirs), len(root.Directives))
	}
	for i, expected := range expectedDirs {
		actual := root.Directives[i]
		if *actual != *expected {
			t.Fatalf("unexpected directive; want: %+v, got: %+v", expected, actual)
		}
	}

	if len(root.Rules) != 2 {
		t.Fatalf("unexpected rule count; want: 2, got: %v", len(root.Rules))
	}

	list := root.Rules[0]
	if list.LHS != "S_LIST" || list.Name != "list" {
		t.Fatalf("unexpected rule; LHS: %v, name: %v", list.LHS, list.Name)
	}
	if list.Pos != (Position{Row: 9, Col: 1}) {
		t.Fatalf("unexpected position: %+v", list.Pos)
	}
	if fmt.Sprint(formatElements(list.Elements)) != "T_A (T_COMMA T_A)? T_SEMI?" {
		t.Fatalf("unexpected elements: %v", formatElements(list.Elements))
	}
	if list.Elements[1].Pos != (Position{Row: 9, Col: 22}) {
		t.Fatalf("unexpected position of a group: %+v", list.Elements[1].Pos)
	}
	if list.Action == nil {
		t.Fatal("an action is missing")
	}
	var act []string
	for _, elem := range list.Action.Elements {
		if elem.Position > 0 {
			act = append(act, fmt.Sprintf("$%v", elem.Position))
		} else {
			act = append(act, fmt.Sprintf("%q", elem.Text))
		}
	}
	if strings.Join(act, " ") != `"[" $1 $3 "]" "!"` {
		t.Fatalf("unexpected action: %v", act)
	}

	item := root.Rules[1]
	if item.LHS != "S_ITEM" || item.Name != "" || item.Action != nil {
		t.Fatalf("unexpected rule; LHS: %v, name: %v, action: %v", item.LHS, item.Name, item.Action)
	}
}

func TestParse_DirectivesOnly(t *testing.T) {
	root, err := Parse(strings.NewReader(`%token T_A 'a'
%skip WS ' '`))
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Directives) != 2 || len(root.Rules) != 0 {
		t.Fatalf("unexpected nodes; directives: %v, rules: %v", len(root.Directives), len(root.Rules))
	}
}

func formatElements(elems []*ElementNode) string {
	var b strings.Builder
	for i, elem := range elems {
		if i > 0 {
			b.WriteString(" ")
		}
		if elem.Group != nil {
			fmt.Fprintf(&b, "(%v)", formatElements(elem.Group))
		} else {
			b.WriteString(elem.Kind)
		}
		if elem.Optional {
			b.WriteString("?")
		}
	}
	return b.String()
}

func TestParse_SyntaxError(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		causes  []error
		pos     *Position
	}{
		{
			caption: "a rule needs a semicolon",
			src:     `S : T_A`,
			causes:  []error{synErrNoSemicolon},
		},
		{
			caption: "a rule needs a colon",
			src:     `S foo : T_A ;`,
			causes:  []error{synErrNoColon},
			pos:     &Position{Row: 1, Col: 3},
		},
		{
			caption: "`as` needs a rule name",
			src:     `S as : T_A ;`,
			causes:  []error{synErrNoAlias},
			pos:     &Position{Row: 1, Col: 6},
		},
		{
			caption: "a rule needs at least one element",
			src:     `S : ;`,
			causes:  []error{synErrNoElement},
			pos:     &Position{Row: 1, Col: 5},
		},
		{
			caption: "a group must be closed",
			src:     `S : (T_A ;`,
			causes:  []error{synErrGroupUnclosed},
			pos:     &Position{Row: 1, Col: 5},
		},
		{
			caption: "a group needs at least one element",
			src:     `S : () ;`,
			causes:  []error{synErrGroupNoElement},
			pos:     &Position{Row: 1, Col: 5},
		},
		{
			caption: "an action cannot contain kinds",
			src:     `S : T_A => T_B ;`,
			causes:  []error{synErrActionInvalidElem},
			pos:     &Position{Row: 1, Col: 12},
		},
		{
			caption: "a position must be greater than 0",
			src:     `S : T_A => $0 ;`,
			causes:  []error{synErrZeroPos},
			pos:     &Position{Row: 1, Col: 12},
		},
		{
			caption: "a directive must be known",
			src: `%foo T_A 'a'
S : T_A ;`,
			causes: []error{synErrUnknownDirective},
			pos:    &Position{Row: 1, Col: 1},
		},
		{
			caption: "%token needs a kind",
			src: `%token 'a'
S : T_A ;`,
			causes: []error{synErrDirNoKind},
			pos:    &Position{Row: 1, Col: 8},
		},
		{
			caption: "%token needs a pattern",
			src: `%token T_A
S : T_A ;`,
			causes: []error{synErrDirNoPattern},
			pos:    &Position{Row: 2, Col: 1},
		},
		{
			caption: "a pattern must not be empty",
			src: `%token T_A ''
S : T_A ;`,
			causes: []error{synErrEmptyPattern},
			pos:    &Position{Row: 1, Col: 12},
		},
		{
			caption: "a literal pattern accepts only \\' and \\\\ as escape sequences",
			src: `%token T_A '\q'
S : T_A ;`,
			causes: []error{synErrInvalidEscSeq},
			pos:    &Position{Row: 1, Col: 12},
		},
		{
			caption: "a string in an action must be a valid string",
			src:     `S : T_A => "\q" ;`,
			causes:  []error{synErrInvalidEscSeq},
			pos:     &Position{Row: 1, Col: 12},
		},
		{
			caption: "an invalid character is an invalid token",
			src:     `S : T_A ! ;`,
			causes:  []error{synErrInvalidToken},
			pos:     &Position{Row: 1, Col: 9},
		},
		{
			caption: "the parser reports errors in every rule",
			src: `S : ;
T : T_A
%start S
U : T_A => T_B ;
V : T_A ;`,
			causes: []error{synErrNoElement, synErrNoSemicolon, synErrActionInvalidElem},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("Parse must fail")
			}
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error type; want: verr.SpecErrors, got: %T (%v)", err, err)
			}
			if len(specErrs) != len(tt.causes) {
				t.Fatalf("unexpected error count; want: %v, got: %v (%v)", len(tt.causes), len(specErrs), specErrs)
			}
			for i, cause := range tt.causes {
				if specErrs[i].Cause != cause {
					t.Fatalf("unexpected error; want: %v, got: %v", cause, specErrs[i].Cause)
				}
			}
			if tt.pos != nil {
				pos := Position{Row: specErrs[0].Row, Col: specErrs[0].Col}
				if pos != *tt.pos {
					t.Fatalf("unexpected position; want: %+v, got: %+v", *tt.pos, pos)
				}
			}
		})
	}
}
