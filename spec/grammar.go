package spec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	verr "github.com/nihei9/moka/error"
	"github.com/nihei9/moka/grammar"
	"github.com/nihei9/moka/lexer"
)

// Grammar is a checked grammar file. Every kind in its patterns is either a lexical kind or the LHS of a
// rule, and every position in its actions refers to an element of its pattern.
type Grammar struct {
	start   string
	entries []*lexer.Entry
	rules   []*RuleNode
}

// Load parses a grammar file and checks it.
func Load(src io.Reader) (*Grammar, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return NewGrammar(root)
}

// ParseFile parses a grammar file and records `path` as the source of its directives and rules. Errors
// are located in the file.
func ParseFile(path string) (*RootNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	root, err := Parse(f)
	if err != nil {
		var specErrs verr.SpecErrors
		if errors.As(err, &specErrs) {
			for _, e := range specErrs {
				e.FilePath = path
				e.SourceName = path
			}
		}
		return nil, err
	}
	for _, dir := range root.Directives {
		dir.Source = path
	}
	for _, rule := range root.Rules {
		rule.Source = path
	}
	return root, nil
}

// Merge concatenates the directives and the rules of grammar files in order. Rules producing the same
// kind in different files are alternatives of that kind, and a kind can be defined in only one file.
func Merge(roots ...*RootNode) *RootNode {
	merged := &RootNode{}
	for _, root := range roots {
		merged.Directives = append(merged.Directives, root.Directives...)
		merged.Rules = append(merged.Rules, root.Rules...)
	}
	return merged
}

func NewGrammar(root *RootNode) (*Grammar, error) {
	var errs verr.SpecErrors
	addErr := func(cause error, detail string, src string, pos Position) {
		errs = append(errs, &verr.SpecError{
			Cause:      cause,
			Detail:     detail,
			FilePath:   src,
			SourceName: src,
			Row:        pos.Row,
			Col:        pos.Col,
		})
	}

	if len(root.Rules) == 0 {
		addErr(semErrNoRule, "", "", Position{})
	}

	lhs := map[string]struct{}{}
	for _, rule := range root.Rules {
		lhs[rule.LHS] = struct{}{}
	}

	var start string
	var startDir *DirectiveNode
	entries := []*lexer.Entry{}
	kind2Entry := map[string]*lexer.Entry{}
	for _, dir := range root.Directives {
		switch dir.Name {
		case "start":
			if startDir != nil {
				addErr(semErrDuplicateStart, dir.Kind, dir.Source, dir.Pos)
				continue
			}
			startDir = dir
			start = dir.Kind
		case "token", "skip":
			if _, ok := kind2Entry[dir.Kind]; ok {
				addErr(semErrDuplicateKind, dir.Kind, dir.Source, dir.Pos)
				continue
			}
			if _, ok := lhs[dir.Kind]; ok {
				addErr(semErrTokenIsLHS, dir.Kind, dir.Source, dir.Pos)
				continue
			}
			e := &lexer.Entry{
				Kind:    dir.Kind,
				Pattern: dir.Pattern,
				Literal: dir.Literal,
				Skip:    dir.Name == "skip",
			}
			entries = append(entries, e)
			kind2Entry[dir.Kind] = e
		}
	}

	if startDir != nil {
		if _, ok := lhs[start]; !ok {
			addErr(semErrUndefinedStart, start, startDir.Source, startDir.Pos)
		}
	} else if len(root.Rules) > 0 {
		start = root.Rules[0].LHS
	}

	for _, rule := range root.Rules {
		var check func(elems []*ElementNode)
		check = func(elems []*ElementNode) {
			for _, elem := range elems {
				if elem.Group != nil {
					check(elem.Group)
					continue
				}
				if _, ok := lhs[elem.Kind]; ok {
					continue
				}
				e, ok := kind2Entry[elem.Kind]
				if !ok {
					addErr(semErrUndefinedKind, elem.Kind, rule.Source, elem.Pos)
					continue
				}
				if e.Skip {
					addErr(semErrSkipKindInRule, elem.Kind, rule.Source, elem.Pos)
				}
			}
		}
		check(rule.Elements)

		if rule.Action == nil {
			continue
		}
		arity := countElements(rule.Elements)
		for _, elem := range rule.Action.Elements {
			if elem.Position > arity {
				addErr(semErrPosOutOfRange, fmt.Sprintf("$%v", elem.Position), rule.Source, elem.Pos)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Grammar{
		start:   start,
		entries: entries,
		rules:   root.Rules,
	}, nil
}

func countElements(elems []*ElementNode) int {
	n := 0
	for _, elem := range elems {
		if elem.Group != nil {
			n += countElements(elem.Group)
		} else {
			n++
		}
	}
	return n
}

// Start returns the kind named by %start, or the LHS of the first rule when %start is absent.
func (g *Grammar) Start() string {
	return g.start
}

// LexEntries returns the lexical kinds in definition order.
func (g *Grammar) LexEntries() []*lexer.Entry {
	return g.entries
}

func (g *Grammar) Rules() []*RuleNode {
	return g.rules
}

// LexSpec compiles the lexical kinds of the grammar.
func (g *Grammar) LexSpec() (*lexer.Spec, error) {
	if len(g.entries) == 0 {
		return nil, verr.SpecErrors{
			{
				Cause: semErrNoToken,
			},
		}
	}
	s, err := lexer.Compile(g.entries)
	if err != nil {
		return nil, verr.SpecErrors{
			{
				Cause:  semErrInvalidLexSpec,
				Detail: err.Error(),
			},
		}
	}
	return s, nil
}

// Registry registers the rules in order. A rule produces strings: its action concatenates the texts and
// the referenced arguments, and a rule without an action concatenates all of its arguments.
func (g *Grammar) Registry() (*grammar.Registry[string], error) {
	var errs verr.SpecErrors
	b := grammar.NewRegistryBuilder[string]()
	for _, rule := range g.rules {
		_, err := b.RegisterElements(rule.Name, rule.LHS, toElements(rule.Elements), genAction(rule.Action))
		if err != nil {
			errs = append(errs, &verr.SpecError{
				Cause:      err,
				FilePath:   rule.Source,
				SourceName: rule.Source,
				Row:        rule.Pos.Row,
				Col:        rule.Pos.Col,
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	reg, err := b.Build()
	if err != nil {
		var bErrs grammar.BuildErrors
		if !errors.As(err, &bErrs) {
			return nil, err
		}
		for _, e := range bErrs {
			errs = append(errs, &verr.SpecError{
				Cause: e,
			})
		}
		return nil, errs
	}
	return reg, nil
}

func toElements(nodes []*ElementNode) []*grammar.Element {
	elems := make([]*grammar.Element, len(nodes))
	for i, node := range nodes {
		elem := &grammar.Element{
			Kind:     node.Kind,
			Optional: node.Optional,
		}
		if node.Group != nil {
			elem.Group = toElements(node.Group)
		}
		elems[i] = elem
	}
	return elems
}

func genAction(act *ActionNode) grammar.Action[string] {
	if act == nil {
		return func(args []string) (string, error) {
			return strings.Join(args, ""), nil
		}
	}
	return func(args []string) (string, error) {
		var b strings.Builder
		for _, elem := range act.Elements {
			if elem.Position > 0 {
				b.WriteString(args[elem.Position-1])
				continue
			}
			b.WriteString(elem.Text)
		}
		return b.String(), nil
	}
}
