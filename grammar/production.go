package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs string, pattern []string) productionID {
	seq := []byte(lhs)
	for _, kind := range pattern {
		seq = append(seq, 0)
		seq = append(seq, kind...)
	}
	return productionID(sha256.Sum256(seq))
}

// Action is a semantic action. `args` holds the attributes of the matched symbols from left to right. When
// a production comes from the pattern notation, `args` has one entry per written kind, and the entries of
// absent optional kinds are zero values.
type Action[A any] func(args []A) (A, error)

// Rule is the part of a production independent of the attribute type.
type Rule struct {
	// Num is the registration ordinal of a production, starting at 1.
	Num int

	// Name identifies a production in error messages. It defaults to the LHS.
	Name string

	LHS     string
	Pattern []string
}

func (r *Rule) String() string {
	return fmt.Sprintf("%v: %v", r.LHS, strings.Join(r.Pattern, " "))
}

func (r *Rule) clone() *Rule {
	c := *r
	c.Pattern = make([]string, len(r.Pattern))
	copy(c.Pattern, r.Pattern)
	return &c
}

// Production is a rule paired with its semantic action.
type Production[A any] struct {
	Rule

	id        productionID
	positions []int
	arity     int
	action    Action[A]
}

func newProduction[A any](name, lhs string, alt *alternative, arity int, act Action[A]) (*Production[A], error) {
	if lhs == "" {
		return nil, ErrEmptyLHS
	}
	if len(alt.kinds) == 0 {
		return nil, ErrEmptyPattern
	}
	for _, kind := range alt.kinds {
		if kind == "" {
			return nil, fmt.Errorf("%w: a pattern of %v contains an empty kind", ErrInvalidPattern, lhs)
		}
	}
	if act == nil {
		return nil, ErrNoAction
	}
	if name == "" {
		name = lhs
	}

	pattern := make([]string, len(alt.kinds))
	copy(pattern, alt.kinds)
	positions := make([]int, len(alt.positions))
	copy(positions, alt.positions)

	return &Production[A]{
		Rule: Rule{
			Name:    name,
			LHS:     lhs,
			Pattern: pattern,
		},
		id:        genProductionID(lhs, pattern),
		positions: positions,
		arity:     arity,
		action:    act,
	}, nil
}

func (p *Production[A]) clone() *Production[A] {
	c := *p
	c.Rule = *p.Rule.clone()
	return &c
}

// Arity returns the number of arguments the semantic action receives.
func (p *Production[A]) Arity() int {
	return p.arity
}

func (p *Production[A]) isUnit() bool {
	return len(p.Pattern) == 1
}

// Apply runs the semantic action. `attrs` are the attributes of the matched symbols from left to right.
func (p *Production[A]) Apply(attrs []A) (A, error) {
	if len(attrs) != len(p.Pattern) {
		var zero A
		return zero, fmt.Errorf("production %v takes %v symbols, but got %v", p.Name, len(p.Pattern), len(attrs))
	}

	args := attrs
	if p.arity != len(p.Pattern) {
		args = make([]A, p.arity)
		for i, a := range attrs {
			args[p.positions[i]] = a
		}
	}
	return p.action(args)
}
