package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'moka.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("moka.grammar")
}

// Shadow reports a production that can never be reduced because a production registered before it has the
// same pattern.
type Shadow struct {
	Rule *Rule
	By   *Rule
}

// occurrence is a position of a kind in a pattern.
type occurrence[A any] struct {
	prod   *Production[A]
	offset int
}

// Registry is an ordered set of productions. A registry is read-only, so parsers running on different
// goroutines can share one. It keeps its own copies of the productions and hands out copies, so callers
// cannot change what it matches.
type Registry[A any] struct {
	prods     []*Production[A]
	lhs2Prods map[string][]*Production[A]

	// len2Prods holds productions by pattern length in registration order.
	len2Prods   map[int][]*Production[A]
	maxLen      int
	occurrences map[string][]*occurrence[A]
	kinds       []string
	shadowed    []*Shadow
}

// RegistryBuilder populates a registry. Errors that occur during registration are returned by the
// registering method and are recorded, so Build also fails.
type RegistryBuilder[A any] struct {
	prods   []*Production[A]
	id2Prod map[productionID]*Production[A]
	errs    BuildErrors
	built   bool
}

func NewRegistryBuilder[A any]() *RegistryBuilder[A] {
	return &RegistryBuilder[A]{
		id2Prod: map[productionID]*Production[A]{},
	}
}

// Register adds a production producing `lhs` from `pattern`. The production is named after `lhs`.
func (b *RegistryBuilder[A]) Register(lhs string, pattern []string, act Action[A]) (*Production[A], error) {
	positions := make([]int, len(pattern))
	for i := range positions {
		positions[i] = i
	}
	return b.add("", lhs, &alternative{
		kinds:     pattern,
		positions: positions,
	}, len(pattern), act)
}

// RegisterRule adds productions producing `lhs` from a pattern written in the pattern notation (see
// ParsePattern). A rule having optional elements adds one production per combination of them.
func (b *RegistryBuilder[A]) RegisterRule(name, lhs, notation string, act Action[A]) ([]*Production[A], error) {
	elems, err := ParsePattern(notation)
	if err != nil {
		err = fmt.Errorf("rule %v: %w", ruleName(name, lhs), err)
		b.errs = append(b.errs, err)
		return nil, err
	}
	return b.RegisterElements(name, lhs, elems, act)
}

// RegisterElements is the same as RegisterRule except that it takes parsed elements.
func (b *RegistryBuilder[A]) RegisterElements(name, lhs string, elems []*Element, act Action[A]) ([]*Production[A], error) {
	alts := expand(elems)
	if len(alts) == 0 {
		err := fmt.Errorf("rule %v: %w", ruleName(name, lhs), ErrEmptyPattern)
		b.errs = append(b.errs, err)
		return nil, err
	}

	arity := leafCount(elems)
	prods := make([]*Production[A], 0, len(alts))
	for _, alt := range alts {
		prod, err := b.add(name, lhs, alt, arity, act)
		if err != nil {
			return nil, err
		}
		prods = append(prods, prod)
	}
	return prods, nil
}

func ruleName(name, lhs string) string {
	if name != "" {
		return name
	}
	return lhs
}

func (b *RegistryBuilder[A]) add(name, lhs string, alt *alternative, arity int, act Action[A]) (*Production[A], error) {
	if b.built {
		return nil, ErrRegistryBuilt
	}

	prod, err := newProduction(name, lhs, alt, arity, act)
	if err != nil {
		err = fmt.Errorf("rule %v: %w", ruleName(name, lhs), err)
		b.errs = append(b.errs, err)
		return nil, err
	}

	if first, ok := b.id2Prod[prod.id]; ok {
		err := &DuplicatePatternError{
			LHS:     prod.LHS,
			Pattern: prod.Pattern,
			Name:    prod.Name,
			First:   first.Num,
		}
		b.errs = append(b.errs, err)
		return nil, err
	}

	prod.Num = len(b.prods) + 1
	b.prods = append(b.prods, prod)
	b.id2Prod[prod.id] = prod

	return prod, nil
}

// Build returns a registry holding the registered productions. When registration failed, Build returns
// every recorded error as BuildErrors.
func (b *RegistryBuilder[A]) Build() (*Registry[A], error) {
	if b.built {
		return nil, ErrRegistryBuilt
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	err := findUnitCycle(b.prods)
	if err != nil {
		return nil, BuildErrors{err}
	}

	b.built = true

	r := &Registry[A]{
		prods:       make([]*Production[A], 0, len(b.prods)),
		lhs2Prods:   map[string][]*Production[A]{},
		len2Prods:   map[int][]*Production[A]{},
		occurrences: map[string][]*occurrence[A]{},
	}
	kinds := map[string]struct{}{}
	pattern2Prod := map[string]*Production[A]{}
	for _, registered := range b.prods {
		prod := registered.clone()
		r.prods = append(r.prods, prod)
		r.lhs2Prods[prod.LHS] = append(r.lhs2Prods[prod.LHS], prod)

		n := len(prod.Pattern)
		r.len2Prods[n] = append(r.len2Prods[n], prod)
		if n > r.maxLen {
			r.maxLen = n
		}

		kinds[prod.LHS] = struct{}{}
		for i, kind := range prod.Pattern {
			kinds[kind] = struct{}{}
			r.occurrences[kind] = append(r.occurrences[kind], &occurrence[A]{
				prod:   prod,
				offset: i,
			})
		}

		key := strings.Join(prod.Pattern, " ")
		if by, ok := pattern2Prod[key]; ok {
			r.shadowed = append(r.shadowed, &Shadow{
				Rule: &prod.Rule,
				By:   &by.Rule,
			})
			tracer().Infof("production #%v (%v) is shadowed by #%v (%v)", prod.Num, &prod.Rule, by.Num, &by.Rule)
			continue
		}
		pattern2Prod[key] = prod
	}
	for kind := range kinds {
		r.kinds = append(r.kinds, kind)
	}
	sort.Strings(r.kinds)

	tracer().Debugf("registry built; productions: %v, max pattern length: %v", len(r.prods), r.maxLen)

	return r, nil
}

// findUnitCycle finds a cycle formed by productions having a single symbol in their patterns. The
// reduction engine would reduce such productions forever.
func findUnitCycle[A any](prods []*Production[A]) error {
	edges := map[string][]*Production[A]{}
	var froms []string
	for _, prod := range prods {
		if !prod.isUnit() {
			continue
		}
		from := prod.Pattern[0]
		if _, ok := edges[from]; !ok {
			froms = append(froms, from)
		}
		edges[from] = append(edges[from], prod)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}
	var path []string
	var visit func(kind string) []string
	visit = func(kind string) []string {
		switch state[kind] {
		case visiting:
			for i, k := range path {
				if k == kind {
					cycle := append([]string{}, path[i:]...)
					return append(cycle, kind)
				}
			}
			return []string{kind, kind}
		case done:
			return nil
		}
		state[kind] = visiting
		path = append(path, kind)
		for _, prod := range edges[kind] {
			if cycle := visit(prod.LHS); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		state[kind] = done
		return nil
	}
	for _, from := range froms {
		if cycle := visit(from); cycle != nil {
			return fmt.Errorf("%w: %v", ErrCyclicUnitProduction, strings.Join(cycle, " -> "))
		}
	}
	return nil
}

// Lookup returns the productions producing `lhs` in registration order. It returns an empty slice when
// there is no such production.
func (r *Registry[A]) Lookup(lhs string) []*Production[A] {
	return cloneProductions(r.lhs2Prods[lhs])
}

// Productions returns all productions in registration order.
func (r *Registry[A]) Productions() []*Production[A] {
	return cloneProductions(r.prods)
}

func cloneProductions[A any](prods []*Production[A]) []*Production[A] {
	cs := make([]*Production[A], len(prods))
	for i, prod := range prods {
		cs[i] = prod.clone()
	}
	return cs
}

// Len returns the number of productions.
func (r *Registry[A]) Len() int {
	return len(r.prods)
}

// Production returns the production numbered `num`.
func (r *Registry[A]) Production(num int) (*Production[A], bool) {
	if num < 1 || num > len(r.prods) {
		return nil, false
	}
	return r.prods[num-1].clone(), true
}

// Kinds returns every kind appearing in the productions in lexical order.
func (r *Registry[A]) Kinds() []string {
	kinds := make([]string, len(r.kinds))
	copy(kinds, r.kinds)
	return kinds
}

// IsNonTerminal returns true when a production produces `kind`.
func (r *Registry[A]) IsNonTerminal(kind string) bool {
	_, ok := r.lhs2Prods[kind]
	return ok
}

func (r *Registry[A]) MaxPatternLen() int {
	return r.maxLen
}

// Shadowed returns productions that never reduce because an earlier production has the same pattern.
func (r *Registry[A]) Shadowed() []*Shadow {
	shadowed := make([]*Shadow, len(r.shadowed))
	for i, s := range r.shadowed {
		shadowed[i] = &Shadow{
			Rule: s.Rule.clone(),
			By:   s.By.clone(),
		}
	}
	return shadowed
}
