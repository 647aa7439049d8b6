package grammar

import "sort"

// Match returns the production to reduce when a working stack holds `stack` (kinds from bottom to top).
// When several patterns match suffixes of the stack, the longest one wins, and among patterns of the same
// length the production registered first wins.
func (r *Registry[A]) Match(stack []string) (*Production[A], bool) {
	prod, ok := r.match(stack)
	if !ok {
		return nil, false
	}
	return prod.clone(), true
}

func (r *Registry[A]) match(stack []string) (*Production[A], bool) {
	n := r.maxLen
	if len(stack) < n {
		n = len(stack)
	}
	for ; n > 0; n-- {
		suffix := stack[len(stack)-n:]
		for _, prod := range r.len2Prods[n] {
			if equalKinds(prod.Pattern, suffix) {
				return prod, true
			}
		}
	}
	return nil, false
}

// Viable reports whether the top of `stack` can ever be consumed by a reduction. Symbols below the top
// cannot change until the top is consumed, so some pattern must have the top at an offset such that the
// symbols below it equal the preceding part of the pattern.
func (r *Registry[A]) Viable(stack []string) bool {
	if len(stack) == 0 {
		return true
	}
	top := stack[len(stack)-1]
	for _, occ := range r.occurrences[top] {
		if occ.offset >= len(stack) {
			continue
		}
		if equalKinds(occ.prod.Pattern[:occ.offset+1], stack[len(stack)-occ.offset-1:]) {
			return true
		}
	}
	return false
}

// Expected returns the terminal kinds that could be shifted onto `stack` so that a partially matched pattern
// keeps matching. A kind is terminal when no production produces it. On an empty stack, it returns the kinds
// that can begin `start`; when `start` is empty or no production produces it, and when no pattern is
// partially matched, it returns the kinds that can begin a pattern. The result is sorted.
func (r *Registry[A]) Expected(start string, stack []string) []string {
	next := map[string]struct{}{}
	for _, prod := range r.prods {
		for n := len(prod.Pattern) - 1; n > 0; n-- {
			if n > len(stack) {
				continue
			}
			if equalKinds(prod.Pattern[:n], stack[len(stack)-n:]) {
				next[prod.Pattern[n]] = struct{}{}
			}
		}
	}
	if len(stack) == 0 && r.IsNonTerminal(start) {
		next[start] = struct{}{}
	}
	if len(next) == 0 {
		for _, prod := range r.prods {
			next[prod.Pattern[0]] = struct{}{}
		}
	}

	// A non-terminal is expected through the kinds its patterns begin with.
	expanded := map[string]struct{}{}
	var expand func(kind string)
	expand = func(kind string) {
		if _, ok := expanded[kind]; ok {
			return
		}
		expanded[kind] = struct{}{}
		for _, prod := range r.lhs2Prods[kind] {
			expand(prod.Pattern[0])
		}
	}
	for kind := range next {
		expand(kind)
	}

	kinds := []string{}
	for kind := range expanded {
		if r.IsNonTerminal(kind) {
			continue
		}
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func equalKinds(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
