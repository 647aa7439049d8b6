package grammar

import (
	"fmt"
	"strings"
	"unicode"
)

// Element is an element of a pattern written in the pattern notation. An element is either a symbol kind or
// a group of elements, and either of them can be optional.
//
//	T_VAR_DEC? (T_IDENT T_ASSIGN)? S_DATA
type Element struct {
	Kind     string
	Group    []*Element
	Optional bool
}

func (e *Element) isGroup() bool {
	return e.Group != nil
}

// alternative is a plain pattern an element sequence expands into. positions[i] is the offset of kinds[i]
// among the leaf elements of the written sequence.
type alternative struct {
	kinds     []string
	positions []int
}

// ParsePattern parses the pattern notation. Kinds are separated by white spaces, `?` makes the preceding
// kind or group optional, and parentheses make a group.
func ParsePattern(src string) ([]*Element, error) {
	p := &patternParser{
		src: []rune(src),
	}
	elems, err := p.parseSeq(false)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, ErrEmptyPattern
	}
	return elems, nil
}

type patternParser struct {
	src []rune
	pos int
}

func (p *patternParser) parseSeq(inGroup bool) ([]*Element, error) {
	elems := []*Element{}
	for {
		p.skipSpaces()
		if p.pos >= len(p.src) {
			if inGroup {
				return nil, fmt.Errorf("%w: unclosed group", ErrInvalidPattern)
			}
			return elems, nil
		}

		switch c := p.src[p.pos]; c {
		case '(':
			p.pos++
			group, err := p.parseSeq(true)
			if err != nil {
				return nil, err
			}
			if len(group) == 0 {
				return nil, fmt.Errorf("%w: empty group", ErrInvalidPattern)
			}
			elems = append(elems, &Element{
				Group: group,
			})
		case ')':
			if !inGroup {
				return nil, fmt.Errorf("%w: unopened group at %v", ErrInvalidPattern, p.pos)
			}
			p.pos++
			return elems, nil
		case '?':
			if len(elems) == 0 {
				return nil, fmt.Errorf("%w: dangling optional operator at %v", ErrInvalidPattern, p.pos)
			}
			last := elems[len(elems)-1]
			if last.Optional {
				return nil, fmt.Errorf("%w: redundant optional operator at %v", ErrInvalidPattern, p.pos)
			}
			last.Optional = true
			p.pos++
		default:
			start := p.pos
			for p.pos < len(p.src) && !isPatternDelimiter(p.src[p.pos]) {
				p.pos++
			}
			elems = append(elems, &Element{
				Kind: string(p.src[start:p.pos]),
			})
		}
	}
}

func (p *patternParser) skipSpaces() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isPatternDelimiter(c rune) bool {
	return unicode.IsSpace(c) || c == '(' || c == ')' || c == '?'
}

// FormatPattern returns the pattern notation of `elems`.
func FormatPattern(elems []*Element) string {
	var b strings.Builder
	for i, e := range elems {
		if i > 0 {
			b.WriteString(" ")
		}
		if e.isGroup() {
			fmt.Fprintf(&b, "(%v)", FormatPattern(e.Group))
		} else {
			b.WriteString(e.Kind)
		}
		if e.Optional {
			b.WriteString("?")
		}
	}
	return b.String()
}

// leafCount returns the number of kinds written in `elems`, that is, the arity of a semantic action.
func leafCount(elems []*Element) int {
	n := 0
	for _, e := range elems {
		if e.isGroup() {
			n += leafCount(e.Group)
		} else {
			n++
		}
	}
	return n
}

// expand returns every plain pattern `elems` describes. A sequence having present optional elements comes
// before the same sequence lacking them. Empty patterns and repeated patterns are dropped.
func expand(elems []*Element) []*alternative {
	alts, _ := expandSeq(elems, 0)

	var result []*alternative
	seen := map[string]struct{}{}
	for _, alt := range alts {
		if len(alt.kinds) == 0 {
			continue
		}
		key := strings.Join(alt.kinds, " ")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, alt)
	}
	return result
}

func expandSeq(elems []*Element, offset int) ([]*alternative, int) {
	alts := []*alternative{
		{},
	}
	for _, e := range elems {
		var sub []*alternative
		if e.isGroup() {
			sub, offset = expandSeq(e.Group, offset)
		} else {
			sub = []*alternative{
				{
					kinds:     []string{e.Kind},
					positions: []int{offset},
				},
			}
			offset++
		}
		if e.Optional {
			sub = append(sub, &alternative{})
		}

		next := make([]*alternative, 0, len(alts)*len(sub))
		for _, s := range sub {
			for _, a := range alts {
				next = append(next, a.concat(s))
			}
		}
		alts = next
	}
	return alts, offset
}

func (a *alternative) concat(b *alternative) *alternative {
	kinds := make([]string, 0, len(a.kinds)+len(b.kinds))
	kinds = append(kinds, a.kinds...)
	kinds = append(kinds, b.kinds...)
	positions := make([]int, 0, len(a.positions)+len(b.positions))
	positions = append(positions, a.positions...)
	positions = append(positions, b.positions...)
	return &alternative{
		kinds:     kinds,
		positions: positions,
	}
}
