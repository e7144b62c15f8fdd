// Package typehint parses and shortens Rust type strings for inline type hints.
package typehint

import (
	"strings"
)

const (
	openBracket  = '<'
	closeBracket = '>'
	separator    = ','
	bound        = '+'
)

// Type is a bound disjunction: one or more parts joined by '+'.
type Type struct {
	Parts []*Part
}

// Part is a single, possibly generic, type name.
type Part struct {
	Name string
	Args []*Type
}

// Parse reads text as `Part ('+' Part)*` where a Part is `Name ('<' Type (',' Type)* '>')?`.
// Empty input yields a Type with no parts.
func Parse(text string) *Type {
	t := &Type{}
	text = strings.TrimSpace(text)
	if text == "" {
		return t
	}
	for _, s := range splitTopLevel(text, bound) {
		t.Parts = append(t.Parts, parsePart(strings.TrimSpace(s)))
	}
	return t
}

func parsePart(s string) *Part {
	i := indexTopLevel(s, openBracket)
	if i <= 0 || s[len(s)-1] != closeBracket || !balanced(s[i:]) {
		return &Part{Name: s}
	}

	p := &Part{Name: strings.TrimSpace(s[:i])}
	for _, arg := range splitTopLevel(s[i+1:len(s)-1], separator) {
		p.Args = append(p.Args, Parse(arg))
	}
	return p
}

// splitTopLevel splits s at every sep that is not nested inside brackets.
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case isOpen(c):
			depth++
		case isClose(s, i):
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// indexTopLevel returns the index of the first c outside of any bracket, or -1.
func indexTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		if s[i] == c && depth == 0 {
			return i
		}
		switch {
		case isOpen(s[i]):
			depth++
		case isClose(s, i):
			depth--
		}
	}
	return -1
}

// balanced reports whether s is a single group: its opening bracket closes at the last byte.
func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case isOpen(s[i]):
			depth++
		case isClose(s, i):
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
		if depth < 0 {
			return false
		}
	}
	return depth == 0
}

func isOpen(c byte) bool {
	return c == openBracket || c == '(' || c == '['
}

// isClose treats the '>' of a "->" arrow as part of a name.
func isClose(s string, i int) bool {
	switch s[i] {
	case closeBracket:
		return i == 0 || s[i-1] != '-'
	case ')', ']':
		return true
	}
	return false
}

// String renders the type as `A + B`.
func (t *Type) String() string {
	parts := make([]string, len(t.Parts))
	for i, p := range t.Parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, " + ")
}

// String renders the part as `Name<A, B>`.
func (p *Part) String() string {
	if len(p.Args) == 0 {
		return p.Name
	}
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.String()
	}
	return p.Name + string(openBracket) + strings.Join(args, ", ") + string(closeBracket)
}

// IsLeaf reports whether the part has no generic arguments.
func (p *Part) IsLeaf() bool {
	return len(p.Args) == 0
}
