package typehint

import (
	"unicode/utf8"
)

// DefaultPlaceholder replaces elided generic arguments.
const DefaultPlaceholder = "…"

// Shorten replaces the first remaining bracketed group of text with placeholder,
// one group at a time, until the rendering is shorter than maxLen runes or no
// replacement makes it shorter. Text already within maxLen is returned as is,
// and the result is never longer than text.
func Shorten(text string, maxLen int, placeholder string) string {
	if utf8.RuneCountInString(text) < maxLen {
		return text
	}
	return notLonger(text, ShortenType(Parse(text), maxLen, placeholder))
}

// ShortenType is Shorten on an already parsed type. t is not modified.
func ShortenType(t *Type, maxLen int, placeholder string) string {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	t = clone(t)
	current := t.String()

	for utf8.RuneCountInString(current) >= maxLen {
		shortened := false
		for _, g := range groups(t, placeholder) {
			args := g.Args
			g.Args = []*Type{{Parts: []*Part{{Name: placeholder}}}}
			if next := t.String(); utf8.RuneCountInString(next) < utf8.RuneCountInString(current) {
				current = next
				shortened = true
				break
			}
			g.Args = args
		}
		if !shortened {
			break
		}
	}
	return current
}

// Hint simplifies text and shortens it to maxLen with the default placeholder.
func Hint(text string, maxLen int) string {
	return notLonger(text, ShortenType(Simplify(Parse(text)), maxLen, DefaultPlaceholder))
}

// notLonger returns rendered unless re-rendering made it longer than text.
func notLonger(text, rendered string) string {
	if utf8.RuneCountInString(rendered) > utf8.RuneCountInString(text) {
		return text
	}
	return rendered
}

// groups lists generic parts outermost first, skipping groups already elided.
func groups(t *Type, placeholder string) []*Part {
	var out []*Part
	stack := []*Type{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var nested []*Type
		for _, p := range cur.Parts {
			if p.IsLeaf() || elided(p, placeholder) {
				continue
			}
			out = append(out, p)
			nested = append(nested, p.Args...)
		}
		for i := len(nested) - 1; i >= 0; i-- {
			stack = append(stack, nested[i])
		}
	}
	return out
}

func elided(p *Part, placeholder string) bool {
	return len(p.Args) == 1 && len(p.Args[0].Parts) == 1 && p.Args[0].Parts[0].Name == placeholder
}

func clone(t *Type) *Type {
	out := &Type{Parts: make([]*Part, len(t.Parts))}
	for i, p := range t.Parts {
		cp := &Part{Name: p.Name}
		for _, a := range p.Args {
			cp.Args = append(cp.Args, clone(a))
		}
		out.Parts[i] = cp
	}
	return out
}
