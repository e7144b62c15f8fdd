package typehint

import (
	"strings"
)

const (
	lifetimeMarker = "'"
	pathSeparator  = "::"
)

// prefixes are stripped before a name is collapsed and reattached afterwards.
var prefixes = []string{"&mut ", "&", "*const ", "*mut ", "dyn ", "impl ", "mut "}

// Simplify drops lifetimes and collapses paths to their last segment, keeping
// reference prefixes in place. The input is not modified.
func Simplify(t *Type) *Type {
	out := &Type{}
	for _, p := range t.Parts {
		if strings.HasPrefix(p.Name, lifetimeMarker) {
			continue
		}
		out.Parts = append(out.Parts, simplifyPart(p))
	}
	return out
}

func simplifyPart(p *Part) *Part {
	out := &Part{}
	for _, a := range p.Args {
		if s := Simplify(a); len(s.Parts) > 0 || len(a.Parts) == 0 {
			out.Args = append(out.Args, s)
		}
	}

	prefix, name := splitPrefix(p.Name)
	if i := strings.LastIndex(name, pathSeparator); i >= 0 && !strings.ContainsAny(name, "<([") {
		name = name[i+len(pathSeparator):]
	}
	out.Name = prefix + name
	return out
}

// splitPrefix separates reference and trait-object prefixes from a name. A lifetime
// following '&' is dropped.
func splitPrefix(name string) (string, string) {
	var prefix strings.Builder
	for {
		matched := false
		for _, pre := range prefixes {
			if strings.HasPrefix(name, pre) {
				prefix.WriteString(pre)
				name = name[len(pre):]
				matched = true
				break
			}
		}
		if strings.HasPrefix(name, lifetimeMarker) && strings.HasSuffix(prefix.String(), "&") {
			if i := strings.IndexByte(name, ' '); i >= 0 {
				name = name[i+1:]
				matched = true
			}
		}
		if !matched {
			return prefix.String(), name
		}
	}
}
