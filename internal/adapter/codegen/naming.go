package codegen

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"fngroup/internal/domain"
)

// GoName converts a group name to the Go identifier it is emitted as:
// snake_case becomes camelCase and the first letter follows the visibility.
func GoName(name string, vis domain.Visibility) string {
	var b strings.Builder
	for i, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if i == 0 || b.Len() == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(upperFirst(part))
	}
	if b.Len() == 0 {
		return name
	}
	if vis == domain.Public {
		return upperFirst(b.String())
	}
	return lowerFirst(b.String())
}

// GroupTypeName is the name of a group's capability abstraction. Go keeps
// types and functions in one namespace, so it cannot reuse the group name.
func GroupTypeName(g *domain.FunctionGroup) string {
	return GoName(g.Name, g.Visibility) + "Group"
}

// VariantName is the unexported function implementing the i-th variant.
func VariantName(g *domain.FunctionGroup, i int) string {
	return GoName(g.Name, domain.Private) + "Variant" + strconv.Itoa(i)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
