package codegen

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"fngroup/internal/domain"
)

// emitter writes the expansion of one function group.
type emitter struct {
	src       *source
	g         *domain.FunctionGroup
	qual      string // qualifier of the tuple package, "tuple." by default
	sourceTag string // .fng file name used in line directives

	argsVar string // dispatcher parameter
	caseVar string // type switch binding
}

// locals names the dispatcher's parameter and switch binding so that neither
// collides with the receiver name.
func (e *emitter) locals() {
	taken := ""
	if e.g.Receiver != nil {
		taken = e.g.Receiver.Name
	}
	e.argsVar = freshName("args", taken)
	e.caseVar = freshName("a", taken, e.argsVar)
}

func freshName(base string, taken ...string) string {
	name := base
	for slices.Contains(taken, name) {
		name += "_"
	}
	return name
}

func (e *emitter) name() string {
	return GoName(e.g.Name, e.g.Visibility)
}

func (e *emitter) results() string {
	if e.g.Output == "" {
		return ""
	}
	return " " + e.g.Output
}

func (e *emitter) tupleType(v domain.Variant) string {
	n := len(v.Arguments)
	if n == 0 {
		return e.qual + "T0"
	}
	return e.qual + "T" + strconv.Itoa(n) + "[" + strings.Join(v.Types(), ", ") + "]"
}

func (e *emitter) hasArguments() bool {
	for _, v := range e.g.Variants {
		if len(v.Arguments) > 0 {
			return true
		}
	}
	return false
}

// free emits the capability constraint, the generic dispatcher and the
// variant functions of a group without receiver.
func (e *emitter) free() {
	name, group := e.name(), GroupTypeName(e.g)

	e.src.printf("// %s is the set of argument tuples accepted by %s.\n", group, name)
	e.src.printf("type %s interface {\n", group)
	if len(e.g.Variants) == 0 {
		// Two disjoint terms: the type set is empty and no call compiles.
		e.src.printf("\t%sT0\n\t%sT1[struct{}]\n", e.qual, e.qual)
	} else {
		shapes := make([]string, len(e.g.Variants))
		for i, v := range e.g.Variants {
			shapes[i] = e.tupleType(v)
		}
		e.src.printf("\t%s\n", strings.Join(shapes, " | "))
	}
	e.src.WriteString("}\n\n")

	e.src.printf("// %s calls the variant declared for the tuple shape of args.\n", name)
	e.locals()
	e.src.printf("func %s[Args %s](%s Args)%s {\n", name, group, e.argsVar, e.results())
	e.dispatch("any("+e.argsVar+")", "")
	e.src.WriteString("}\n")

	for i, v := range e.g.Variants {
		e.src.WriteString("\n")
		e.src.printf("func %s(%s)%s {", VariantName(e.g, i), params(v), e.results())
		e.body(v)
	}
}

// method emits the capability interface, the dispatching method and the
// variant methods of a group with a receiver.
func (e *emitter) method() {
	name, group := e.name(), GroupTypeName(e.g)
	recv := e.g.Receiver
	recvType := recv.Type
	if recv.Pointer() {
		recvType = "*" + recvType
	}

	e.src.printf("// %s is implemented by types with the %s method group.\n", group, name)
	e.src.printf("type %s interface {\n", group)
	e.src.printf("\t%s(args %sTuple)%s\n", name, e.qual, e.results())
	e.src.WriteString("}\n\n")

	if !strings.Contains(recv.Type, "[") {
		assert := "*" + recv.Type
		if !recv.Pointer() && strings.HasPrefix(recv.Type, "*") {
			assert = recv.Type
		}
		e.src.printf("var _ %s = (%s)(nil)\n\n", group, assert)
	}

	e.src.printf("// %s calls the variant declared for the tuple shape of args.\n", name)
	e.locals()
	e.src.printf("func (%s %s) %s(%s %sTuple)%s {\n", recv.Name, recvType, name, e.argsVar, e.qual, e.results())
	e.dispatch(e.argsVar, recv.Name+".")
	e.src.WriteString("}\n")

	for i, v := range e.g.Variants {
		e.src.WriteString("\n")
		e.src.printf("func (%s %s) %s(%s)%s {", recv.Name, recvType, VariantName(e.g, i), params(v), e.results())
		e.body(v)
	}
}

// dispatch writes the type switch routing subject to the variant functions.
func (e *emitter) dispatch(subject, callPrefix string) {
	if len(e.g.Variants) > 0 {
		if e.hasArguments() {
			e.src.printf("\tswitch %s := %s.(type) {\n", e.caseVar, subject)
		} else {
			e.src.printf("\tswitch %s.(type) {\n", subject)
		}
		for i, v := range e.g.Variants {
			args := make([]string, len(v.Arguments))
			for j := range v.Arguments {
				args[j] = e.caseVar + ".V" + strconv.Itoa(j)
			}
			call := callPrefix + VariantName(e.g, i) + "(" + strings.Join(args, ", ") + ")"

			e.src.printf("\tcase %s:\n", e.tupleType(v))
			if e.g.Output == "" {
				e.src.printf("\t\t%s\n\t\treturn\n", call)
			} else {
				e.src.printf("\t\treturn %s\n", call)
			}
		}
		e.src.WriteString("\t}\n")
	}
	e.src.printf("\tpanic(%sNewDispatchError(%q, %s))\n", e.qual, e.name(), e.argsVar)
}

// body splices the variant body verbatim and closes the function.
func (e *emitter) body(v domain.Variant) {
	text, line := trimLeadingLines(v.Body, v.BodyPos.Line)
	text = strings.TrimRight(text, " \t\r\n")

	e.src.WriteString("\n")
	if text != "" {
		e.src.mapTo(e.sourceTag, line)
		e.src.WriteString(text)
		e.src.reset()
	}
	e.src.newline()
	e.src.WriteString("}\n")
}

func params(v domain.Variant) string {
	parts := make([]string, len(v.Arguments))
	for i, arg := range v.Arguments {
		parts[i] = arg.Name + " " + arg.Type
	}
	return strings.Join(parts, ", ")
}

func sourceTag(path string) string {
	return filepath.Base(path)
}
