package codegen

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"strings"

	"fngroup/internal/adapter/diag"
	"fngroup/internal/domain"
)

// binding is a name a variant body can see: the receiver or a parameter.
type binding struct {
	kind string // "receiver" or "parameter"
	name string
	// mutable allows the binding itself to be reassigned.
	mutable bool
	// pathMutable allows mutation through the binding (x.f = v, x[i] = v, *x = v).
	pathMutable bool
	byRef       bool
}

// CheckBindings enforces the mutability declared for the receiver and the
// parameters of every variant of g. Go parameters are always assignable, so
// this is where an undeclared mutation is rejected. The first violation is
// returned, positioned in the variant body.
func CheckBindings(g *domain.FunctionGroup) error {
	for _, v := range g.Variants {
		if err := checkVariant(g.Receiver, v); err != nil {
			return err
		}
	}
	return nil
}

func checkVariant(recv *domain.Receiver, v domain.Variant) error {
	var header strings.Builder
	header.WriteString("package p\nfunc ")
	if recv != nil {
		header.WriteString("(" + recv.Name + " any) ")
	}
	header.WriteString("_(")
	for i, arg := range v.Arguments {
		if i > 0 {
			header.WriteString(", ")
		}
		header.WriteString(arg.Name + " any")
	}
	header.WriteString(") {")
	prefix := header.Len()
	src := header.String() + v.Body + "\n}\n"

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", src, 0)
	if err != nil {
		if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
			return diag.Errorf(bodyPosition(v, list[0].Pos.Offset-prefix), "%s", list[0].Msg)
		}
		return diag.Error(v.BodyPos, err)
	}

	fn := f.Decls[0].(*ast.FuncDecl)
	bindings := make(map[*ast.Object]binding)
	if recv != nil {
		bindings[fn.Recv.List[0].Names[0].Obj] = receiverBinding(recv)
	}
	i := 0
	for _, field := range fn.Type.Params.List {
		for _, name := range field.Names {
			if name.Obj != nil {
				bindings[name.Obj] = parameterBinding(v.Arguments[i])
			}
			i++
		}
	}

	var violation error
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if violation != nil {
			return false
		}
		switch s := n.(type) {
		case *ast.AssignStmt:
			// := resolves names already declared in the same scope to the
			// existing binding, so redeclaring a parameter is caught too.
			for _, lhs := range s.Lhs {
				if violation = checkTarget(bindings, lhs); violation != nil {
					break
				}
			}
		case *ast.IncDecStmt:
			violation = checkTarget(bindings, s.X)
		case *ast.UnaryExpr:
			// &x hands out a mutable path to x.
			if s.Op == token.AND {
				violation = checkAddress(bindings, s.X)
			}
		case *ast.RangeStmt:
			if s.Tok == token.ASSIGN {
				for _, e := range []ast.Expr{s.Key, s.Value} {
					if e == nil {
						continue
					}
					if violation = checkTarget(bindings, e); violation != nil {
						break
					}
				}
			}
		}
		if violation != nil {
			violation = diag.Errorf(bodyPosition(v, fset.Position(n.Pos()).Offset-prefix), "%v", violation)
		}
		return violation == nil
	})
	return violation
}

type mutationError struct {
	op     string
	target string
	b      binding
	direct bool
}

func (e *mutationError) Error() string {
	switch {
	case e.direct:
		return e.op + " " + e.target + ": " + e.b.kind + " " + e.b.name + " is not declared mut"
	case e.b.byRef:
		return e.op + " " + e.target + ": receiver " + e.b.name + " is bound by & (use &mut)"
	default:
		return e.op + " " + e.target + ": " + e.b.kind + " " + e.b.name + " is neither mut nor a reference"
	}
}

func checkTarget(bindings map[*ast.Object]binding, target ast.Expr) error {
	return checkMutation(bindings, target, "cannot assign to")
}

func checkAddress(bindings map[*ast.Object]binding, target ast.Expr) error {
	return checkMutation(bindings, target, "cannot take the address of")
}

func checkMutation(bindings map[*ast.Object]binding, target ast.Expr, op string) error {
	root, direct := rootIdent(target)
	if root == nil || root.Obj == nil {
		return nil
	}
	b, ok := bindings[root.Obj]
	if !ok {
		return nil
	}
	if direct && !b.mutable || !direct && !b.pathMutable {
		return &mutationError{op: op, target: types.ExprString(target), b: b, direct: direct}
	}
	return nil
}

// rootIdent returns the identifier an assignment target is rooted at and
// whether the target is that identifier itself.
func rootIdent(e ast.Expr) (*ast.Ident, bool) {
	switch x := e.(type) {
	case *ast.Ident:
		return x, true
	case *ast.ParenExpr:
		return rootIdent(x.X)
	case *ast.SelectorExpr:
		id, _ := rootIdent(x.X)
		return id, false
	case *ast.IndexExpr:
		id, _ := rootIdent(x.X)
		return id, false
	case *ast.IndexListExpr:
		id, _ := rootIdent(x.X)
		return id, false
	case *ast.StarExpr:
		id, _ := rootIdent(x.X)
		return id, false
	}
	return nil, false
}

func receiverBinding(r *domain.Receiver) binding {
	b := binding{kind: "receiver", name: r.Name, mutable: r.Mutable}
	switch r.Mode {
	case domain.ByMutRef:
		b.pathMutable = true
	case domain.ByRef:
		b.byRef = true
	default:
		b.pathMutable = r.Mutable || isReferenceType(r.Type)
	}
	return b
}

func parameterBinding(a domain.Argument) binding {
	return binding{
		kind:        "parameter",
		name:        a.Name,
		mutable:     a.Mutable,
		pathMutable: a.Mutable || isReferenceType(a.Type),
	}
}

// isReferenceType reports whether values of the type share what they refer
// to, so mutating through them is visible to the caller.
func isReferenceType(typ string) bool {
	typ = strings.TrimSpace(typ)
	return strings.HasPrefix(typ, "*") || strings.HasPrefix(typ, "[]") || strings.HasPrefix(typ, "map[")
}

// bodyPosition maps a byte offset within v.Body to its .fng position.
func bodyPosition(v domain.Variant, off int) token.Position {
	if off < 0 {
		off = 0
	}
	if off > len(v.Body) {
		off = len(v.Body)
	}
	pos := v.BodyPos
	pos.Offset += off
	text := v.Body[:off]
	if nl := strings.LastIndexByte(text, '\n'); nl >= 0 {
		pos.Line += strings.Count(text, "\n")
		pos.Column = off - nl
	} else {
		pos.Column += off
	}
	return pos
}
