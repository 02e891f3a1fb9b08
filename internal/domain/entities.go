package domain

import "go/token"

type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// BindingMode is how a method group's receiver is bound.
type BindingMode int

const (
	ByValue  BindingMode = iota // self
	ByRef                       // &self
	ByMutRef                    // &mut self
)

func (m BindingMode) String() string {
	switch m {
	case ByRef:
		return "&"
	case ByMutRef:
		return "&mut"
	default:
		return "value"
	}
}

type Argument struct {
	Name    string
	Type    string
	Mutable bool
	Pos     token.Position
}

// Variant is one arity overload of a function group. Body is the verbatim
// text between the braces of the variant block.
type Variant struct {
	Arguments []Argument
	Body      string
	BodyPos   token.Position
	Pos       token.Position
}

// Types returns the variant's argument types in declared order.
func (v Variant) Types() []string {
	types := make([]string, len(v.Arguments))
	for i, arg := range v.Arguments {
		types[i] = arg.Type
	}
	return types
}

type Receiver struct {
	Name    string
	Mode    BindingMode
	Mutable bool
	Type    string
	Pos     token.Position
}

// Pointer reports whether the receiver is bound by reference.
func (r Receiver) Pointer() bool {
	return r.Mode == ByRef || r.Mode == ByMutRef
}

type FunctionGroup struct {
	Visibility Visibility
	Name       string
	Output     string // empty when the group returns nothing
	Receiver   *Receiver
	Variants   []Variant
	Pos        token.Position
}

// IsMethod reports whether the group is emitted as a method.
func (g *FunctionGroup) IsMethod() bool {
	return g.Receiver != nil && g.Receiver.Type != ""
}

// Segment is a piece of a .fng file: either pass-through Go text or one
// function group invocation.
type Segment struct {
	Text  string
	Pos   token.Position
	Group *FunctionGroup
}

type SourceFile struct {
	Path     string
	Segments []Segment
}

// Groups returns the file's function groups in source order.
func (f *SourceFile) Groups() []*FunctionGroup {
	var groups []*FunctionGroup
	for _, seg := range f.Segments {
		if seg.Group != nil {
			groups = append(groups, seg.Group)
		}
	}
	return groups
}

type GeneratedFile struct {
	SourcePath string
	OutputPath string
	Content    []byte
	Groups     int
}

// CacheEntry records the last generation of one .fng file.
type CacheEntry struct {
	SourcePath string
	OutputPath string
	SourceHash string
	OutputHash string
	Groups     int
}

// Diagnostic is a compiler error reported for a package holding generated
// code. Pos is "file:line:col" and names the .fng source when line
// directives are enabled.
type Diagnostic struct {
	Package string
	Pos     string
	Msg     string
}

func (d Diagnostic) String() string {
	if d.Pos == "" || d.Pos == "-" {
		return d.Package + ": " + d.Msg
	}
	return d.Pos + ": " + d.Msg
}
