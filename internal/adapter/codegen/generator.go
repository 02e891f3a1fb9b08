package codegen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/scanner"
	"go/token"
	"path"
	"path/filepath"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"

	"fngroup/internal/adapter/diag"
	"fngroup/internal/domain"
)

// DefaultTuplePackage is the import path of the tuple runtime.
const DefaultTuplePackage = "fngroup/tuple"

type Options struct {
	// TuplePackage is the import path generated code uses for tuples.
	TuplePackage string
	// LineDirectives maps spliced user code back to the .fng file.
	LineDirectives bool
	// FixImports lets goimports add and remove imports of the output.
	FixImports bool
}

// Generator expands the function groups of a parsed .fng file into Go
// source.
type Generator struct {
	opts Options
}

func NewGenerator(opts Options) *Generator {
	if opts.TuplePackage == "" {
		opts.TuplePackage = DefaultTuplePackage
	}
	return &Generator{opts: opts}
}

// Generate expands sf into the Go file written at outputPath. Errors in the
// user's text are returned as diag.ErrorWithPos.
func (g *Generator) Generate(sf *domain.SourceFile, outputPath string) (*domain.GeneratedFile, error) {
	groups := sf.Groups()
	for _, group := range groups {
		if err := CheckBindings(group); err != nil {
			return nil, err
		}
	}

	outName := filepath.Base(outputPath)
	raw := g.Expand(sf, outName)

	content, err := g.format(raw, outName, len(groups) > 0)
	if err != nil {
		return nil, err
	}

	return &domain.GeneratedFile{
		SourcePath: sf.Path,
		OutputPath: outputPath,
		Content:    content,
		Groups:     len(groups),
	}, nil
}

// Expand returns the unformatted expansion of sf: pass-through text copied
// verbatim and every invocation replaced by its generated declarations.
func (g *Generator) Expand(sf *domain.SourceFile, outName string) []byte {
	src := &source{outName: outName, directives: g.opts.LineDirectives}
	tag := sourceTag(sf.Path)
	qual := g.qualifier(sf)

	src.printf("// Code generated by fngroup from %s. DO NOT EDIT.\n\n", tag)
	for i, seg := range sf.Segments {
		if seg.Group == nil {
			text, line := trimLeadingLines(seg.Text, seg.Pos.Line)
			if text == "" {
				continue
			}
			if i > 0 {
				src.newline()
				src.WriteString("\n")
			}
			src.mapTo(tag, line)
			src.WriteString(text)
			continue
		}

		src.reset()
		src.newline()
		src.WriteString("\n")
		e := &emitter{src: src, g: seg.Group, qual: qual, sourceTag: tag}
		if seg.Group.IsMethod() {
			e.method()
		} else {
			e.free()
		}
	}
	return src.Bytes()
}

// qualifier returns the selector prefix for the tuple package, honoring an
// import of it already present in the file.
func (g *Generator) qualifier(sf *domain.SourceFile) string {
	qual := path.Base(g.opts.TuplePackage) + "."
	if len(sf.Segments) == 0 || sf.Segments[0].Group != nil {
		return qual
	}

	f, err := parser.ParseFile(token.NewFileSet(), "", sf.Segments[0].Text, parser.ImportsOnly)
	if err != nil {
		return qual
	}
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p != g.opts.TuplePackage || spec.Name == nil {
			continue
		}
		switch spec.Name.Name {
		case "_":
		case ".":
			return ""
		default:
			return spec.Name.Name + "."
		}
	}
	return qual
}

func imported(f *ast.File, importPath string) bool {
	for _, spec := range f.Imports {
		if spec.Name != nil && spec.Name.Name == "_" {
			continue
		}
		if p, err := strconv.Unquote(spec.Path.Value); err == nil && p == importPath {
			return true
		}
	}
	return false
}

func (g *Generator) format(raw []byte, outName string, needsTuple bool) ([]byte, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, outName, raw, parser.ParseComments)
	if err != nil {
		if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
			return nil, diag.Errorf(list[0].Pos, "%s", list[0].Msg)
		}
		return nil, fmt.Errorf("failed to parse expansion: %w", err)
	}
	if needsTuple && !imported(f, g.opts.TuplePackage) {
		astutil.AddImport(fset, f, g.opts.TuplePackage)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return nil, fmt.Errorf("failed to format expansion: %w", err)
	}

	out, err := imports.Process(outName, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: !g.opts.FixImports,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process imports: %w", err)
	}

	if g.opts.LineDirectives {
		out = renumber(out, outName)
	}
	return out, nil
}
