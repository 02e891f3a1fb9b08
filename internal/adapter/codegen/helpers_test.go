package codegen

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	fngparser "fngroup/internal/adapter/parser"
	"fngroup/internal/domain"
)

func mustParse(t *testing.T, path, src string) *domain.SourceFile {
	t.Helper()
	sf, err := fngparser.NewParser().Parse(path, []byte(src))
	require.NoError(t, err)
	return sf
}

func mustGenerate(t *testing.T, opts Options, path, src string) string {
	t.Helper()
	out := strings.TrimSuffix(path, ".fng") + "_fng.go"
	gf, err := NewGenerator(opts).Generate(mustParse(t, path, src), out)
	require.NoError(t, err)
	return string(gf.Content)
}

// tupleImporter resolves the tuple runtime from its source directory and
// everything else from the default importer.
type tupleImporter struct {
	tuple    *types.Package
	fallback types.Importer
}

func (i tupleImporter) Import(path string) (*types.Package, error) {
	if path == DefaultTuplePackage {
		return i.tuple, nil
	}
	return i.fallback.Import(path)
}

func newTupleImporter(t *testing.T) types.Importer {
	t.Helper()
	dir := filepath.Join("..", "..", "..", "tuple")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	fset := token.NewFileSet()
	var files []*ast.File
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".go") || strings.HasSuffix(e.Name(), "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, e.Name()), nil, 0)
		require.NoError(t, err)
		files = append(files, f)
	}

	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check(DefaultTuplePackage, fset, files, nil)
	require.NoError(t, err)
	return tupleImporter{tuple: pkg, fallback: importer.Default()}
}

// typeCheck type-checks files as one package and returns the first error.
func typeCheck(t *testing.T, files map[string]string) error {
	t.Helper()
	fset := token.NewFileSet()
	var parsed []*ast.File
	for name, src := range files {
		f, err := parser.ParseFile(fset, name, src, 0)
		require.NoError(t, err, "parse %s", name)
		parsed = append(parsed, f)
	}

	conf := types.Config{Importer: newTupleImporter(t)}
	_, err := conf.Check("example.com/generated", fset, parsed, nil)
	return err
}
