// Package typecheck reports compiler diagnostics for packages that contain
// generated code.
package typecheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"

	"fngroup/internal/domain"
)

// Checker loads packages with go/packages and collects their errors.
type Checker struct {
	// Dir is the working directory of the underlying go command.
	Dir string
	// Tests also loads the test variants of each package.
	Tests bool
}

func NewChecker(dir string) *Checker {
	return &Checker{Dir: dir}
}

// Check type-checks the packages in dirs. Errors inside the loaded packages
// are returned as diagnostics; the error result is reserved for failures to
// run the loader at all.
func (c *Checker) Check(ctx context.Context, dirs []string) ([]domain.Diagnostic, error) {
	if len(dirs) == 0 {
		return nil, nil
	}

	patterns := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, abs)
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax |
			packages.NeedImports,
		Dir:   c.Dir,
		Env:   os.Environ(),
		Tests: c.Tests,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	seen := make(map[string]bool)
	var diags []domain.Diagnostic
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		// The go command repeats compile errors as unpositioned list errors.
		positioned := false
		for _, e := range pkg.Errors {
			if e.Kind == packages.ParseError || e.Kind == packages.TypeError {
				positioned = true
				break
			}
		}
		for _, e := range pkg.Errors {
			if positioned && e.Kind == packages.ListError {
				continue
			}
			d := domain.Diagnostic{Package: pkg.PkgPath, Pos: e.Pos, Msg: e.Msg}
			key := d.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			diags = append(diags, d)
		}
	})

	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Pos < diags[j].Pos })
	return diags, nil
}
