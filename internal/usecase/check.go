package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fngroup/internal/domain"
	"fngroup/internal/port"
)

// CheckUseCase type-checks the packages holding generated files.
type CheckUseCase struct {
	walker     port.FileWalker
	checker    port.PackageChecker
	outputPath func(src string) string
}

func NewCheckUseCase(walker port.FileWalker, checker port.PackageChecker, outputPath func(src string) string) *CheckUseCase {
	return &CheckUseCase{walker: walker, checker: checker, outputPath: outputPath}
}

// CheckResult contains the diagnostics of a check.
type CheckResult struct {
	Packages    int
	Missing     []string // sources whose output has not been generated
	Diagnostics []domain.Diagnostic
}

// Check loads every package under root that contains a generated file.
func (u *CheckUseCase) Check(ctx context.Context, root string) (*CheckResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result := &CheckResult{}
	dirSet := make(map[string]bool)
	for _, f := range files {
		out := u.outputPath(f.Path)
		if _, err := os.Stat(out); err != nil {
			result.Missing = append(result.Missing, f.Path)
			continue
		}
		dirSet[filepath.Dir(out)] = true
	}

	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	result.Packages = len(dirs)

	result.Diagnostics, err = u.checker.Check(ctx, dirs)
	if err != nil {
		return nil, err
	}
	return result, nil
}
