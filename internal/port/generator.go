package port

import (
	"context"

	"fngroup/internal/domain"
)

// Parser splits a .fng source into pass-through text and function groups.
type Parser interface {
	Parse(path string, src []byte) (*domain.SourceFile, error)
}

// Generator expands a parsed source into the Go file written at outputPath.
type Generator interface {
	Generate(sf *domain.SourceFile, outputPath string) (*domain.GeneratedFile, error)
}

// PackageChecker type-checks the Go packages in dirs.
type PackageChecker interface {
	Check(ctx context.Context, dirs []string) ([]domain.Diagnostic, error)
}
