package usecase

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"fngroup/internal/port"
)

// generatedMarker starts every file fngroup writes.
var generatedMarker = []byte("// Code generated by fngroup from ")

// CleanUseCase removes generated outputs.
type CleanUseCase struct {
	walker     port.FileWalker
	cache      port.GenCache // may be nil
	outputPath func(src string) string
	logger     *slog.Logger
}

func NewCleanUseCase(walker port.FileWalker, cache port.GenCache, outputPath func(src string) string, logger *slog.Logger) *CleanUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanUseCase{walker: walker, cache: cache, outputPath: outputPath, logger: logger}
}

// CleanResult contains the results of a clean operation.
type CleanResult struct {
	FilesDeleted int
	Errors       []string
}

// Clean deletes the outputs recorded in the cache and the outputs next to
// the sources found under root. Only files carrying the fngroup header are
// removed.
func (u *CleanUseCase) Clean(root string) (*CleanResult, error) {
	result := &CleanResult{}
	candidates := make(map[string]bool)

	if u.cache != nil {
		entries, err := u.cache.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list cache entries: %w", err)
		}
		for _, e := range entries {
			candidates[e.OutputPath] = true
			if err := u.cache.Delete(e.SourcePath); err != nil {
				return nil, fmt.Errorf("failed to update cache: %w", err)
			}
		}
	}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	for _, f := range files {
		candidates[u.outputPath(f.Path)] = true
	}

	for path := range candidates {
		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to read %s: %v", path, err))
			}
			continue
		}
		if !bytes.HasPrefix(content, generatedMarker) {
			u.logger.Warn("not removing file without generated header", "file", path)
			continue
		}
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		u.logger.Debug("deleted", "file", path)
		result.FilesDeleted++
	}
	return result, nil
}
