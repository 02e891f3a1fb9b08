package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"fngroup/internal/adapter/diag"
	"fngroup/internal/domain"
	"fngroup/internal/port"
)

// ProgressFunc is called after each source file has been processed.
type ProgressFunc func(processed, total int, currentFile string)

// GenerateUseCase expands every .fng file under a root directory.
type GenerateUseCase struct {
	parser     port.Parser
	generator  port.Generator
	walker     port.FileWalker
	reader     port.FileReader
	cache      port.GenCache // nil disables incremental generation
	outputPath func(src string) string
	logger     *slog.Logger
}

// NewGenerateUseCase creates a new generate use case. outputPath maps a
// source path to the path of its generated file.
func NewGenerateUseCase(
	parser port.Parser,
	generator port.Generator,
	walker port.FileWalker,
	reader port.FileReader,
	cache port.GenCache,
	outputPath func(src string) string,
	logger *slog.Logger,
) *GenerateUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateUseCase{
		parser:     parser,
		generator:  generator,
		walker:     walker,
		reader:     reader,
		cache:      cache,
		outputPath: outputPath,
		logger:     logger,
	}
}

// GenerateOptions controls a generation run.
type GenerateOptions struct {
	// Check compares the would-be outputs with the files on disk and writes
	// nothing.
	Check bool
	// DryRun expands every file but writes nothing.
	DryRun bool
	// Workers bounds the number of files expanded concurrently.
	Workers int
	// Reporter receives positioned diagnostics. The default logs them and
	// keeps going with the remaining files.
	Reporter diag.Reporter
}

// StaleFile is a generated file whose content differs from what the
// current sources produce.
type StaleFile struct {
	Path string
	Diff string
}

// GenerateResult contains the results of a generation run.
type GenerateResult struct {
	FilesGenerated int
	FilesUnchanged int
	FilesSkipped   int // unchanged according to the cache
	FilesDeleted   int // outputs of removed sources
	GroupsEmitted  int
	Stale          []StaleFile
	Errors         []string
}

// Failed reports whether any file could not be expanded or, in check mode,
// is out of date.
func (r *GenerateResult) Failed() bool {
	return len(r.Errors) > 0 || len(r.Stale) > 0
}

// Generate expands the .fng files under root.
func (u *GenerateUseCase) Generate(ctx context.Context, root string, opts GenerateOptions, progress ProgressFunc) (*GenerateResult, error) {
	result := &GenerateResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	u.logger.Debug("found sources", "root", root, "files", len(files))

	var mu sync.Mutex
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NewReporter(func(err diag.ErrorWithPos) error {
			u.logger.Debug("invalid source", "error", err)
			return nil
		})
	}
	handler := diag.NewHandler(reporter)

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)

	processed := 0
	seen := make(map[string]bool, len(files))
	for _, file := range files {
		seen[file.Path] = true

		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := u.generateFile(root, file, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var ewp diag.ErrorWithPos
				if !errors.As(err, &ewp) {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.RelPath, err))
				} else {
					result.Errors = append(result.Errors, err.Error())
					if herr := handler.HandleError(err); herr != nil {
						return herr
					}
				}
			} else {
				outcome.apply(result)
			}

			processed++
			if progress != nil {
				progress(processed, len(files), file.RelPath)
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	if err := u.removeOrphans(seen, root, opts, result); err != nil {
		return nil, err
	}

	sort.Strings(result.Errors)
	sort.Slice(result.Stale, func(i, j int) bool { return result.Stale[i].Path < result.Stale[j].Path })
	return result, nil
}

type fileOutcome struct {
	generated bool
	unchanged bool
	skipped   bool
	groups    int
	stale     *StaleFile
}

func (o fileOutcome) apply(r *GenerateResult) {
	switch {
	case o.skipped:
		r.FilesSkipped++
	case o.unchanged:
		r.FilesUnchanged++
	case o.generated:
		r.FilesGenerated++
	}
	r.GroupsEmitted += o.groups
	if o.stale != nil {
		r.Stale = append(r.Stale, *o.stale)
	}
}

func (u *GenerateUseCase) generateFile(root string, file port.FileInfo, opts GenerateOptions) (fileOutcome, error) {
	src, err := u.reader.ReadFile(file.Path)
	if err != nil {
		return fileOutcome{}, fmt.Errorf("failed to read source: %w", err)
	}
	var entry domain.CacheEntry
	var hasEntry bool
	if u.cache != nil {
		entry, hasEntry, err = u.cache.Get(file.Path)
		if err != nil {
			return fileOutcome{}, fmt.Errorf("failed to read cache: %w", err)
		}
	}
	sourceHash := hashContent(src)
	outPath := u.outputPath(file.Path)

	existing, err := os.ReadFile(outPath)
	if err != nil && !os.IsNotExist(err) {
		return fileOutcome{}, fmt.Errorf("failed to read output: %w", err)
	}
	outputExists := err == nil

	if hasEntry && outputExists && entry.SourceHash == sourceHash && entry.OutputHash == hashContent(existing) {
		u.logger.Debug("unchanged", "file", file.RelPath)
		return fileOutcome{skipped: true, groups: entry.Groups}, nil
	}

	sf, err := u.parser.Parse(filepath.Join(root, filepath.FromSlash(file.RelPath)), src)
	if err != nil {
		return fileOutcome{}, err
	}
	gf, err := u.generator.Generate(sf, outPath)
	if err != nil {
		return fileOutcome{}, err
	}

	outcome := fileOutcome{groups: gf.Groups}
	if outputExists && bytes.Equal(existing, gf.Content) {
		outcome.unchanged = true
	} else {
		outcome.generated = true
	}

	switch {
	case opts.Check:
		if !outcome.unchanged {
			diff, err := unifiedDiff(outPath, existing, gf.Content)
			if err != nil {
				return fileOutcome{}, err
			}
			outcome.stale = &StaleFile{Path: outPath, Diff: diff}
		}
		return outcome, nil
	case opts.DryRun:
		return outcome, nil
	}

	if outcome.generated {
		if err := os.WriteFile(outPath, gf.Content, 0644); err != nil {
			return fileOutcome{}, fmt.Errorf("failed to write output: %w", err)
		}
		u.logger.Debug("generated", "file", file.RelPath, "output", outPath, "groups", gf.Groups)
	}

	if u.cache != nil {
		err := u.cache.Put(domain.CacheEntry{
			SourcePath: file.Path,
			OutputPath: outPath,
			SourceHash: sourceHash,
			OutputHash: hashContent(gf.Content),
			Groups:     gf.Groups,
		})
		if err != nil {
			return fileOutcome{}, fmt.Errorf("failed to update cache: %w", err)
		}
	}
	return outcome, nil
}

// removeOrphans deletes the outputs of sources under root that no longer
// exist. An output edited since it was generated is left in place.
func (u *GenerateUseCase) removeOrphans(seen map[string]bool, root string, opts GenerateOptions, result *GenerateResult) error {
	if u.cache == nil {
		return nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	entries, err := u.cache.List()
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}
	var orphans []domain.CacheEntry
	for _, entry := range entries {
		if !seen[entry.SourcePath] && within(absRoot, entry.SourcePath) {
			orphans = append(orphans, entry)
		}
	}

	for _, entry := range orphans {
		content, err := os.ReadFile(entry.OutputPath)
		owned := err == nil && hashContent(content) == entry.OutputHash

		switch {
		case opts.Check:
			if owned {
				result.Stale = append(result.Stale, StaleFile{
					Path: entry.OutputPath,
					Diff: fmt.Sprintf("%s: source %s was removed\n", entry.OutputPath, entry.SourcePath),
				})
			}
			continue
		case opts.DryRun:
			if owned {
				result.FilesDeleted++
			}
			continue
		}

		if owned {
			if err := os.Remove(entry.OutputPath); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", entry.OutputPath, err))
				continue
			}
			result.FilesDeleted++
			u.logger.Debug("deleted orphaned output", "output", entry.OutputPath)
		}
		if err := u.cache.Delete(entry.SourcePath); err != nil {
			return fmt.Errorf("failed to update cache: %w", err)
		}
	}
	return nil
}

// Expand returns the generated content for a single source file without
// writing it.
func (u *GenerateUseCase) Expand(path string) ([]byte, error) {
	src, err := u.reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	sf, err := u.parser.Parse(path, src)
	if err != nil {
		return nil, err
	}
	gf, err := u.generator.Generate(sf, u.outputPath(path))
	if err != nil {
		return nil, err
	}
	return gf.Content, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func unifiedDiff(path string, want, got []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(want)),
		B:        difflib.SplitLines(string(got)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
}

func hashContent(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
