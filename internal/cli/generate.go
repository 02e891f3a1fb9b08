package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"fngroup/config"
	"fngroup/internal/adapter/codegen"
	"fngroup/internal/adapter/fs"
	"fngroup/internal/adapter/parser"
	"fngroup/internal/adapter/store"
	"fngroup/internal/port"
	"fngroup/internal/usecase"
)

var (
	checkFlag   bool
	dryRunFlag  bool
	noCacheFlag bool
	workersFlag int
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Expand the .fng files under a directory",
	Long: `Expand every .fng file under the given directory (default: the project
root) into a sibling Go file. Unchanged sources are skipped using the cache
stored in .fngroup/cache.db, and outputs of deleted sources are removed.

Examples:
  fngroup generate                # Expand the whole project
  fngroup generate ./internal     # Expand one subtree
  fngroup generate --check        # Print diffs and fail if outputs are stale
  fngroup generate --dry-run      # Expand without writing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&checkFlag, "check", false, "report stale outputs with a diff instead of writing them")
	generateCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "expand sources without writing outputs")
	generateCmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "ignore the generation cache")
	generateCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "files expanded concurrently (default from config)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	cfg := GetConfig()

	var cache port.GenCache
	switch {
	case !cfg.Cache.Enabled || noCacheFlag:
	case checkFlag || dryRunFlag:
		if st := openCacheReadOnly(cfg); st != nil {
			defer st.Close()
			cache = st
		}
	default:
		st, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		cache = st
	}

	generateUC := newGenerateUseCase(cfg, cache)

	workers := cfg.Generate.Workers
	if workersFlag > 0 {
		workers = workersFlag
	}

	fmt.Printf("Scanning %s...\n", path)
	result, err := generateUC.Generate(cmd.Context(), path, usecase.GenerateOptions{
		Check:   checkFlag,
		DryRun:  dryRunFlag,
		Workers: workers,
	}, newProgress("Generating"))
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	for _, stale := range result.Stale {
		fmt.Print(stale.Diff)
	}

	switch {
	case checkFlag:
		fmt.Printf("\nCheck complete:\n")
		fmt.Printf("  Up to date:     %d\n", result.FilesUnchanged+result.FilesSkipped)
		fmt.Printf("  Stale:          %d\n", len(result.Stale))
	default:
		if dryRunFlag {
			fmt.Printf("\nDry run complete (nothing written):\n")
		} else {
			fmt.Printf("\nGeneration complete:\n")
		}
		fmt.Printf("  Files generated: %d\n", result.FilesGenerated)
		fmt.Printf("  Files unchanged: %d\n", result.FilesUnchanged+result.FilesSkipped)
		fmt.Printf("  Files deleted:   %d (removed sources)\n", result.FilesDeleted)
		fmt.Printf("  Function groups: %d\n", result.GroupsEmitted)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if result.Failed() {
		if len(result.Errors) > 0 {
			return fmt.Errorf("%d file(s) failed to expand", len(result.Errors))
		}
		return fmt.Errorf("%d generated file(s) are out of date", len(result.Stale))
	}
	return nil
}

// targetDir returns the directory named by args, or the project root.
// Relative arguments stay relative so diagnostics print short paths.
func targetDir(args []string) (string, error) {
	path := GetRootDir()
	if len(args) > 0 {
		path = filepath.Clean(args[0])
	} else if wd, err := os.Getwd(); err == nil && wd == path {
		path = "."
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", path)
	}
	return path, nil
}

func openCache(cfg *config.Config) (*store.BoltStore, error) {
	root := GetRootDir()
	if err := config.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", config.Dir, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CacheDBPath(root)), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	st, err := store.NewBoltStore(cfg.CacheDBPath(root))
	if err != nil {
		return nil, fmt.Errorf("failed to open generation cache: %w", err)
	}

	migration, err := st.Migrate(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to migrate generation cache: %w", err)
	}
	if migration.NeedsRebuild {
		fmt.Printf("Regenerating everything: %s\n", migration.Reason)
	} else if migration.NeedsMigration {
		logger.Debug("cache migrated", "reason", migration.Reason)
	}
	return st, nil
}

// openCacheReadOnly opens the cache for runs that write nothing. It returns
// nil when there is no usable cache; such runs then expand every source and
// cannot see removed sources.
func openCacheReadOnly(cfg *config.Config) *store.BoltStore {
	path := cfg.CacheDBPath(GetRootDir())
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	st, err := store.OpenReadOnly(path)
	if err != nil {
		logger.Debug("generation cache unavailable", "error", err)
		return nil
	}
	migration, err := st.CheckMigration(cfg)
	if err != nil || migration.NeedsRebuild || migration.NeedsMigration {
		logger.Debug("generation cache not current, ignoring it", "path", path)
		st.Close()
		return nil
	}
	return st
}

func newGenerateUseCase(cfg *config.Config, cache port.GenCache) *usecase.GenerateUseCase {
	gen := codegen.NewGenerator(codegen.Options{
		TuplePackage:   cfg.Generate.TuplePackage,
		LineDirectives: cfg.Generate.LineDirectives,
		FixImports:     cfg.Generate.FixImports,
	})
	return usecase.NewGenerateUseCase(
		parser.NewParser(),
		gen,
		fs.NewWalker(cfg.Generate.Includes, cfg.Generate.Excludes),
		fs.Reader{},
		cache,
		cfg.OutputPath,
		logger,
	)
}

// newProgress returns a progress callback drawing a bar on stdout, or nil
// when stdout is not a terminal.
func newProgress(label string) usecase.ProgressFunc {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return nil
	}

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+label+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 && processed < total {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-processed)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] %s ETA: %s", label, shortName(currentFile), formatDuration(eta)))
			}
		}
	}
}

func shortName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
