package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fngroup/internal/adapter/fs"
	"fngroup/internal/port"
	"fngroup/internal/usecase"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Delete generated files and the generation cache",
	Long: `Delete every file generated by fngroup under the given directory, along
with the outputs recorded in the generation cache, then delete the cache.
Files without the fngroup header are never removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	dbPath := cfg.CacheDBPath(GetRootDir())

	var cache port.GenCache
	if _, err := os.Stat(dbPath); err == nil {
		st, err := openCache(cfg)
		if err != nil {
			return err
		}
		cache = st
		defer func() {
			st.Close()
			if len(args) == 0 {
				if err := os.Remove(dbPath); err != nil {
					logger.Warn("failed to remove cache", "path", dbPath, "error", err)
				}
			}
		}()
	}

	cleanUC := usecase.NewCleanUseCase(
		fs.NewWalker(cfg.Generate.Includes, cfg.Generate.Excludes),
		cache,
		cfg.OutputPath,
		logger,
	)
	result, err := cleanUC.Clean(path)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	fmt.Printf("Deleted %d generated file(s)\n", result.FilesDeleted)
	for _, e := range result.Errors {
		fmt.Printf("  - %s\n", e)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d file(s) could not be removed", len(result.Errors))
	}
	return nil
}
