package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fngroup/config"
)

var forceInitFlag bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default fngroup.yaml",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInitFlag, "force", false, "overwrite an existing fngroup.yaml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := targetDir(args)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !forceInitFlag {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
