package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand <file.fng>",
	Short: "Print the expansion of one .fng file",
	Long: `Expand a single .fng file and print the generated Go source to stdout
without writing anything or touching the cache.

Examples:
  fngroup expand math.fng
  fngroup expand math.fng | less`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	generateUC := newGenerateUseCase(GetConfig(), nil)

	content, err := generateUC.Expand(args[0])
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(content); err != nil {
		return fmt.Errorf("failed to write expansion: %w", err)
	}
	return nil
}
