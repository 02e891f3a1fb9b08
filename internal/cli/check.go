package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fngroup/internal/adapter/fs"
	"fngroup/internal/adapter/typecheck"
	"fngroup/internal/usecase"
)

var checkTestsFlag bool

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Type-check the packages holding generated code",
	Long: `Load every Go package under the given directory that contains a generated
file and print its compiler errors. With line directives enabled, errors inside
variant bodies point at the .fng source.

Examples:
  fngroup check
  fngroup check ./internal --tests`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkTestsFlag, "tests", false, "also check the test files of each package")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	checker := typecheck.NewChecker(GetRootDir())
	checker.Tests = checkTestsFlag

	checkUC := usecase.NewCheckUseCase(
		fs.NewWalker(cfg.Generate.Includes, cfg.Generate.Excludes),
		checker,
		cfg.OutputPath,
	)

	result, err := checkUC.Check(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	for _, src := range result.Missing {
		fmt.Printf("%s: not generated (run fngroup generate)\n", src)
	}
	for _, d := range result.Diagnostics {
		fmt.Println(d.String())
	}

	fmt.Printf("\nChecked %d package(s): %d error(s)\n", result.Packages, len(result.Diagnostics))
	if len(result.Diagnostics) > 0 || len(result.Missing) > 0 {
		return fmt.Errorf("check found %d error(s) and %d missing output(s)", len(result.Diagnostics), len(result.Missing))
	}
	return nil
}
