// =============================================================================
// txnbatch - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which writes a synthetic
// transaction file into the input folder.
//
// COMMAND USAGE:
//   txnbatch generate [N] [flags]
//
// ARGUMENTS:
//   N  : Number of records, a positive integer. Defaults to lineNo from the
//        configuration file. "0" exits with -4, non-numeric input with -3.
//
// FLAGS:
//   --seed : Random seed for reproducible output (0 = time-based)
//
// =============================================================================

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/generator"
	"github.com/ginjaninja78/txnbatch/internal/types"
	"github.com/ginjaninja78/txnbatch/pkg/utils"
	"github.com/spf13/cobra"
)

// seed is the random seed for the generator.
var seed int64

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate [N]",
	Short: "Generate a synthetic transaction file",
	Long: `Generate writes TestData_<timestamp>.csv into the input folder with a
"MSISDN;Amount;Timestamp" header and N records. Every record is valid for the
current month: identifiers follow the 3859 pattern, amounts are 0.01 - 99.99
EUR and timestamps fall between the start of the month and now.`,

	Args: generateArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, args)
	},
}

// init registers the generate command with the root command.
func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Int64Var(
		&seed,
		"seed",
		0,
		"Random seed for reproducible output (0 = time-based)",
	)
}

// generateArgs validates the optional line count before any work begins.
func generateArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return newUsageError(types.ExitTooManyArgs, fmt.Sprintf("generate accepts at most 1 argument, got %d", len(args)))
	}
	if len(args) == 1 {
		_, err := parseLineCount(args[0])
		return err
	}
	return nil
}

// parseLineCount converts the N argument.
func parseLineCount(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, newUsageError(types.ExitNonNumeric, fmt.Sprintf("number of lines must be numeric, got %q", arg))
	}
	if n <= 0 {
		return 0, newUsageError(types.ExitZeroValue, fmt.Sprintf("number of lines must be greater than zero, got %d", n))
	}
	return n, nil
}

// runGenerate writes one data file and prints a summary.
func runGenerate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	startTime := time.Now()

	fmt.Fprintln(out, "=== Transaction Test Data Generator ===")

	params, err := loadParameters(cmd)
	if err != nil {
		return err
	}

	lines := params.NumOfLines
	if len(args) == 1 {
		if lines, err = parseLineCount(args[0]); err != nil {
			return err
		}
	}

	files := utils.NewFileManager(params.InputFolder, params.OutputFolder, params.ArchiveFolder, params.ErrorFolder, logger)
	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	gen := generator.New(params.InputFolder, generator.Options{Seed: seed}, logger)

	fmt.Fprintf(out, "Generating %d record(s)...\n", lines)
	path, err := gen.WriteFile(lines)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\n=== Generation Complete ===")
	fmt.Fprintf(out, "File:            %s\n", path)
	fmt.Fprintf(out, "Records:         %d\n", lines)
	fmt.Fprintf(out, "Seed:            %d\n", gen.Seed())
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime))

	return nil
}
