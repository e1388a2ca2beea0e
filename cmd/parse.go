// =============================================================================
// txnbatch - Parse Command
// =============================================================================
//
// This file defines the 'parse' command, which validates transaction files
// and routes them to the archive or error folder.
//
// COMMAND USAGE:
//   txnbatch parse [fileName] [flags]
//
// ARGUMENTS:
//   fileName : A file inside the input folder. Without it, every file of the
//              input folder is processed in lexicographic order.
//
// FLAGS:
//   --xlsx : Also write <file>.REPORT.xlsx for archived files
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/processor"
	"github.com/ginjaninja78/txnbatch/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// writeWorkbook enables the .xlsx report.
var writeWorkbook bool

// parseCmd represents the 'parse' command.
var parseCmd = &cobra.Command{
	Use:   "parse [fileName]",
	Short: "Validate transaction files and aggregate amounts per weekday",
	Long: `Parse reads each data line, validates the MSISDN, amount and timestamp,
and totals the valid amounts per day of week.

On success (no invalid line):
  - <file>.REPORT.txt is written to the output folder
  - the file is moved to the archive folder

On error (at least one invalid line):
  - the errors are appended to <file>.ERROR.txt in the error folder
  - the file is moved to the error folder

A file is never moved over an existing file of the same name.`,

	Args: parseArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd, args)
	},
}

// init registers the parse command with the root command.
func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(
		&writeWorkbook,
		"xlsx",
		false,
		"Also write <file>.REPORT.xlsx for archived files",
	)
}

// parseArgs accepts at most one file name.
func parseArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return newUsageError(types.ExitTooManyArgs, fmt.Sprintf("parse accepts at most 1 argument, got %d", len(args)))
	}
	return nil
}

// runParse processes one file or the whole input folder and prints a summary.
func runParse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	startTime := time.Now()

	fmt.Fprintln(out, "=== Transaction File Parser ===")

	params, err := loadParameters(cmd)
	if err != nil {
		return err
	}

	proc := processor.New(*params, logger, processor.Options{WriteWorkbook: writeWorkbook})
	if err := proc.Files().EnsureDirectories(); err != nil {
		return err
	}

	var results []processor.Result
	var runErr error

	if len(args) == 1 {
		fmt.Fprintf(out, "Processing %s...\n", args[0])
		result := proc.ProcessFile(args[0])
		results = append(results, result)
		if result.Outcome == processor.OutcomeFailed {
			runErr = result.Error
		}
	} else {
		fmt.Fprintf(out, "Processing folder %s...\n", params.InputFolder)
		results, runErr = proc.ProcessFolder()
		if errors.Is(runErr, processor.ErrEmptyFolder) {
			fmt.Fprintln(out, "No files found in the input folder.")
		}
	}

	for _, result := range results {
		processor.PrintResult(out, result)
	}

	summary := processor.Summarize(results, startTime, time.Now())
	summary.Print(out)

	logger.Info("parse finished",
		zap.Int("files", summary.TotalFiles),
		zap.Int("archived", summary.Archived),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed()))

	return runErr
}
