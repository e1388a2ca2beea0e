// =============================================================================
// txnbatch - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (txnbatch)
//   ├── generateCmd (txnbatch generate [N])
//   ├── parseCmd    (txnbatch parse [fileName])
//   └── versionCmd  (txnbatch version)
//
// SETUP (before any subcommand runs):
//   1. Load KEY=value pairs from the --env-file (default .env), if present
//   2. Resolve the log level (flag, then TXNBATCH_LOG_LEVEL)
//   3. Build the zap logger, tagged with a per-run UUID
//
// EXIT CODES:
//   0 success, 1 runtime failure, and negative codes for CLI misuse
//   (see types.ExitCode). Misuse is detected before any work begins.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/txnbatch/internal/config"
	"github.com/ginjaninja78/txnbatch/internal/logging"
	"github.com/ginjaninja78/txnbatch/internal/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// envFile is the optional .env file loaded before anything else.
var envFile string

// logLevel is the minimum level of diagnostic output.
var logLevel string

// verbose enables debug logging when set to true.
var verbose bool

// logger is built in setup and shared by the subcommands.
var logger = zap.NewNop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "txnbatch",
	Short: "Generate and validate telecom transaction files",
	Long: `txnbatch generates synthetic transaction files and validates them.

Each data line holds a subscriber number (MSISDN), an amount in cents and a
timestamp, separated by semicolons. Parsing checks every line, totals the valid
amounts per day of week and routes the file:
  - all lines valid:  <file>.REPORT.txt in the output folder, file archived
  - any line invalid: <file>.ERROR.txt in the error folder, file moved there

Example Usage:
  txnbatch generate          # Generate lineNo records (from the config file)
  txnbatch generate 500      # Generate 500 records
  txnbatch parse             # Process every file in the input folder
  txnbatch parse data.csv    # Process a single file`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Args: rootArgs,

	PersistentPreRunE: setup,

	// Without a subcommand there is nothing to do: print help and exit
	// with the no-arguments code.
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Help()
		return newUsageError(types.ExitNoArgs, "no command given")
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI and exits the process with the resulting code.
// This is called by main.main().
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the root command with the given arguments and returns the
// process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	_ = logger.Sync()

	if err == nil {
		return int(types.ExitOK)
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return int(exitCode(err))
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the persistent flags.
func init() {
	// --config flag: the flat Key: value configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file (env "+config.EnvConfigPath+")",
	)

	// --env-file flag: optional KEY=value overrides.
	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to an optional .env file",
	)

	// --log-level flag: debug, info, warn or error.
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"info",
		"Log level: debug, info, warn, error (env "+config.EnvLogLevel+")",
	)

	// --verbose flag: shorthand for debug logging with caller info.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads the environment and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(envFile); err != nil {
		return err
	}

	level := config.ResolveLogLevel(logLevel, cmd.Root().PersistentFlags().Changed("log-level"))
	built, err := logging.New(level, verbose)
	if err != nil {
		return err
	}

	logger = built.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("command", cmd.Name()),
	)
	return nil
}

// loadParameters reads the configuration file for the current run.
func loadParameters(cmd *cobra.Command) (*config.Parameters, error) {
	path := config.ResolvePath(cfgFile, cmd.Root().PersistentFlags().Changed("config"))

	params, err := config.Load(path)
	if err != nil {
		logger.Error("configuration not loaded", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	logger.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("input", params.InputFolder),
		zap.String("output", params.OutputFolder),
		zap.String("archive", params.ArchiveFolder),
		zap.String("error", params.ErrorFolder),
		zap.Int("lineNo", params.NumOfLines))

	return params, nil
}

// rootArgs rejects anything that did not resolve to a subcommand.
func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return newUsageError(types.ExitUnknownCommand, fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath()))
	}
	return nil
}

// =============================================================================
// USAGE ERRORS
// =============================================================================

// UsageError is a CLI misuse with its own exit code.
type UsageError struct {
	Code    types.ExitCode
	Message string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.Message
}

func newUsageError(code types.ExitCode, message string) *UsageError {
	return &UsageError{Code: code, Message: message}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) types.ExitCode {
	var usage *UsageError
	if errors.As(err, &usage) {
		return usage.Code
	}
	return types.ExitFailure
}
