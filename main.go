// =============================================================================
// txnbatch - Main Entry Point
// =============================================================================
//
// This is the main entry point for the txnbatch CLI application. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   txnbatch generate [N]      - Write N synthetic records to the input folder
//   txnbatch parse [fileName]  - Validate one file or the whole input folder
//   txnbatch version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic: config, reader, validation, aggregation,
//                      reports, file processing and data generation
//   - pkg/           : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/txnbatch/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
