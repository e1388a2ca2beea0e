// Version reporting for release builds. Release scripts stamp Version and
// BuildDate with -ldflags; a plain `go build` reports the defaults.

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Stamped with:
//   -ldflags "-X github.com/ginjaninja78/txnbatch/cmd.Version=1.2.0
//             -X github.com/ginjaninja78/txnbatch/cmd.BuildDate=2024-06-01"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// versionCmd prints the build stamp. It accepts no arguments.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the txnbatch version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "txnbatch")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
