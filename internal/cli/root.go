// Package cli implements the cfdaily command-line interface using Cobra.
// Each subcommand maps to an engine operation (serve, check, streak, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cfdaily",
	Short: "cfdaily — A daily competitive-programming problem and streak tracker",
	Long: `cfdaily picks two Codeforces problems for you every day — one matched
to your rating, one drawn from the whole problemset — and tracks your
solve streaks by checking your submissions against the judge.

Run "cfdaily serve" to start the local API daemon the browser
extension talks to, or use the subcommands directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
