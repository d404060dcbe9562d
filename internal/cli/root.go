// Package cli wires the lintmux commands together.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lintmux",
	Short: "One ordered report from eslint, tsc, prettier and jscpd",
	Long: `lintmux runs several JavaScript/TypeScript analyzers against one
codebase, correlates their findings through the project's symbol and
import graph, and prints them in dependency order: the diagnostic on a
declaration comes before the diagnostics on its uses, and errors in a
dependency come before errors in its consumers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}

		abs, err := filepath.Abs(rootDir)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		rootDir = abs
		return nil
	},
}

// Execute runs the CLI. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", ".", "project root to analyze")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
