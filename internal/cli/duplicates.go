package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lintmux/lintmux/internal/config"
	"github.com/lintmux/lintmux/internal/dupes"
	"github.com/lintmux/lintmux/internal/runner"
)

var duplicatesMax int

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Run only the duplicate-code detector and list clone pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		if duplicatesMax > 0 {
			cfg.MaxDuplicates = duplicatesMax
		}

		var jscpd []runner.Tool
		for _, tool := range cfg.RunnerTools() {
			if tool.Kind == runner.KindJSCPD {
				jscpd = append(jscpd, tool)
			}
		}

		result, err := runner.New(rootDir, jscpd).Run(cmd.Context(), nil)
		if err != nil {
			return err
		}
		if len(result.Missing) > 0 {
			return fmt.Errorf("jscpd is not installed")
		}
		if err, failed := result.Failures[runner.KindJSCPD]; failed {
			return fmt.Errorf("jscpd failed: %w", err)
		}

		pairs := dupes.Correlate(result.Duplicates, cfg.MaxDuplicates)
		if len(pairs) == 0 {
			fmt.Println("no duplicated code found")
			return nil
		}
		for _, p := range pairs {
			fmt.Printf("%s:%d-%d <-> %s:%d-%d\n",
				rel(p.FileA), p.StartA, p.EndA, rel(p.FileB), p.StartB, p.EndB)
		}
		fmt.Printf("%d pairs\n", len(pairs))
		return nil
	},
}

func rel(path string) string {
	if r, err := filepath.Rel(rootDir, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

func init() {
	duplicatesCmd.Flags().IntVar(&duplicatesMax, "max", 0, "cap the number of reported pairs (default from config)")
	rootCmd.AddCommand(duplicatesCmd)
}
