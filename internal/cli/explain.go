package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lintmux/lintmux/internal/config"
	"github.com/lintmux/lintmux/internal/gitdiff"
)

var explainHistoryLimit int

var explainCmd = &cobra.Command{
	Use:   "explain <file:line>",
	Short: "Show blame, line history and the latest change around one location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, line, err := parseLocation(args[0])
		if err != nil {
			return err
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(rootDir, file)
		}

		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		sources, err := gitdiff.NewSources(rootDir)
		if err != nil {
			return fmt.Errorf("opening git sources: %w", err)
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		order := cfg.DiffSources()
		candidates := make([]string, len(order))
		for i, source := range order {
			if text, err := sources.Diff(ctx, file, source, cfg.Output.ContextLines); err == nil {
				candidates[i] = text
			}
		}
		if snippet, idx := gitdiff.PickSnippetForLine(candidates, line); snippet != nil {
			fmt.Fprintf(out, "Latest change (%s) %s\n", order[idx], snippet.Header)
			for i, l := range snippet.Lines {
				marker := " "
				if snippet.PointerIndex != nil && *snippet.PointerIndex == i {
					marker = ">"
				}
				fmt.Fprintf(out, "%s %c%s\n", marker, l.Symbol, l.Content)
			}
			fmt.Fprintln(out)
		}

		if blame, err := sources.Blame(ctx, file, line, cfg.Output.ContextLines); err == nil && blame != "" {
			fmt.Fprintln(out, "Blame:")
			fmt.Fprintln(out, strings.TrimRight(blame, "\n"))
			fmt.Fprintln(out)
		}

		hist, err := sources.History(ctx, file, line, explainHistoryLimit)
		if err != nil {
			return fmt.Errorf("line history: %w", err)
		}
		if hist != "" {
			fmt.Fprintln(out, "Line history:")
			fmt.Fprintln(out, strings.TrimRight(hist, "\n"))
		}
		return nil
	},
}

func parseLocation(arg string) (string, int, error) {
	idx := strings.LastIndex(arg, ":")
	if idx <= 0 || idx == len(arg)-1 {
		return "", 0, fmt.Errorf("expected <file:line>, got %q", arg)
	}
	line, err := strconv.Atoi(arg[idx+1:])
	if err != nil || line < 1 {
		return "", 0, fmt.Errorf("invalid line number in %q", arg)
	}
	return arg[:idx], line, nil
}

func init() {
	explainCmd.Flags().IntVarP(&explainHistoryLimit, "limit", "n", 5, "number of history commits to show")
	rootCmd.AddCommand(explainCmd)
}
