package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lintmux/lintmux/internal/config"
	"github.com/lintmux/lintmux/internal/history"
	"github.com/lintmux/lintmux/internal/report"
	"github.com/lintmux/lintmux/internal/watcher"
)

var (
	checkFormat    string
	checkFilter    string
	checkWatch     bool
	checkQuiet     bool
	checkNoHistory bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run all analyzers and print the ordered report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		if checkFormat != "" {
			cfg.Output.Format = checkFormat
			if err := config.Validate(cfg); err != nil {
				return err
			}
		}

		if checkWatch {
			return watchLoop(cmd.Context(), cfg)
		}

		rep, err := checkOnce(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if errors, _ := rep.Counts(); errors > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "", "output format: text or sarif (default from config)")
	checkCmd.Flags().StringVar(&checkFilter, "filter", "", "bleve query narrowing the diagnostics, e.g. 'rule:semi'")
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "re-run on source changes")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "no progress output")
	checkCmd.Flags().BoolVar(&checkNoHistory, "no-history", false, "do not record this run")
	rootCmd.AddCommand(checkCmd)
}

func checkOnce(ctx context.Context, cfg *config.Config) (*report.Report, error) {
	var rep *report.Report
	err := withSpinner(checkQuiet || cfg.Output.Format == "sarif", "analyzing", func() error {
		var err error
		rep, err = runPipeline(ctx, rootDir, cfg, checkFilter)
		return err
	})
	if err != nil {
		return nil, err
	}

	if cfg.Output.Format == "sarif" {
		if err := report.RenderSARIF(os.Stdout, rep); err != nil {
			return nil, err
		}
	} else {
		if err := report.RenderText(os.Stdout, rep, rootDir); err != nil {
			return nil, err
		}
	}

	if !checkNoHistory {
		recordRun(ctx, cfg, rep)
	}
	return rep, nil
}

// recordRun logs the run summary; history being unwritable never fails a
// check.
func recordRun(ctx context.Context, cfg *config.Config, rep *report.Report) {
	store, err := history.Open(cfg.HistoryPath(rootDir))
	if err != nil {
		log.Printf("history unavailable: %v", err)
		return
	}
	defer store.Close()

	errors, warnings := rep.Counts()
	tools := toolNames(rep.Items)
	if err := store.Record(ctx, history.Run{
		Root:       rootDir,
		Errors:     errors,
		Warnings:   warnings,
		Duplicates: len(rep.Duplicates),
		Tools:      tools,
	}); err != nil {
		log.Printf("recording run failed: %v", err)
	}
}

func toolNames(items []report.Item) []string {
	seen := make(map[string]bool)
	var names []string
	for _, item := range items {
		if !seen[item.Diag.Source] {
			seen[item.Diag.Source] = true
			names = append(names, item.Diag.Source)
		}
	}
	return names
}

// watchLoop runs one check, then re-runs after every debounced change
// batch until interrupted.
func watchLoop(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := func() {
		if _, err := checkOnce(ctx, cfg); err != nil {
			log.Printf("check failed: %v", err)
		}
	}
	run()

	w, err := watcher.New(rootDir, watcher.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()

	w.Start(ctx, func(files []string) {
		log.Printf("%d files changed, re-running", len(files))
		run()
	})

	log.Printf("watching %s for changes (ctrl-c to stop)", rootDir)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
