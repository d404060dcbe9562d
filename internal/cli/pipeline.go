package cli

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lintmux/lintmux/internal/config"
	"github.com/lintmux/lintmux/internal/correlate"
	"github.com/lintmux/lintmux/internal/dupes"
	"github.com/lintmux/lintmux/internal/gitdiff"
	"github.com/lintmux/lintmux/internal/program"
	"github.com/lintmux/lintmux/internal/report"
	"github.com/lintmux/lintmux/internal/runner"
)

// runPipeline is the full analysis: discover files, run the tools,
// correlate, order, decorate. Every stage past the tool run degrades
// rather than fails, so a broken git repo or unparsable sources still
// produce a usable report.
func runPipeline(ctx context.Context, root string, cfg *config.Config, filter string) (*report.Report, error) {
	discovery, err := runner.NewDiscovery(root, cfg.Ignore)
	if err != nil {
		return nil, err
	}
	files, err := discovery.Files()
	if err != nil {
		return nil, err
	}

	result, err := runner.New(root, cfg.RunnerTools()).Run(ctx, files)
	if err != nil {
		return nil, err
	}

	diags := result.Diagnostics
	if filter != "" {
		if diags, err = report.Filter(diags, filter); err != nil {
			return nil, err
		}
	}

	var edges []correlate.Edge
	model, err := program.Load(files)
	if err != nil {
		log.WithError(err).Warn("program model unavailable, falling back to positional order")
	}
	if model != nil {
		edges = correlate.BuildEdges(diags, model, cfg.Output.TabWidth)
		if closer, ok := model.(interface{ Close() }); ok {
			defer closer.Close()
		}
	}

	sources, err := gitdiff.NewSources(root)
	if err != nil {
		log.WithError(err).Warn("diff sources unavailable, skipping change snippets")
		sources = nil
	}

	rep := report.Assemble(ctx, diags, edges, sources, report.Options{
		TabWidth:     cfg.Output.TabWidth,
		ContextLines: cfg.Output.ContextLines,
		SourceOrder:  cfg.DiffSources(),
	})
	rep.Duplicates = dupes.Correlate(result.Duplicates, cfg.MaxDuplicates)
	rep.MissingTools = result.Missing
	return rep, nil
}

// withSpinner runs fn while an indeterminate progress spinner animates
// on stderr. Skipped entirely in quiet mode.
func withSpinner(quiet bool, description string, fn func() error) error {
	if quiet {
		return fn()
	}

	bar := newSpinner(description)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	err := fn()
	close(done)
	bar.Finish()
	return err
}
