// Package report turns raw diagnostics into presentable output: it orders
// them through the dependency graph, anchors each one to a tab-expanded
// source line with a caret range, attaches the best matching diff snippet,
// and renders text or SARIF.
package report

import (
	"context"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/lintmux/lintmux/internal/correlate"
	"github.com/lintmux/lintmux/internal/diag"
	"github.com/lintmux/lintmux/internal/dupes"
	"github.com/lintmux/lintmux/internal/gitdiff"
	"github.com/lintmux/lintmux/internal/textspan"
)

// Options controls assembly. Zero values fall back to the package
// defaults.
type Options struct {
	TabWidth     int
	ContextLines int
	SourceOrder  []gitdiff.Source
}

const defaultContextLines = 3

// Item is one diagnostic ready for rendering. CaretStart and CaretEnd are
// 1-based visual columns into LineText; CaretEnd is exclusive and always
// greater than CaretStart.
type Item struct {
	Diag       diag.Diagnostic
	LineText   string
	CaretStart int
	CaretEnd   int

	// Snippet is nil when no configured diff source covers the line.
	Snippet       *gitdiff.Snippet
	SnippetSource gitdiff.Source
}

// Report is one fully assembled run.
type Report struct {
	Items        []Item
	Duplicates   []dupes.Pair
	MissingTools []string
}

// Counts returns the error and warning totals.
func (r *Report) Counts() (errors, warnings int) {
	for _, item := range r.Items {
		if item.Diag.Severity == diag.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// Assemble orders the diagnostics and decorates each with source context.
// sources may be nil, in which case no snippets are attached; a diff
// source failing mid-run degrades to the next candidate the same way.
func Assemble(ctx context.Context, diags []diag.Diagnostic, edges []correlate.Edge, sources gitdiff.Sources, opts Options) *Report {
	tabWidth := opts.TabWidth
	if tabWidth < 1 {
		tabWidth = textspan.DefaultTabWidth
	}
	contextLines := opts.ContextLines
	if contextLines < 1 {
		contextLines = defaultContextLines
	}
	order := opts.SourceOrder
	if len(order) == 0 {
		order = gitdiff.DefaultSourceOrder
	}

	rep := &Report{}
	lines := newLineCache()
	diffs := newDiffCache(sources, order, contextLines)

	for _, d := range correlate.Order(diags, edges) {
		item := Item{Diag: d}

		if raw, ok := lines.line(d.File, d.Line); ok {
			item.LineText = textspan.ExpandTabs(raw, tabWidth)
			item.CaretStart, item.CaretEnd = caretRange(raw, d, tabWidth)
		}

		if snippet, idx := gitdiff.PickSnippetForLine(diffs.candidates(ctx, d.File), d.Line); snippet != nil {
			item.Snippet = snippet
			item.SnippetSource = order[idx]
		}

		rep.Items = append(rep.Items, item)
	}
	return rep
}

// caretRange maps the diagnostic's visual columns onto the expanded line.
// Going visual→real→visual clamps columns that point past the end of the
// line.
func caretRange(raw string, d diag.Diagnostic, tabWidth int) (start, end int) {
	visual := d.Column - 1
	if visual < 0 {
		visual = 0
	}
	real, err := textspan.RealColumnFromVisual(raw, visual, tabWidth)
	if err != nil {
		return 1, 2
	}
	start = textspan.VisualColumnAt(raw, real, tabWidth) + 1
	end = start + 1

	if (d.EndLine == 0 || d.EndLine == d.Line) && d.EndColumn > d.Column {
		if realEnd, err := textspan.RealColumnFromVisual(raw, d.EndColumn-1, tabWidth); err == nil {
			if v := textspan.VisualColumnAt(raw, realEnd, tabWidth) + 1; v > start {
				end = v
			}
		}
	}
	return start, end
}

// lineCache reads each referenced file once per assembly.
type lineCache struct {
	files map[string][]string
}

func newLineCache() *lineCache {
	return &lineCache{files: make(map[string][]string)}
}

func (c *lineCache) line(path string, n int) (string, bool) {
	lines, ok := c.files[path]
	if !ok {
		source, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).Debugf("no source context for %s", path)
			c.files[path] = nil
			return "", false
		}
		lines = strings.Split(string(source), "\n")
		c.files[path] = lines
	}
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

// diffCache fetches the candidate diff texts for a file once, in source
// priority order. A failing source contributes an empty candidate so the
// priority indices stay aligned.
type diffCache struct {
	sources      gitdiff.Sources
	order        []gitdiff.Source
	contextLines int
	byFile       map[string][]string
}

func newDiffCache(sources gitdiff.Sources, order []gitdiff.Source, contextLines int) *diffCache {
	return &diffCache{
		sources:      sources,
		order:        order,
		contextLines: contextLines,
		byFile:       make(map[string][]string),
	}
}

func (c *diffCache) candidates(ctx context.Context, path string) []string {
	if c.sources == nil {
		return nil
	}
	if cached, ok := c.byFile[path]; ok {
		return cached
	}

	texts := make([]string, len(c.order))
	for i, source := range c.order {
		text, err := c.sources.Diff(ctx, path, source, c.contextLines)
		if err != nil {
			log.WithError(err).WithField("source", source).Debugf("diff unavailable for %s", path)
			continue
		}
		texts[i] = text
	}
	c.byFile[path] = texts
	return texts
}
