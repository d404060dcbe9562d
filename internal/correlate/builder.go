// Package correlate builds the dependency graph between diagnostics and
// orders them so that diagnostics on declarations print before the
// diagnostics on their uses.
package correlate

import (
	"github.com/lintmux/lintmux/internal/diag"
	"github.com/lintmux/lintmux/internal/program"
	"github.com/lintmux/lintmux/internal/textspan"
)

// Edge records that From's location declares or exports something To's
// location uses. Edges never reference ids outside the diagnostic set
// they were built from.
type Edge struct {
	From diag.ID
	To   diag.ID
}

// BuildEdges correlates diagnostics through the program model. Two kinds
// of edges are emitted:
//
//   - declaration → use: the symbol under a diagnostic's position has a
//     declaration whose span contains another diagnostic;
//   - import fallback: the first diagnostic of an imported file points at
//     every diagnostic of the importing file. This is deliberately
//     coarse: "errors in a dependency" before "errors in its consumer",
//     with no symbol-level precision.
//
// A nil model yields an empty edge set: correlation degrades, the run
// does not fail. Self-edges are dropped and duplicates collapse.
func BuildEdges(diags []diag.Diagnostic, model program.Model, tabWidth int) []Edge {
	if model == nil || len(diags) == 0 {
		return nil
	}

	byFile := diag.ByFile(diags)
	seen := make(map[Edge]struct{})
	var edges []Edge
	add := func(from, to diag.ID) {
		if from == to {
			return
		}
		e := Edge{From: from, To: to}
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}

	for _, d := range diags {
		file, ok := model.SourceFile(d.File)
		if !ok {
			continue
		}
		lineText, ok := file.Line(d.Line)
		if !ok {
			continue
		}

		// Tool columns are 1-based visual columns; the model wants a
		// 0-based real rune index.
		visual := d.Column - 1
		if visual < 0 {
			visual = 0
		}
		realCol, err := textspan.RealColumnFromVisual(lineText, visual, tabWidth)
		if err != nil {
			continue
		}

		offset := file.OffsetAt(d.Line, realCol)
		for _, sym := range file.SymbolsAt(offset) {
			for _, decl := range model.DeclarationsOf(sym) {
				for _, other := range byFile[decl.File] {
					if other.Line >= decl.StartLine && other.Line <= decl.EndLine {
						add(other.ID(), d.ID())
					}
				}
			}
		}
	}

	// Import fallback, once per importing file, in first-diagnostic
	// order so edge emission stays deterministic.
	processed := make(map[string]bool)
	for _, d := range diags {
		if processed[d.File] {
			continue
		}
		processed[d.File] = true

		file, ok := model.SourceFile(d.File)
		if !ok {
			continue
		}
		for _, spec := range file.Imports() {
			target, ok := model.ResolveImport(spec, d.File)
			if !ok {
				continue
			}
			targetDiags := byFile[target]
			if len(targetDiags) == 0 {
				continue
			}
			first := targetDiags[0].ID()
			for _, importer := range byFile[d.File] {
				add(first, importer.ID())
			}
		}
	}

	return edges
}
