package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lintmux/lintmux/internal/diag"
	"github.com/lintmux/lintmux/internal/gitdiff"
)

// Test Plan for report assembly and rendering:
// - Assemble expands tabs and maps caret columns onto the expanded line
// - The highest-priority diff source covering the line wins
// - Missing files and nil sources degrade to bare diagnostics
// - Text rendering shows location, caret row and snippet pointer
// - SARIF output carries tool name, rule ids and regions
// - Filter narrows by query and keeps presentation order

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.ts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAssemble_TabExpansionAndCaret(t *testing.T) {
	t.Parallel()

	// Tab then code: with tabWidth 4 the tab spans visual columns 1-4.
	path := writeFixture(t, "\tconst x = 1;\n")
	d := diag.Diagnostic{
		File: path, Line: 1, Column: 5, EndColumn: 10,
		Severity: diag.SeverityError, Message: "m", Source: "tsc", Rule: "TS1",
	}

	rep := Assemble(context.Background(), []diag.Diagnostic{d}, nil, nil, Options{TabWidth: 4})
	require.Len(t, rep.Items, 1)

	item := rep.Items[0]
	assert.Equal(t, "    const x = 1;", item.LineText)
	assert.Equal(t, 5, item.CaretStart, "caret lands on the first rune after the tab")
	assert.Equal(t, 10, item.CaretEnd)
	assert.Nil(t, item.Snippet)
}

func TestAssemble_PicksHighestPrioritySnippet(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "a\nb\nc\nd\ne\n")
	diffFor := func(start int) string {
		return "diff --git a/app.ts b/app.ts\n" +
			"--- a/app.ts\n+++ b/app.ts\n" +
			"@@ -1,2 +" + string(rune('0'+start)) + ",2 @@\n" +
			" a\n+b\n"
	}

	sources := &gitdiff.StaticSources{Diffs: map[gitdiff.Source]map[string]string{
		// Upstream does not cover line 2; worktree does.
		gitdiff.SourceUpstream: {path: diffFor(8)},
		gitdiff.SourceWorktree: {path: diffFor(1)},
	}}

	d := diag.Diagnostic{File: path, Line: 2, Column: 1,
		Severity: diag.SeverityWarning, Message: "m", Source: "eslint", Rule: "semi"}

	rep := Assemble(context.Background(), []diag.Diagnostic{d}, nil, sources, Options{})
	require.Len(t, rep.Items, 1)
	require.NotNil(t, rep.Items[0].Snippet)
	assert.Equal(t, gitdiff.SourceWorktree, rep.Items[0].SnippetSource)
	require.NotNil(t, rep.Items[0].Snippet.PointerIndex)
}

func TestAssemble_MissingFileDegrades(t *testing.T) {
	t.Parallel()

	d := diag.Diagnostic{File: "/nope/gone.ts", Line: 3, Column: 1,
		Severity: diag.SeverityError, Message: "m", Source: "tsc", Rule: "TS1"}

	rep := Assemble(context.Background(), []diag.Diagnostic{d}, nil, nil, Options{})
	require.Len(t, rep.Items, 1)
	assert.Empty(t, rep.Items[0].LineText)
	assert.Nil(t, rep.Items[0].Snippet)
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "src", "app.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("const x = 1;\n"), 0o644))

	d := diag.Diagnostic{File: path, Line: 1, Column: 7, EndColumn: 8,
		Severity: diag.SeverityError, Message: "unused", Source: "eslint", Rule: "no-unused-vars"}

	rep := Assemble(context.Background(), []diag.Diagnostic{d}, nil, nil, Options{})
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, rep, root))

	out := buf.String()
	assert.Contains(t, out, "src/app.ts:1:7: error [eslint/no-unused-vars] unused")
	assert.Contains(t, out, "  const x = 1;")
	assert.Contains(t, out, "\n        ^\n", "caret row points at column 7")
	assert.Contains(t, out, "1 errors, 0 warnings")
}

func TestRenderSARIF(t *testing.T) {
	t.Parallel()

	rep := &Report{Items: []Item{{Diag: diag.Diagnostic{
		File: "src/a.ts", Line: 3, Column: 10, EndColumn: 11,
		Severity: diag.SeverityError, Message: "Missing semicolon.",
		Source: "eslint", Rule: "semi",
	}}}}

	var buf bytes.Buffer
	require.NoError(t, RenderSARIF(&buf, rep))

	out := buf.String()
	assert.Contains(t, out, `"lintmux"`)
	assert.Contains(t, out, `"eslint/semi"`)
	assert.Contains(t, out, `"Missing semicolon."`)
	assert.Contains(t, out, `"startLine": 3`)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	diags := []diag.Diagnostic{
		{File: "a.ts", Line: 1, Column: 1, Severity: diag.SeverityError,
			Message: "Missing semicolon.", Source: "eslint", Rule: "semi"},
		{File: "b.ts", Line: 2, Column: 1, Severity: diag.SeverityWarning,
			Message: "'x' is declared but never read.", Source: "tsc", Rule: "TS6133"},
	}

	out, err := Filter(diags, "semicolon")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "semi", out[0].Rule)

	out, err = Filter(diags, "")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
