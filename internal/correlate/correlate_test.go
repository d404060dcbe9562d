package correlate

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lintmux/lintmux/internal/diag"
	"github.com/lintmux/lintmux/internal/program"
)

// Test Plan for diagnostic correlation:
// - BuildEdges links a declaration diagnostic to its use diagnostic
// - Import fallback points the first dependency diagnostic at every
//   importer diagnostic
// - Nil model and self-references yield no edges
// - TopoRank is deterministic under shuffled input and respects edges
// - Cycles rank after acyclic diagnostics, in original order
// - Ranks form a bijection onto 0..n-1
// - Order without edges falls back to severity/file/position

// fakeModel implements program.Model over canned files. Good enough to
// exercise the edge builder without parsing real sources.
type fakeModel struct {
	files map[string]*fakeFile
	decls map[string][]program.Declaration
}

type fakeFile struct {
	path    string
	lines   []string
	symbols map[int][]program.Symbol
	imports []string
}

func (m *fakeModel) SourceFile(path string) (program.SourceFile, bool) {
	f, ok := m.files[path]
	return f, ok
}

func (m *fakeModel) DeclarationsOf(sym program.Symbol) []program.Declaration {
	return m.decls[sym.Name]
}

func (m *fakeModel) ResolveImport(specifier, fromFile string) (string, bool) {
	target := strings.TrimPrefix(specifier, "./") + ".ts"
	_, ok := m.files[target]
	return target, ok
}

func (f *fakeFile) Path() string { return f.path }

func (f *fakeFile) Line(n int) (string, bool) {
	if n < 1 || n > len(f.lines) {
		return "", false
	}
	return f.lines[n-1], true
}

func (f *fakeFile) OffsetAt(line, realColumn int) int {
	return line*1000 + realColumn
}

func (f *fakeFile) SymbolsAt(offset int) []program.Symbol {
	return f.symbols[offset]
}

func (f *fakeFile) Imports() []string { return f.imports }

func mkdiag(file string, line, col int, source, rule string) diag.Diagnostic {
	return diag.Diagnostic{
		File:     file,
		Line:     line,
		Column:   col,
		Severity: diag.SeverityWarning,
		Source:   source,
		Rule:     rule,
		Message:  rule,
	}
}

func TestBuildEdges_DeclarationToUse(t *testing.T) {
	t.Parallel()

	declDiag := mkdiag("lib.ts", 2, 1, "eslint", "no-unused-vars")
	useDiag := mkdiag("app.ts", 7, 13, "tsc", "TS2345")

	model := &fakeModel{
		files: map[string]*fakeFile{
			"lib.ts": {path: "lib.ts", lines: []string{"", "export function greet() {", "}"}},
			"app.ts": {
				path:  "app.ts",
				lines: []string{"", "", "", "", "", "", "const x = greet(1);"},
				// OffsetAt(7, 12): column 13 is 1-based visual, maps to
				// real index 12 on a tabless line.
				symbols: map[int][]program.Symbol{7012: {{Name: "greet"}}},
			},
		},
		decls: map[string][]program.Declaration{
			"greet": {{File: "lib.ts", Name: "greet", StartLine: 2, EndLine: 3}},
		},
	}

	edges := BuildEdges([]diag.Diagnostic{declDiag, useDiag}, model, 8)
	require.Len(t, edges, 1)
	assert.Equal(t, Edge{From: declDiag.ID(), To: useDiag.ID()}, edges[0])
}

func TestBuildEdges_ImportFallback(t *testing.T) {
	t.Parallel()

	depFirst := mkdiag("lib.ts", 9, 1, "eslint", "semi")
	depSecond := mkdiag("lib.ts", 20, 1, "eslint", "curly")
	impA := mkdiag("app.ts", 1, 1, "tsc", "TS1005")
	impB := mkdiag("app.ts", 4, 1, "prettier", "format")

	model := &fakeModel{
		files: map[string]*fakeFile{
			"lib.ts": {path: "lib.ts", lines: make([]string, 30)},
			"app.ts": {
				path:    "app.ts",
				lines:   make([]string, 10),
				imports: []string{"./lib"},
			},
		},
	}

	edges := BuildEdges([]diag.Diagnostic{depFirst, depSecond, impA, impB}, model, 8)
	assert.ElementsMatch(t, []Edge{
		{From: depFirst.ID(), To: impA.ID()},
		{From: depFirst.ID(), To: impB.ID()},
	}, edges, "only the first dependency diagnostic feeds the fallback")
}

func TestBuildEdges_NilModelAndSelfEdges(t *testing.T) {
	t.Parallel()

	d := mkdiag("a.ts", 1, 1, "eslint", "semi")
	assert.Nil(t, BuildEdges([]diag.Diagnostic{d}, nil, 8))

	// The use diagnostic sits inside its own declaration span: the only
	// candidate edge is a self-edge and must be dropped.
	model := &fakeModel{
		files: map[string]*fakeFile{
			"a.ts": {
				path:    "a.ts",
				lines:   []string{"const a = a;"},
				symbols: map[int][]program.Symbol{1000: {{Name: "a"}}},
			},
		},
		decls: map[string][]program.Declaration{
			"a": {{File: "a.ts", Name: "a", StartLine: 1, EndLine: 1}},
		},
	}
	assert.Empty(t, BuildEdges([]diag.Diagnostic{d}, model, 8))
}

func TestTopoRank_RespectsEdgesAndDeterminism(t *testing.T) {
	t.Parallel()

	diags := []diag.Diagnostic{
		mkdiag("c.ts", 1, 1, "eslint", "semi"),
		mkdiag("a.ts", 5, 2, "tsc", "TS2304"),
		mkdiag("b.ts", 3, 1, "prettier", "format"),
		mkdiag("d.ts", 8, 4, "eslint", "curly"),
	}
	edges := []Edge{
		{From: diags[1].ID(), To: diags[0].ID()},
		{From: diags[1].ID(), To: diags[2].ID()},
		{From: diags[2].ID(), To: diags[3].ID()},
	}

	rank := TopoRank(diags, edges)
	require.Len(t, rank, 4)
	for _, e := range edges {
		assert.Less(t, rank[e.From], rank[e.To], "%s must rank before %s", e.From, e.To)
	}

	// Shuffling the input must not change a single rank.
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]diag.Diagnostic, len(diags))
		copy(shuffled, diags)
		rand.New(rand.NewSource(int64(trial))).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, rank, TopoRank(shuffled, edges))
	}
}

func TestTopoRank_Bijection(t *testing.T) {
	t.Parallel()

	diags := []diag.Diagnostic{
		mkdiag("a.ts", 1, 1, "eslint", "semi"),
		mkdiag("b.ts", 2, 1, "eslint", "semi"),
		mkdiag("c.ts", 3, 1, "eslint", "semi"),
	}

	rank := TopoRank(diags, nil)
	seen := make(map[int]bool)
	for _, r := range rank {
		assert.GreaterOrEqual(t, r, 0)
		assert.Less(t, r, len(diags))
		assert.False(t, seen[r], "rank %d assigned twice", r)
		seen[r] = true
	}
}

func TestTopoRank_CyclesRankLastInOriginalOrder(t *testing.T) {
	t.Parallel()

	free := mkdiag("z.ts", 1, 1, "eslint", "semi")
	cycA := mkdiag("a.ts", 1, 1, "tsc", "TS2304")
	cycB := mkdiag("b.ts", 1, 1, "tsc", "TS2304")

	diags := []diag.Diagnostic{cycB, free, cycA}
	edges := []Edge{
		{From: cycA.ID(), To: cycB.ID()},
		{From: cycB.ID(), To: cycA.ID()},
	}

	rank := TopoRank(diags, edges)
	assert.Equal(t, 0, rank[free.ID()])
	assert.Equal(t, 1, rank[cycB.ID()], "cycle members keep arrival order")
	assert.Equal(t, 2, rank[cycA.ID()])
}

func TestOrder_FallsBackWithoutEdges(t *testing.T) {
	t.Parallel()

	warn := mkdiag("b.ts", 2, 1, "eslint", "semi")
	errEarly := mkdiag("a.ts", 1, 1, "tsc", "TS1005")
	errEarly.Severity = diag.SeverityError
	errLate := mkdiag("a.ts", 9, 1, "tsc", "TS1005")
	errLate.Severity = diag.SeverityError

	ordered := Order([]diag.Diagnostic{warn, errLate, errEarly}, nil)
	require.Len(t, ordered, 3)
	assert.Equal(t, errEarly, ordered[0])
	assert.Equal(t, errLate, ordered[1])
	assert.Equal(t, warn, ordered[2])
}

func TestOrder_UsesRankWhenEdgesPresent(t *testing.T) {
	t.Parallel()

	use := mkdiag("a.ts", 1, 1, "tsc", "TS2345")
	use.Severity = diag.SeverityError
	decl := mkdiag("z.ts", 50, 1, "eslint", "no-unused-vars")

	edges := []Edge{{From: decl.ID(), To: use.ID()}}
	ordered := Order([]diag.Diagnostic{use, decl}, edges)
	require.Len(t, ordered, 2)
	assert.Equal(t, decl, ordered[0], "declaration outranks the use despite lower severity")
	assert.Equal(t, use, ordered[1])
}
