// Package program abstracts the parse-tree and symbol capabilities the
// correlation engine needs from a codebase. The engine only sees these
// interfaces; the concrete implementation (tree-sitter, see
// treesitter.go) can be swapped without touching correlation logic.
package program

// Symbol is a resolved reference target. Aliased imports are already
// unwrapped: `import {a as b}` resolves a use of b to Symbol{Name: "a"}.
type Symbol struct {
	Name string
}

// Declaration is one place a symbol is declared. Lines are 1-based and
// the range is inclusive.
type Declaration struct {
	File      string
	Name      string
	StartLine int
	EndLine   int
}

// Model provides declaration lookup and import resolution over a loaded
// codebase. A nil Model means no usable program could be constructed;
// callers degrade to orderings that need no graph.
type Model interface {
	// SourceFile returns the loaded file for a resolved path.
	SourceFile(path string) (SourceFile, bool)

	// DeclarationsOf returns every declaration of the symbol across the
	// loaded files. Empty when the symbol is unknown.
	DeclarationsOf(sym Symbol) []Declaration

	// ResolveImport resolves an import specifier relative to the
	// importing file against the loaded file set. Bare (package)
	// specifiers are not resolvable.
	ResolveImport(specifier, fromFile string) (string, bool)
}

// SourceFile exposes position lookup and symbol resolution for one file.
type SourceFile interface {
	// Path returns the resolved path the file was loaded under.
	Path() string

	// Line returns the text of the 1-based line n, without the newline.
	Line(n int) (string, bool)

	// OffsetAt converts a 1-based line and 0-based real (rune) column
	// into a byte offset, clamped to the file.
	OffsetAt(line, realColumn int) int

	// SymbolsAt finds the smallest node enclosing offset, walks upward
	// to the nearest identifier, call, member or index expression, and
	// returns the alias-resolved symbols it refers to. Empty when the
	// offset sits on nothing meaningful.
	SymbolsAt(offset int) []Symbol

	// Imports returns the file's import specifiers in source order.
	Imports() []string
}
