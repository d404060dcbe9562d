package program

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// tsProgram is the tree-sitter backed Model for TypeScript/JavaScript
// codebases. Trees stay alive for the lifetime of the program so that
// offset queries do not re-parse; Close releases them.
type tsProgram struct {
	files map[string]*tsFile
	decls map[string][]Declaration
}

type tsFile struct {
	program *tsProgram
	path    string
	source  []byte
	lines   []string
	// lineOffsets[i] is the byte offset of the start of line i+1.
	lineOffsets []int
	tree        *sitter.Tree
	imports     []string
	// aliases maps a local imported name to the exported name it was
	// bound from, e.g. `import {a as b}` stores b -> a.
	aliases map[string]string
}

// Load parses every file and builds the project-wide declaration index.
// Files that cannot be read or parsed are skipped with a warning. When
// nothing parses, Load returns (nil, nil): the absence of a program is an
// expected degradation, not a failure.
func Load(paths []string) (Model, error) {
	prog := &tsProgram{
		files: make(map[string]*tsFile, len(paths)),
		decls: make(map[string][]Declaration),
	}

	tsLang := sitter.NewLanguage(typescript.LanguageTypescript())
	tsxLang := sitter.NewLanguage(typescript.LanguageTSX())

	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).Warnf("skipping unreadable file %s", path)
			continue
		}

		lang := tsLang
		if strings.HasSuffix(path, ".tsx") || strings.HasSuffix(path, ".jsx") {
			lang = tsxLang
		}

		parser := sitter.NewParser()
		parser.SetLanguage(lang)
		tree := parser.Parse(source, nil)
		parser.Close()
		if tree == nil {
			log.Warnf("skipping unparsable file %s", path)
			continue
		}

		file := &tsFile{
			program: prog,
			path:    path,
			source:  source,
			lines:   strings.Split(string(source), "\n"),
			tree:    tree,
			aliases: make(map[string]string),
		}
		file.lineOffsets = lineOffsets(source)
		file.collectImports()
		prog.files[path] = file
		prog.indexDeclarations(file)
	}

	if len(prog.files) == 0 {
		return nil, nil
	}
	return prog, nil
}

// Close releases the parse trees. The Model is unusable afterwards.
func (p *tsProgram) Close() {
	for _, f := range p.files {
		f.tree.Close()
	}
}

func (p *tsProgram) SourceFile(path string) (SourceFile, bool) {
	f, ok := p.files[path]
	return f, ok
}

func (p *tsProgram) DeclarationsOf(sym Symbol) []Declaration {
	found := p.decls[sym.Name]
	if len(found) == 0 {
		return nil
	}
	out := make([]Declaration, len(found))
	copy(out, found)
	return out
}

// importExtensions is the probe order used by module resolution.
var importExtensions = []string{"", ".ts", ".tsx", ".d.ts", ".js", ".jsx"}

func (p *tsProgram) ResolveImport(specifier, fromFile string) (string, bool) {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return "", false
	}

	base := filepath.Clean(filepath.Join(filepath.Dir(fromFile), specifier))
	for _, ext := range importExtensions {
		if _, ok := p.files[base+ext]; ok {
			return base + ext, true
		}
	}
	for _, ext := range importExtensions[1:] {
		candidate := filepath.Join(base, "index"+ext)
		if _, ok := p.files[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// declarationKinds are the node kinds indexed as symbol declarations.
var declarationKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"class_declaration":              true,
	"abstract_class_declaration":     true,
	"interface_declaration":          true,
	"type_alias_declaration":         true,
	"enum_declaration":               true,
	"module_declaration":             true,
}

func (p *tsProgram) indexDeclarations(f *tsFile) {
	walk(f.tree.RootNode(), func(n *sitter.Node) bool {
		kind := n.Kind()
		switch {
		case declarationKinds[kind]:
			if name := nodeName(n, f.source); name != "" {
				p.addDecl(f, n, name)
			}
		case kind == "variable_declarator":
			// const/let/var declarations: the indexed span is the whole
			// statement so diagnostics on the initializer still fall
			// inside it.
			if name := nodeName(n, f.source); name != "" {
				span := n
				if parent := n.Parent(); parent != nil {
					span = parent
				}
				p.addDecl(f, span, name)
			}
		}
		return true
	})
}

func (p *tsProgram) addDecl(f *tsFile, n *sitter.Node, name string) {
	p.decls[name] = append(p.decls[name], Declaration{
		File:      f.path,
		Name:      name,
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	})
}

func (f *tsFile) Path() string { return f.path }

func (f *tsFile) Line(n int) (string, bool) {
	if n < 1 || n > len(f.lines) {
		return "", false
	}
	return f.lines[n-1], true
}

func (f *tsFile) OffsetAt(line, realColumn int) int {
	if line < 1 {
		line = 1
	}
	if line > len(f.lineOffsets) {
		return len(f.source)
	}

	offset := f.lineOffsets[line-1]
	text, _ := f.Line(line)
	for _, r := range text {
		if realColumn <= 0 {
			break
		}
		offset += utf8.RuneLen(r)
		realColumn--
	}
	if offset > len(f.source) {
		offset = len(f.source)
	}
	return offset
}

func (f *tsFile) Imports() []string {
	out := make([]string, len(f.imports))
	copy(out, f.imports)
	return out
}

// referenceKinds are the node kinds a diagnostic position is walked up
// to before symbol resolution.
var referenceKinds = map[string]bool{
	"identifier":                            true,
	"property_identifier":                   true,
	"type_identifier":                       true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"call_expression":                       true,
	"new_expression":                        true,
	"member_expression":                     true,
	"subscript_expression":                  true,
}

func (f *tsFile) SymbolsAt(offset int) []Symbol {
	if offset < 0 || offset > len(f.source) {
		return nil
	}

	node := f.tree.RootNode().NamedDescendantForByteRange(uint(offset), uint(offset))
	for node != nil && !referenceKinds[node.Kind()] {
		node = node.Parent()
	}
	if node == nil {
		return nil
	}

	name := referenceName(node, f.source)
	if name == "" {
		return nil
	}
	if exported, ok := f.aliases[name]; ok {
		return []Symbol{{Name: exported}}
	}
	return []Symbol{{Name: name}}
}

// referenceName extracts the identifier a reference node is about: the
// callee of a call, the object of a member or index access, the text of
// a bare identifier.
func referenceName(n *sitter.Node, source []byte) string {
	switch n.Kind() {
	case "call_expression", "new_expression":
		if fn := n.ChildByFieldName("function"); fn != nil {
			return referenceName(fn, source)
		}
		if ctor := n.ChildByFieldName("constructor"); ctor != nil {
			return referenceName(ctor, source)
		}
	case "member_expression":
		if obj := n.ChildByFieldName("object"); obj != nil {
			return referenceName(obj, source)
		}
	case "subscript_expression":
		if obj := n.ChildByFieldName("object"); obj != nil {
			return referenceName(obj, source)
		}
	default:
		return nodeText(n, source)
	}
	return ""
}

func (f *tsFile) collectImports() {
	walk(f.tree.RootNode(), func(n *sitter.Node) bool {
		if n.Kind() != "import_statement" {
			return true
		}

		if src := n.ChildByFieldName("source"); src != nil {
			f.imports = append(f.imports, strings.Trim(nodeText(src, f.source), `"'`))
		}

		walk(n, func(spec *sitter.Node) bool {
			switch spec.Kind() {
			case "import_specifier":
				name := spec.ChildByFieldName("name")
				alias := spec.ChildByFieldName("alias")
				if name != nil && alias != nil {
					f.aliases[nodeText(alias, f.source)] = nodeText(name, f.source)
				}
			case "namespace_import":
				// `import * as ns` binds no single exported name.
			}
			return true
		})
		return false
	})
}

func lineOffsets(source []byte) []int {
	offsets := []int{0}
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func nodeName(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return nodeText(name, source)
	}
	return ""
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

// walk visits n and its children depth-first; returning false from the
// visitor prunes the subtree.
func walk(n *sitter.Node, visitor func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(uint(i)), visitor)
	}
}
