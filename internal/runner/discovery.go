package runner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// sourceExtensions are the file types the analyzers understand.
var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
}

// compiledPattern keeps the pattern string next to its compiled glob so
// the **/ prefix fallback below can re-derive a simplified form.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks a project root and selects the source files to analyze,
// honoring the configured ignore globs.
type Discovery struct {
	rootDir        string
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the ignore patterns up front so a bad pattern
// fails the run before any tool starts.
func NewDiscovery(rootDir string, ignorePatterns []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.ignorePatterns = append(d.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}
	return d, nil
}

// Files returns every analyzable source file under the root, in walk
// order. node_modules and dot-directories are always skipped.
func (d *Discovery) Files() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			name := entry.Name()
			if relPath != "." && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if d.shouldIgnore(relPath + "/**") {
				return filepath.SkipDir
			}
			return nil
		}

		if !sourceExtensions[filepath.Ext(path)] {
			return nil
		}
		if d.shouldIgnore(relPath) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

func (d *Discovery) shouldIgnore(relPath string) bool {
	for _, cp := range d.ignorePatterns {
		if cp.glob.Match(relPath) {
			return true
		}
	}

	// "**/*.spec.ts" should also match a root-level "a.spec.ts".
	if !strings.Contains(relPath, "/") {
		for _, cp := range d.ignorePatterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(relPath) {
					return true
				}
			}
		}
	}
	return false
}
