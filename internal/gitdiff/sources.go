package gitdiff

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/maypok86/otter"
	log "github.com/sirupsen/logrus"
)

// Source identifies one comparison base for a diff. Sources are tried in
// priority order: the upstream comparison carries the most review
// context, the staged index the least.
type Source string

const (
	SourceUpstream Source = "upstream"
	SourceWorktree Source = "worktree"
	SourceStaged   Source = "staged"
)

// DefaultSourceOrder is the candidate priority used when the config does
// not override it.
var DefaultSourceOrder = []Source{SourceUpstream, SourceWorktree, SourceStaged}

// Sources provides raw diff, blame and line-history text for a file.
// Implementations must be safe for concurrent use; the report assembler
// fetches per-diagnostic context from multiple goroutines.
type Sources interface {
	// Diff returns the unified diff for filePath against the given
	// comparison source with contextLines of context, or "" when the
	// file has no changes there.
	Diff(ctx context.Context, filePath string, source Source, contextLines int) (string, error)

	// Blame returns raw blame text for the lines around line.
	Blame(ctx context.Context, filePath string, line, contextLines int) (string, error)

	// History returns raw commit history for a single line, newest
	// first, capped at limit commits.
	History(ctx context.Context, filePath string, line, limit int) (string, error)
}

// gitSources shells out to the git CLI, the same way every tool in this
// space does. Diff text is cached per (source, file, context) because the
// report assembler asks for the same file once per diagnostic.
type gitSources struct {
	repoPath string
	cache    otter.Cache[string, string]

	ancestorOnce sync.Once
	ancestorRef  string
}

// NewSources creates a git-CLI backed Sources rooted at repoPath.
func NewSources(repoPath string) (Sources, error) {
	cache, err := otter.MustBuilder[string, string](512).Build()
	if err != nil {
		return nil, fmt.Errorf("building diff cache: %w", err)
	}
	return &gitSources{repoPath: repoPath, cache: cache}, nil
}

func (g *gitSources) Diff(ctx context.Context, filePath string, source Source, contextLines int) (string, error) {
	key := fmt.Sprintf("%s|%d|%s", source, contextLines, filePath)
	if text, ok := g.cache.Get(key); ok {
		return text, nil
	}

	args := []string{"diff", fmt.Sprintf("-U%d", contextLines)}
	switch source {
	case SourceUpstream:
		ref := g.ancestor(ctx)
		if ref == "" {
			// No ancestor branch: upstream comparison is unavailable,
			// which is an expected NotFound, not an error.
			g.cache.Set(key, "")
			return "", nil
		}
		args = append(args, ref)
	case SourceWorktree:
		// Plain working-tree diff.
	case SourceStaged:
		args = append(args, "--cached")
	default:
		return "", fmt.Errorf("unknown diff source %q", source)
	}
	args = append(args, "--", filePath)

	text, err := g.run(ctx, args...)
	if err != nil {
		return "", err
	}
	g.cache.Set(key, text)
	return text, nil
}

func (g *gitSources) Blame(ctx context.Context, filePath string, line, contextLines int) (string, error) {
	start := line - contextLines
	if start < 1 {
		start = 1
	}
	return g.run(ctx, "blame", fmt.Sprintf("-L%d,%d", start, line+contextLines), "--", filePath)
}

func (g *gitSources) History(ctx context.Context, filePath string, line, limit int) (string, error) {
	rel, err := filepath.Rel(g.repoPath, filePath)
	if err != nil {
		rel = filePath
	}
	return g.run(ctx, "log", fmt.Sprintf("-L%d,%d:%s", line, line, rel),
		"-n", fmt.Sprintf("%d", limit), "--no-patch")
}

// ancestor resolves the merge base with main or master once per run.
func (g *gitSources) ancestor(ctx context.Context) string {
	g.ancestorOnce.Do(func() {
		for _, branch := range []string{"main", "master", "origin/main", "origin/master"} {
			out, err := g.run(ctx, "merge-base", "HEAD", branch)
			if err == nil && strings.TrimSpace(out) != "" {
				g.ancestorRef = strings.TrimSpace(out)
				return
			}
		}
		log.Debug("no ancestor branch found; upstream diffs disabled")
	})
	return g.ancestorRef
}

func (g *gitSources) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.repoPath
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %w (stderr: %s)", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
