// Package runner invokes the external analyzers and adapts their native
// report formats into diagnostics.
package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lintmux/lintmux/internal/diag"
	"github.com/lintmux/lintmux/internal/dupes"
)

// Kind identifies one of the supported analyzers and selects its output
// parser.
type Kind string

const (
	KindESLint   Kind = "eslint"
	KindTSC      Kind = "tsc"
	KindPrettier Kind = "prettier"
	KindJSCPD    Kind = "jscpd"
)

// Tool is one configured analyzer invocation. Command is argv; the runner
// appends the target files (or the project root, for jscpd) itself.
type Tool struct {
	Kind    Kind
	Command []string
	Timeout time.Duration
}

// DefaultTimeout bounds a single tool run.
const DefaultTimeout = 2 * time.Minute

// DefaultTools returns the stock analyzer set. Config can override each
// command, e.g. to route through npx.
func DefaultTools() []Tool {
	return []Tool{
		{Kind: KindESLint, Command: []string{"eslint", "--format", "json"}},
		{Kind: KindTSC, Command: []string{"tsc", "--noEmit", "--pretty", "false"}},
		{Kind: KindPrettier, Command: []string{"prettier", "--list-different"}},
		{Kind: KindJSCPD, Command: []string{"jscpd", "--silent", "--reporters", "json"}},
	}
}

// Result aggregates one run across all tools.
type Result struct {
	Diagnostics []diag.Diagnostic
	Duplicates  []dupes.ReportEntry

	// Missing lists tools whose binary was not found; they were skipped,
	// not failed.
	Missing []string

	// Failures maps a tool to the error that kept it from producing any
	// usable output. One tool failing never aborts the others.
	Failures map[Kind]error
}

// Runner executes the configured tools against one project root.
type Runner struct {
	root  string
	tools []Tool
}

func New(root string, tools []Tool) *Runner {
	return &Runner{root: root, tools: tools}
}

// Preflight resolves each tool binary on PATH and returns the tools that
// can actually run plus the names of the missing ones.
func (r *Runner) Preflight() (runnable []Tool, missing []string) {
	for _, tool := range r.tools {
		if len(tool.Command) == 0 {
			continue
		}
		if _, err := exec.LookPath(tool.Command[0]); err != nil {
			log.WithField("tool", tool.Kind).Warn("binary not found on PATH, skipping")
			missing = append(missing, string(tool.Kind))
			continue
		}
		runnable = append(runnable, tool)
	}
	return runnable, missing
}

// Run executes every runnable tool concurrently against files and merges
// their outputs. Analyzers conventionally exit non-zero when they find
// problems, so a non-zero exit with parsable output is a finding, not a
// failure.
func (r *Runner) Run(ctx context.Context, files []string) (*Result, error) {
	runnable, missing := r.Preflight()
	res := &Result{
		Missing:  missing,
		Failures: make(map[Kind]error),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, tool := range runnable {
		g.Go(func() error {
			diags, entries, err := r.runTool(ctx, tool, files)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.WithError(err).WithField("tool", tool.Kind).Warn("tool run failed")
				res.Failures[tool.Kind] = err
				return nil
			}
			res.Diagnostics = append(res.Diagnostics, diags...)
			res.Duplicates = append(res.Duplicates, entries...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) runTool(ctx context.Context, tool Tool, files []string) ([]diag.Diagnostic, []dupes.ReportEntry, error) {
	timeout := tool.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if tool.Kind == KindJSCPD {
		entries, err := r.runJSCPD(ctx, tool)
		return nil, entries, err
	}

	args := append([]string(nil), tool.Command[1:]...)
	if tool.Kind != KindTSC {
		// tsc works off tsconfig.json; the others take explicit files.
		args = append(args, files...)
	}

	stdout, runErr := r.capture(ctx, tool.Command[0], args...)

	switch tool.Kind {
	case KindESLint:
		diags, err := ParseESLint(r.root, stdout)
		if err != nil {
			if runErr != nil {
				return nil, nil, runErr
			}
			return nil, nil, err
		}
		return diags, nil, nil
	case KindTSC:
		diags := ParseTSC(r.root, stdout)
		if len(diags) == 0 && runErr != nil {
			return nil, nil, runErr
		}
		return diags, nil, nil
	case KindPrettier:
		diags := ParsePrettier(r.root, stdout)
		if len(diags) == 0 && runErr != nil {
			return nil, nil, runErr
		}
		return diags, nil, nil
	}
	return nil, nil, nil
}

// runJSCPD writes the jscpd JSON report into a scratch directory and
// adapts it. jscpd scans the root itself rather than an explicit file
// list.
func (r *Runner) runJSCPD(ctx context.Context, tool Tool) ([]dupes.ReportEntry, error) {
	outDir, err := os.MkdirTemp("", "lintmux-jscpd-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	args := append([]string(nil), tool.Command[1:]...)
	args = append(args, "--output", outDir, r.root)

	if _, runErr := r.capture(ctx, tool.Command[0], args...); runErr != nil {
		// The report may still have been written; fall through to read it.
		log.WithError(runErr).Debug("jscpd exited non-zero")
	}

	raw, err := os.ReadFile(filepath.Join(outDir, "jscpd-report.json"))
	if err != nil {
		return nil, err
	}
	return dupes.FromJSCPD(raw)
}

func (r *Runner) capture(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.WithFields(log.Fields{"cmd": name, "args": len(args)}).Debug("running analyzer")
	err := cmd.Run()
	if err != nil && stderr.Len() > 0 {
		log.WithField("cmd", name).Debugf("stderr: %s", stderr.String())
	}
	return stdout.Bytes(), err
}
