package runner

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/lintmux/lintmux/internal/diag"
)

// eslintFile mirrors one element of `eslint --format json` output.
type eslintFile struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

type eslintMessage struct {
	RuleID    string `json:"ruleId"`
	Severity  int    `json:"severity"`
	Message   string `json:"message"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
}

// ParseESLint decodes an `eslint --format json` report. ESLint severity 2
// is an error, everything else a warning. Messages without a position
// (parse failures report line 0) are pinned to 1:1.
func ParseESLint(root string, raw []byte) ([]diag.Diagnostic, error) {
	var files []eslintFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, fmt.Errorf("decoding eslint report: %w", err)
	}

	var out []diag.Diagnostic
	for _, f := range files {
		for _, m := range f.Messages {
			severity := diag.SeverityWarning
			if m.Severity == 2 {
				severity = diag.SeverityError
			}
			rule := m.RuleID
			if rule == "" {
				rule = "parse"
			}
			out = append(out, diag.Diagnostic{
				File:      absPath(root, f.FilePath),
				Line:      max(m.Line, 1),
				Column:    max(m.Column, 1),
				EndLine:   m.EndLine,
				EndColumn: m.EndColumn,
				Severity:  severity,
				Message:   m.Message,
				Source:    "eslint",
				Rule:      rule,
			})
		}
	}
	return out, nil
}

// tscLine matches `src/app.ts(7,13): error TS2345: message`.
var tscLine = regexp.MustCompile(`^(.+)\((\d+),(\d+)\): (error|warning) (TS\d+): (.*)$`)

// ParseTSC parses the line-oriented output of `tsc --noEmit --pretty
// false`. Continuation lines (indented elaboration) are folded into the
// preceding diagnostic's message; anything else unrecognized is skipped.
func ParseTSC(root string, output []byte) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, line := range strings.Split(string(output), "\n") {
		if line == "" {
			continue
		}

		m := tscLine.FindStringSubmatch(line)
		if m == nil {
			if len(out) > 0 && strings.HasPrefix(line, " ") {
				out[len(out)-1].Message += " " + strings.TrimSpace(line)
			}
			continue
		}

		lineNo, _ := strconv.Atoi(m[2])
		colNo, _ := strconv.Atoi(m[3])
		severity := diag.SeverityError
		if m[4] == "warning" {
			severity = diag.SeverityWarning
		}
		out = append(out, diag.Diagnostic{
			File:     absPath(root, m[1]),
			Line:     lineNo,
			Column:   colNo,
			Severity: severity,
			Message:  m[6],
			Source:   "tsc",
			Rule:     m[5],
		})
	}
	return out
}

// ParsePrettier turns `prettier --list-different` output (one path per
// line) into per-file formatting warnings.
func ParsePrettier(root string, output []byte) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, diag.Diagnostic{
			File:     absPath(root, line),
			Line:     1,
			Column:   1,
			Severity: diag.SeverityWarning,
			Message:  "file is not formatted",
			Source:   "prettier",
			Rule:     "format",
		})
	}
	return out
}

func absPath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
