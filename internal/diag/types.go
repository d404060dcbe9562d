package diag

import (
	"fmt"
	"strings"
)

// Severity follows the two-level scheme the aggregated tools report.
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

// String returns the lowercase name used in rendered output.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ID is the canonical string key identifying a diagnostic. It doubles as
// the graph node key, so its format must stay stable: ordering code
// compares IDs lexicographically to break ties deterministically.
type ID string

// Diagnostic is a single finding produced by one of the external tools.
// Diagnostics are immutable: they are created once per run when a tool's
// output is parsed and never modified afterwards.
type Diagnostic struct {
	File      string   `json:"file"`               // resolved absolute path
	Line      int      `json:"line"`               // 1-based
	Column    int      `json:"column"`             // 1-based visual column as reported
	EndLine   int      `json:"end_line,omitempty"` // 0 when the tool gave no range
	EndColumn int      `json:"end_column,omitempty"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Source    string   `json:"source"` // tool tag: "eslint", "tsc", "prettier"
	Rule      string   `json:"rule"`   // rule name or error code
}

// ID returns the canonical identity tuple as a single string.
func (d Diagnostic) ID() ID {
	return ID(fmt.Sprintf("%s:%d:%d:%s:%s", d.File, d.Line, d.Column, d.Source, d.Rule))
}

// Compare is the secondary presentation comparator: errors before
// warnings, then path, line, column. It never looks at graph ranks;
// callers combine it with TopoRank when a dependency graph exists.
func Compare(a, b Diagnostic) int {
	if a.Severity != b.Severity {
		return int(a.Severity) - int(b.Severity)
	}
	if c := strings.Compare(a.File, b.File); c != 0 {
		return c
	}
	if a.Line != b.Line {
		return a.Line - b.Line
	}
	return a.Column - b.Column
}

// ByFile groups diagnostics by resolved file path, preserving the
// original encounter order inside each group.
func ByFile(diags []Diagnostic) map[string][]Diagnostic {
	grouped := make(map[string][]Diagnostic, len(diags))
	for _, d := range diags {
		grouped[d.File] = append(grouped[d.File], d)
	}
	return grouped
}
