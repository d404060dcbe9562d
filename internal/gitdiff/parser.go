// Package gitdiff extracts change-history context for diagnostics: it
// parses unified diffs into line-indexed snippets anchored to head (post-
// change) line numbers, and fetches the raw diff/blame/history text those
// snippets are cut from.
package gitdiff

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// SnippetLine is one line of a diff hunk. HeadLine is the line number in
// the post-change file; it is nil only for removed lines, which do not
// exist there.
type SnippetLine struct {
	Content  string `json:"content"`
	Symbol   byte   `json:"symbol"` // '+', '-' or ' '
	HeadLine *int   `json:"head_line"`
}

// Snippet is the hunk containing a requested head line. PointerIndex is
// the index into Lines whose HeadLine equals the requested target.
type Snippet struct {
	Header       string        `json:"header"`
	Lines        []SnippetLine `json:"lines"`
	PointerIndex *int          `json:"pointer_index"`
}

// ExtractSnippet scans the hunks of a unified diff in order and returns
// the first one whose head-line range contains targetHeadLine, or nil if
// no hunk covers it (or the text is not a parsable diff). The head-line
// counter starts at the hunk's new-range start and advances on context
// and added lines only.
func ExtractSnippet(unifiedDiff string, targetHeadLine int) *Snippet {
	if strings.TrimSpace(unifiedDiff) == "" {
		return nil
	}

	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(unifiedDiff)).ReadAllFiles()
	if err != nil {
		return nil
	}

	for _, fd := range fileDiffs {
		for _, hunk := range fd.Hunks {
			start := int(hunk.NewStartLine)
			end := start + int(hunk.NewLines) - 1
			if targetHeadLine < start || targetHeadLine > end {
				continue
			}
			return hunkSnippet(hunk, targetHeadLine)
		}
	}
	return nil
}

// PickSnippetForLine tries each candidate diff text in the given priority
// order and returns the first non-nil extraction together with the index
// of the candidate that produced it. Returns (nil, -1) when no candidate
// covers the target line.
func PickSnippetForLine(candidates []string, targetHeadLine int) (*Snippet, int) {
	for i, candidate := range candidates {
		if snippet := ExtractSnippet(candidate, targetHeadLine); snippet != nil {
			return snippet, i
		}
	}
	return nil, -1
}

func hunkSnippet(hunk *diff.Hunk, targetHeadLine int) *Snippet {
	snippet := &Snippet{Header: hunkHeader(hunk)}

	head := int(hunk.NewStartLine)
	body := strings.Split(strings.TrimSuffix(string(hunk.Body), "\n"), "\n")
	for _, raw := range body {
		if raw == "" {
			// A blank body line is an empty context line.
			raw = " "
		}
		symbol := raw[0]
		if symbol != '+' && symbol != '-' && symbol != ' ' {
			// "\ No newline at end of file" and friends.
			continue
		}

		line := SnippetLine{Content: raw[1:], Symbol: symbol}
		if symbol != '-' {
			n := head
			line.HeadLine = &n
			if n == targetHeadLine {
				idx := len(snippet.Lines)
				snippet.PointerIndex = &idx
			}
			head++
		}
		snippet.Lines = append(snippet.Lines, line)
	}
	return snippet
}

func hunkHeader(hunk *diff.Hunk) string {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@",
		hunk.OrigStartLine, hunk.OrigLines, hunk.NewStartLine, hunk.NewLines)
	if hunk.Section != "" {
		header += " " + hunk.Section
	}
	return header
}
