package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// RenderText writes the human-readable report. Paths are shown relative
// to root when possible.
func RenderText(w io.Writer, rep *Report, root string) error {
	for _, item := range rep.Items {
		if err := renderItem(w, item, root); err != nil {
			return err
		}
	}

	if len(rep.Duplicates) > 0 {
		fmt.Fprintf(w, "Duplicated code (%d pairs):\n", len(rep.Duplicates))
		for _, p := range rep.Duplicates {
			fmt.Fprintf(w, "  %s:%d-%d <-> %s:%d-%d\n",
				relPath(root, p.FileA), p.StartA, p.EndA,
				relPath(root, p.FileB), p.StartB, p.EndB)
		}
		fmt.Fprintln(w)
	}

	errors, warnings := rep.Counts()
	fmt.Fprintf(w, "%d errors, %d warnings\n", errors, warnings)
	if len(rep.MissingTools) > 0 {
		fmt.Fprintf(w, "skipped (not installed): %s\n", strings.Join(rep.MissingTools, ", "))
	}
	return nil
}

func renderItem(w io.Writer, item Item, root string) error {
	d := item.Diag
	if _, err := fmt.Fprintf(w, "%s:%d:%d: %s [%s/%s] %s\n",
		relPath(root, d.File), d.Line, d.Column, d.Severity, d.Source, d.Rule, d.Message); err != nil {
		return err
	}

	if item.LineText != "" {
		fmt.Fprintf(w, "  %s\n", item.LineText)
		width := item.CaretEnd - item.CaretStart
		if width < 1 {
			width = 1
		}
		fmt.Fprintf(w, "  %s^%s\n",
			strings.Repeat(" ", item.CaretStart-1), strings.Repeat("~", width-1))
	}

	if item.Snippet != nil {
		fmt.Fprintf(w, "  recent change (%s) %s\n", item.SnippetSource, item.Snippet.Header)
		for i, line := range item.Snippet.Lines {
			marker := " "
			if item.Snippet.PointerIndex != nil && *item.Snippet.PointerIndex == i {
				marker = ">"
			}
			head := "    "
			if line.HeadLine != nil {
				head = fmt.Sprintf("%4d", *line.HeadLine)
			}
			fmt.Fprintf(w, "  %s %s |%c%s\n", marker, head, line.Symbol, line.Content)
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
