// Package textspan converts between the visual columns analysis tools
// report (where a tab advances to the next tab stop) and real character
// indices into the source line. All indices are rune indices: diagnostic
// columns count characters, not bytes.
package textspan

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTabWidth matches what the aggregated tools assume when a file
// carries no editorconfig.
const DefaultTabWidth = 8

// ErrInvalidArgument reports a caller bug such as a negative visual
// column. It is never silently clamped away.
var ErrInvalidArgument = errors.New("textspan: invalid argument")

// RealColumnFromVisual returns the rune index in line at which the
// accumulated visual width first reaches or exceeds visualColumn. The
// result is clamped to the line length when visualColumn lies past the
// end of the line. tabWidth values below 1 fall back to DefaultTabWidth.
func RealColumnFromVisual(line string, visualColumn, tabWidth int) (int, error) {
	if visualColumn < 0 {
		return 0, fmt.Errorf("%w: negative visual column %d", ErrInvalidArgument, visualColumn)
	}
	if tabWidth < 1 {
		tabWidth = DefaultTabWidth
	}

	width := 0
	runes := []rune(line)
	for i, r := range runes {
		if width >= visualColumn {
			return i, nil
		}
		if r == '\t' {
			width = (width/tabWidth + 1) * tabWidth
		} else {
			width++
		}
	}
	return len(runes), nil
}

// VisualColumnAt returns the visual width of line up to (not including)
// the rune at realIndex. realIndex is clamped to [0, len(line)].
func VisualColumnAt(line string, realIndex, tabWidth int) int {
	if tabWidth < 1 {
		tabWidth = DefaultTabWidth
	}

	width := 0
	for i, r := range []rune(line) {
		if i >= realIndex {
			break
		}
		if r == '\t' {
			width = (width/tabWidth + 1) * tabWidth
		} else {
			width++
		}
	}
	return width
}

// ExpandTabs replaces every tab in line with spaces padding to the next
// tab stop. The result contains no tabs and its rune length equals
// VisualColumnAt(line, len(line), tabWidth).
func ExpandTabs(line string, tabWidth int) string {
	if tabWidth < 1 {
		tabWidth = DefaultTabWidth
	}
	if !strings.ContainsRune(line, '\t') {
		return line
	}

	var b strings.Builder
	width := 0
	for _, r := range line {
		if r == '\t' {
			next := (width/tabWidth + 1) * tabWidth
			for ; width < next; width++ {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteRune(r)
		width++
	}
	return b.String()
}
