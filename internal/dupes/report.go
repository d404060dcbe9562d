// Package dupes turns a structured duplicate-code report into paired
// file/range records. Only structured location fields are consulted;
// human-readable message text is unreliable across tool versions and
// locales and is never parsed.
package dupes

import (
	"encoding/json"
	"fmt"
)

// Location is one occurrence of a duplicated fragment. Line numbers are
// inclusive and 1-based.
type Location struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// ReportEntry is one duplication record from a report. Entries with
// fewer than two locations cannot form a pair and are skipped.
type ReportEntry struct {
	Locations []Location `json:"locations"`
}

// Pair is a correlated duplicate: the same fragment appearing in two
// places. Ranges are inclusive 1-based line numbers.
type Pair struct {
	FileA  string `json:"file_a"`
	StartA int    `json:"start_a"`
	EndA   int    `json:"end_a"`
	FileB  string `json:"file_b"`
	StartB int    `json:"start_b"`
	EndB   int    `json:"end_b"`
}

// Correlate converts report entries into pairs, preserving encounter
// order. max caps the result; the cap is applied after the full parse so
// that skipped entries never eat into the budget. max <= 0 means no cap.
func Correlate(entries []ReportEntry, max int) []Pair {
	var pairs []Pair
	for _, entry := range entries {
		if len(entry.Locations) < 2 {
			continue
		}
		a, b := entry.Locations[0], entry.Locations[1]
		pairs = append(pairs, Pair{
			FileA: a.Path, StartA: a.StartLine, EndA: a.EndLine,
			FileB: b.Path, StartB: b.StartLine, EndB: b.EndLine,
		})
	}
	if max > 0 && len(pairs) > max {
		pairs = pairs[:max]
	}
	return pairs
}

// jscpd's JSON reporter shape, reduced to the location fields we need.
type jscpdReport struct {
	Duplicates []jscpdDuplicate `json:"duplicates"`
}

type jscpdDuplicate struct {
	FirstFile  jscpdFile `json:"firstFile"`
	SecondFile jscpdFile `json:"secondFile"`
}

type jscpdFile struct {
	Name     string   `json:"name"`
	StartLoc jscpdLoc `json:"startLoc"`
	EndLoc   jscpdLoc `json:"endLoc"`
}

type jscpdLoc struct {
	Line int `json:"line"`
}

// FromJSCPD adapts a jscpd JSON report into generic report entries.
// Duplicates missing either file name are skipped rather than aborting
// the parse; the report format is externally versioned.
func FromJSCPD(raw []byte) ([]ReportEntry, error) {
	var report jscpdReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decoding jscpd report: %w", err)
	}

	entries := make([]ReportEntry, 0, len(report.Duplicates))
	for _, dup := range report.Duplicates {
		var locs []Location
		for _, f := range []jscpdFile{dup.FirstFile, dup.SecondFile} {
			if f.Name == "" || f.StartLoc.Line < 1 {
				continue
			}
			locs = append(locs, Location{
				Path:      f.Name,
				StartLine: f.StartLoc.Line,
				EndLine:   f.EndLoc.Line,
			})
		}
		entries = append(entries, ReportEntry{Locations: locs})
	}
	return entries, nil
}
