package dupes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for duplicate correlation:
// - Two-location entry becomes one pair with exact line numbers
// - Entries with fewer than two locations are skipped
// - Encounter order is preserved and the cap applies after parsing
// - Re-parsing the same report yields identical pairs
// - jscpd JSON adapts into generic entries; bad entries are skipped

func TestCorrelate_TwoLocations(t *testing.T) {
	t.Parallel()

	entries := []ReportEntry{{Locations: []Location{
		{Path: "A.ts", StartLine: 10, EndLine: 20},
		{Path: "B.ts", StartLine: 30, EndLine: 40},
	}}}

	pairs := Correlate(entries, 0)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{
		FileA: "A.ts", StartA: 10, EndA: 20,
		FileB: "B.ts", StartB: 30, EndB: 40,
	}, pairs[0])
}

func TestCorrelate_SkipsShortEntries(t *testing.T) {
	t.Parallel()

	entries := []ReportEntry{
		{Locations: []Location{{Path: "only.ts", StartLine: 1, EndLine: 2}}},
		{},
		{Locations: []Location{
			{Path: "a.ts", StartLine: 1, EndLine: 5},
			{Path: "b.ts", StartLine: 9, EndLine: 13},
		}},
	}

	pairs := Correlate(entries, 0)
	require.Len(t, pairs, 1)
	assert.Equal(t, "a.ts", pairs[0].FileA)
}

func TestCorrelate_CapAfterFullParse(t *testing.T) {
	t.Parallel()

	entry := func(a string) ReportEntry {
		return ReportEntry{Locations: []Location{
			{Path: a, StartLine: 1, EndLine: 2},
			{Path: "other.ts", StartLine: 3, EndLine: 4},
		}}
	}

	entries := []ReportEntry{
		{Locations: []Location{{Path: "skipped.ts", StartLine: 1, EndLine: 1}}},
		entry("1.ts"), entry("2.ts"), entry("3.ts"),
	}

	pairs := Correlate(entries, 2)
	require.Len(t, pairs, 2)
	// The skipped entry must not count against the cap.
	assert.Equal(t, "1.ts", pairs[0].FileA)
	assert.Equal(t, "2.ts", pairs[1].FileA)
}

func TestCorrelate_Idempotent(t *testing.T) {
	t.Parallel()

	entries := []ReportEntry{
		{Locations: []Location{
			{Path: "x.ts", StartLine: 5, EndLine: 9},
			{Path: "y.ts", StartLine: 50, EndLine: 54},
		}},
	}

	assert.Equal(t, Correlate(entries, 10), Correlate(entries, 10))
}

func TestFromJSCPD_AdaptsReport(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"duplicates": [
			{
				"firstFile":  {"name": "src/a.ts", "startLoc": {"line": 10}, "endLoc": {"line": 20}},
				"secondFile": {"name": "src/b.ts", "startLoc": {"line": 30}, "endLoc": {"line": 40}}
			},
			{
				"firstFile":  {"name": "", "startLoc": {"line": 1}, "endLoc": {"line": 2}},
				"secondFile": {"name": "src/c.ts", "startLoc": {"line": 3}, "endLoc": {"line": 4}}
			}
		]
	}`)

	entries, err := FromJSCPD(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	pairs := Correlate(entries, 0)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{
		FileA: "src/a.ts", StartA: 10, EndA: 20,
		FileB: "src/b.ts", StartB: 30, EndB: 40,
	}, pairs[0])
}

func TestFromJSCPD_MalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := FromJSCPD([]byte("{nope"))
	assert.Error(t, err)
}
