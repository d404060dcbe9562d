package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for the diagnostic value type:
// - ID is the stable file:line:col:source:rule tuple
// - Compare orders errors first, then path, line, column
// - ByFile groups while preserving encounter order

func TestID(t *testing.T) {
	t.Parallel()

	d := Diagnostic{File: "/p/a.ts", Line: 3, Column: 7, Source: "eslint", Rule: "semi"}
	assert.Equal(t, ID("/p/a.ts:3:7:eslint:semi"), d.ID())
}

func TestCompare(t *testing.T) {
	t.Parallel()

	err := Diagnostic{File: "z.ts", Line: 9, Column: 9, Severity: SeverityError}
	warn := Diagnostic{File: "a.ts", Line: 1, Column: 1, Severity: SeverityWarning}
	assert.Negative(t, Compare(err, warn), "errors sort before warnings regardless of position")

	a := Diagnostic{File: "a.ts", Line: 2, Column: 5, Severity: SeverityError}
	b := Diagnostic{File: "a.ts", Line: 2, Column: 9, Severity: SeverityError}
	assert.Negative(t, Compare(a, b))
	assert.Positive(t, Compare(b, a))
	assert.Zero(t, Compare(a, a))
}

func TestByFile(t *testing.T) {
	t.Parallel()

	d1 := Diagnostic{File: "a.ts", Line: 5}
	d2 := Diagnostic{File: "b.ts", Line: 1}
	d3 := Diagnostic{File: "a.ts", Line: 2}

	grouped := ByFile([]Diagnostic{d1, d2, d3})
	assert.Equal(t, []Diagnostic{d1, d3}, grouped["a.ts"], "encounter order, not line order")
	assert.Equal(t, []Diagnostic{d2}, grouped["b.ts"])
}
