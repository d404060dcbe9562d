package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/lintmux/lintmux/internal/diag"
)

const toolURI = "https://github.com/lintmux/lintmux"

// RenderSARIF writes the report as SARIF 2.1.0. Rules are keyed as
// "source/rule" so that identically named rules from different tools stay
// distinct.
func RenderSARIF(w io.Writer, rep *Report) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("lintmux", toolURI)
	seenRules := make(map[string]bool)

	for _, item := range rep.Items {
		d := item.Diag
		ruleID := d.Source + "/" + d.Rule
		level := sarifLevel(d.Severity)

		if !seenRules[ruleID] {
			seenRules[ruleID] = true
			run.AddRule(ruleID).
				WithDescription(d.Rule).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})
		}

		region := sarif.NewRegion().WithStartLine(d.Line).WithStartColumn(d.Column)
		if d.EndLine > 0 {
			region = region.WithEndLine(d.EndLine)
		}
		if d.EndColumn > 0 {
			region = region.WithEndColumn(d.EndColumn)
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(d.File)).
				WithRegion(region),
		)

		run.AddResult(sarif.NewRuleResult(ruleID).
			WithMessage(sarif.NewTextMessage(d.Message)).
			WithLevel(level).
			WithLocations([]*sarif.Location{location}))
	}

	doc.AddRun(run)
	return doc.PrettyWrite(w)
}

func sarifLevel(s diag.Severity) string {
	if s == diag.SeverityError {
		return "error"
	}
	return "warning"
}
