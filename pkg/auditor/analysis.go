// --- START OF FINAL REVISED FILE pkg/auditor/analysis.go ---
package auditor

import (
	"fmt"
	"strings"
)

// SeverityCounts tallies records per severity.
type SeverityCounts struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// Analysis is a summary derived from a record set. It is never stored on its own.
type Analysis struct {
	Total      int               `json:"total" yaml:"total"`
	BySeverity SeverityCounts    `json:"bySeverity" yaml:"bySeverity"`
	ByType     map[IssueKind]int `json:"byType" yaml:"byType"`
	ByPage     map[string]int    `json:"byPage" yaml:"byPage"`
	// PageOrder lists pages in first-seen order for presentation.
	PageOrder []string `json:"pageOrder,omitempty" yaml:"pageOrder,omitempty"`
}

// Analyze reduces records into counts. Counts do not depend on record order.
func Analyze(records []IssueRecord) Analysis {
	a := Analysis{
		Total:  len(records),
		ByType: make(map[IssueKind]int),
		ByPage: make(map[string]int),
	}
	for _, r := range records {
		switch r.Severity {
		case SeverityHigh:
			a.BySeverity.High++
		case SeverityMedium:
			a.BySeverity.Medium++
		case SeverityLow:
			a.BySeverity.Low++
		}
		a.ByType[r.IssueKind]++
		if _, seen := a.ByPage[r.PageName]; !seen {
			a.PageOrder = append(a.PageOrder, r.PageName)
		}
		a.ByPage[r.PageName]++
	}
	return a
}

// kindOrder fixes the order kinds are listed in summaries.
var kindOrder = []IssueKind{
	IssueMissingTemplate,
	IssueRemoteTemplate,
	IssueStructuralDrift,
	IssueUnusedTemplate,
	IssueUnusedTemplateSet,
	IssueAnalysisError,
}

// Summary renders a human readable description of the analysis for scope label.
func (a Analysis) Summary(label string) string {
	if a.Total == 0 {
		return fmt.Sprintf("No problems found in %s", label)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d problem(s) in %s", a.Total, label)
	fmt.Fprintf(&b, " (high: %d, medium: %d, low: %d)", a.BySeverity.High, a.BySeverity.Medium, a.BySeverity.Low)
	for _, k := range kindOrder {
		if n := a.ByType[k]; n > 0 {
			fmt.Fprintf(&b, "\n  - %s: %d", k.Label(), n)
		}
	}
	return b.String()
}

// GroupByPage groups records by page name following the first-seen page order.
func GroupByPage(records []IssueRecord) ([]string, map[string][]IssueRecord) {
	var order []string
	groups := make(map[string][]IssueRecord)
	for _, r := range records {
		if _, ok := groups[r.PageName]; !ok {
			order = append(order, r.PageName)
		}
		groups[r.PageName] = append(groups[r.PageName], r)
	}
	return order, groups
}

// --- END OF FINAL REVISED FILE pkg/auditor/analysis.go ---
