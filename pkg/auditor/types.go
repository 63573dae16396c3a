// --- START OF FINAL REVISED FILE pkg/auditor/types.go ---
package auditor

// NodeKind is the closed set of node kinds the auditor distinguishes.
type NodeKind string

const (
	KindInstance     NodeKind = "instance"
	KindComponent    NodeKind = "component"
	KindComponentSet NodeKind = "component-set"
	KindContainer    NodeKind = "container"
	KindOther        NodeKind = "other"
)

// IssueKind identifies which integrity rule a node violated.
type IssueKind string

// Constants representing the defined issue kinds, in classifier decision order.
const (
	IssueMissingTemplate   IssueKind = "missing-template"
	IssueRemoteTemplate    IssueKind = "remote-template"
	IssueStructuralDrift   IssueKind = "structural-drift"
	IssueUnusedTemplate    IssueKind = "unused-template"
	IssueUnusedTemplateSet IssueKind = "unused-template-set"
	IssueAnalysisError     IssueKind = "analysis-error"
)

// Severity is fixed by IssueKind; see SeverityFor.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// SeverityFor returns the severity attached to an issue kind.
func SeverityFor(kind IssueKind) Severity {
	switch kind {
	case IssueMissingTemplate:
		return SeverityHigh
	case IssueRemoteTemplate, IssueStructuralDrift:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// issueLabels holds the human readable label for each issue kind.
var issueLabels = map[IssueKind]string{
	IssueMissingTemplate:   "Missing main component",
	IssueRemoteTemplate:    "Remote library component",
	IssueStructuralDrift:   "Structure differs from main component",
	IssueUnusedTemplate:    "Unused component",
	IssueUnusedTemplateSet: "Unused component set",
	IssueAnalysisError:     "Analysis error",
}

// Label returns the display label for the issue kind.
func (k IssueKind) Label() string {
	if l, ok := issueLabels[k]; ok {
		return l
	}
	return string(k)
}

// Scope selects the region of the document a scan covers.
type Scope string

const (
	ScopeSelected    Scope = "selected"
	ScopeCurrentPage Scope = "current-page"
	ScopeAllPages    Scope = "all-pages"
)

// OutputFormat defines the format for the final report printed when the TUI is disabled.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// NoticeLevel classifies user facing notices.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// IssueRecord is one finding produced by the classifier.
type IssueRecord struct {
	NodeID    string    `json:"nodeId" yaml:"nodeId"`
	Name      string    `json:"name" yaml:"name"`
	IssueKind IssueKind `json:"issueKind" yaml:"issueKind"`
	Severity  Severity  `json:"severity" yaml:"severity"`
	PageName  string    `json:"pageName" yaml:"pageName"`
	NodeKind  NodeKind  `json:"nodeKind" yaml:"nodeKind"`
	Detail    string    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// --- END OF FINAL REVISED FILE pkg/auditor/types.go ---
