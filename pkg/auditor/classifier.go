// --- START OF FINAL REVISED FILE pkg/auditor/classifier.go ---
package auditor

import (
	"fmt"
	"log/slog"
)

// Classifier maps a single node to at most one IssueRecord.
type Classifier struct {
	driftThreshold int
	logger         *slog.Logger
}

// NewClassifier creates a Classifier. A non-positive threshold falls back to DefaultDriftThreshold.
func NewClassifier(driftThreshold int, loggerHandler slog.Handler) *Classifier {
	if driftThreshold <= 0 {
		driftThreshold = DefaultDriftThreshold
	}
	return &Classifier{
		driftThreshold: driftThreshold,
		logger:         slog.New(loggerHandler).With(slog.String("component", "classifier")),
	}
}

// DriftThreshold returns the override count above which an instance counts as drifted.
func (c *Classifier) DriftThreshold() int { return c.driftThreshold }

// Classify applies the rules in order and returns the first match.
// It never panics: a host fault while reading the node yields an analysis-error record.
func (c *Classifier) Classify(node Node, pageName string) (rec IssueRecord, found bool) {
	defer func() {
		if r := recover(); r != nil {
			id := safeString(func() string { return node.ID() })
			c.logger.Warn("Recovered fault while classifying node", slog.String("node", id), slog.Any("panicValue", r))
			rec = IssueRecord{
				NodeID:    id,
				Name:      safeString(func() string { return displayName(node) }),
				IssueKind: IssueAnalysisError,
				Severity:  SeverityFor(IssueAnalysisError),
				PageName:  pageName,
				NodeKind:  NodeKind(safeString(func() string { return string(node.Kind()) })),
				Detail:    fmt.Sprintf("%s: %v", IssueAnalysisError.Label(), r),
			}
			found = true
		}
	}()

	kind, ok := c.match(node)
	if !ok {
		return IssueRecord{}, false
	}
	return IssueRecord{
		NodeID:    node.ID(),
		Name:      displayName(node),
		IssueKind: kind,
		Severity:  SeverityFor(kind),
		PageName:  pageName,
		NodeKind:  node.Kind(),
		Detail:    kind.Label(),
	}, true
}

// match holds the decision order. Rules are exclusive by node kind and by else-if.
func (c *Classifier) match(node Node) (IssueKind, bool) {
	switch node.Kind() {
	case KindInstance:
		main, ok := node.MainTemplate()
		if !ok || main == nil {
			return IssueMissingTemplate, true
		}
		if main.Remote() {
			return IssueRemoteTemplate, true
		}
		if c.HasStructuralDrift(node, main) {
			return IssueStructuralDrift, true
		}
	case KindComponent:
		if !hasInstances(node) {
			return IssueUnusedTemplate, true
		}
	case KindComponentSet:
		if !c.setHasUsedVariant(node) {
			return IssueUnusedTemplateSet, true
		}
	}
	return "", false
}

// HasStructuralDrift reports a child count mismatch between instance and template,
// or more distinct overrides than the threshold when counts agree.
func (c *Classifier) HasStructuralDrift(instance, main Node) bool {
	if c.childCount(instance) != c.childCount(main) {
		return true
	}
	overrides, ok := instance.Overrides()
	if !ok {
		return false
	}
	return len(overrides) > c.driftThreshold
}

// childCount reads unreadable children as none.
func (c *Classifier) childCount(node Node) int {
	children, err := node.Children()
	if err != nil {
		c.logger.Debug("Children unreadable, counting as empty", slog.String("node", node.ID()), slog.String("error", err.Error()))
		return 0
	}
	return len(children)
}

func (c *Classifier) setHasUsedVariant(set Node) bool {
	variants, err := set.Children()
	if err != nil {
		c.logger.Debug("Component set children unreadable", slog.String("node", set.ID()), slog.String("error", err.Error()))
		return false
	}
	for _, v := range variants {
		if v != nil && v.Kind() == KindComponent && hasInstances(v) {
			return true
		}
	}
	return false
}

func hasInstances(node Node) bool {
	ids, ok := node.Instances()
	return ok && len(ids) > 0
}

// safeString calls fn and swallows a panic, returning "".
func safeString(fn func() string) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return fn()
}

// --- END OF FINAL REVISED FILE pkg/auditor/classifier.go ---
