// --- START OF FINAL REVISED FILE pkg/auditor/walker.go ---
package auditor

import (
	"context"
	"fmt"
	"log/slog"
)

// Walker traverses subtrees or pages and classifies every node it reaches.
// A fault on one node or page is logged and the walk continues with its siblings.
type Walker struct {
	classifier *Classifier
	logger     *slog.Logger
}

// NewWalker creates a new Walker instance.
func NewWalker(classifier *Classifier, loggerHandler slog.Handler) *Walker {
	return &Walker{
		classifier: classifier,
		logger:     slog.New(loggerHandler).With(slog.String("component", "walker")),
	}
}

// WalkSubtrees visits every root and its descendants in pre-order, siblings in
// document order. The traversal uses an explicit stack so depth is bounded by heap only.
// A node reachable from several roots is visited once.
// The only error returned is a context error observed at a progress boundary.
func (w *Walker) WalkSubtrees(ctx context.Context, roots []Node, pageName string, progress *ProgressReporter) ([]IssueRecord, error) {
	var records []IssueRecord
	stack := make([]Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	seen := make(map[string]struct{})

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil || !markSeen(seen, node) {
			continue
		}

		if rec, ok := w.classifier.Classify(node, pageName); ok {
			records = append(records, rec)
		}
		if err := progress.Tick(ctx); err != nil {
			w.logger.Info("Subtree walk cancelled", slog.String("reason", err.Error()))
			return records, err
		}

		children, err := w.children(node)
		if err != nil {
			w.logger.Warn("Skipping children of node", slog.String("node", safeString(func() string { return node.ID() })), slog.String("error", err.Error()))
			continue
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return records, nil
}

// WalkPages classifies each page's host-provided descendant enumeration.
// A page whose enumeration fails contributes no records.
func (w *Walker) WalkPages(ctx context.Context, pages []Page, progress *ProgressReporter) ([]IssueRecord, error) {
	var records []IssueRecord
	for _, page := range pages {
		pageName := safeString(func() string { return page.Name() })
		nodes, err := w.descendants(page)
		if err != nil {
			w.logger.Warn("Skipping page, enumeration failed", slog.String("page", pageName), slog.String("error", err.Error()))
			continue
		}
		w.logger.Debug("Walking page", slog.String("page", pageName), slog.Int("nodes", len(nodes)))
		for _, node := range nodes {
			if node == nil {
				continue
			}
			if rec, ok := w.classifier.Classify(node, pageName); ok {
				records = append(records, rec)
			}
			if err := progress.Tick(ctx); err != nil {
				w.logger.Info("Page walk cancelled", slog.String("page", pageName), slog.String("reason", err.Error()))
				return records, err
			}
		}
	}
	return records, nil
}

// CountPages sums descendant counts across pages. Failing pages count as zero.
func (w *Walker) CountPages(pages []Page) int {
	total := 0
	for _, page := range pages {
		nodes, err := w.descendants(page)
		if err != nil {
			w.logger.Warn("Could not count page nodes", slog.String("page", safeString(func() string { return page.Name() })), slog.String("error", err.Error()))
			continue
		}
		total += len(nodes)
	}
	return total
}

// CountSubtrees counts every distinct node reachable from roots, roots included.
func (w *Walker) CountSubtrees(roots []Node) int {
	total := 0
	stack := append([]Node(nil), roots...)
	seen := make(map[string]struct{})
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil || !markSeen(seen, node) {
			continue
		}
		total++
		children, err := w.children(node)
		if err != nil {
			continue
		}
		stack = append(stack, children...)
	}
	return total
}

// markSeen records node's id and reports whether it was new.
// Nodes whose id cannot be read are always treated as new.
func markSeen(seen map[string]struct{}, node Node) bool {
	id := safeString(func() string { return node.ID() })
	if id == "" {
		return true
	}
	if _, dup := seen[id]; dup {
		return false
	}
	seen[id] = struct{}{}
	return true
}

// children converts a host panic into an error.
func (w *Walker) children(node Node) (children []Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading children: %v", r)
		}
	}()
	return node.Children()
}

// descendants converts a host panic into an error.
func (w *Walker) descendants(page Page) (nodes []Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enumerating descendants: %v", r)
		}
	}()
	return page.Descendants()
}

// --- END OF FINAL REVISED FILE pkg/auditor/walker.go ---
