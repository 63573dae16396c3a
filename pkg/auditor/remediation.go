// --- START OF FINAL REVISED FILE pkg/auditor/remediation.go ---
package auditor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ActionKind names a remediation action.
type ActionKind string

const (
	ActionDetachMissing    ActionKind = "detach-missing"
	ActionDeleteUnused     ActionKind = "delete-unused"
	ActionSelectAllCurrent ActionKind = "select-all-current"
	ActionDetachInstance   ActionKind = "detach-instance"
	ActionDeleteNode       ActionKind = "delete-node"
	ActionSelectNode       ActionKind = "select-node"
)

// ItemResult records why one item of a batch was not applied.
type ItemResult struct {
	NodeID string `json:"nodeId"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BatchResult is the outcome of one remediation action.
type BatchResult struct {
	Action    ActionKind   `json:"action"`
	Attempted int          `json:"attempted"`
	Succeeded int          `json:"succeeded"`
	Skipped   []ItemResult `json:"skipped,omitempty"` // stale or no longer applicable
	Failed    []ItemResult `json:"failed,omitempty"`  // host rejected the mutation
	// Settled lists node ids whose records no longer belong in the problem set.
	// Single-node actions settle successes and skips. Batch actions settle
	// every target, failures included, so their issue kind leaves the set.
	Settled []string `json:"-"`
}

// target is one node id an action should be applied to.
type target struct {
	id   string
	name string
}

// Remediator applies actions to the document, one item at a time.
// No single item can abort a batch.
type Remediator struct {
	doc    Document
	logger *slog.Logger
}

// NewRemediator creates a Remediator over doc.
func NewRemediator(doc Document, loggerHandler slog.Handler) *Remediator {
	return &Remediator{
		doc:    doc,
		logger: slog.New(loggerHandler).With(slog.String("component", "remediation")),
	}
}

// DetachMissing detaches every still-present instance behind a missing-template record.
func (r *Remediator) DetachMissing(records []IssueRecord) BatchResult {
	targets := targetsFor(records, IssueMissingTemplate)
	return settleFailures(r.apply(ActionDetachMissing, targets, []NodeKind{KindInstance}, r.doc.DetachInstance))
}

// DeleteUnused removes every still-present template or template set behind an unused record.
func (r *Remediator) DeleteUnused(records []IssueRecord) BatchResult {
	targets := targetsFor(records, IssueUnusedTemplate, IssueUnusedTemplateSet)
	return settleFailures(r.apply(ActionDeleteUnused, targets, []NodeKind{KindComponent, KindComponentSet}, r.doc.RemoveNode))
}

// DetachInstance detaches a single instance by id.
func (r *Remediator) DetachInstance(id string) BatchResult {
	return r.apply(ActionDetachInstance, []target{{id: id}}, []NodeKind{KindInstance}, r.doc.DetachInstance)
}

// DeleteNode removes a single node of any kind by id.
func (r *Remediator) DeleteNode(id string) BatchResult {
	return r.apply(ActionDeleteNode, []target{{id: id}}, nil, r.doc.RemoveNode)
}

// CurrentPageNodes resolves the records that sit on the active page and are still attached.
// Records with no page name are treated as belonging to the active page.
func (r *Remediator) CurrentPageNodes(records []IssueRecord) []Node {
	current, ok := r.doc.CurrentPage()
	if !ok || current == nil {
		return nil
	}
	currentName := current.Name()
	var nodes []Node
	seen := make(map[string]struct{})
	for _, rec := range records {
		if rec.PageName != "" && rec.PageName != currentName {
			continue
		}
		if _, dup := seen[rec.NodeID]; dup {
			continue
		}
		node, ok := r.doc.NodeByID(rec.NodeID)
		if !ok || node == nil {
			r.logger.Debug("Skipping stale record for selection", slog.String("node", rec.NodeID))
			continue
		}
		if _, attached := node.Parent(); !attached {
			continue
		}
		if page, ok := PageOf(node); !ok || page.ID() != current.ID() {
			continue
		}
		seen[rec.NodeID] = struct{}{}
		nodes = append(nodes, node)
	}
	return nodes
}

// SelectAllCurrent replaces the selection with the current page's problem nodes and
// scrolls them into view. An empty result is not an error.
func (r *Remediator) SelectAllCurrent(records []IssueRecord) (int, error) {
	nodes := r.CurrentPageNodes(records)
	if len(nodes) == 0 {
		return 0, nil
	}
	if err := r.doc.SetSelection(nodes); err != nil {
		return 0, fmt.Errorf("setting selection: %w", err)
	}
	if err := r.doc.ScrollIntoView(nodes); err != nil {
		r.logger.Warn("Scroll into view failed", slog.String("error", err.Error()))
	}
	return len(nodes), nil
}

// SelectNode switches to the node's page, selects it and scrolls to it.
func (r *Remediator) SelectNode(id string) error {
	node, ok := r.doc.NodeByID(id)
	if !ok || node == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	page, ok := PageOf(node)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeOffPage, id)
	}
	if current, ok := r.doc.CurrentPage(); !ok || current.ID() != page.ID() {
		if err := r.doc.SetCurrentPage(page); err != nil {
			return fmt.Errorf("switching to page %q: %w", page.Name(), err)
		}
	}
	if err := r.doc.SetSelection([]Node{node}); err != nil {
		return fmt.Errorf("selecting node %s: %w", id, err)
	}
	if err := r.doc.ScrollIntoView([]Node{node}); err != nil {
		r.logger.Warn("Scroll into view failed", slog.String("node", id), slog.String("error", err.Error()))
	}
	return nil
}

// apply runs op on each target. Stale ids and wrong kinds are skipped,
// host errors and panics are recorded as failures.
func (r *Remediator) apply(action ActionKind, targets []target, kinds []NodeKind, op func(Node) error) BatchResult {
	res := BatchResult{Action: action}
	for _, t := range targets {
		res.Attempted++
		node, ok := r.doc.NodeByID(t.id)
		if !ok || node == nil {
			r.logger.Info("Skipping stale node", slog.String("action", string(action)), slog.String("node", t.id))
			res.Skipped = append(res.Skipped, ItemResult{NodeID: t.id, Name: t.name, Reason: ErrNodeNotFound.Error()})
			res.Settled = append(res.Settled, t.id)
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, node.Kind()) {
			r.logger.Info("Skipping node of inapplicable kind",
				slog.String("action", string(action)),
				slog.String("node", t.id),
				slog.String("kind", string(node.Kind())))
			res.Skipped = append(res.Skipped, ItemResult{NodeID: t.id, Name: t.name, Reason: fmt.Sprintf("%s: %s", ErrWrongNodeKind, node.Kind())})
			res.Settled = append(res.Settled, t.id)
			continue
		}
		if err := safeApply(op, node); err != nil {
			r.logger.Warn("Remediation failed for node",
				slog.String("action", string(action)),
				slog.String("node", t.id),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, ItemResult{NodeID: t.id, Name: t.name, Reason: err.Error()})
			continue
		}
		res.Succeeded++
		res.Settled = append(res.Settled, t.id)
	}
	r.logger.Debug("Remediation batch finished",
		slog.String("action", string(action)),
		slog.Int("attempted", res.Attempted),
		slog.Int("succeeded", res.Succeeded),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("failed", len(res.Failed)))
	return res
}

// settleFailures moves failed items into Settled. They stay reported in Failed.
func settleFailures(res BatchResult) BatchResult {
	for _, f := range res.Failed {
		res.Settled = append(res.Settled, f.NodeID)
	}
	return res
}

// errHostPanic marks a mutation that panicked inside the host.
var errHostPanic = errors.New("host panic")

func safeApply(op func(Node) error, node Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errHostPanic, r)
		}
	}()
	return op(node)
}

func targetsFor(records []IssueRecord, kinds ...IssueKind) []target {
	var out []target
	seen := make(map[string]struct{})
	for _, rec := range records {
		if !slices.Contains(kinds, rec.IssueKind) {
			continue
		}
		if _, dup := seen[rec.NodeID]; dup {
			continue
		}
		seen[rec.NodeID] = struct{}{}
		out = append(out, target{id: rec.NodeID, name: rec.Name})
	}
	return out
}

// --- END OF FINAL REVISED FILE pkg/auditor/remediation.go ---
