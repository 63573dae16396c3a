// --- START OF FINAL REVISED FILE pkg/auditor/engine.go ---
package auditor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/stackvity/template-auditor/pkg/util"
)

// IntentType names an inbound request from the presentation layer.
type IntentType string

const (
	IntentSearchSelected   IntentType = "search-selected"
	IntentSearchPage       IntentType = "search-page"
	IntentSearchAll        IntentType = "search-all"
	IntentSelectNode       IntentType = "select-node"
	IntentDetachInstance   IntentType = "detach-instance"
	IntentDeleteNode       IntentType = "delete-node"
	IntentSelectAllCurrent IntentType = "select-all-current"
	IntentFixMissing       IntentType = "fix-missing"
	IntentFixUnused        IntentType = "fix-unused"
	IntentExportReport     IntentType = "export-report"
	IntentCancel           IntentType = "cancel"
)

// NoticeSearchCancelled is the notice posted when a scan stops on its context.
const NoticeSearchCancelled = "Search cancelled"

// Intent is one inbound request. NodeID is used by single-node intents.
// Records, when non-empty, replaces the session problem set as the batch input.
type Intent struct {
	Type    IntentType
	NodeID  string
	Records []IssueRecord
}

// Engine owns the session and runs one action at a time against a Document.
type Engine struct {
	opts       *Options
	doc        Document
	logger     *slog.Logger
	hooks      Hooks
	classifier *Classifier
	walker     *Walker
	resolver   *ScopeResolver
	remediator *Remediator
	session    *Session
	busy       atomic.Bool
	closed     atomic.Bool
	now        func() time.Time
}

// NewEngine validates options, injects defaults and wires the components over doc.
func NewEngine(doc Document, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document cannot be nil", ErrConfigValidation)
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))

	if opts.DriftThreshold < 0 {
		return nil, fmt.Errorf("%w: driftThreshold must be >= 0, got %d", ErrConfigValidation, opts.DriftThreshold)
	}
	if opts.DriftThreshold == 0 {
		opts.DriftThreshold = DefaultDriftThreshold
	}
	if opts.Progress.PageInterval < 0 || opts.Progress.AllPagesInterval < 0 {
		return nil, fmt.Errorf("%w: progress intervals must be >= 0", ErrConfigValidation)
	}
	if opts.Progress.PageInterval == 0 {
		opts.Progress.PageInterval = DefaultPageProgressInterval
	}
	if opts.Progress.AllPagesInterval == 0 {
		opts.Progress.AllPagesInterval = DefaultAllPagesProgressInterval
	}
	if opts.Scope == "" {
		opts.Scope = DefaultScope
	}
	if _, err := ParseScope(string(opts.Scope)); err != nil {
		return nil, err
	}
	if opts.PageFilter == nil && len(opts.IgnorePages) > 0 {
		matcher, err := util.NewPageMatcher(opts.IgnorePages)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid ignorePages patterns: %w", ErrConfigValidation, err)
		}
		opts.PageFilter = matcher
		logger.Debug("Page ignore patterns loaded", slog.Int("count", len(opts.IgnorePages)))
	}

	classifier := NewClassifier(opts.DriftThreshold, opts.Logger)
	return &Engine{
		opts:       &opts,
		doc:        doc,
		logger:     logger,
		hooks:      opts.EventHooks,
		classifier: classifier,
		walker:     NewWalker(classifier, opts.Logger),
		resolver:   NewScopeResolver(doc, opts.PageFilter, opts.Progress, opts.Logger),
		remediator: NewRemediator(doc, opts.Logger),
		session:    NewSession(),
		now:        time.Now,
	}, nil
}

// Session exposes the engine's problem set.
func (e *Engine) Session() *Session { return e.session }

// Busy reports whether an action is running.
func (e *Engine) Busy() bool { return e.busy.Load() }

// Init describes the document and publishes an init event.
func (e *Engine) Init() InitEvent {
	ev := InitEvent{}
	selection := e.doc.Selection()
	ev.SelectionCount = len(selection)
	ev.HasSelection = len(selection) > 0
	if page, ok := e.doc.CurrentPage(); ok && page != nil {
		ev.CurrentPage = page.Name()
	}
	if pages, err := e.doc.Pages(); err != nil {
		e.logger.Warn("Could not list pages for init", slog.String("error", err.Error()))
	} else {
		ev.TotalPages = len(pages)
	}
	e.hookErr("OnInit", e.hooks.OnInit(ev))
	return ev
}

// Search runs a scan of scope and replaces the session problem set.
// A scan that is cancelled through ctx leaves the previous problem set in place.
func (e *Engine) Search(ctx context.Context, scope Scope) (result SearchResult, err error) {
	if e.closed.Load() {
		return SearchResult{}, ErrEngineClosed
	}
	if !e.busy.CompareAndSwap(false, true) {
		e.notice(NoticeInfo, "A search is already in progress")
		return SearchResult{}, ErrScanInProgress
	}
	defer e.busy.Store(false)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Panic recovered during search", slog.String("scope", string(scope)), slog.Any("panicValue", r))
			e.notice(NoticeError, "An error occurred during the search")
			result = SearchResult{}
			err = fmt.Errorf("%w: %v", ErrScanFailed, r)
		}
	}()

	startTime := e.now()
	res, err := e.resolver.Resolve(scope)
	if err != nil {
		e.logger.Error("Could not resolve scan scope", slog.String("scope", string(scope)), slog.String("error", err.Error()))
		e.notice(NoticeError, "An error occurred during the search")
		return SearchResult{}, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}
	if res.FellBack {
		e.notice(NoticeInfo, "Nothing is selected. Scanning the whole current page.")
	}
	label := scopeLabel(res)
	e.hookErr("OnSearchStart", e.hooks.OnSearchStart(fmt.Sprintf("Scanning %s...", label)))

	var records []IssueRecord
	if res.Roots != nil {
		progress := NewProgressReporter(res.Interval, e.walker.CountSubtrees(res.Roots), e.emitProgress)
		records, err = e.walker.WalkSubtrees(ctx, res.Roots, res.PageName, progress)
	} else {
		progress := NewProgressReporter(res.Interval, e.walker.CountPages(res.Pages), e.emitProgress)
		records, err = e.walker.WalkPages(ctx, res.Pages, progress)
	}
	if err != nil {
		e.notice(NoticeInfo, NoticeSearchCancelled)
		return SearchResult{}, err
	}

	e.session.Replace(records, res.Effective)
	analysis := Analyze(records)
	currentNodes := e.remediator.CurrentPageNodes(records)
	if e.opts.AutoSelect && len(currentNodes) > 0 {
		if selErr := e.doc.SetSelection(currentNodes); selErr != nil {
			e.logger.Warn("Auto-selection failed", slog.String("error", selErr.Error()))
		} else if scrollErr := e.doc.ScrollIntoView(currentNodes); scrollErr != nil {
			e.logger.Warn("Scroll into view failed", slog.String("error", scrollErr.Error()))
		}
	}

	result = SearchResult{
		Problems:         records,
		Analysis:         analysis,
		Scope:            res.Effective,
		CurrentPageCount: len(currentNodes),
	}
	e.logger.Info("Search finished",
		slog.String("scope", string(res.Effective)),
		slog.Int("problems", analysis.Total),
		slog.Int("high", analysis.BySeverity.High),
		slog.Int("medium", analysis.BySeverity.Medium),
		slog.Int("low", analysis.BySeverity.Low),
		slog.Duration("duration", time.Since(startTime)),
	)
	e.hookErr("OnSearchComplete", e.hooks.OnSearchComplete(result))
	e.notice(completionLevel(analysis), e.completionMessage(label, analysis, len(currentNodes)))
	return result, nil
}

// FixMissing detaches the instances behind missing-template records.
// A nil records slice uses the session problem set.
func (e *Engine) FixMissing(records []IssueRecord) (BatchResult, error) {
	if err := e.begin(); err != nil {
		return BatchResult{}, err
	}
	defer e.end()
	records = e.batchInput(records)
	e.notice(NoticeInfo, "Detaching instances with missing main components...")
	res := e.remediator.DetachMissing(records)
	e.settle(res)
	e.notice(NoticeSuccess, fmt.Sprintf("Detached %d instance(s)", res.Succeeded))
	return res, nil
}

// FixUnused removes the templates and template sets behind unused records.
func (e *Engine) FixUnused(records []IssueRecord) (BatchResult, error) {
	if err := e.begin(); err != nil {
		return BatchResult{}, err
	}
	defer e.end()
	records = e.batchInput(records)
	e.notice(NoticeInfo, "Deleting unused components...")
	res := e.remediator.DeleteUnused(records)
	e.settle(res)
	e.notice(NoticeSuccess, fmt.Sprintf("Deleted %d component(s)", res.Succeeded))
	return res, nil
}

// DetachInstance detaches one instance by id.
func (e *Engine) DetachInstance(id string) (BatchResult, error) {
	if err := e.begin(); err != nil {
		return BatchResult{}, err
	}
	defer e.end()
	res := e.remediator.DetachInstance(id)
	e.settle(res)
	e.singleNotice(res, "Instance detached")
	return res, nil
}

// DeleteNode removes one node by id.
func (e *Engine) DeleteNode(id string) (BatchResult, error) {
	if err := e.begin(); err != nil {
		return BatchResult{}, err
	}
	defer e.end()
	res := e.remediator.DeleteNode(id)
	e.settle(res)
	e.singleNotice(res, "Node deleted")
	return res, nil
}

// SelectAllCurrent selects the problem nodes on the active page.
func (e *Engine) SelectAllCurrent(records []IssueRecord) (int, error) {
	if err := e.begin(); err != nil {
		return 0, err
	}
	defer e.end()
	n, err := e.remediator.SelectAllCurrent(e.batchInput(records))
	if err != nil {
		e.logger.Error("Selecting problem nodes failed", slog.String("error", err.Error()))
		e.notice(NoticeError, "An error occurred while selecting nodes")
		return 0, err
	}
	if n == 0 {
		e.notice(NoticeInfo, "Nothing to select on the current page")
		return 0, nil
	}
	e.notice(NoticeSuccess, fmt.Sprintf("Selected %d problem node(s)", n))
	return n, nil
}

// SelectNode focuses one node, switching pages when needed.
func (e *Engine) SelectNode(id string) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()
	if err := e.remediator.SelectNode(id); err != nil {
		e.logger.Warn("Could not select node", slog.String("node", id), slog.String("error", err.Error()))
		switch {
		case errors.Is(err, ErrNodeNotFound):
			e.notice(NoticeInfo, "The node no longer exists")
			return err
		case errors.Is(err, ErrNodeOffPage):
			e.notice(NoticeInfo, "The node is not on any page and cannot be focused")
			return err
		}
		e.notice(NoticeError, "Could not select the node")
		return err
	}
	return nil
}

// ExportReport builds a report of the current problem set and publishes it.
func (e *Engine) ExportReport() (Report, error) {
	if e.closed.Load() {
		return Report{}, ErrEngineClosed
	}
	report := BuildReport(e.doc.Name(), e.session.Scope(), e.session.Problems(), e.now())
	if e.opts.GitMetadataEnabled && e.opts.GitClient != nil && e.opts.InputPath != "" {
		meta, err := e.opts.GitClient.GetFileMetadata(filepath.Dir(e.opts.InputPath), e.opts.InputPath)
		if err != nil {
			e.logger.Warn("Could not read git metadata for report", slog.String("path", e.opts.InputPath), slog.String("error", err.Error()))
		} else if len(meta) > 0 {
			report.Provenance = meta
		}
	}
	e.logger.Info("Report exported",
		slog.String("fileName", report.FileName),
		slog.Int("totalProblems", report.TotalProblems))
	e.hookErr("OnReportReady", e.hooks.OnReportReady(report))
	e.notice(NoticeInfo, "Detailed report is ready")
	return report, nil
}

// Cancel closes the engine. Later intents return ErrEngineClosed.
func (e *Engine) Cancel() {
	if e.closed.CompareAndSwap(false, true) {
		e.logger.Info("Engine closed")
	}
}

// Closed reports whether Cancel was called.
func (e *Engine) Closed() bool { return e.closed.Load() }

// Handle dispatches one intent.
func (e *Engine) Handle(ctx context.Context, in Intent) error {
	var err error
	switch in.Type {
	case IntentSearchSelected:
		_, err = e.Search(ctx, ScopeSelected)
	case IntentSearchPage:
		_, err = e.Search(ctx, ScopeCurrentPage)
	case IntentSearchAll:
		_, err = e.Search(ctx, ScopeAllPages)
	case IntentSelectNode:
		err = e.SelectNode(in.NodeID)
	case IntentDetachInstance:
		_, err = e.DetachInstance(in.NodeID)
	case IntentDeleteNode:
		_, err = e.DeleteNode(in.NodeID)
	case IntentSelectAllCurrent:
		_, err = e.SelectAllCurrent(in.Records)
	case IntentFixMissing:
		_, err = e.FixMissing(in.Records)
	case IntentFixUnused:
		_, err = e.FixUnused(in.Records)
	case IntentExportReport:
		_, err = e.ExportReport()
	case IntentCancel:
		e.Cancel()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
	}
	return err
}

// Run handles intents one at a time until the channel closes, ctx ends or a
// cancel intent arrives. Per-intent errors are logged, not returned.
func (e *Engine) Run(ctx context.Context, intents <-chan Intent) error {
	e.Init()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-intents:
			if !ok {
				return nil
			}
			err := e.Handle(ctx, in)
			if in.Type == IntentCancel {
				return nil
			}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				e.logger.Warn("Intent failed", slog.String("intent", string(in.Type)), slog.String("error", err.Error()))
			}
		}
	}
}

// --- helpers ---

func (e *Engine) begin() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if !e.busy.CompareAndSwap(false, true) {
		e.notice(NoticeInfo, "Wait for the current search to finish")
		return ErrScanInProgress
	}
	return nil
}

func (e *Engine) end() { e.busy.Store(false) }

func (e *Engine) batchInput(records []IssueRecord) []IssueRecord {
	if len(records) > 0 {
		return records
	}
	return e.session.Problems()
}

// settle drops settled ids from the session and republishes the problem set.
func (e *Engine) settle(res BatchResult) {
	removed := e.session.RemoveIDs(res.Settled)
	problems := e.session.Problems()
	analysis := Analyze(problems)
	e.logger.Debug("Problem set filtered",
		slog.String("action", string(res.Action)),
		slog.Int("removed", removed),
		slog.Int("remaining", analysis.Total))
	e.hookErr("OnProblemsUpdated", e.hooks.OnProblemsUpdated(problems, analysis))
}

func (e *Engine) singleNotice(res BatchResult, okMsg string) {
	switch {
	case res.Succeeded > 0:
		e.notice(NoticeSuccess, okMsg)
	case len(res.Failed) > 0:
		e.notice(NoticeError, fmt.Sprintf("%s failed: %s", res.Action, res.Failed[0].Reason))
	default:
		e.notice(NoticeInfo, "The node no longer needs this action")
	}
}

func (e *Engine) emitProgress(ev ProgressEvent) {
	e.hookErr("OnSearchProgress", e.hooks.OnSearchProgress(ev))
}

func (e *Engine) notice(level NoticeLevel, msg string) {
	e.hookErr("OnNotice", e.hooks.OnNotice(level, msg))
}

func (e *Engine) hookErr(hook string, err error) {
	if err != nil {
		e.logger.Warn("Hook returned an error", slog.String("hook", hook), slog.String("error", err.Error()))
	}
}

func (e *Engine) completionMessage(label string, a Analysis, currentPageCount int) string {
	if a.Total == 0 {
		return fmt.Sprintf("No problems found in %s", label)
	}
	msg := fmt.Sprintf("Found %d problem(s) in %s", a.Total, label)
	if currentPageCount > 0 && e.opts.AutoSelect {
		msg += fmt.Sprintf(", %d selected", currentPageCount)
	}
	if other := a.Total - currentPageCount; other > 0 && currentPageCount > 0 {
		msg += fmt.Sprintf(" (other pages or detached: %d)", other)
	}
	return msg
}

func completionLevel(a Analysis) NoticeLevel {
	if a.Total == 0 {
		return NoticeSuccess
	}
	return NoticeInfo
}

func scopeLabel(res Resolution) string {
	switch res.Effective {
	case ScopeSelected:
		return "the selection"
	case ScopeCurrentPage:
		return fmt.Sprintf("page %q", res.PageName)
	default:
		return "all pages"
	}
}

// --- END OF FINAL REVISED FILE pkg/auditor/engine.go ---
