// --- START OF FINAL REVISED FILE internal/cli/hooks/hooks.go ---
package hooks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stackvity/template-auditor/pkg/auditor"
)

// --- TUI Message Structs ---

// InitMsg carries the document description published when the engine starts.
type InitMsg struct{ Event auditor.InitEvent }

// SearchStartMsg signals that a scan began.
type SearchStartMsg struct{ Message string }

// SearchProgressMsg carries advisory scan progress.
type SearchProgressMsg struct{ Event auditor.ProgressEvent }

// SearchCompleteMsg carries the result of a finished scan.
type SearchCompleteMsg struct{ Result auditor.SearchResult }

// ProblemsUpdatedMsg carries the problem set after a remediation action.
type ProblemsUpdatedMsg struct {
	Problems []auditor.IssueRecord
	Analysis auditor.Analysis
}

// ReportReadyMsg carries an exported report.
type ReportReadyMsg struct{ Report auditor.Report }

// NoticeMsg is a user facing notice.
type NoticeMsg struct {
	Level   auditor.NoticeLevel
	Message string
}

// --- Hook Implementation ---

// CLIHooks implements auditor.Hooks, bridging engine events to the TUI,
// a progress bar or the logger.
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram
	progressBar    ProgressBar
	out            io.Writer
	mu             sync.Mutex // Protects progressBar and barActive
	barActive      bool
}

// TUIProgram defines the interface needed to interact with the Bubble Tea program.
type TUIProgram interface {
	Send(msg tea.Msg)
}

// ProgressBar is the subset of *progressbar.ProgressBar the hooks drive.
type ProgressBar interface {
	Set(num int) error
	ChangeMax(newMax int)
	Describe(description string)
	Finish() error
}

// NewCLIHooks creates a new CLIHooks instance.
// Pass nil for tuiProg or progBar if not applicable.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiProg TUIProgram, progBar ProgressBar) *CLIHooks {
	if tuiEnabled && tuiProg == nil {
		tuiEnabled = false
	}
	return &CLIHooks{
		logger:         logger,
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
		progressBar:    progBar,
		out:            os.Stderr,
	}
}

var (
	_ auditor.Hooks = (*CLIHooks)(nil)
	_ TUIProgram    = (*tea.Program)(nil)
)

// OnInit handles the engine start event.
func (h *CLIHooks) OnInit(event auditor.InitEvent) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(InitMsg{Event: event})
		return nil
	}
	h.logger.Debug("Document opened",
		slog.String("currentPage", event.CurrentPage),
		slog.Int("pages", event.TotalPages),
		slog.Int("selection", event.SelectionCount))
	return nil
}

// OnSearchStart handles the start of a scan.
func (h *CLIHooks) OnSearchStart(message string) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(SearchStartMsg{Message: message})
		return nil
	}
	if h.progressBar != nil && !h.verboseEnabled {
		h.mu.Lock()
		h.progressBar.Describe(message)
		h.barActive = true
		h.mu.Unlock()
		return nil
	}
	h.logger.Info(message)
	return nil
}

// OnSearchProgress handles advisory progress. This method MUST be thread-safe.
func (h *CLIHooks) OnSearchProgress(event auditor.ProgressEvent) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(SearchProgressMsg{Event: event})
		return nil
	}
	if h.progressBar != nil && !h.verboseEnabled {
		h.mu.Lock()
		defer h.mu.Unlock()
		if event.Total > 0 {
			h.progressBar.ChangeMax(event.Total)
		}
		_ = h.progressBar.Set(event.Processed)
		return nil
	}
	if h.verboseEnabled {
		h.logger.Debug(event.Message, slog.Int("processed", event.Processed), slog.Int("total", event.Total))
	}
	return nil
}

// OnSearchComplete handles a finished scan and finalizes the progress bar.
func (h *CLIHooks) OnSearchComplete(result auditor.SearchResult) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(SearchCompleteMsg{Result: result})
		return nil
	}
	h.finishBar()
	h.logger.Debug("Search complete",
		slog.String("scope", string(result.Scope)),
		slog.Int("problems", result.Analysis.Total),
		slog.Int("currentPage", result.CurrentPageCount))
	return nil
}

// OnProblemsUpdated handles the problem set after a remediation action.
func (h *CLIHooks) OnProblemsUpdated(problems []auditor.IssueRecord, analysis auditor.Analysis) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(ProblemsUpdatedMsg{Problems: problems, Analysis: analysis})
		return nil
	}
	h.logger.Debug("Problem set updated", slog.Int("remaining", analysis.Total))
	return nil
}

// OnReportReady handles an exported report. Printing is left to the caller in non-TUI mode.
func (h *CLIHooks) OnReportReady(report auditor.Report) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(ReportReadyMsg{Report: report})
		return nil
	}
	h.logger.Debug("Report ready", slog.Int("totalProblems", report.TotalProblems))
	return nil
}

// OnNotice handles user facing notices.
func (h *CLIHooks) OnNotice(level auditor.NoticeLevel, message string) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(NoticeMsg{Level: level, Message: message})
		return nil
	}
	h.finishBar()
	logLevel := slog.LevelInfo
	if level == auditor.NoticeError {
		logLevel = slog.LevelError
	}
	h.logger.Log(context.Background(), logLevel, message, slog.String("notice", string(level)))
	return nil
}

// finishBar completes an active progress bar so later log lines start on a fresh line.
func (h *CLIHooks) finishBar() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.progressBar == nil || !h.barActive {
		return
	}
	_ = h.progressBar.Finish()
	h.barActive = false
	_, _ = fmt.Fprintln(h.out)
}

// --- END OF FINAL REVISED FILE internal/cli/hooks/hooks.go ---
