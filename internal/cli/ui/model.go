// --- START OF FINAL REVISED FILE internal/cli/ui/model.go ---
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stackvity/template-auditor/internal/cli/hooks"
	"github.com/stackvity/template-auditor/pkg/auditor"
)

// --- Constants ---

const listHeightMargin = 5 // header, notice, report and footer lines

const (
	phaseInitializing = "Initializing..."
	phaseReady        = "Ready"
	phaseComplete     = "Complete"
)

// --- Model Struct ---

// Model is the interactive problem panel. It renders engine events and turns
// key presses into engine intents.
type Model struct {
	list    list.Model
	spinner spinner.Model
	width   int
	height  int
	// initialized tracks if the model has received initial dimensions.
	initialized bool
	version     string
	// intents receives the requests triggered by key presses.
	intents chan<- auditor.Intent

	// problems backs the list. Access MUST be protected by listLock.
	problems []problemItem
	listLock sync.Mutex

	analysis     auditor.Analysis
	scope        auditor.Scope
	currentPage  string
	totalPages   int
	phaseMessage string
	busy         bool
	notice       hooks.NoticeMsg
	report       *auditor.Report
	quitting     bool
	// listSeq numbers debounced list refreshes. Only the latest one is applied.
	listSeq int
}

// problemItem is one row of the problem list.
type problemItem struct {
	rec auditor.IssueRecord
}

// --- Bubble Tea Interface Implementations ---

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles key presses and hook messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	// --- Internal Bubble Tea Messages ---
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, max(m.height-listHeightMargin, 1))
		m.initialized = true

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
		var listCmd tea.Cmd
		m.list, listCmd = m.list.Update(msg)
		cmds = append(cmds, listCmd)

	case spinner.TickMsg:
		if m.quitting {
			return m, nil
		}
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmds = append(cmds, spinnerCmd)

	// --- Custom Messages from Engine Hooks ---
	case hooks.InitMsg:
		m.currentPage = msg.Event.CurrentPage
		m.totalPages = msg.Event.TotalPages
		m.phaseMessage = phaseReady
		if msg.Event.HasSelection {
			m.phaseMessage = fmt.Sprintf("Ready, %d node(s) selected", msg.Event.SelectionCount)
		}

	case hooks.SearchStartMsg:
		m.busy = true
		m.phaseMessage = msg.Message
		m.report = nil

	case hooks.SearchProgressMsg:
		m.phaseMessage = msg.Event.Message

	case hooks.SearchCompleteMsg:
		m.busy = false
		m.phaseMessage = phaseComplete
		m.scope = msg.Result.Scope
		m.analysis = msg.Result.Analysis
		cmds = append(cmds, m.setProblems(msg.Result.Problems))

	case hooks.ProblemsUpdatedMsg:
		m.analysis = msg.Analysis
		cmds = append(cmds, m.setProblems(msg.Problems))

	case hooks.ReportReadyMsg:
		report := msg.Report
		m.report = &report

	case hooks.NoticeMsg:
		m.notice = msg
		if msg.Level == auditor.NoticeError || msg.Message == auditor.NoticeSearchCancelled {
			m.busy = false
			if m.phaseMessage != phaseComplete {
				m.phaseMessage = phaseReady
			}
		}

	case UpdateListMsg:
		if msg.seq != m.listSeq {
			break
		}
		m.listLock.Lock()
		items := make([]list.Item, len(m.problems))
		for i, item := range m.problems {
			items[i] = item
		}
		m.listLock.Unlock()
		cmds = append(cmds, m.list.SetItems(items))
	}

	return m, tea.Batch(cmds...)
}

// handleKey maps panel keys to intents. Unhandled keys fall through to the list.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit, true
	case "s":
		return m.send(auditor.Intent{Type: auditor.IntentSearchSelected}), true
	case "p":
		return m.send(auditor.Intent{Type: auditor.IntentSearchPage}), true
	case "a":
		return m.send(auditor.Intent{Type: auditor.IntentSearchAll}), true
	case "f":
		return m.send(auditor.Intent{Type: auditor.IntentFixMissing}), true
	case "d":
		return m.send(auditor.Intent{Type: auditor.IntentFixUnused}), true
	case "c":
		return m.send(auditor.Intent{Type: auditor.IntentSelectAllCurrent}), true
	case "e":
		return m.send(auditor.Intent{Type: auditor.IntentExportReport}), true
	case "enter":
		return m.sendForSelected(auditor.IntentSelectNode), true
	case "x":
		return m.sendForSelected(auditor.IntentDetachInstance), true
	case "delete", "backspace":
		return m.sendForSelected(auditor.IntentDeleteNode), true
	}
	return nil, false
}

// send returns a command that delivers in to the engine without blocking Update.
func (m *Model) send(in auditor.Intent) tea.Cmd {
	if m.intents == nil {
		return nil
	}
	intents := m.intents
	return func() tea.Msg {
		intents <- in
		return nil
	}
}

func (m *Model) sendForSelected(t auditor.IntentType) tea.Cmd {
	item, ok := m.list.SelectedItem().(problemItem)
	if !ok {
		return nil
	}
	return m.send(auditor.Intent{Type: t, NodeID: item.rec.NodeID})
}

// setProblems replaces the list contents and schedules a list refresh.
func (m *Model) setProblems(records []auditor.IssueRecord) tea.Cmd {
	m.listLock.Lock()
	defer m.listLock.Unlock()
	m.problems = make([]problemItem, len(records))
	for i, r := range records {
		m.problems[i] = problemItem{rec: r}
	}
	return m.debounceListUpdate()
}

// View renders the panel.
func (m *Model) View() string {
	if m.quitting {
		return "Exiting...\n"
	}
	if !m.initialized {
		return phaseInitializing
	}

	// --- Header ---
	headerLeft := fmt.Sprintf("Template Auditor v%s", m.version)
	headerRight := m.phaseMessage
	if m.busy {
		headerRight = m.spinner.View() + " " + m.phaseMessage
	}
	headerCenter := ""
	if w := m.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight); w > 0 {
		headerCenter = lipgloss.PlaceHorizontal(w, lipgloss.Center, " ")
	}
	header := HeaderStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, headerLeft, headerCenter, headerRight))

	// --- Notice and Report Lines ---
	noticeView := ""
	if m.notice.Message != "" {
		noticeView = noticeStyle(m.notice.Level).Render(m.notice.Message)
	}
	reportView := ""
	if m.report != nil {
		reportView = ReportStyle.Render(fmt.Sprintf("Report: %s, %d problem(s) on %d page(s)",
			m.report.FileName, m.report.TotalProblems, len(m.report.Pages())))
	}

	// --- Footer ---
	footerLeft := fmt.Sprintf("Problems: %d (high %d, medium %d, low %d) | Page: %s (%d total)",
		m.analysis.Total, m.analysis.BySeverity.High, m.analysis.BySeverity.Medium, m.analysis.BySeverity.Low,
		m.currentPage, m.totalPages)
	footerRight := "s/p/a scan  f detach  d delete unused  c select  e export  q quit"
	footerCenter := ""
	if w := m.width - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight); w > 0 {
		footerCenter = lipgloss.PlaceHorizontal(w, lipgloss.Center, " ")
	}
	footer := FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, footerLeft, footerCenter, footerRight))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.list.View(),
		noticeView,
		reportView,
		footer,
	)
}

// --- Helper Methods ---

// NewModel creates the initial model for the TUI. Key presses are sent on intents.
func NewModel(intents chan<- auditor.Intent, version string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorSpinner)

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorSelectedFg).
		Background(ColorSelectedBg).
		Bold(true).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorSelectedDescFg).
		Background(ColorSelectedBg).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(ColorNormalFg).Padding(0, 0, 0, 1)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(ColorNormalDescFg).Padding(0, 0, 0, 1)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		list:         l,
		spinner:      s,
		version:      version,
		intents:      intents,
		phaseMessage: phaseInitializing,
	}
}

// --- List Item Interface ---

// FilterValue implements the list.Item interface.
func (i problemItem) FilterValue() string { return i.rec.Name }

// Title implements the list.Item interface.
func (i problemItem) Title() string {
	if i.rec.Name == "" {
		return auditor.UnnamedNode
	}
	return i.rec.Name
}

// Description implements the list.Item interface.
func (i problemItem) Description() string {
	sev := severityStyle(i.rec.Severity).Render(fmt.Sprintf("[%s]", i.rec.Severity))
	page := i.rec.PageName
	if page == "" {
		page = "Current Page"
	}
	desc := fmt.Sprintf("%s %s · %s", sev, i.rec.IssueKind.Label(), page)
	if i.rec.Detail != "" {
		desc += " · " + i.rec.Detail
	}
	return desc
}

// --- Update Debouncing ---

// UpdateListMsg signals that the list component should update its items.
// Messages from superseded refreshes are dropped.
type UpdateListMsg struct {
	seq int
}

const listUpdateDebounceDuration = 50 * time.Millisecond

// debounceListUpdate sends a message to trigger a list update after a short delay.
// MUST be called with listLock held.
func (m *Model) debounceListUpdate() tea.Cmd {
	m.listSeq++
	seq := m.listSeq
	return tea.Tick(listUpdateDebounceDuration, func(time.Time) tea.Msg {
		return UpdateListMsg{seq: seq}
	})
}

// --- Styles ---

const (
	ColorHeaderFg = lipgloss.Color("252")
	ColorHeaderBg = lipgloss.Color("62")

	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56")

	ColorNormalFg     = lipgloss.Color("250")
	ColorNormalDescFg = lipgloss.Color("244")

	ColorSelectedFg     = lipgloss.Color("255")
	ColorSelectedBg     = lipgloss.Color("56")
	ColorSelectedDescFg = lipgloss.Color("248")

	ColorSeverityHigh   = lipgloss.Color("196") // Red
	ColorSeverityMedium = lipgloss.Color("214") // Orange
	ColorSeverityLow    = lipgloss.Color("39")  // Blue
	ColorNoticeSuccess  = lipgloss.Color("40")  // Green
	ColorNoticeInfo     = lipgloss.Color("250")
	ColorSpinner        = lipgloss.Color("205")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1)

	ReportStyle = lipgloss.NewStyle().Italic(true).Padding(0, 1)

	SeverityStyleHigh   = lipgloss.NewStyle().Foreground(ColorSeverityHigh).Bold(true)
	SeverityStyleMedium = lipgloss.NewStyle().Foreground(ColorSeverityMedium)
	SeverityStyleLow    = lipgloss.NewStyle().Foreground(ColorSeverityLow)

	NoticeStyleSuccess = lipgloss.NewStyle().Foreground(ColorNoticeSuccess).Padding(0, 1)
	NoticeStyleError   = lipgloss.NewStyle().Foreground(ColorSeverityHigh).Bold(true).Padding(0, 1)
	NoticeStyleInfo    = lipgloss.NewStyle().Foreground(ColorNoticeInfo).Padding(0, 1)
)

func severityStyle(s auditor.Severity) lipgloss.Style {
	switch s {
	case auditor.SeverityHigh:
		return SeverityStyleHigh
	case auditor.SeverityMedium:
		return SeverityStyleMedium
	default:
		return SeverityStyleLow
	}
}

func noticeStyle(l auditor.NoticeLevel) lipgloss.Style {
	switch l {
	case auditor.NoticeSuccess:
		return NoticeStyleSuccess
	case auditor.NoticeError:
		return NoticeStyleError
	default:
		return NoticeStyleInfo
	}
}

// --- END OF FINAL REVISED FILE internal/cli/ui/model.go ---
