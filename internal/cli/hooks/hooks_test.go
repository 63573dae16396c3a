// --- START OF FINAL REVISED FILE internal/cli/hooks/hooks_test.go ---
package hooks

import (
	"bytes"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stackvity/template-auditor/pkg/auditor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Implementations ---

type MockTUIProgram struct {
	mock.Mock
}

func (m *MockTUIProgram) Send(msg tea.Msg) {
	m.Called(msg)
}

type MockProgressBar struct {
	mock.Mock
}

func (m *MockProgressBar) Set(num int) error {
	args := m.Called(num)
	return args.Error(0)
}

func (m *MockProgressBar) ChangeMax(newMax int) {
	m.Called(newMax)
}

func (m *MockProgressBar) Describe(description string) {
	m.Called(description)
}

func (m *MockProgressBar) Finish() error {
	args := m.Called()
	return args.Error(0)
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// --- Test Suite ---

func TestCLIHooks_TUIForwardsEveryEvent(t *testing.T) {
	mockTUI := new(MockTUIProgram)
	mockTUI.On("Send", mock.Anything).Return()
	logBuf := &bytes.Buffer{}
	h := NewCLIHooks(newLogger(logBuf), true, false, mockTUI, nil)

	records := []auditor.IssueRecord{{NodeID: "1"}}
	require.NoError(t, h.OnInit(auditor.InitEvent{TotalPages: 2}))
	require.NoError(t, h.OnSearchStart("Scanning all pages..."))
	require.NoError(t, h.OnSearchProgress(auditor.ProgressEvent{Processed: 100, Total: 400}))
	require.NoError(t, h.OnSearchComplete(auditor.SearchResult{Problems: records}))
	require.NoError(t, h.OnProblemsUpdated(records, auditor.Analysis{Total: 1}))
	require.NoError(t, h.OnReportReady(auditor.Report{TotalProblems: 1}))
	require.NoError(t, h.OnNotice(auditor.NoticeSuccess, "Detached 1 instance(s)"))

	mockTUI.AssertCalled(t, "Send", InitMsg{Event: auditor.InitEvent{TotalPages: 2}})
	mockTUI.AssertCalled(t, "Send", SearchStartMsg{Message: "Scanning all pages..."})
	mockTUI.AssertCalled(t, "Send", SearchProgressMsg{Event: auditor.ProgressEvent{Processed: 100, Total: 400}})
	mockTUI.AssertCalled(t, "Send", NoticeMsg{Level: auditor.NoticeSuccess, Message: "Detached 1 instance(s)"})
	mockTUI.AssertNumberOfCalls(t, "Send", 7)
	assert.Empty(t, logBuf.String())
}

func TestCLIHooks_TUIWithoutProgramFallsBackToLogs(t *testing.T) {
	logBuf := &bytes.Buffer{}
	h := NewCLIHooks(newLogger(logBuf), true, false, nil, nil)

	require.NoError(t, h.OnSearchStart("Scanning page \"Home\"..."))

	assert.Contains(t, logBuf.String(), `msg="Scanning page \"Home\"..."`)
}

func TestCLIHooks_ProgressBarMode(t *testing.T) {
	bar := new(MockProgressBar)
	bar.On("Describe", "Scanning all pages...").Return().Once()
	bar.On("ChangeMax", 400).Return().Twice()
	bar.On("Set", 200).Return(nil).Once()
	bar.On("Set", 400).Return(nil).Once()
	bar.On("Finish").Return(nil).Once()
	logBuf := &bytes.Buffer{}
	h := NewCLIHooks(newLogger(logBuf), false, false, nil, bar)
	out := &bytes.Buffer{}
	h.out = out

	require.NoError(t, h.OnSearchStart("Scanning all pages..."))
	require.NoError(t, h.OnSearchProgress(auditor.ProgressEvent{Processed: 200, Total: 400}))
	require.NoError(t, h.OnSearchProgress(auditor.ProgressEvent{Processed: 400, Total: 400}))
	require.NoError(t, h.OnSearchComplete(auditor.SearchResult{}))
	require.NoError(t, h.OnNotice(auditor.NoticeInfo, "Found 3 problem(s) in all pages"))

	bar.AssertExpectations(t)
	assert.Equal(t, "\n", out.String(), "one newline after the bar finishes")
	assert.Contains(t, logBuf.String(), "Found 3 problem(s) in all pages")
	assert.NotContains(t, logBuf.String(), "Scanning all pages...", "the bar shows the start message")
}

func TestCLIHooks_NoticeBeforeStartLeavesBarAlone(t *testing.T) {
	bar := new(MockProgressBar)
	logBuf := &bytes.Buffer{}
	h := NewCLIHooks(newLogger(logBuf), false, false, nil, bar)

	require.NoError(t, h.OnNotice(auditor.NoticeInfo, "Nothing is selected. Scanning the whole current page."))

	bar.AssertNotCalled(t, "Finish")
	assert.Contains(t, logBuf.String(), "Nothing is selected")
}

func TestCLIHooks_VerboseMode(t *testing.T) {
	bar := new(MockProgressBar)
	logBuf := &bytes.Buffer{}
	h := NewCLIHooks(newLogger(logBuf), false, true, nil, bar)

	require.NoError(t, h.OnInit(auditor.InitEvent{CurrentPage: "Home", TotalPages: 3}))
	require.NoError(t, h.OnSearchStart("Scanning page \"Home\"..."))
	require.NoError(t, h.OnSearchProgress(auditor.ProgressEvent{Message: "Scanning... 100/250", Processed: 100, Total: 250}))
	require.NoError(t, h.OnProblemsUpdated(nil, auditor.Analysis{Total: 4}))
	require.NoError(t, h.OnNotice(auditor.NoticeError, "An error occurred during the search"))

	bar.AssertNotCalled(t, "Describe", mock.Anything)
	bar.AssertNotCalled(t, "Set", mock.Anything)
	logs := logBuf.String()
	assert.Contains(t, logs, `msg="Document opened" currentPage=Home pages=3`)
	assert.Contains(t, logs, "processed=100 total=250")
	assert.Contains(t, logs, "remaining=4")
	assert.Contains(t, logs, `level=ERROR msg="An error occurred during the search" notice=error`)
}

func TestCLIHooks_QuietModeSkipsProgress(t *testing.T) {
	logBuf := &bytes.Buffer{}
	h := NewCLIHooks(newLogger(logBuf), false, false, nil, nil)

	require.NoError(t, h.OnSearchProgress(auditor.ProgressEvent{Message: "Scanning... 100/250"}))

	assert.Empty(t, logBuf.String())
}

// --- END OF FINAL REVISED FILE internal/cli/hooks/hooks_test.go ---
