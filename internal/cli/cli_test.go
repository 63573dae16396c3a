package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stackvity/template-auditor/internal/testutil"
	"github.com/stackvity/template-auditor/pkg/auditor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardSnapshot = `{
  "name": "Board",
  "pages": [
    {"id": "p1", "name": "Home", "children": [
      {"id": "c1", "name": "Card", "type": "component"},
      {"id": "i1", "name": "Card", "type": "instance", "main": "c1"},
      {"id": "i2", "name": "Ghost", "type": "instance", "main": "gone"},
      {"id": "c2", "name": "Orphan", "type": "component"}
    ]}
  ]
}`

func writeSnapshot(t *testing.T) string {
	return testutil.WriteSnapshot(t, "board.json", boardSnapshot)
}

func testOptions(path string, format auditor.OutputFormat) auditor.Options {
	return auditor.Options{
		InputPath:    path,
		OutputPath:   path,
		Scope:        auditor.ScopeCurrentPage,
		OutputFormat: format,
		Logger:       slog.NewTextHandler(io.Discard, nil),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce_JSONReport(t *testing.T) {
	path := writeSnapshot(t)
	var out, errOut bytes.Buffer

	report, err := runOnce(t.Context(), testOptions(path, auditor.OutputFormatJSON), testLogger(), &out, &errOut, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalProblems)
	assert.Equal(t, 1, report.Analysis.BySeverity.High)
	assert.Equal(t, 1, report.Analysis.BySeverity.Low)

	var decoded auditor.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "Board", decoded.FileName)
	assert.Equal(t, auditor.ScopeCurrentPage, decoded.Scope)
	assert.Len(t, decoded.Problems, 2)

	assert.Contains(t, errOut.String(), "Found 2 problem(s) in the current page")
}

func TestRunOnce_TextReport(t *testing.T) {
	path := writeSnapshot(t)
	var out, errOut bytes.Buffer

	_, err := runOnce(t.Context(), testOptions(path, auditor.OutputFormatText), testLogger(), &out, &errOut, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Ghost")
	assert.Contains(t, out.String(), "Orphan")
}

func TestRunOnce_ActionsWithoutWriteLeaveFileAlone(t *testing.T) {
	path := writeSnapshot(t)
	opts := testOptions(path, auditor.OutputFormatJSON)
	opts.Actions = auditor.ActionsConfig{FixMissing: true, FixUnused: true}

	report, err := runOnce(t.Context(), opts, testLogger(), io.Discard, io.Discard, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalProblems, "remediated records leave the problem set")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, boardSnapshot, string(content))
}

func TestRunOnce_WriteBack(t *testing.T) {
	path := writeSnapshot(t)
	outPath := filepath.Join(filepath.Dir(path), "fixed.json")

	opts := testOptions(path, auditor.OutputFormatJSON)
	opts.OutputPath = outPath
	opts.WriteBack = true
	opts.Actions = auditor.ActionsConfig{FixMissing: true}

	_, err := runOnce(t.Context(), opts, testLogger(), io.Discard, io.Discard, nil)
	require.NoError(t, err)
	require.FileExists(t, outPath)

	rescan, err := runOnce(t.Context(), testOptions(outPath, auditor.OutputFormatJSON), testLogger(), io.Discard, io.Discard, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rescan.Analysis.BySeverity.High)
	assert.Equal(t, 1, rescan.TotalProblems)
	assert.Equal(t, "c2", rescan.Problems[0].NodeID)
}

func TestRunOnce_WriteBackSkipsCleanDocument(t *testing.T) {
	path := writeSnapshot(t)
	outPath := filepath.Join(filepath.Dir(path), "fixed.json")

	opts := testOptions(path, auditor.OutputFormatJSON)
	opts.OutputPath = outPath
	opts.WriteBack = true

	_, err := runOnce(t.Context(), opts, testLogger(), io.Discard, io.Discard, nil)
	require.NoError(t, err)
	assert.NoFileExists(t, outPath)
}

func TestRunOnce_LoadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	_, err := runOnce(t.Context(), testOptions(missing, auditor.OutputFormatJSON), testLogger(), io.Discard, io.Discard, nil)
	require.Error(t, err)

	broken := testutil.WriteSnapshot(t, "broken.json", `{"pages": [`)
	_, err = runOnce(t.Context(), testOptions(broken, auditor.OutputFormatJSON), testLogger(), io.Discard, io.Discard, nil)
	require.Error(t, err)
}

func TestStartupIntents(t *testing.T) {
	opts := auditor.Options{Scope: auditor.ScopeAllPages}
	assert.Equal(t, []auditor.Intent{{Type: auditor.IntentSearchAll}}, startupIntents(opts))

	opts.Actions = auditor.ActionsConfig{FixMissing: true, FixUnused: true, SelectAll: true, Export: true}
	got := startupIntents(opts)
	types := make([]auditor.IntentType, len(got))
	for i, in := range got {
		types[i] = in.Type
	}
	assert.Equal(t, []auditor.IntentType{
		auditor.IntentSearchAll,
		auditor.IntentFixMissing,
		auditor.IntentFixUnused,
		auditor.IntentSelectAllCurrent,
		auditor.IntentExportReport,
	}, types)
}

func TestScanIntent(t *testing.T) {
	assert.Equal(t, auditor.IntentSearchSelected, scanIntent(auditor.ScopeSelected))
	assert.Equal(t, auditor.IntentSearchPage, scanIntent(auditor.ScopeCurrentPage))
	assert.Equal(t, auditor.IntentSearchAll, scanIntent(auditor.ScopeAllPages))
	assert.Equal(t, auditor.IntentSearchPage, scanIntent(""))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, auditor.Analysis{}, "all pages")
	assert.Contains(t, buf.String(), "No problems found in all pages")

	buf.Reset()
	records := []auditor.IssueRecord{{NodeID: "1", IssueKind: auditor.IssueUnusedTemplate, Severity: auditor.SeverityLow}}
	printSummary(&buf, auditor.Analyze(records), "the selection")
	assert.Contains(t, buf.String(), "Found 1 problem(s) in the selection")
}
