// --- START OF FINAL REVISED FILE pkg/auditor/helpers_test.go ---
package auditor_test

import (
	"io"
	"log/slog"

	"github.com/stackvity/template-auditor/pkg/auditor"
)

func discardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

func recordIDs(records []auditor.IssueRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.NodeID)
	}
	return ids
}

func kindsByID(records []auditor.IssueRecord) map[string]auditor.IssueKind {
	out := make(map[string]auditor.IssueKind, len(records))
	for _, r := range records {
		out[r.NodeID] = r.IssueKind
	}
	return out
}

// --- END OF FINAL REVISED FILE pkg/auditor/helpers_test.go ---
