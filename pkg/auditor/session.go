// --- START OF FINAL REVISED FILE pkg/auditor/session.go ---
package auditor

import (
	"sync"
	"time"
)

// Session holds the current problem set. It is replaced on every scan and
// filtered, never edited in place, after remediation.
type Session struct {
	mu        sync.RWMutex
	records   []IssueRecord
	scope     Scope
	scannedAt time.Time
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Replace swaps in the result of a new scan.
func (s *Session) Replace(records []IssueRecord, scope Scope) {
	cp := make([]IssueRecord, len(records))
	copy(cp, records)
	s.mu.Lock()
	s.records = cp
	s.scope = scope
	s.scannedAt = time.Now().UTC()
	s.mu.Unlock()
}

// Problems returns a copy of the current records in scan order.
func (s *Session) Problems() []IssueRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]IssueRecord, len(s.records))
	copy(cp, s.records)
	return cp
}

// Len returns the number of current records.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Scope returns the scope of the last scan.
func (s *Session) Scope() Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

// ScannedAt returns when the last scan completed. Zero before any scan.
func (s *Session) ScannedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scannedAt
}

// RemoveIDs drops every record whose node id is in ids and returns how many were dropped.
func (s *Session) RemoveIDs(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]IssueRecord, 0, len(s.records))
	for _, r := range s.records {
		if _, ok := drop[r.NodeID]; !ok {
			kept = append(kept, r)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	return removed
}

// Analysis recomputes the summary of the current records.
func (s *Session) Analysis() Analysis {
	return Analyze(s.Problems())
}

// Filter returns the records matching keep, in order.
func (s *Session) Filter(keep func(IssueRecord) bool) []IssueRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []IssueRecord
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// --- END OF FINAL REVISED FILE pkg/auditor/session.go ---
