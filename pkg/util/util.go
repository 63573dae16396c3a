// --- START OF FINAL REVISED FILE pkg/util/util.go ---
package util

import (
	"fmt"
	"path"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// PageMatcher matches page names against gitignore-style patterns.
// Page names are treated as slash separated paths, so "archive/*" matches "archive/2023".
type PageMatcher struct {
	patterns []string
	compiled *ignore.GitIgnore
}

// NewPageMatcher compiles patterns. Blank lines and comments are ignored like in a .gitignore file.
func NewPageMatcher(patterns []string) (*PageMatcher, error) {
	lines := make([]string, 0, len(patterns))
	for _, p := range patterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// go-gitignore silently drops malformed globs; surface them instead.
		if _, err := path.Match(strings.TrimPrefix(strings.TrimPrefix(trimmed, "!"), "/"), ""); err != nil {
			return nil, fmt.Errorf("invalid page pattern %q: %w", p, err)
		}
		lines = append(lines, trimmed)
	}
	return &PageMatcher{
		patterns: lines,
		compiled: ignore.CompileIgnoreLines(lines...),
	}, nil
}

// MatchesPage reports whether name is excluded by the patterns.
func (m *PageMatcher) MatchesPage(name string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return m.compiled.MatchesPath(name)
}

// Patterns returns the compiled pattern lines.
func (m *PageMatcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// --- END OF FINAL REVISED FILE pkg/util/util.go ---
