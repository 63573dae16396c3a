// --- START OF FINAL REVISED FILE pkg/auditor/scope.go ---
package auditor

import (
	"fmt"
	"log/slog"
)

// Resolution is the set of roots a scan walks.
// Exactly one of Roots (subtree mode) or Pages (flat mode) is populated.
type Resolution struct {
	Requested Scope
	Effective Scope
	Roots     []Node
	Pages     []Page
	// PageName stamps records found in subtree mode.
	PageName string
	// FellBack is set when an empty selection was widened to the current page.
	FellBack bool
	// Interval is the progress interval that applies to this scope.
	Interval int
}

// ScopeResolver turns a requested scope into walker input.
type ScopeResolver struct {
	doc      Document
	filter   PageFilter
	progress ProgressConfig
	logger   *slog.Logger
}

// NewScopeResolver creates a resolver over doc. filter may be nil.
func NewScopeResolver(doc Document, filter PageFilter, progress ProgressConfig, loggerHandler slog.Handler) *ScopeResolver {
	if progress.PageInterval <= 0 {
		progress.PageInterval = DefaultPageProgressInterval
	}
	if progress.AllPagesInterval <= 0 {
		progress.AllPagesInterval = DefaultAllPagesProgressInterval
	}
	return &ScopeResolver{
		doc:      doc,
		filter:   filter,
		progress: progress,
		logger:   slog.New(loggerHandler).With(slog.String("component", "scope")),
	}
}

// Resolve enumerates the roots for scope. An empty selection falls back to the current page.
func (r *ScopeResolver) Resolve(scope Scope) (Resolution, error) {
	switch scope {
	case ScopeSelected:
		selection := r.doc.Selection()
		if len(selection) == 0 {
			r.logger.Info("Selection is empty, scanning current page instead")
			res, err := r.currentPage()
			res.Requested = ScopeSelected
			res.FellBack = true
			return res, err
		}
		pageName := ""
		if page, ok := r.doc.CurrentPage(); ok {
			pageName = page.Name()
		}
		return Resolution{
			Requested: ScopeSelected,
			Effective: ScopeSelected,
			Roots:     append([]Node(nil), selection...),
			PageName:  pageName,
			Interval:  r.progress.PageInterval,
		}, nil
	case ScopeCurrentPage:
		return r.currentPage()
	case ScopeAllPages:
		return r.allPages()
	default:
		return Resolution{}, fmt.Errorf("%w: unknown scope %q", ErrConfigValidation, scope)
	}
}

func (r *ScopeResolver) currentPage() (Resolution, error) {
	page, ok := r.doc.CurrentPage()
	if !ok || page == nil {
		return Resolution{Requested: ScopeCurrentPage, Effective: ScopeCurrentPage}, ErrNoCurrentPage
	}
	return Resolution{
		Requested: ScopeCurrentPage,
		Effective: ScopeCurrentPage,
		Pages:     []Page{page},
		PageName:  page.Name(),
		Interval:  r.progress.PageInterval,
	}, nil
}

func (r *ScopeResolver) allPages() (Resolution, error) {
	pages, err := r.doc.Pages()
	if err != nil {
		return Resolution{Requested: ScopeAllPages, Effective: ScopeAllPages}, fmt.Errorf("listing pages: %w", err)
	}
	kept := make([]Page, 0, len(pages))
	for _, p := range pages {
		if p == nil {
			continue
		}
		if r.filter != nil {
			name := safeString(func() string { return p.Name() })
			if r.filter.MatchesPage(name) {
				r.logger.Debug("Page excluded by ignore pattern", slog.String("page", name))
				continue
			}
		}
		kept = append(kept, p)
	}
	return Resolution{
		Requested: ScopeAllPages,
		Effective: ScopeAllPages,
		Pages:     kept,
		Interval:  r.progress.AllPagesInterval,
	}, nil
}

// ParseScope accepts the canonical names plus the short CLI spellings.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "selected", "selection":
		return ScopeSelected, nil
	case "current-page", "page":
		return ScopeCurrentPage, nil
	case "all-pages", "all":
		return ScopeAllPages, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", ErrConfigValidation, s)
}

// --- END OF FINAL REVISED FILE pkg/auditor/scope.go ---
