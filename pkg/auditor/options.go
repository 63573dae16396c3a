// --- START OF FINAL REVISED FILE pkg/auditor/options.go ---
package auditor

import (
	"log/slog"
	"text/template"
	"time"
)

// ProgressConfig sets how many nodes pass between progress events.
type ProgressConfig struct {
	PageInterval     int `mapstructure:"pageInterval"`
	AllPagesInterval int `mapstructure:"allPagesInterval"`
}

// ActionsConfig lists the batch actions the CLI runs after a non-interactive scan.
type ActionsConfig struct {
	FixMissing bool `mapstructure:"fixMissing"`
	FixUnused  bool `mapstructure:"fixUnused"`
	SelectAll  bool `mapstructure:"selectAll"`
	Export     bool `mapstructure:"export"`
}

// WatchConfig holds settings related to watch mode.
type WatchConfig struct {
	Debounce string `mapstructure:"debounce"`
}

// --- Events ---

// InitEvent describes the document when the engine starts.
type InitEvent struct {
	HasSelection   bool   `json:"hasSelection"`
	SelectionCount int    `json:"selectionCount"`
	CurrentPage    string `json:"currentPage"`
	TotalPages     int    `json:"totalPages"`
}

// ProgressEvent is the advisory progress of a running scan.
type ProgressEvent struct {
	Message   string  `json:"message"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Progress  float64 `json:"progress"`
}

// SearchResult is delivered when a scan completes.
type SearchResult struct {
	Problems         []IssueRecord `json:"problems"`
	Analysis         Analysis      `json:"analysis"`
	Scope            Scope         `json:"scope"`
	CurrentPageCount int           `json:"currentPageCount"`
}

// Hooks defines callbacks for engine events.
// The engine ignores hook errors beyond logging them.
type Hooks interface {
	OnInit(event InitEvent) error
	OnSearchStart(message string) error
	OnSearchProgress(event ProgressEvent) error
	OnSearchComplete(result SearchResult) error
	OnProblemsUpdated(problems []IssueRecord, analysis Analysis) error
	OnReportReady(report Report) error
	OnNotice(level NoticeLevel, message string) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

func (h *NoOpHooks) OnInit(event InitEvent) error { return nil }
func (h *NoOpHooks) OnSearchStart(message string) error { return nil }
func (h *NoOpHooks) OnSearchProgress(event ProgressEvent) error { return nil }
func (h *NoOpHooks) OnSearchComplete(result SearchResult) error { return nil }
func (h *NoOpHooks) OnProblemsUpdated(problems []IssueRecord, analysis Analysis) error {
	return nil
}
func (h *NoOpHooks) OnReportReady(report Report) error { return nil }
func (h *NoOpHooks) OnNotice(level NoticeLevel, message string) error { return nil }

// GitClient retrieves provenance for the scanned document file.
type GitClient interface {
	GetFileMetadata(repoPath, filePath string) (map[string]string, error)
}

// PageFilter decides whether an all-pages scan skips a page by name.
type PageFilter interface {
	MatchesPage(name string) bool
}

// Options holds all configuration for an Engine.
type Options struct {
	// --- Core Paths ---
	InputPath  string `mapstructure:"input"`      // Snapshot file the CLI loads
	OutputPath string `mapstructure:"outputPath"` // Where a remediated snapshot is written; defaults to InputPath

	// --- Application Info ---
	AppVersion     string `mapstructure:"-"`
	ConfigFilePath string `mapstructure:"-"`
	ProfileName    string `mapstructure:"-"`

	// --- Behavior & Control ---
	Verbose    bool  `mapstructure:"verbose"`
	TuiEnabled bool  `mapstructure:"tuiEnabled"`
	Scope      Scope `mapstructure:"scope"`
	AutoSelect bool  `mapstructure:"autoSelect"` // Select current page problems after a scan

	// --- Detection ---
	DriftThreshold int            `mapstructure:"driftThreshold"`
	Progress       ProgressConfig `mapstructure:"progress"`
	IgnorePages    []string       `mapstructure:"ignorePages"` // gitignore-style page name patterns

	// --- Input Handling ---
	DefaultEncoding string `mapstructure:"defaultEncoding"`

	// --- Output & Remediation ---
	OutputFormat       OutputFormat       `mapstructure:"outputFormat"`
	ReportTemplatePath string             `mapstructure:"reportTemplate"`
	ReportTemplate     *template.Template `mapstructure:"-"` // nil uses the embedded default
	Actions            ActionsConfig      `mapstructure:"actions"`
	WriteBack          bool               `mapstructure:"write"`

	// --- Workflow Features ---
	WatchMode          bool          `mapstructure:"-"`
	WatchDebounce      time.Duration `mapstructure:"-"`
	WatchConfig        WatchConfig   `mapstructure:"watch"`
	GitMetadataEnabled bool          `mapstructure:"gitMetadata"`

	// --- Injected Dependencies ---
	EventHooks Hooks        `mapstructure:"-"`
	Logger     slog.Handler `mapstructure:"-"` // Required
	GitClient  GitClient    `mapstructure:"-"`
	PageFilter PageFilter   `mapstructure:"-"` // Built from IgnorePages when nil
}

// --- END OF FINAL REVISED FILE pkg/auditor/options.go ---
