// --- START OF FINAL REVISED FILE pkg/auditor/constants.go ---
package auditor

import "time"

// Constants defining default values for configuration options.
// These are used when setting up Viper defaults in the configuration loading process.
const (
	// DefaultDriftThreshold is the number of distinct overridden properties an
	// instance may carry before it counts as drifted. Exactly this many is not drift.
	DefaultDriftThreshold = 10
	// DefaultPageProgressInterval is K for single page and selection scans.
	DefaultPageProgressInterval = 100
	// DefaultAllPagesProgressInterval is K for multi page scans.
	DefaultAllPagesProgressInterval = 200
	DefaultScope                    = ScopeCurrentPage
	DefaultAutoSelect               = true
	DefaultTuiEnabled               = true
	DefaultVerbose                  = false
	DefaultOutputFormat             = OutputFormatText
	DefaultGitMetadataEnabled       = false
	DefaultWriteBack                = false
	// DefaultWatchDebounceString is the default debounce duration string for watch mode.
	DefaultWatchDebounceString   = "300ms"
	DefaultWatchDebounceDuration = 300 * time.Millisecond
)

// Default display names for nodes the host leaves unnamed.
const (
	UnnamedNode         = "Unnamed"
	UnnamedComponent    = "Unnamed Component"
	UnnamedComponentSet = "Unnamed Component Set"
)

// ReportSchemaVersion indicates the version of the exported report structure.
const ReportSchemaVersion = "1.0"

// --- END OF FINAL REVISED FILE pkg/auditor/constants.go ---
