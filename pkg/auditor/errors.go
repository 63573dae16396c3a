// --- START OF FINAL REVISED FILE pkg/auditor/errors.go ---
package auditor

import "errors"

// --- Exported Error Variables ---
// Library users can check against these using errors.Is.

var (
	// ErrConfigValidation indicates that the provided Options failed validation in NewEngine.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrScanInProgress is returned when a scan or mutation is requested while a scan is running.
	ErrScanInProgress = errors.New("search already in progress")

	// ErrScanFailed wraps a fault that escaped every inner guard of a scan.
	// The busy flag is already cleared when this is returned.
	ErrScanFailed = errors.New("search failed")

	// ErrEngineClosed is returned for intents received after a cancel.
	ErrEngineClosed = errors.New("engine closed")

	// ErrNodeNotFound indicates a record points at a node the document no longer holds.
	// Remediation treats it as a skip, not a failure.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeOffPage indicates a node exists but sits outside every page, e.g. in a library.
	ErrNodeOffPage = errors.New("node is not on any page")

	// ErrWrongNodeKind indicates a node no longer has the kind an action requires.
	ErrWrongNodeKind = errors.New("node kind not applicable")

	// ErrNoCurrentPage indicates the host reported no active page.
	ErrNoCurrentPage = errors.New("no current page")

	// ErrUnknownIntent is returned by Handle for intent types it does not know.
	ErrUnknownIntent = errors.New("unknown intent")
)

// --- END OF FINAL REVISED FILE pkg/auditor/errors.go ---
