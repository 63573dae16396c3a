// --- START OF FINAL REVISED FILE pkg/auditor/progress.go ---
package auditor

import (
	"context"
	"fmt"
	"runtime"
)

// ProgressReporter counts processed nodes and emits an event every interval nodes.
// At each boundary the scan yields and checks its context.
// A nil *ProgressReporter is valid and only checks nothing.
type ProgressReporter struct {
	interval  int
	total     int
	processed int
	emit      func(ProgressEvent)
}

// NewProgressReporter creates a reporter for a scan of total nodes.
func NewProgressReporter(interval, total int, emit func(ProgressEvent)) *ProgressReporter {
	if interval <= 0 {
		interval = DefaultPageProgressInterval
	}
	if emit == nil {
		emit = func(ProgressEvent) {}
	}
	return &ProgressReporter{interval: interval, total: total, emit: emit}
}

// Tick records one processed node. It returns the context error at a boundary, if any.
func (p *ProgressReporter) Tick(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.processed++
	if p.processed%p.interval != 0 {
		return nil
	}
	p.emit(p.event())
	runtime.Gosched()
	return ctx.Err()
}

// Processed returns the number of nodes seen so far.
func (p *ProgressReporter) Processed() int {
	if p == nil {
		return 0
	}
	return p.processed
}

func (p *ProgressReporter) event() ProgressEvent {
	total := p.total
	if total < p.processed {
		total = p.processed
	}
	ratio := 0.0
	if total > 0 {
		ratio = float64(p.processed) / float64(total)
	}
	return ProgressEvent{
		Message:   fmt.Sprintf("Scanning... %d/%d", p.processed, total),
		Processed: p.processed,
		Total:     total,
		Progress:  ratio,
	}
}

// --- END OF FINAL REVISED FILE pkg/auditor/progress.go ---
