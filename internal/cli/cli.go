// --- START OF FINAL REVISED FILE internal/cli/cli.go ---
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/stackvity/template-auditor/internal/cli/git"
	"github.com/stackvity/template-auditor/internal/cli/hooks"
	"github.com/stackvity/template-auditor/internal/cli/ui"
	"github.com/stackvity/template-auditor/internal/cli/watch"
	"github.com/stackvity/template-auditor/pkg/auditor"
	"github.com/stackvity/template-auditor/pkg/auditor/document"
	"github.com/stackvity/template-auditor/pkg/auditor/format"
)

// intentBuffer is the capacity of the intent queue between the panel and the engine.
const intentBuffer = 16

// Run orchestrates the main application logic after configuration loading.
// It loads the snapshot named by opts and runs the auditor interactively, once,
// or in watch mode.
func Run(ctx context.Context, opts auditor.Options, logger *slog.Logger) error {
	if opts.GitMetadataEnabled && opts.GitClient == nil {
		opts.GitClient = git.NewGoGitClient(opts.Logger)
	}

	switch {
	case opts.TuiEnabled:
		return runInteractive(ctx, opts, logger)
	case opts.WatchMode:
		return runWatch(ctx, opts, logger, os.Stdout)
	default:
		_, err := runOnce(ctx, opts, logger, os.Stdout, os.Stderr, stderrProgressBar(opts))
		return err
	}
}

// loadDocument reads the input snapshot.
func loadDocument(opts auditor.Options) (*document.Document, format.Format, error) {
	loader, err := document.NewLoader(opts.DefaultEncoding, nil, opts.Logger)
	if err != nil {
		return nil, "", err
	}
	return loader.Load(opts.InputPath)
}

// runOnce scans opts.Scope, applies the configured batch actions, prints the
// report to out and a colored summary to errOut. bar may be nil.
func runOnce(ctx context.Context, opts auditor.Options, logger *slog.Logger, out, errOut io.Writer, bar hooks.ProgressBar) (auditor.Report, error) {
	doc, f, err := loadDocument(opts)
	if err != nil {
		return auditor.Report{}, err
	}

	opts.EventHooks = hooks.NewCLIHooks(logger, false, opts.Verbose, nil, bar)
	engine, err := auditor.NewEngine(doc, opts)
	if err != nil {
		return auditor.Report{}, err
	}
	engine.Init()

	if _, err := engine.Search(ctx, opts.Scope); err != nil {
		return auditor.Report{}, err
	}
	if err := applyActions(engine, opts.Actions); err != nil {
		return auditor.Report{}, err
	}

	report, err := engine.ExportReport()
	if err != nil {
		return auditor.Report{}, err
	}
	if err := auditor.WriteReport(out, report, opts.OutputFormat, opts.ReportTemplate); err != nil {
		return report, err
	}
	printSummary(errOut, report.Analysis, scopeLabel(report.Scope))

	if err := writeBack(opts, doc, f, logger); err != nil {
		return report, err
	}
	return report, nil
}

// applyActions runs the batch actions selected in cfg against the session problem set.
func applyActions(engine *auditor.Engine, cfg auditor.ActionsConfig) error {
	if cfg.FixMissing {
		if _, err := engine.FixMissing(nil); err != nil {
			return err
		}
	}
	if cfg.FixUnused {
		if _, err := engine.FixUnused(nil); err != nil {
			return err
		}
	}
	if cfg.SelectAll {
		if _, err := engine.SelectAllCurrent(nil); err != nil {
			return err
		}
	}
	return nil
}

// writeBack saves a remediated document when write-back is enabled.
func writeBack(opts auditor.Options, doc *document.Document, f format.Format, logger *slog.Logger) error {
	if !opts.WriteBack {
		return nil
	}
	if !doc.Dirty() {
		logger.Debug("Document unchanged, nothing to write", slog.String("path", opts.OutputPath))
		return nil
	}
	if err := document.Save(opts.OutputPath, doc.Snapshot(), f); err != nil {
		return fmt.Errorf("saving remediated snapshot: %w", err)
	}
	doc.MarkClean()
	logger.Info("Remediated snapshot written", slog.String("path", opts.OutputPath), slog.String("format", string(f)))
	return nil
}

// runWatch runs once and then again every time the input snapshot changes.
func runWatch(ctx context.Context, opts auditor.Options, logger *slog.Logger, out io.Writer) error {
	w, err := watch.New(opts.InputPath, opts.WatchDebounce, opts.Logger)
	if err != nil {
		return err
	}
	defer w.Close()

	scan := func(ctx context.Context) error {
		_, err := runOnce(ctx, opts, logger, out, os.Stderr, nil)
		return err
	}
	if err := scan(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logger.Error("Initial scan failed", slog.Any("error", err))
	}
	logger.Info("Watching for changes", slog.String("path", opts.InputPath))
	return w.Run(ctx, scan)
}

// runInteractive runs the engine against the terminal panel until the user quits.
func runInteractive(ctx context.Context, opts auditor.Options, logger *slog.Logger) error {
	doc, f, err := loadDocument(opts)
	if err != nil {
		return err
	}

	intents := make(chan auditor.Intent, intentBuffer)
	model := ui.NewModel(intents, opts.AppVersion)
	prog := tea.NewProgram(&model, tea.WithAltScreen(), tea.WithContext(ctx))

	opts.EventHooks = hooks.NewCLIHooks(logger, true, opts.Verbose, prog, nil)
	engine, err := auditor.NewEngine(doc, opts)
	if err != nil {
		return err
	}
	for _, in := range startupIntents(opts) {
		intents <- in
	}

	engineCtx, stopEngine := context.WithCancel(ctx)
	defer stopEngine()

	g, gctx := errgroup.WithContext(engineCtx)
	g.Go(func() error {
		err := engine.Run(gctx, intents)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		_, err := prog.Run()
		engine.Cancel()
		stopEngine()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printSummary(os.Stderr, engine.Session().Analysis(), scopeLabel(engine.Session().Scope()))
	return writeBack(opts, doc, f, logger)
}

// startupIntents queues the initial scan and any configured batch actions.
func startupIntents(opts auditor.Options) []auditor.Intent {
	out := []auditor.Intent{{Type: scanIntent(opts.Scope)}}
	if opts.Actions.FixMissing {
		out = append(out, auditor.Intent{Type: auditor.IntentFixMissing})
	}
	if opts.Actions.FixUnused {
		out = append(out, auditor.Intent{Type: auditor.IntentFixUnused})
	}
	if opts.Actions.SelectAll {
		out = append(out, auditor.Intent{Type: auditor.IntentSelectAllCurrent})
	}
	if opts.Actions.Export {
		out = append(out, auditor.Intent{Type: auditor.IntentExportReport})
	}
	return out
}

func scanIntent(scope auditor.Scope) auditor.IntentType {
	switch scope {
	case auditor.ScopeSelected:
		return auditor.IntentSearchSelected
	case auditor.ScopeAllPages:
		return auditor.IntentSearchAll
	default:
		return auditor.IntentSearchPage
	}
}

func scopeLabel(scope auditor.Scope) string {
	switch scope {
	case auditor.ScopeSelected:
		return "the selection"
	case auditor.ScopeAllPages:
		return "all pages"
	default:
		return "the current page"
	}
}

// printSummary writes a one-glance summary colored by the worst severity found.
func printSummary(w io.Writer, a auditor.Analysis, label string) {
	c := color.New(color.FgGreen, color.Bold)
	switch {
	case a.BySeverity.High > 0:
		c = color.New(color.FgRed, color.Bold)
	case a.BySeverity.Medium > 0:
		c = color.New(color.FgYellow, color.Bold)
	case a.Total > 0:
		c = color.New(color.FgCyan)
	}
	_, _ = c.Fprintln(w, a.Summary(label))
}

// stderrProgressBar returns a progress bar on an interactive stderr, or nil.
func stderrProgressBar(opts auditor.Options) hooks.ProgressBar {
	if opts.Verbose || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

// --- END OF FINAL REVISED FILE internal/cli/cli.go ---
