// --- START OF FINAL REVISED FILE cmd/template-auditor/root.go ---
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stackvity/template-auditor/internal/cli"
	"github.com/stackvity/template-auditor/internal/cli/config"
	"github.com/stackvity/template-auditor/pkg/auditor"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// newRootCmd builds the root command with its flags.
func newRootCmd() *cobra.Command {
	var cfgFile, profileName string

	cmd := &cobra.Command{
		Use:   "template-auditor -i <snapshot>",
		Short: "Audits a design document for component integrity problems.",
		Long: `template-auditor scans a design document snapshot for instances whose
main component is missing or remote, instances that drifted from their main
component, and components or component sets nothing uses.

It features:
  - Scans of the selection, the current page or all pages.
  - Batch remediation: detach broken instances, delete unused components.
  - Reports as text, JSON or YAML, optionally with Git provenance.
  - Watch mode that re-scans when the snapshot changes.
  - An interactive Terminal UI (TUI) for browsing and fixing problems.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			opts, logger, err := config.LoadAndValidate(cfgFile, profileName, version, cmd.Flags())
			if err != nil {
				return err
			}

			// The panel needs a terminal on both ends.
			if opts.TuiEnabled && (!term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stderr.Fd()))) {
				logger.Debug("No terminal detected, disabling TUI")
				opts.TuiEnabled = false
			}

			return cli.Run(ctx, opts, logger)
		},
	}
	cmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")

	// Persistent flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is search standard locations like ., $HOME/.config/template-auditor/)")
	cmd.PersistentFlags().StringVar(&profileName, "profile", "", "Name of configuration profile to use")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) logging output (disables TUI)")
	cmd.PersistentFlags().StringP("input", "i", "", "Required. Design document snapshot (.json, .yaml, .toml, .msgpack).")
	_ = cmd.MarkPersistentFlagRequired("input")

	// Scan flags
	cmd.Flags().StringP("scope", "s", string(auditor.DefaultScope), `Scan scope ("selected", "current-page", "all-pages")`)
	cmd.Flags().Int("drift-threshold", auditor.DefaultDriftThreshold, "Number of overridden properties an instance may carry before it counts as drifted")
	cmd.Flags().Int("page-interval", auditor.DefaultPageProgressInterval, "Nodes between progress events for selection and page scans")
	cmd.Flags().Int("all-interval", auditor.DefaultAllPagesProgressInterval, "Nodes between progress events for all-pages scans")
	cmd.Flags().StringArray("ignore-page", []string{}, "Gitignore-style page name patterns skipped by all-pages scans (can be specified multiple times)")
	cmd.Flags().String("default-encoding", "", "Encoding assumed for snapshots without a BOM or charset hint (e.g. windows-1252)")
	cmd.Flags().Bool("auto-select", auditor.DefaultAutoSelect, "Select current-page problem nodes after a scan")
	cmd.Flags().Bool("no-tui", false, "Disable interactive Terminal UI even if in a TTY")

	// Remediation flags
	cmd.Flags().Bool("fix-missing", false, "Detach instances whose main component is missing")
	cmd.Flags().Bool("fix-unused", false, "Delete unused components and component sets")
	cmd.Flags().Bool("select-all", false, "Select every problem node on the current page")
	cmd.Flags().BoolP("write", "w", auditor.DefaultWriteBack, "Write the remediated snapshot back to disk")
	cmd.Flags().StringP("output", "o", "", "Where --write saves the snapshot (defaults to the input file)")

	// Report flags
	cmd.Flags().Bool("export", false, "Export the detailed report after the initial scan in the TUI")
	cmd.Flags().String("output-format", string(auditor.DefaultOutputFormat), `Report format ("text", "json", "yaml")`)
	cmd.Flags().String("template", "", "Path to a custom Go template for the text report")
	cmd.Flags().Bool("git-metadata", auditor.DefaultGitMetadataEnabled, "Include the last Git commit touching the snapshot in the report")

	// Workflow flags
	cmd.Flags().Bool("watch", false, "Re-scan whenever the snapshot changes (disables TUI)")
	cmd.Flags().String("watch-debounce", auditor.DefaultWatchDebounceString, "Watch debounce duration string (e.g., '300ms', '1s')")

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// --- END OF FINAL REVISED FILE cmd/template-auditor/root.go ---
