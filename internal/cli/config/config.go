// --- START OF FINAL REVISED FILE internal/cli/config/config.go ---
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/template-auditor/pkg/auditor"
	tmplhelper "github.com/stackvity/template-auditor/pkg/auditor/template"
	"github.com/stackvity/template-auditor/pkg/util"
)

const (
	EnvPrefix         = "TEMPLATEAUDITOR"
	DefaultConfigName = "template-auditor"
)

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"input":            "input",
	"output":           "outputPath",
	"verbose":          "verbose",
	"scope":            "scope",
	"drift-threshold":  "driftThreshold",
	"page-interval":    "progress.pageInterval",
	"all-interval":     "progress.allPagesInterval",
	"auto-select":      "autoSelect",
	"ignore-page":      "ignorePages",
	"output-format":    "outputFormat",
	"template":         "reportTemplate",
	"fix-missing":      "actions.fixMissing",
	"fix-unused":       "actions.fixUnused",
	"select-all":       "actions.selectAll",
	"export":           "actions.export",
	"write":            "write",
	"watch-debounce":   "watch.debounce",
	"git-metadata":     "gitMetadata",
	"default-encoding": "defaultEncoding",
}

// LoadAndValidate loads configuration from all sources (defaults, file, profile, env, flags),
// validates the merged configuration, derives durations and paths, loads the report template
// and sets up the logger. Dependencies such as hooks and the git client are injected by the caller.
func LoadAndValidate(cfgFile, profileName, appVersion string, flags *pflag.FlagSet) (auditor.Options, *slog.Logger, error) {
	var opts auditor.Options
	v := viper.New()

	// Basic logger for errors raised before the final level is known
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			tempLogger.Error("Failed to get user home directory", slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			configFileUsed := cfgFile
			if configFileUsed == "" {
				configFileUsed = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", configFileUsed), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", configFileUsed, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	// --- Apply Profile ---
	opts.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		if !v.IsSet(profileKey) {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("profile '%s' not found in config file '%s'", profileName, configPath)
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		profileSettings := v.Sub(profileKey)
		if profileSettings == nil {
			err := fmt.Errorf("failed to load profile '%s' settings from config file '%s'", profileName, v.ConfigFileUsed())
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		if err := v.MergeConfigMap(profileSettings.AllSettings()); err != nil {
			tempLogger.Error("Error merging profile", slog.String("profile", profileName), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
		tempLogger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", name))
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			tempLogger.Error("Error binding flag", slog.String("flag", name), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", name, err)
		}
	}

	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Flags without a config key
	if flags.Changed("no-tui") {
		if noTui, _ := flags.GetBool("no-tui"); noTui {
			opts.TuiEnabled = false
		}
	}
	if flags.Changed("watch") {
		opts.WatchMode, _ = flags.GetBool("watch")
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	if err := loadReportTemplate(&opts, logger); err != nil {
		return opts, logger, err
	}

	// The debounce is kept as a string in the config file
	debounceDuration, err := time.ParseDuration(opts.WatchConfig.Debounce)
	if err != nil {
		if flags.Changed("watch-debounce") {
			err = fmt.Errorf("%w: invalid watch debounce duration '%s': %w", auditor.ErrConfigValidation, opts.WatchConfig.Debounce, err)
			logger.Error(err.Error(), slog.String("key", "watch.debounce"))
			return opts, logger, err
		}
		logger.Warn("Could not parse watch.debounce string, using default",
			slog.String("value", opts.WatchConfig.Debounce),
			slog.Duration("default", auditor.DefaultWatchDebounceDuration),
			slog.String("error", err.Error()))
		debounceDuration = auditor.DefaultWatchDebounceDuration
	}
	if debounceDuration < 0 {
		err = fmt.Errorf("%w: invalid negative watch debounce duration '%s' for key 'watch.debounce'", auditor.ErrConfigValidation, opts.WatchConfig.Debounce)
		logger.Error(err.Error(), slog.String("key", "watch.debounce"))
		return opts, logger, err
	}
	opts.WatchDebounce = debounceDuration

	if err := validateAndDeriveOptions(&opts, logger); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("profile", opts.ProfileName),
		slog.Bool("verbose", opts.Verbose),
		slog.String("logLevel", logLevel.String()),
	)
	return opts, logger, nil
}

// setDefaults establishes the default values for configuration options in Viper.
func setDefaults(v *viper.Viper) {
	// --- Behavior & Control ---
	v.SetDefault("verbose", auditor.DefaultVerbose)
	v.SetDefault("tuiEnabled", auditor.DefaultTuiEnabled)
	v.SetDefault("scope", string(auditor.DefaultScope))
	v.SetDefault("autoSelect", auditor.DefaultAutoSelect)

	// --- Detection ---
	v.SetDefault("driftThreshold", auditor.DefaultDriftThreshold)
	v.SetDefault("progress.pageInterval", auditor.DefaultPageProgressInterval)
	v.SetDefault("progress.allPagesInterval", auditor.DefaultAllPagesProgressInterval)
	v.SetDefault("ignorePages", []string{})

	// --- Input Handling ---
	v.SetDefault("defaultEncoding", "")

	// --- Output & Remediation ---
	v.SetDefault("outputFormat", string(auditor.DefaultOutputFormat))
	v.SetDefault("reportTemplate", "")
	v.SetDefault("actions.fixMissing", false)
	v.SetDefault("actions.fixUnused", false)
	v.SetDefault("actions.selectAll", false)
	v.SetDefault("actions.export", false)
	v.SetDefault("write", auditor.DefaultWriteBack)
	v.SetDefault("outputPath", "")

	// --- Workflow Features ---
	v.SetDefault("watch.debounce", auditor.DefaultWatchDebounceString)
	v.SetDefault("gitMetadata", auditor.DefaultGitMetadataEnabled)
}

// loadReportTemplate parses the configured report template, or the embedded default.
func loadReportTemplate(opts *auditor.Options, logger *slog.Logger) error {
	if opts.ReportTemplatePath == "" {
		defaultTmpl, err := tmplhelper.LoadDefaultTemplate()
		if err != nil {
			logger.Error("Critical: Failed to load embedded default template", slog.String("error", err.Error()))
			return fmt.Errorf("critical internal error: failed to load default template: %w", err)
		}
		opts.ReportTemplate = defaultTmpl
		logger.Debug("Using embedded default template")
		return nil
	}

	absTplPath, err := filepath.Abs(opts.ReportTemplatePath)
	if err != nil {
		err = fmt.Errorf("%w: cannot resolve absolute path for template file '%s': %w", auditor.ErrConfigValidation, opts.ReportTemplatePath, err)
		logger.Error(err.Error())
		return err
	}
	opts.ReportTemplatePath = absTplPath

	info, err := os.Stat(absTplPath)
	if err != nil {
		err = fmt.Errorf("%w: template file '%s' does not exist or cannot be accessed: %w", auditor.ErrConfigValidation, absTplPath, err)
		logger.Error(err.Error(), slog.String("key", "reportTemplate"))
		return err
	}
	if info.IsDir() {
		err = fmt.Errorf("%w: template path '%s' is a directory, not a file", auditor.ErrConfigValidation, absTplPath)
		logger.Error(err.Error(), slog.String("key", "reportTemplate"))
		return err
	}
	content, err := os.ReadFile(absTplPath)
	if err != nil {
		err = fmt.Errorf("%w: failed to read template file '%s': %w", auditor.ErrConfigValidation, absTplPath, err)
		logger.Error(err.Error(), slog.String("key", "reportTemplate"))
		return err
	}
	tmpl, err := tmplhelper.Parse(filepath.Base(absTplPath), string(content))
	if err != nil {
		err = fmt.Errorf("%w: failed to parse template '%s': %w", auditor.ErrConfigValidation, absTplPath, err)
		logger.Error(err.Error(), slog.String("key", "reportTemplate"))
		return err
	}
	opts.ReportTemplate = tmpl
	logger.Debug("Loaded custom template", slog.String("path", absTplPath))
	return nil
}

// isValidEnumValue checks if a given string value is present in a slice of allowed enum values.
// Case-sensitive comparison.
func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

// validateAndDeriveOptions performs semantic validation on the populated Options struct
// and calculates derived fields. Errors wrap auditor.ErrConfigValidation.
func validateAndDeriveOptions(opts *auditor.Options, logger *slog.Logger) error {
	// === Path Validations ===
	if opts.InputPath == "" {
		err := fmt.Errorf("%w: input snapshot is required (-i, --input)", auditor.ErrConfigValidation)
		logger.Error(err.Error(), slog.String("key", "input"))
		return err
	}
	absInput, err := filepath.Abs(opts.InputPath)
	if err != nil {
		err = fmt.Errorf("%w: cannot resolve absolute input path '%s': %w", auditor.ErrConfigValidation, opts.InputPath, err)
		logger.Error(err.Error(), slog.String("key", "input"))
		return err
	}
	opts.InputPath = absInput
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w: input path '%s' does not exist", auditor.ErrConfigValidation, opts.InputPath)
		} else {
			err = fmt.Errorf("%w: cannot access input path '%s': %w", auditor.ErrConfigValidation, opts.InputPath, err)
		}
		logger.Error(err.Error(), slog.String("key", "input"))
		return err
	}
	if info.IsDir() {
		err = fmt.Errorf("%w: input path '%s' is a directory, not a snapshot file", auditor.ErrConfigValidation, opts.InputPath)
		logger.Error(err.Error(), slog.String("key", "input"))
		return err
	}
	logger.Debug("Validated input path", slog.String("path", opts.InputPath))

	if opts.OutputPath == "" {
		opts.OutputPath = opts.InputPath
	} else {
		absOutput, err := filepath.Abs(opts.OutputPath)
		if err != nil {
			err = fmt.Errorf("%w: cannot resolve absolute output path '%s': %w", auditor.ErrConfigValidation, opts.OutputPath, err)
			logger.Error(err.Error(), slog.String("key", "outputPath"))
			return err
		}
		opts.OutputPath = absOutput
		if dirInfo, err := os.Stat(filepath.Dir(absOutput)); err != nil || !dirInfo.IsDir() {
			err = fmt.Errorf("%w: output directory for '%s' does not exist", auditor.ErrConfigValidation, absOutput)
			logger.Error(err.Error(), slog.String("key", "outputPath"))
			return err
		}
	}

	// === Enum String Validations ===
	scope, err := auditor.ParseScope(string(opts.Scope))
	if err != nil {
		logger.Error(err.Error(), slog.String("key", "scope"), slog.String("value", string(opts.Scope)))
		return err
	}
	opts.Scope = scope
	allowedOutputFormat := []auditor.OutputFormat{auditor.OutputFormatText, auditor.OutputFormatJSON, auditor.OutputFormatYAML}
	if !isValidEnumValue(opts.OutputFormat, allowedOutputFormat) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'outputFormat' (flag --output-format). Allowed: %v", auditor.ErrConfigValidation, opts.OutputFormat, allowedOutputFormat)
		logger.Error(err.Error(), slog.String("key", "outputFormat"), slog.String("value", string(opts.OutputFormat)))
		return err
	}

	// === Numeric Range Validations ===
	if opts.DriftThreshold < 0 {
		err := fmt.Errorf("%w: invalid value '%d' for key 'driftThreshold' (flag --drift-threshold). Must be >= 0", auditor.ErrConfigValidation, opts.DriftThreshold)
		logger.Error(err.Error(), slog.String("key", "driftThreshold"), slog.Int("value", opts.DriftThreshold))
		return err
	}
	if opts.Progress.PageInterval < 0 || opts.Progress.AllPagesInterval < 0 {
		err := fmt.Errorf("%w: progress intervals must be >= 0 (pageInterval=%d, allPagesInterval=%d)", auditor.ErrConfigValidation, opts.Progress.PageInterval, opts.Progress.AllPagesInterval)
		logger.Error(err.Error(), slog.String("key", "progress"))
		return err
	}

	// === Derived Dependencies ===
	if len(opts.IgnorePages) > 0 {
		matcher, err := util.NewPageMatcher(opts.IgnorePages)
		if err != nil {
			err = fmt.Errorf("%w: invalid value for key 'ignorePages': %w", auditor.ErrConfigValidation, err)
			logger.Error(err.Error(), slog.String("key", "ignorePages"))
			return err
		}
		opts.PageFilter = matcher
	}

	// Verbose logging and watch mode both write to the terminal line by line
	if opts.Verbose && opts.TuiEnabled {
		logger.Debug("Verbose mode enabled, TUI disabled")
		opts.TuiEnabled = false
	}
	if opts.WatchMode && opts.TuiEnabled {
		logger.Debug("Watch mode enabled, TUI disabled")
		opts.TuiEnabled = false
	}

	logger.Debug("Final derived settings validated",
		slog.String("scope", string(opts.Scope)),
		slog.Int("driftThreshold", opts.DriftThreshold),
		slog.Int("ignorePatterns", len(opts.IgnorePages)),
		slog.Duration("watchDebounceDuration", opts.WatchDebounce),
		slog.Bool("writeBack", opts.WriteBack),
		slog.Bool("tuiEnabledEffective", opts.TuiEnabled),
	)
	return nil
}

// --- END OF FINAL REVISED FILE internal/cli/config/config.go ---
