package commands

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/config"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/output"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/loader"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Loader   *loader.Loader
}

// NewCommandContext creates a CommandContext with a model loader and renderer.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(commandContext(cmd))
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Loader: loader.New(loader.Config{
			ModelSuffix: cfg.ModelSuffix,
			TempDir:     cfg.TempDir,
			Logger:      logger,
		}),
	}
}

// Roots returns the source and target model roots. Positional arguments
// override the configured ones.
func (c *CommandContext) Roots(args []string) (source, target string, err error) {
	source, target = c.Cfg.Source, c.Cfg.Target
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}
	if err := config.ValidateRoots(source, target); err != nil {
		return "", "", err
	}
	return source, target, nil
}

// LoadPair loads both models. The returned cleanup removes folders that
// archive roots were unpacked into.
func (c *CommandContext) LoadPair(ctx context.Context, source, target string) (src, tgt *loader.Model, cleanup func(), err error) {
	src, tgt, err = c.Loader.LoadPair(ctx, source, target)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, m := range []*loader.Model{src, tgt} {
		for _, path := range m.Replaced {
			c.Logger.Warn("invalid UTF-8 replaced while reading", "file", path)
		}
	}
	return src, tgt, func() {
		_ = src.Close()
		_ = tgt.Close()
	}, nil
}

// Helper functions shared across commands

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	diffLimit, err := strconv.Atoi(os.Getenv(config.EnvPrefix + "DIFF_LIMIT"))
	if err != nil {
		diffLimit = config.DefaultDiffLimit
	}

	return &config.Config{
		Source:        os.Getenv(config.EnvPrefix + "SOURCE"),
		Target:        os.Getenv(config.EnvPrefix + "TARGET"),
		OutputFormat:  getEnvOrDefault(config.EnvPrefix+"OUTPUT", config.DefaultOutput),
		Verbose:       os.Getenv(config.EnvPrefix+"VERBOSE") == "true",
		LogLevel:      getEnvOrDefault(config.EnvPrefix+"LOG_LEVEL", config.DefaultLogLevel),
		Backup:        os.Getenv(config.EnvPrefix+"BACKUP") != "false",
		DiffLimit:     diffLimit,
		ModelSuffix:   getEnvOrDefault(config.EnvPrefix+"MODEL_SUFFIX", config.DefaultModelSuffix),
		ReportFile:    os.Getenv(config.EnvPrefix + "REPORT_FILE"),
		TempDir:       os.Getenv(config.EnvPrefix + "TEMP_DIR"),
		WatchDebounce: config.DefaultWatchDebounce,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
