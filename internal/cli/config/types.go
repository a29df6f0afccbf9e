// Package config provides configuration management for the pbimodel CLI.
//
// Values are layered from defaults, a pbimodel.yaml file, PBIMODEL_*
// environment variables and explicitly set flags, in increasing order of
// precedence.
package config

import (
	"time"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/compare"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/loader"
)

// Config holds all CLI configuration options.
type Config struct {
	// Source and Target are the default model roots used when a command
	// is run without positional arguments.
	Source string `koanf:"source"`
	Target string `koanf:"target"`

	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
	LogLevel     string `koanf:"log_level"`

	Backup        bool          `koanf:"backup"`
	DiffLimit     int           `koanf:"diff_limit"`
	ModelSuffix   string        `koanf:"model_suffix"`
	ReportFile    string        `koanf:"report_file"`
	TempDir       string        `koanf:"temp_dir"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`

	// ProjectRoot is the folder holding the config file, or the working
	// directory when there is none. Relative paths from the file resolve
	// against it.
	ProjectRoot string `koanf:"-"`
}

// Config file names, in lookup order.
const (
	ConfigFileName    = "pbimodel.yaml"
	AltConfigFileName = "pbimodel.yml"
)

// Default configuration values
const (
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel      = "warn"
	DefaultBackup        = true
	DefaultDiffLimit     = compare.DefaultDiffLimit
	DefaultModelSuffix   = loader.DefaultModelSuffix
	DefaultWatchDebounce = 250 * time.Millisecond
)
