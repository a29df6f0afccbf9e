package config

import (
	"fmt"
	"os"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.DiffLimit < 0 {
		return fmt.Errorf("diff_limit must not be negative, got %d", c.DiffLimit)
	}
	if c.ModelSuffix == "" {
		return fmt.Errorf("model_suffix is required")
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	return nil
}

// ValidateRoots checks that both model roots are given and exist.
func ValidateRoots(source, target string) error {
	for _, root := range []struct{ side, path string }{{"source", source}, {"target", target}} {
		if root.path == "" {
			return fmt.Errorf("%s model is required\nHint: pass it as an argument or set %s in %s", root.side, root.side, ConfigFileName)
		}
		if _, err := os.Stat(root.path); os.IsNotExist(err) {
			return fmt.Errorf("%s model does not exist: %s", root.side, root.path)
		}
	}
	return nil
}
