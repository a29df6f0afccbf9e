package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/config"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/output"
)

// starterConfig is the content of a new pbimodel.yaml.
type starterConfig struct {
	Source        string `yaml:"source,omitempty"`
	Target        string `yaml:"target,omitempty"`
	Output        string `yaml:"output"`
	Backup        bool   `yaml:"backup"`
	DiffLimit     int    `yaml:"diff_limit"`
	ModelSuffix   string `yaml:"model_suffix"`
	WatchDebounce string `yaml:"watch_debounce"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var source, target string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a pbimodel.yaml configuration file",
		Long: `Create a pbimodel.yaml configuration file with the default settings.

Commands run in the directory, or below it, pick the file up. Source and
target set here are used when compare, merge or watch get no arguments.`,
		Example: `  # Initialize in current directory
  pbimodel init

  # Remember the models to compare
  pbimodel init --source ./dev --target ./prod

  # Force overwrite existing config
  pbimodel init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, starterConfig{
				Source:        source,
				Target:        target,
				Output:        config.DefaultOutput,
				Backup:        config.DefaultBackup,
				DiffLimit:     config.DefaultDiffLimit,
				ModelSuffix:   config.DefaultModelSuffix,
				WatchDebounce: config.DefaultWatchDebounce.String(),
			}, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().StringVar(&source, "source", "", "Default source model")
	cmd.Flags().StringVar(&target, "target", "", "Default target model")

	return cmd
}

func runInit(r *output.Renderer, dir string, starter starterConfig, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileName)
	}

	data, err := renderStarterConfig(starter)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.StatusLine(config.ConfigFileName, "success", "")
	r.Println("")
	r.Success("pbimodel configuration created!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Set source and target in " + config.ConfigFileName)
	r.Println("  2. Run 'pbimodel compare' to see the differences")
	r.Println("  3. Run 'pbimodel merge --dry-run' to preview a merge")

	return nil
}

func renderStarterConfig(starter starterConfig) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(starter); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	doc.HeadComment = "pbimodel configuration\n" +
		"Environment variables (PBIMODEL_*) and flags override these values."
	return yaml.Marshal(&doc)
}
