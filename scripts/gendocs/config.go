package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/config"
)

// ConfigField describes one key of pbimodel.yaml.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Flag        string
	Description string
}

// EnvVar returns the environment variable that sets the field.
func (f ConfigField) EnvVar() string {
	return config.EnvPrefix + strings.ToUpper(f.Name)
}

// getConfigSchema mirrors config.Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "source", Type: "string", Description: "Source model folder or zip archive"},
		{Name: "target", Type: "string", Description: "Target model folder or zip archive"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Flag: "--output", Description: "Output format: auto, text, markdown, json, yaml"},
		{Name: "verbose", Type: "bool", Default: "false", Flag: "--verbose", Description: "Debug logging"},
		{Name: "log_level", Type: "string", Default: config.DefaultLogLevel, Flag: "--log-level", Description: "Log level: debug, info, warn, error"},
		{Name: "backup", Type: "bool", Default: strconv.FormatBool(config.DefaultBackup), Flag: "--no-backup", Description: "Back up the target table folder before a merge"},
		{Name: "diff_limit", Type: "int", Default: strconv.Itoa(config.DefaultDiffLimit), Flag: "--diff-limit", Description: "Maximum diff lines kept per table"},
		{Name: "model_suffix", Type: "string", Default: config.DefaultModelSuffix, Flag: "--model-suffix", Description: "Name suffix of model folders"},
		{Name: "report_file", Type: "string", Flag: "--report-file", Description: "Plain-text report written by compare"},
		{Name: "temp_dir", Type: "string", Flag: "--temp-dir", Description: "Folder where zipped models are unpacked"},
		{Name: "watch_debounce", Type: "duration", Default: config.DefaultWatchDebounce.String(), Flag: "--debounce", Description: "Quiet period before watch compares again"},
	}
}

// generateConfigDocs writes configuration.md into outDir.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "pbimodel configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("pbimodel reads %s from the working directory or the closest parent "+
		"folder that has one. Relative model paths in the file are resolved against its folder.",
		InlineCode(config.ConfigFileName)))

	w.Header(2, "Keys")
	headers := []string{"Key", "Type", "Default", "Environment", "Flag", "Description"}
	var rows [][]string
	for _, f := range getConfigSchema() {
		def := "-"
		if f.Default != "" {
			def = InlineCode(f.Default)
		}
		flag := "-"
		if f.Flag != "" {
			flag = InlineCode(f.Flag)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, def, InlineCode(f.EnvVar()), flag, f.Description})
	}
	w.Table(headers, rows)

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags",
		"Environment variables (" + InlineCode(config.EnvPrefix+"*") + ")",
		InlineCode(config.ConfigFileName),
		"Defaults",
	})

	w.Header(2, "Example")
	w.CodeBlock("yaml", `source: ./dev
target: ./prod
output: auto
backup: true
diff_limit: 400
model_suffix: .SemanticModel
watch_debounce: 250ms`)

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
