package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/output"
)

// structuredOutput describes what each command prints in json and yaml mode.
// Commands missing here print the same status lines in every mode.
var structuredOutput = map[string]string{
	"compare": "The report: `counts`, sorted name `lists` per category and per-table `details` " +
		"with the column and measure differences and, with `--diff`, the `textual_diff_snippet`.",
	"merge": "The `source` and `target` roots, `dry_run`, `new_tables`, `updated_tables`, " +
		"`additions` per table, `destination`, `backup_path` and `skipped`. " +
		"A dry run lists the files it would write under `written`.",
	"pack": "The `model` argument, the resolved `model_dir` and the written `archive`.",
}

// modeNotes explains the output modes in the order of output.Modes.
var modeNotes = map[output.Mode]string{
	output.ModeAuto:     "Text on a terminal, markdown when piped",
	output.ModeText:     "Styled tables and status lines",
	output.ModeMarkdown: "Headers, markdown tables and a fenced diff block",
	output.ModeJSON:     "One JSON document on stdout",
	output.ModeYAML:     "One YAML document on stdout",
}

// documented reports whether cmd gets its own page.
func documented(cmd *cobra.Command) bool {
	return !cmd.Hidden && cmd.Name() != "help" && cmd.Name() != "completion"
}

// configKeysByFlag maps a flag name such as "no-backup" to the config key it sets.
func configKeysByFlag() map[string]string {
	keys := make(map[string]string)
	for _, f := range getConfigSchema() {
		if f.Flag != "" {
			keys[strings.TrimPrefix(f.Flag, "--")] = f.Name
		}
	}
	return keys
}

// generateCLIDocs writes index.md and one page per command into outDir.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	keys := configKeysByFlag()

	pages := map[string][]byte{"index.md": cliIndex(root)}
	for _, cmd := range root.Commands() {
		if documented(cmd) {
			pages[cmd.Name()+".md"] = commandPage(cmd, keys)
		}
	}

	for name, data := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func cliIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for pbimodel")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("pbimodel compares the table definitions of two Power BI semantic models " +
		"and merges a source model into a target additively.")
	w.CodeBlock("bash", "go install github.com/ThaylaOliveira/powerbi-model-manager/cmd/pbimodel@latest")

	var rows [][]string
	for _, cmd := range root.Commands() {
		if documented(cmd) {
			link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
			rows = append(rows, []string{link, cleanDescription(cmd.Short)})
		}
	}
	w.Header(2, "Commands")
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Output Modes")
	w.Paragraph("Select a mode with " + InlineCode("--output") + " or the " + InlineCode("output") + " key:")
	var modes [][]string
	for _, m := range output.Modes {
		modes = append(modes, []string{InlineCode(string(m)), modeNotes[m]})
	}
	w.Table([]string{"Mode", "Result"}, modes)

	w.Header(2, "Environment Variables")
	var env [][]string
	for _, f := range getConfigSchema() {
		env = append(env, []string{InlineCode(f.EnvVar()), f.Description})
	}
	w.Table([]string{"Variable", "Description"}, env)
	w.Paragraph("Flags take precedence over environment variables. See the configuration reference for the file format.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success, including a compare that found differences"},
		{InlineCode("1"), "Error, printed on stderr"},
	})

	return w.Bytes()
}

func commandPage(cmd *cobra.Command, keys map[string]string) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	var rows [][]string
	add := func(scope string) func(*pflag.Flag) {
		return func(f *pflag.Flag) {
			if f.Hidden || f.Name == "help" {
				return
			}
			rows = append(rows, flagRow(f, scope, keys))
		}
	}
	cmd.LocalFlags().VisitAll(add("command"))
	cmd.InheritedFlags().VisitAll(add("global"))
	if len(rows) > 0 {
		w.Header(2, "Options")
		w.Table([]string{"Option", "Default", "Config key", "Scope", "Description"}, rows)
	}

	if doc, ok := structuredOutput[cmd.Name()]; ok {
		w.Header(2, "Structured Output")
		w.Paragraph("With " + InlineCode("-o json") + " or " + InlineCode("-o yaml") + ": " + doc)
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	return w.Bytes()
}

func flagRow(f *pflag.Flag, scope string, keys map[string]string) []string {
	option := InlineCode("--" + f.Name)
	if f.Shorthand != "" {
		option = InlineCode("-"+f.Shorthand) + ", " + option
	}

	def := "-"
	if f.DefValue != "" && f.Value.Type() != "bool" {
		def = InlineCode(f.DefValue)
	}

	key := "-"
	if k, ok := keys[f.Name]; ok {
		key = InlineCode(k)
	}

	return []string{option, def, key, scope, cleanDescription(f.Usage)}
}

// dedent removes the two-space indent cobra examples are written with.
func dedent(example string) string {
	lines := strings.Split(strings.TrimRight(example, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, "  ")
	}
	return strings.Join(lines, "\n")
}
