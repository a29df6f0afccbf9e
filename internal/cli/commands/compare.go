package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/config"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/output"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/compare"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/workspace"
	"github.com/spf13/cobra"
)

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "compare [source] [target]",
		Short: "Compare the tables of two semantic models",
		Long: `Compare the table definitions of a source and a target semantic model.

Each table is classified as identical, different, only in source or only in
target. For different tables the columns and measures present on one side
only are listed. When both sides declare the same columns and measures but
the text still differs, a unified diff is kept for the table.

Models are given as folders containing a *.SemanticModel folder, or as zip
archives of such folders. Without arguments the source and target set in
pbimodel.yaml are used.`,
		Example: `  # Compare two model folders
  pbimodel compare ./dev ./prod

  # Include textual diffs
  pbimodel compare ./dev ./prod --diff

  # Machine readable output and a plain-text report file
  pbimodel compare ./dev ./prod -o json --report-file report.txt`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			return runCompare(commandContext(cmd), cc, args, showDiff)
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show textual diffs of changed tables")
	cmd.Flags().Int("diff-limit", config.DefaultDiffLimit, "Maximum diff lines kept per table")
	cmd.Flags().String("report-file", "", "Also write a plain-text report to this file")

	return cmd
}

func runCompare(ctx context.Context, cc *CommandContext, args []string, showDiff bool) error {
	source, target, err := cc.Roots(args)
	if err != nil {
		return err
	}

	src, tgt, cleanup, err := cc.LoadPair(ctx, source, target)
	if err != nil {
		return err
	}
	defer cleanup()

	report := compare.Compare(src.Tables, tgt.Tables, compare.WithDiffLimit(cc.Cfg.DiffLimit))
	cc.Logger.Info("models compared",
		"identical", report.Counts.Identical,
		"different", report.Counts.Different,
		"only_in_source", report.Counts.OnlyInSource,
		"only_in_target", report.Counts.OnlyInTarget)

	if err := renderReport(cc.Renderer, source, target, report, showDiff); err != nil {
		return err
	}

	if cc.Cfg.ReportFile != "" {
		if err := workspace.NewOS().WriteFile(cc.Cfg.ReportFile, []byte(report.Summary())); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if isHumanMode(cc.Renderer) {
			cc.Renderer.Println("")
			cc.Renderer.Muted("Report written to " + cc.Cfg.ReportFile)
		}
	}
	return nil
}

// compareOutput is the JSON and YAML shape of a comparison.
type compareOutput struct {
	Source         string `json:"source" yaml:"source"`
	Target         string `json:"target" yaml:"target"`
	compare.Report `yaml:",inline"`
}

func isHumanMode(r *output.Renderer) bool {
	mode := r.EffectiveMode()
	return mode == output.ModeText || mode == output.ModeMarkdown
}

func renderReport(r *output.Renderer, source, target string, report *compare.Report, showDiff bool) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(compareOutput{Source: source, Target: target, Report: *report})
	case output.ModeYAML:
		return r.YAML(compareOutput{Source: source, Target: target, Report: *report})
	}

	r.Header(1, "Model comparison")
	renderRoots(r, source, target)
	r.Println("")
	renderCounts(r, report.Counts)

	if !report.HasDifferences() {
		r.Println("")
		r.Success("Models are identical")
		return nil
	}

	renderNames(r, "tables only in source", report.Lists.OnlyInSource)
	renderNames(r, "tables only in target", report.Lists.OnlyInTarget)

	if len(report.Lists.Different) > 0 {
		r.Println("")
		r.Header(2, output.Title("different tables"))
		for _, name := range report.Lists.Different {
			d := report.Details[name]
			r.StatusLine(name, "failed", "("+describeDiff(d)+")")
			if showDiff && len(d.TextDiff) > 0 {
				renderDiff(r, d.TextDiff)
			}
		}
	}
	return nil
}

func renderRoots(r *output.Renderer, source, target string) {
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("Source", source))
		r.Println(output.FormatKeyValue("Target", target))
		return
	}
	r.Muted("Source: " + source)
	r.Muted("Target: " + target)
}

func renderCounts(r *output.Renderer, c compare.Counts) {
	rows := [][]string{
		{"Tables in source", strconv.Itoa(c.SourceTotal)},
		{"Tables in target", strconv.Itoa(c.TargetTotal)},
		{"Identical", strconv.Itoa(c.Identical)},
		{"Different", strconv.Itoa(c.Different)},
		{"Only in source", strconv.Itoa(c.OnlyInSource)},
		{"Only in target", strconv.Itoa(c.OnlyInTarget)},
	}
	r.Table([]string{"Category", "Tables"}, rows)
}

func renderNames(r *output.Renderer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	r.Println("")
	r.Header(2, output.Title(title))
	for _, name := range names {
		r.StatusLine(name, "pending", "")
	}
}

// describeDiff summarizes a table difference in one line.
func describeDiff(d compare.TableDiff) string {
	var parts []string
	add := func(label string, names []string) {
		if len(names) > 0 {
			parts = append(parts, label+": "+strings.Join(names, ", "))
		}
	}
	add("columns only in source", d.ColumnsOnlyInSource)
	add("columns only in target", d.ColumnsOnlyInTarget)
	add("measures only in source", d.MeasuresOnlyInSource)
	add("measures only in target", d.MeasuresOnlyInTarget)
	if len(d.TextDiff) > 0 {
		parts = append(parts, fmt.Sprintf("text differs, %d diff lines", len(d.TextDiff)))
	}
	return strings.Join(parts, "; ")
}

func renderDiff(r *output.Renderer, lines []string) {
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println("")
		r.Println("```diff")
		for _, line := range lines {
			r.Println(line)
		}
		r.Println("```")
		r.Println("")
		return
	}
	r.Diff(lines)
}
