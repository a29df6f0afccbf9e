package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/archive"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/output"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/compare"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/loader"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/merge"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/workspace"
)

// MergeOptions holds options for the merge command.
type MergeOptions struct {
	Yes         bool
	DryRun      bool
	ArchivePath string
}

// NewMergeCommand creates the merge command.
func NewMergeCommand() *cobra.Command {
	opts := &MergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge [source] [target]",
		Short: "Add source tables, columns and measures to the target model",
		Long: `Merge a source semantic model into a target semantic model.

The merge is additive: tables that exist only in the source are copied to
the target, and tables present on both sides get the columns and measures
the target lacks. Nothing in the target is removed or changed, except that
the partition of a merged table is taken from the source when it has one.
Auto-generated LocalDateTable tables are never merged.

Before the first write the target's table folder is backed up to a sibling
folder named <folder>_backup_<timestamp>, unless --no-backup is given.`,
		Example: `  # Merge after a confirmation prompt
  pbimodel merge ./dev ./prod

  # Show what would be written without touching the target
  pbimodel merge ./dev ./prod --dry-run

  # Merge into a zipped model and save the result as a new archive
  pbimodel merge ./dev prod.zip --yes --archive prod-merged.zip`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			return runMerge(commandContext(cmd), cc, cmd.InOrStdin(), args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Merge without asking for confirmation")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the files that would be written without writing them")
	cmd.Flags().StringVar(&opts.ArchivePath, "archive", "", "Also save the merged target model as a zip archive")
	cmd.Flags().Bool("no-backup", false, "Do not back up the target table folder")

	return cmd
}

// mergeOutput is the JSON and YAML shape of a merge.
type mergeOutput struct {
	Source       string   `json:"source" yaml:"source"`
	Target       string   `json:"target" yaml:"target"`
	DryRun       bool     `json:"dry_run" yaml:"dry_run"`
	Archive      string   `json:"archive,omitempty" yaml:"archive,omitempty"`
	Written      []string `json:"written,omitempty" yaml:"written,omitempty"`
	merge.Result `yaml:",inline"`
}

func runMerge(ctx context.Context, cc *CommandContext, in io.Reader, args []string, opts *MergeOptions) error {
	r := cc.Renderer

	source, target, err := cc.Roots(args)
	if err != nil {
		return err
	}
	if archive.IsArchive(target) && !opts.DryRun && opts.ArchivePath == "" {
		return fmt.Errorf("target %s is an archive; use --archive to choose where the merged model is saved", target)
	}

	src, tgt, cleanup, err := cc.LoadPair(ctx, source, target)
	if err != nil {
		return err
	}
	defer cleanup()

	report := compare.Compare(src.Tables, tgt.Tables, compare.WithDiffLimit(cc.Cfg.DiffLimit))
	plan := merge.BuildPlan(src.Tables, tgt.Tables)

	if isHumanMode(r) {
		r.Header(1, "Merge plan")
		renderRoots(r, source, target)
		r.Println("")
		renderCounts(r, report.Counts)
		renderPlan(r, plan, report)
	}

	if len(plan.Steps) == 0 {
		if isHumanMode(r) {
			r.Println("")
			r.Muted("Nothing to merge.")
		}
		return nil
	}

	if !opts.Yes && !opts.DryRun {
		ok, err := confirm(in, r.ErrWriter(), fmt.Sprintf("Merge %d tables into %s?", len(plan.Steps), target))
		if err != nil {
			return err
		}
		if !ok {
			r.Warning("Merge canceled")
			return nil
		}
	}

	var fs workspace.FS = workspace.NewOS()
	var mem *workspace.Memory
	if opts.DryRun {
		mem = workspace.NewMemory()
		fs = mem
	}

	// The original archive stays untouched, so an unpacked target needs no backup.
	backup := cc.Cfg.Backup && !tgt.FromArchive() && !opts.DryRun
	engine, err := merge.New(merge.Config{FS: fs, Backup: backup, Logger: cc.Logger})
	if err != nil {
		return err
	}

	result, err := engine.Apply(ctx, plan, tgt.TablesDir)
	if err != nil {
		if result != nil && result.BackupPath != "" {
			r.Error("Merge stopped; the target may be partially updated. Backup: " + result.BackupPath)
		}
		return err
	}

	out := mergeOutput{Source: source, Target: target, DryRun: opts.DryRun, Result: *result}
	if mem != nil {
		out.Written = mem.Paths()
	}

	if opts.ArchivePath != "" && !opts.DryRun {
		if err := packMerged(ctx, tgt, opts.ArchivePath, result.BackupPath); err != nil {
			return err
		}
		out.Archive = opts.ArchivePath
		cc.Logger.Info("merged model packed", "archive", opts.ArchivePath)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeYAML:
		return r.YAML(out)
	}
	renderMergeResult(r, out)
	return nil
}

// packMerged writes the merged target tree to zipPath.
func packMerged(ctx context.Context, tgt *loader.Model, zipPath, backupPath string) error {
	root := tgt.Root
	if tgt.FromArchive() {
		root = tgt.ExtractedDir()
	}
	var exclude []string
	if backupPath != "" {
		exclude = append(exclude, backupPath)
	}
	if err := archive.PackFile(ctx, root, zipPath, exclude...); err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}
	return nil
}

func renderPlan(r *output.Renderer, plan *merge.Plan, report *compare.Report) {
	if len(plan.Steps) > 0 {
		r.Println("")
		r.Header(2, output.Title("planned changes"))
		for _, step := range plan.Steps {
			detail := "(new table)"
			if step.Renamed() {
				detail = "(new table, written as " + step.File + ")"
			}
			if step.Action == merge.ActionUpdate {
				detail = "(update)"
				if d, ok := report.Details[step.Name]; ok {
					detail = "(update; " + describeDiff(d) + ")"
				}
			}
			r.StatusLine(step.Name, "pending", detail)
		}
	}
	for _, name := range plan.Skipped {
		r.StatusLine(name, "skipped", "(auto-generated date table)")
	}
}

func renderMergeResult(r *output.Renderer, out mergeOutput) {
	r.Println("")
	if out.DryRun {
		r.Header(2, output.Title("files that would be written"))
		for _, path := range out.Written {
			r.StatusLine(path, "pending", "")
		}
		r.Println("")
		r.Muted("Dry run: no files were written.")
		return
	}

	for _, name := range out.NewTables {
		r.StatusLine(name, "success", "(created)")
	}
	for _, name := range out.UpdatedTables {
		detail := "(no additions)"
		if added := out.Additions[name]; len(added) > 0 {
			detail = "(added " + strings.Join(added, ", ") + ")"
		}
		r.StatusLine(name, "success", detail)
	}

	r.Println("")
	r.Success(fmt.Sprintf("Merged %d new and %d updated tables into %s",
		len(out.NewTables), len(out.UpdatedTables), out.Destination))
	if out.BackupPath != "" {
		r.Muted("Backup: " + out.BackupPath)
	}
	if out.Archive != "" {
		r.Muted("Archive: " + out.Archive)
	}
}

// confirm asks a yes/no question. A terminal gets a readline prompt; other
// input is read one line at a time. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	prompt := question + " [y/N]: "

	var answer string
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: file descriptors fit in int
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          prompt,
			HistoryLimit:    -1,
			InterruptPrompt: "^C",
			EOFPrompt:       "n",
			Stdin:           f,
			Stdout:          out,
		})
		if err != nil {
			return false, fmt.Errorf("failed to open prompt: %w", err)
		}
		defer func() { _ = rl.Close() }()

		answer, err = rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	} else {
		_, _ = fmt.Fprint(out, prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		_, _ = fmt.Fprintln(out)
		answer = line
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
