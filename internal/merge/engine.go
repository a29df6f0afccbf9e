package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/tmdl"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/workspace"
)

// Result summarizes an applied merge.
type Result struct {
	// NewTables are the tables copied from the source.
	NewTables []string `json:"new_tables" yaml:"new_tables"`
	// UpdatedTables are the tables rewritten in the target.
	UpdatedTables []string `json:"updated_tables" yaml:"updated_tables"`
	// Destination is the target table directory.
	Destination string `json:"destination" yaml:"destination"`
	// BackupPath is the snapshot taken before the first write, if any.
	BackupPath string `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	// Additions maps each updated table to the columns and measures added to it.
	Additions map[string][]string `json:"additions" yaml:"additions"`
	// Skipped are the excluded source tables.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Config holds merge engine configuration.
type Config struct {
	// FS performs the snapshot and the writes. Required.
	FS workspace.FS
	// Backup snapshots the table directory before the first write.
	Backup bool
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine applies merge plans to a target table directory.
type Engine struct {
	fs     workspace.FS
	backup bool
	logger *slog.Logger
}

// New creates a merge engine.
func New(cfg Config) (*Engine, error) {
	if cfg.FS == nil {
		return nil, errors.New("merge engine requires a file system")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{fs: cfg.FS, backup: cfg.Backup, logger: logger}, nil
}

// Apply writes the outcome of every plan step into tablesDir.
//
// The snapshot, when enabled, is taken before any write and a failing
// snapshot aborts the merge. A failing write stops the merge; files written
// before it are kept and the returned Result lists them.
func (e *Engine) Apply(ctx context.Context, plan *Plan, tablesDir string) (*Result, error) {
	result := &Result{
		NewTables:     []string{},
		UpdatedTables: []string{},
		Destination:   tablesDir,
		Additions:     make(map[string][]string),
		Skipped:       plan.Skipped,
	}

	for _, name := range plan.Skipped {
		e.logger.Debug("skipping generated table", "table", name)
	}

	if e.backup {
		backup, err := e.fs.Snapshot(tablesDir)
		if err != nil {
			return result, fmt.Errorf("failed to back up %s: %w", tablesDir, err)
		}
		result.BackupPath = backup
		e.logger.Info("backup created", "path", backup)
	}

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		switch step.Action {
		case ActionCreate:
			file := step.File
			if file == "" {
				file = fileName(step.Source)
			}
			path := filepath.Join(tablesDir, file)
			if step.Renamed() {
				e.logger.Warn("file name taken in target, writing under another name",
					"table", step.Name, "source_file", fileName(step.Source), "file", file)
			}
			if err := e.fs.WriteFile(path, []byte(CleanNewTable(step.Source.Text))); err != nil {
				return result, fmt.Errorf("failed to create table %s: %w", step.Name, err)
			}
			result.NewTables = append(result.NewTables, step.Name)
			e.logger.Debug("table created", "table", step.Name, "path", path)

		case ActionUpdate:
			path := step.Target.File
			if path == "" {
				path = filepath.Join(tablesDir, fileName(step.Target))
			}
			merged, added := MergeTable(step.Source.Text, step.Target.Text)
			if err := e.fs.WriteFile(path, []byte(merged)); err != nil {
				return result, fmt.Errorf("failed to update table %s: %w", step.Name, err)
			}
			result.UpdatedTables = append(result.UpdatedTables, step.Name)
			result.Additions[step.Name] = added
			e.logger.Debug("table updated", "table", step.Name, "path", path, "added", len(added))
		}
	}

	e.logger.Info("merge completed",
		"new", len(result.NewTables),
		"updated", len(result.UpdatedTables),
		"destination", tablesDir)
	return result, nil
}

// fileName returns the base name a table is written under.
func fileName(t *tmdl.Table) string {
	if t.File != "" {
		return filepath.Base(t.File)
	}
	return t.Name + tmdl.FileExtension
}
