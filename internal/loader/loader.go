package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/archive"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/tmdl"
)

// Model is a parsed model tree.
type Model struct {
	// Root is the path the model was loaded from, folder or archive.
	Root string
	// ModelDir is the *.SemanticModel folder.
	ModelDir string
	// TablesDir holds the table definition files.
	TablesDir string
	// Tables maps table names to tables.
	Tables map[string]*tmdl.Table
	// Files lists the table files read, in load order.
	Files []string
	// Replaced lists the files that contained invalid UTF-8.
	Replaced []string
	// Duration is the time spent loading.
	Duration time.Duration

	// extracted is the temporary folder an archive root was unpacked into.
	extracted string
}

// FromArchive reports whether the model was unpacked from an archive.
func (m *Model) FromArchive() bool {
	return m.extracted != ""
}

// ExtractedDir returns the temporary folder an archive root was unpacked
// into, or "" for folder roots.
func (m *Model) ExtractedDir() string {
	return m.extracted
}

// Close removes the temporary folder of an archive root.
func (m *Model) Close() error {
	if m.extracted == "" {
		return nil
	}
	err := os.RemoveAll(m.extracted)
	m.extracted = ""
	return err
}

// SideError tells which side of a comparison failed to load.
type SideError struct {
	Side string // "source" or "target"
	Root string
	Err  error
}

func (e *SideError) Error() string {
	return fmt.Sprintf("%s model %s: %v", e.Side, e.Root, e.Err)
}

func (e *SideError) Unwrap() error {
	return e.Err
}

// Config holds loader configuration.
type Config struct {
	// ModelSuffix is the name suffix of model folders (default ".SemanticModel").
	ModelSuffix string
	// TempDir is where archive roots are unpacked (default os.TempDir()).
	TempDir string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Loader reads model trees.
type Loader struct {
	suffix  string
	tempDir string
	logger  *slog.Logger
}

// New creates a loader.
func New(cfg Config) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	suffix := cfg.ModelSuffix
	if suffix == "" {
		suffix = DefaultModelSuffix
	}
	return &Loader{suffix: suffix, tempDir: cfg.TempDir, logger: logger}
}

// Load discovers the model under root and parses every table file in it.
// A root ending in .zip is unpacked to a temporary folder first; call
// Close on the returned model to remove it.
//
// Tables are keyed by their declared name. When two files declare the same
// table the first one in file order wins.
func (l *Loader) Load(ctx context.Context, root string) (*Model, error) {
	start := time.Now()
	m := &Model{Root: root, Tables: make(map[string]*tmdl.Table)}

	searchRoot := root
	if archive.IsArchive(root) {
		dir, err := os.MkdirTemp(l.tempDir, "pbimodel-*")
		if err != nil {
			return nil, fmt.Errorf("create extraction folder: %w", err)
		}
		m.extracted = dir
		if err := archive.Extract(ctx, root, dir); err != nil {
			_ = m.Close()
			return nil, err
		}
		l.logger.Debug("archive extracted", "archive", root, "dir", dir)
		searchRoot = dir
	}

	model, err := l.load(ctx, m, searchRoot)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	model.Duration = time.Since(start)

	l.logger.Info("model loaded",
		"root", root,
		"tables", len(model.Tables),
		"duration_ms", model.Duration.Milliseconds())
	return model, nil
}

func (l *Loader) load(ctx context.Context, m *Model, root string) (*Model, error) {
	modelDir, err := FindSemanticModelDir(root, l.suffix)
	if err != nil {
		return nil, err
	}
	tablesDir, err := TablesDir(modelDir)
	if err != nil {
		return nil, err
	}
	files, err := ListTableFiles(tablesDir)
	if err != nil {
		return nil, err
	}
	m.ModelDir = modelDir
	m.TablesDir = tablesDir

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from ListTableFiles
		if err != nil {
			return nil, fmt.Errorf("read table file: %w", err)
		}
		if tmdl.NeedsReplacement(data) {
			m.Replaced = append(m.Replaced, path)
			l.logger.Debug("invalid UTF-8 replaced", "file", path)
		}

		table := tmdl.ParseTable(path, tmdl.Decode(data))
		m.Files = append(m.Files, path)
		if prev, ok := m.Tables[table.Name]; ok {
			l.logger.Warn("duplicate table ignored",
				"table", table.Name,
				"kept", filepath.Base(prev.File),
				"ignored", filepath.Base(path))
			continue
		}
		m.Tables[table.Name] = table
		l.logger.Debug("table parsed",
			"table", table.Name,
			"columns", len(table.Columns),
			"measures", len(table.Measures))
	}
	return m, nil
}

// LoadPair loads the source and target models concurrently. If either side
// fails, the other is closed and the error is returned as a *SideError.
func (l *Loader) LoadPair(ctx context.Context, sourceRoot, targetRoot string) (source, target *Model, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := l.Load(gctx, sourceRoot)
		if err != nil {
			return &SideError{Side: "source", Root: sourceRoot, Err: err}
		}
		source = m
		return nil
	})
	g.Go(func() error {
		m, err := l.Load(gctx, targetRoot)
		if err != nil {
			return &SideError{Side: "target", Root: targetRoot, Err: err}
		}
		target = m
		return nil
	})

	if err := g.Wait(); err != nil {
		for _, m := range []*Model{source, target} {
			if m != nil {
				_ = m.Close()
			}
		}
		return nil, nil, err
	}
	return source, target, nil
}
