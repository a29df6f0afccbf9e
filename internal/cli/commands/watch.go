package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/archive"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/config"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/loader"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/tmdl"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "watch [source] [target]",
		Short: "Compare two models again whenever their table files change",
		Long: `Compare two semantic model folders, then watch their table folders and
compare again each time a .tmdl file is written, created, removed or renamed.

Bursts of changes are collapsed: the comparison runs once the folders have
been quiet for the debounce interval.`,
		Example: `  # Watch two model folders
  pbimodel watch ./dev ./prod

  # Wait a full second after the last change
  pbimodel watch ./dev ./prod --debounce 1s`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cc := NewCommandContext(cmd)
			return runWatch(ctx, cc, args, showDiff)
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show textual diffs of changed tables")
	cmd.Flags().Duration("debounce", config.DefaultWatchDebounce, "Quiet period before comparing again")

	return cmd
}

func runWatch(ctx context.Context, cc *CommandContext, args []string, showDiff bool) error {
	r := cc.Renderer

	source, target, err := cc.Roots(args)
	if err != nil {
		return err
	}
	if archive.IsArchive(source) || archive.IsArchive(target) {
		return errors.New("watch needs model folders, not archives")
	}

	var dirs []string
	for _, root := range []string{source, target} {
		dir, err := tablesDirOf(root, cc.Cfg.ModelSuffix)
		if err != nil {
			return err
		}
		dirs = append(dirs, dir)
	}

	w, err := newModelWatcher(dirs, cc.Cfg.WatchDebounce, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	compareNow := func() {
		if err := runCompare(ctx, cc, []string{source, target}, showDiff); err != nil {
			r.Error(err.Error())
		}
	}

	compareNow()
	if isHumanMode(r) {
		r.Println("")
		r.Muted("Watching for changes. Press Ctrl+C to stop.")
	}

	return w.run(ctx, func(changed []string) {
		names := make([]string, len(changed))
		for i, path := range changed {
			names[i] = filepath.Base(path)
		}
		cc.Logger.Info("table files changed", "files", names)
		if isHumanMode(r) {
			r.Println("")
			r.Muted("Changed: " + strings.Join(names, ", "))
		}
		compareNow()
	})
}

// tablesDirOf returns the table folder of the model under root.
func tablesDirOf(root, suffix string) (string, error) {
	modelDir, err := loader.FindSemanticModelDir(root, suffix)
	if err != nil {
		return "", err
	}
	return loader.TablesDir(modelDir)
}

// modelWatcher reports debounced changes to table files.
type modelWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

func newModelWatcher(dirs []string, debounce time.Duration, logger *slog.Logger) (*modelWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return &modelWatcher{watcher: watcher, debounce: debounce, logger: logger}, nil
}

func (w *modelWatcher) Close() error {
	return w.watcher.Close()
}

// run calls onChange with the changed table files after each burst of
// events, until ctx is done. onChange runs on the calling goroutine.
func (w *modelWatcher) run(ctx context.Context, onChange func(changed []string)) error {
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	pending := make(map[string]struct{})

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), tmdl.FileExtension) {
				continue
			}

			pending[event.Name] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})
			onChange(changed)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
