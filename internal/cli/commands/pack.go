package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/archive"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/output"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/loader"
)

// NewPackCommand creates the pack command.
func NewPackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <model> <archive.zip>",
		Short: "Package a model folder as a zip archive",
		Long: `Package a folder containing a *.SemanticModel folder as a zip archive.

The archive keeps paths relative to the given folder, so it can be used as
the source or target of compare and merge.`,
		Example: `  pbimodel pack ./prod prod.zip`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			return runPack(commandContext(cmd), cc, args[0], args[1])
		},
	}
}

type packOutput struct {
	Model    string `json:"model" yaml:"model"`
	ModelDir string `json:"model_dir" yaml:"model_dir"`
	Archive  string `json:"archive" yaml:"archive"`
}

func runPack(ctx context.Context, cc *CommandContext, model, zipPath string) error {
	if !archive.IsArchive(zipPath) {
		return fmt.Errorf("archive name must end in %s: %s", archive.Extension, zipPath)
	}
	modelDir, err := loader.FindSemanticModelDir(model, cc.Cfg.ModelSuffix)
	if err != nil {
		return err
	}
	if err := archive.PackFile(ctx, model, zipPath); err != nil {
		return err
	}
	cc.Logger.Info("model packed", "model", model, "archive", zipPath)

	out := packOutput{Model: model, ModelDir: modelDir, Archive: zipPath}
	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeYAML:
		return r.YAML(out)
	}
	r.Success(fmt.Sprintf("Packed %s into %s", model, zipPath))
	return nil
}
