package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/config"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			args:      []string{},
			wantFiles: []string{"pbimodel.yaml"},
		},
		{
			name:      "init into a new subdirectory",
			args:      []string{"project"},
			wantFiles: []string{"project/pbimodel.yaml"},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "pbimodel.yaml"), []byte("existing"), 0600)
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "pbimodel.yaml"), []byte("output: auto\n"), 0600)
			},
			args:      []string{"--force"},
			wantFiles: []string{"pbimodel.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			// Run setup if provided
			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			out, _, err := executeIn(t, tmpDir, NewInitCommand(), "", tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "pbimodel.yaml already exists. Use --force to overwrite")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "pbimodel configuration created!")
			assert.Contains(t, out, "Next steps:")

			// Check expected files exist
			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(tmpDir, filepath.FromSlash(f)))
			}
		})
	}
}

func TestInitCreatesValidConfig(t *testing.T) {
	tmpDir := t.TempDir()

	_, _, err := executeIn(t, tmpDir, NewInitCommand(), "", "--source", "./dev", "--target", "./prod")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(tmpDir, "pbimodel.yaml"))
	require.NoError(t, err, "failed to read pbimodel.yaml")

	expectedContents := []string{
		"# pbimodel configuration",
		"source: ./dev",
		"target: ./prod",
		"output: auto",
		"backup: true",
		"diff_limit: 400",
		"model_suffix: .SemanticModel",
		"watch_debounce: 250ms",
	}
	for _, expected := range expectedContents {
		assert.Contains(t, string(content), expected, "config should contain %q", expected)
	}

	// The written file loads back with the roots resolved against its folder
	config.ResetConfig()
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "dev"), cfg.Source)
	assert.Equal(t, filepath.Join(tmpDir, "prod"), cfg.Target)
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce)
	assert.True(t, cfg.Backup)
}

func TestInitOmitsUnsetRoots(t *testing.T) {
	data, err := renderStarterConfig(starterConfig{Output: "auto", ModelSuffix: ".SemanticModel"})
	require.NoError(t, err)

	assert.NotContains(t, string(data), "source:")
	assert.NotContains(t, string(data), "target:")
	assert.Contains(t, string(data), "model_suffix: .SemanticModel")
}
