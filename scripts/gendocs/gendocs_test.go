package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPage(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index := readPage(t, filepath.Join(dir, "index.md"))
	assert.True(t, strings.HasPrefix(index, "---\ntitle: CLI Reference\n"))
	assert.Contains(t, index, generatedMarker)
	assert.Contains(t, index, "[`compare`](/cli/compare)")
	assert.Contains(t, index, "`PBIMODEL_DIFF_LIMIT`")

	for _, name := range []string{"compare", "merge", "watch", "pack", "init", "version"} {
		assert.FileExists(t, filepath.Join(dir, name+".md"))
	}

	assert.NoFileExists(t, filepath.Join(dir, "completion.md"))
	assert.Contains(t, index, "| `markdown` | Headers, markdown tables and a fenced diff block |")

	merge := readPage(t, filepath.Join(dir, "merge.md"))
	assert.Contains(t, merge, "```bash\npbimodel merge [source] [target] [flags]\n```")
	assert.Contains(t, merge, "| `--no-backup` | - | `backup` | command |")
	assert.Contains(t, merge, "| `-o`, `--output` | - | `output` | global |")
	assert.Contains(t, merge, "## Structured Output")
	assert.Contains(t, merge, "`new_tables`")
	assert.Contains(t, merge, "## Examples")

	version := readPage(t, filepath.Join(dir, "version.md"))
	assert.NotContains(t, version, "## Structured Output")
}

func TestConfigKeysByFlag(t *testing.T) {
	keys := configKeysByFlag()
	assert.Equal(t, "backup", keys["no-backup"])
	assert.Equal(t, "watch_debounce", keys["debounce"])
	assert.Equal(t, "diff_limit", keys["diff-limit"])
	assert.NotContains(t, keys, "source")
}

func TestGenerateConfigDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateConfigDocs(dir))

	page := readPage(t, filepath.Join(dir, "configuration.md"))
	assert.Contains(t, page, "`pbimodel.yaml`")
	assert.Contains(t, page, "| `watch_debounce` | duration | `250ms` | `PBIMODEL_WATCH_DEBOUNCE` | `--debounce` |")
	assert.Contains(t, page, "```yaml\nsource: ./dev\n")
}

func TestDedent(t *testing.T) {
	assert.Equal(t, "# a\npbimodel pack ./prod prod.zip", dedent("  # a\n  pbimodel pack ./prod prod.zip\n"))
	assert.Equal(t, "x", dedent("x"))
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "a | b c", cleanDescription("a |  b\nc"))
}
