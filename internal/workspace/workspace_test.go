package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupPath(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	got := BackupPath(filepath.Join("models", "Sales.SemanticModel", "definition", "tables")+string(filepath.Separator), ts)

	assert.Equal(t, filepath.Join("models", "Sales.SemanticModel", "definition", "tables_backup_20240309_140507"), got)
}

func TestOS_Snapshot(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tables")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Sales.tmdl"), []byte("table Sales\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "x.txt"), []byte("x"), 0o644))

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fs := &OS{Now: func() time.Time { return ts }}

	backup, err := fs.Snapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "tables_backup_20240102_030405"), backup)

	data, err := os.ReadFile(filepath.Join(backup, "Sales.tmdl"))
	require.NoError(t, err)
	assert.Equal(t, "table Sales\n", string(data))
	assert.FileExists(t, filepath.Join(backup, "nested", "x.txt"))

	// A second snapshot with the same timestamp replaces the first.
	require.NoError(t, os.WriteFile(filepath.Join(backup, "stale.tmdl"), []byte("old"), 0o644))
	_, err = fs.Snapshot(dir)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(backup, "stale.tmdl"))
	assert.FileExists(t, filepath.Join(backup, "Sales.tmdl"))
}

func TestOS_SnapshotMissingDir(t *testing.T) {
	_, err := NewOS().Snapshot(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestOS_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Customer.tmdl")
	fs := NewOS()

	require.NoError(t, fs.WriteFile(path, []byte("one")))
	require.NoError(t, fs.WriteFile(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	err = fs.WriteFile(filepath.Join(dir, "missing", "x.tmdl"), []byte("x"))
	assert.ErrorContains(t, err, "write ")
}

func TestMemory(t *testing.T) {
	m := NewMemory()

	backup, err := m.Snapshot("/models/tables")
	require.NoError(t, err)
	assert.Contains(t, backup, "tables_backup_")

	data := []byte("table A\n")
	require.NoError(t, m.WriteFile("/models/tables/B.tmdl", []byte("table B\n")))
	require.NoError(t, m.WriteFile("/models/tables/A.tmdl", data))
	data[0] = 'X'

	got, ok := m.File("/models/tables/A.tmdl")
	require.True(t, ok)
	assert.Equal(t, "table A\n", string(got), "writes are copied")

	_, ok = m.File("/models/tables/C.tmdl")
	assert.False(t, ok)

	assert.Equal(t, []string{"/models/tables/A.tmdl", "/models/tables/B.tmdl"}, m.Paths())
	assert.Equal(t, []string{"/models/tables"}, m.Snapshots())
}

var (
	_ FS = (*OS)(nil)
	_ FS = (*Memory)(nil)
)
