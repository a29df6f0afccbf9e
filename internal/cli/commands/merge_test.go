package commands

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/archive"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/testutil"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/loader"
)

func targetTables(target string) string {
	return filepath.Join(target, "Prod.SemanticModel", "definition", "tables")
}

func backups(t *testing.T, target string) []string {
	t.Helper()
	matches, err := filepath.Glob(targetTables(target) + "_backup_*")
	require.NoError(t, err)
	return matches
}

func TestMergeCommand_Yes(t *testing.T) {
	source, target := testutil.SetupModelPair(t)
	tables := targetTables(target)

	out, _, err := executeCommand(t, NewMergeCommand(), "", source, target, "--yes")
	require.NoError(t, err)

	assert.Contains(t, out, "# Merge plan")
	assert.Contains(t, out, "## Planned Changes")
	assert.Contains(t, out, "Customer (update; columns only in source: Email; columns only in target: Name; measures only in source: Customer Count)")
	assert.Contains(t, out, "Product (new table)")
	assert.Contains(t, out, "Sales (update)")
	assert.Contains(t, out, "- LocalDateTable_0a1b (auto-generated date table)")
	assert.Contains(t, out, "✓ Product (created)")
	assert.Contains(t, out, "✓ Customer (added Email, Customer Count)")
	assert.Contains(t, out, "✓ Sales (no additions)")
	assert.Contains(t, out, "✓ Merged 1 new and 2 updated tables into "+tables)
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)

	customer := string(mustRead(t, filepath.Join(tables, "Customer.tmdl")))
	assert.Contains(t, customer, "\tcolumn Name\n")
	assert.Contains(t, customer, "\tcolumn Email\n")
	assert.Contains(t, customer, "\tmeasure 'Customer Count' = COUNTROWS(Customer)\n")
	assert.Contains(t, customer, "\tpartition Customer = m\n", "the target keeps its partition")
	assert.NotContains(t, customer, "lineageTag: s3")
	assert.Less(t, strings.Index(customer, "column Email"), strings.Index(customer, "partition Customer"))

	assert.FileExists(t, filepath.Join(tables, "Product.tmdl"))
	assert.NoFileExists(t, filepath.Join(tables, "LocalDateTable.tmdl"))
	assert.Equal(t, testutil.Region, string(mustRead(t, filepath.Join(tables, "Region.tmdl"))))

	found := backups(t, target)
	require.Len(t, found, 1)
	assert.Contains(t, out, "Backup: "+found[0])
	assert.Equal(t, testutil.TargetCustomer, string(mustRead(t, filepath.Join(found[0], "Customer.tmdl"))))
	assert.NoFileExists(t, filepath.Join(found[0], "Product.tmdl"))
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestMergeCommand_Prompt(t *testing.T) {
	tests := []struct {
		name       string
		stdin      string
		wantMerged bool
	}{
		{name: "declined", stdin: "n\n", wantMerged: false},
		{name: "empty answer", stdin: "\n", wantMerged: false},
		{name: "no input", stdin: "", wantMerged: false},
		{name: "accepted", stdin: "yes\n", wantMerged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, target := testutil.SetupModelPair(t)

			out, errOut, err := executeCommand(t, NewMergeCommand(), tt.stdin, source, target)
			require.NoError(t, err)

			assert.Contains(t, errOut, "Merge 3 tables into "+target+"? [y/N]: ")
			product := filepath.Join(targetTables(target), "Product.tmdl")
			if tt.wantMerged {
				assert.FileExists(t, product)
				assert.Contains(t, out, "Merged 1 new and 2 updated tables")
				return
			}
			assert.NoFileExists(t, product)
			assert.Contains(t, errOut, "! Merge canceled")
			assert.NotContains(t, out, "Merged")
			assert.Empty(t, backups(t, target))
		})
	}
}

func TestMergeCommand_DryRun(t *testing.T) {
	source, target := testutil.SetupModelPair(t)
	tables := targetTables(target)

	out, _, err := executeCommand(t, NewMergeCommand(), "", source, target, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "## Files That Would Be Written")
	assert.Contains(t, out, filepath.Join(tables, "Customer.tmdl"))
	assert.Contains(t, out, filepath.Join(tables, "Product.tmdl"))
	assert.Contains(t, out, "Dry run: no files were written.")

	assert.NoFileExists(t, filepath.Join(tables, "Product.tmdl"))
	assert.Equal(t, testutil.TargetCustomer, string(mustRead(t, filepath.Join(tables, "Customer.tmdl"))))
	assert.Empty(t, backups(t, target))
}

func TestMergeCommand_NoBackup(t *testing.T) {
	source, target := testutil.SetupModelPair(t)

	out, _, err := executeCommand(t, NewMergeCommand(), "", source, target, "--yes", "--no-backup")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(targetTables(target), "Product.tmdl"))
	assert.Empty(t, backups(t, target))
	assert.NotContains(t, out, "Backup:")
}

func TestMergeCommand_JSON(t *testing.T) {
	source, target := testutil.SetupModelPair(t)
	t.Setenv("PBIMODEL_OUTPUT", "json")

	out, _, err := executeCommand(t, NewMergeCommand(), "", source, target, "--yes")
	require.NoError(t, err)

	var got mergeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, source, got.Source)
	assert.False(t, got.DryRun)
	assert.Equal(t, []string{"Product"}, got.NewTables)
	assert.Equal(t, []string{"Customer", "Sales"}, got.UpdatedTables)
	assert.Equal(t, []string{"Email", "Customer Count"}, got.Additions["Customer"])
	assert.Empty(t, got.Additions["Sales"])
	assert.Equal(t, []string{"LocalDateTable_0a1b"}, got.Skipped)
	assert.Equal(t, targetTables(target), got.Destination)
	assert.NotEmpty(t, got.BackupPath)
	assert.NotContains(t, out, "# Merge plan", "no human output in JSON mode")
}

func TestMergeCommand_DryRunJSON(t *testing.T) {
	source, target := testutil.SetupModelPair(t)
	t.Setenv("PBIMODEL_OUTPUT", "json")

	out, _, err := executeCommand(t, NewMergeCommand(), "", source, target, "--dry-run")
	require.NoError(t, err)

	var got mergeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.DryRun)
	assert.Empty(t, got.BackupPath)
	assert.Equal(t, []string{
		filepath.Join(targetTables(target), "Customer.tmdl"),
		filepath.Join(targetTables(target), "Product.tmdl"),
		filepath.Join(targetTables(target), "Sales.tmdl"),
	}, got.Written)
}

func TestMergeCommand_RepeatedMergeAddsNothing(t *testing.T) {
	source, target := testutil.SetupModelPair(t)

	_, _, err := executeCommand(t, NewMergeCommand(), "", source, target, "--yes", "--no-backup")
	require.NoError(t, err)
	first := string(mustRead(t, filepath.Join(targetTables(target), "Customer.tmdl")))

	out, _, err := executeCommand(t, NewMergeCommand(), "", source, target, "--yes", "--no-backup")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Customer (no additions)")
	assert.Contains(t, out, "Merged 0 new and 3 updated tables")
	assert.Equal(t, first, string(mustRead(t, filepath.Join(targetTables(target), "Customer.tmdl"))))
}

func TestMergeCommand_NothingToMerge(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "dev")
	testutil.WriteModel(t, source, "Dev", map[string]string{"LocalDateTable.tmdl": testutil.LocalDateTable})
	_, target := testutil.SetupModelPair(t)

	out, _, err := executeCommand(t, NewMergeCommand(), "", source, target)
	require.NoError(t, err)

	assert.Contains(t, out, "Nothing to merge.")
	assert.Contains(t, out, "LocalDateTable_0a1b (auto-generated date table)")
	assert.Empty(t, backups(t, target))
}

func TestMergeCommand_ArchiveTarget(t *testing.T) {
	source, target := testutil.SetupModelPair(t)
	ctx := context.Background()
	zipPath := filepath.Join(t.TempDir(), "prod.zip")
	require.NoError(t, archive.PackFile(ctx, target, zipPath))
	original := mustRead(t, zipPath)

	_, _, err := executeCommand(t, NewMergeCommand(), "", source, zipPath, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is an archive; use --archive")

	merged := filepath.Join(t.TempDir(), "merged.zip")
	out, _, err := executeCommand(t, NewMergeCommand(), "", source, zipPath, "--yes", "--archive", merged)
	require.NoError(t, err)
	assert.Contains(t, out, "Archive: "+merged)
	assert.NotContains(t, out, "Backup:", "archive targets are not backed up")
	assert.Equal(t, original, mustRead(t, zipPath), "the input archive is left untouched")

	m, err := loader.New(loader.Config{TempDir: t.TempDir()}).Load(ctx, merged)
	require.NoError(t, err)
	defer func() { _ = m.Close() }()
	assert.Contains(t, m.Tables, "Product")
	assert.True(t, m.Tables["Customer"].Columns.Has("Email"))
	assert.True(t, m.Tables["Customer"].Columns.Has("Name"))
}

func TestMergeCommand_FolderArchiveExcludesBackup(t *testing.T) {
	source, target := testutil.SetupModelPair(t)
	merged := filepath.Join(t.TempDir(), "merged.zip")

	_, _, err := executeCommand(t, NewMergeCommand(), "", source, target, "--yes", "--archive", merged)
	require.NoError(t, err)
	require.Len(t, backups(t, target), 1)

	zr, err := zip.NewReader(bytes.NewReader(mustRead(t, merged)), int64(len(mustRead(t, merged))))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Prod.SemanticModel/definition/tables/Product.tmdl")
	for _, name := range names {
		assert.NotContains(t, name, "_backup_")
	}
}

func TestMergeCommand_Errors(t *testing.T) {
	source, _ := testutil.SetupModelPair(t)

	_, _, err := executeCommand(t, NewMergeCommand(), "", source)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target model is required")

	_, _, err = executeCommand(t, NewMergeCommand(), "", source, t.TempDir(), "--yes")
	require.Error(t, err)
	assert.ErrorIs(t, err, loader.ErrModelNotFound)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  YES  \n", true},
		{"yes", true},
		{"n\n", false},
		{"no\n", false},
		{"maybe\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirm(strings.NewReader(tt.input), &out, "Merge?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(out.String(), "Merge? [y/N]: "))
		})
	}
}
