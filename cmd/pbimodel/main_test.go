// Package main provides tests for the pbimodel CLI.
package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli"
	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	if !strings.Contains(output, "pbimodel v") {
		t.Errorf("version output should contain 'pbimodel v', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"compare", "merge", "watch", "pack", "init", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion command error = %v", err)
	}
	if !strings.Contains(output, "pbimodel") {
		t.Errorf("completion script should mention pbimodel, got: %s", output)
	}
}

type counts struct {
	Counts struct {
		Identical    int `json:"identical"`
		Different    int `json:"different"`
		OnlyInSource int `json:"only_in_source"`
		OnlyInTarget int `json:"only_in_target"`
	} `json:"counts"`
}

func compareCounts(t *testing.T, source, target string) counts {
	t.Helper()
	output, err := execute(t, "compare", "-o", "json", source, target)
	if err != nil {
		t.Fatalf("compare command error = %v\noutput: %s", err, output)
	}
	var c counts
	if err := json.Unmarshal([]byte(output), &c); err != nil {
		t.Fatalf("compare output is not JSON: %v\noutput: %s", err, output)
	}
	return c
}

func TestCompareMergeCompare(t *testing.T) {
	source, target := testutil.SetupModelPair(t)

	before := compareCounts(t, source, target)
	if before.Counts.OnlyInSource != 2 || before.Counts.Different != 1 || before.Counts.OnlyInTarget != 1 {
		t.Fatalf("unexpected counts before merge: %+v", before.Counts)
	}

	output, err := execute(t, "merge", "--yes", source, target)
	if err != nil {
		t.Fatalf("merge command error = %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "Merged 1 new and 2 updated tables") {
		t.Errorf("merge output should report the merged tables, got: %s", output)
	}

	after := compareCounts(t, source, target)
	// Only the skipped date table is left on the source side, and Customer
	// still differs because the target keeps its own Name column.
	if after.Counts.OnlyInSource != 1 {
		t.Errorf("only_in_source after merge = %d, want 1", after.Counts.OnlyInSource)
	}
	if after.Counts.Different != 1 {
		t.Errorf("different after merge = %d, want 1", after.Counts.Different)
	}
	if after.Counts.OnlyInTarget != 1 {
		t.Errorf("only_in_target after merge = %d, want 1", after.Counts.OnlyInTarget)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	source, target := testutil.SetupModelPair(t)

	_, err := execute(t, "compare", "-o", "xml", source, target)
	if err == nil {
		t.Fatal("expected an error for an unknown output format")
	}
	if !strings.Contains(err.Error(), "invalid output format") {
		t.Errorf("error should mention the output format, got: %v", err)
	}
}

func TestMissingRoots(t *testing.T) {
	_, err := execute(t, "compare")
	if err == nil {
		t.Fatal("expected an error without models")
	}
	if !strings.Contains(err.Error(), "source model is required") {
		t.Errorf("unexpected error: %v", err)
	}
}
