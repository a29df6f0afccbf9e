// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli/output"
	inttestutil "github.com/ThaylaOliveira/powerbi-model-manager/internal/testutil"
)

// Table definitions shared by the CLI tests.
const (
	SourceCustomer = "table Customer\n" +
		"\tlineageTag: s1\n" +
		"\n" +
		"\tcolumn CustomerID\n" +
		"\t\tdataType: int64\n" +
		"\t\tlineageTag: s2\n" +
		"\n" +
		"\tcolumn Email\n" +
		"\t\tdataType: string\n" +
		"\t\tlineageTag: s3\n" +
		"\n" +
		"\tmeasure 'Customer Count' = COUNTROWS(Customer)\n" +
		"\t\tlineageTag: s4\n"

	TargetCustomer = "table Customer\n" +
		"\tlineageTag: t1\n" +
		"\n" +
		"\tcolumn CustomerID\n" +
		"\t\tdataType: int64\n" +
		"\t\tlineageTag: t2\n" +
		"\n" +
		"\tcolumn Name\n" +
		"\t\tdataType: string\n" +
		"\t\tlineageTag: t3\n" +
		"\n" +
		"\tpartition Customer = m\n" +
		"\t\tmode: import\n"

	Sales = "table Sales\n" +
		"\tcolumn OrderID\n" +
		"\t\tdataType: int64\n" +
		"\n" +
		"\tmeasure Revenue = SUM(Sales[Amount])\n"

	Product = "table Product\n" +
		"\tcolumn ProductID\n" +
		"\t\tdataType: int64\n"

	Region = "table Region\n" +
		"\tcolumn RegionID\n" +
		"\t\tdataType: int64\n"

	LocalDateTable = "table LocalDateTable_0a1b\n" +
		"\tcolumn Date\n" +
		"\t\tdataType: dateTime\n"
)

// WriteModel creates <root>/<name>.SemanticModel/definition/tables with one
// file per table and returns the tables folder.
func WriteModel(t *testing.T, root, name string, tables map[string]string) string {
	t.Helper()
	rel := filepath.Join(name+".SemanticModel", "definition", "tables")
	files := map[string]string{
		filepath.ToSlash(filepath.Join(name+".SemanticModel", "definition", "model.tmdl")): "model Model\n",
	}
	for file, content := range tables {
		files[filepath.ToSlash(filepath.Join(rel, file))] = content
	}
	inttestutil.WriteTree(t, root, files)
	return filepath.Join(root, rel)
}

// SetupModelPair creates a source and a target model folder.
//
// Source: Customer (adds Email and 'Customer Count'), Sales, Product and a
// LocalDateTable. Target: Customer, Sales and Region.
func SetupModelPair(t *testing.T) (source, target string) {
	t.Helper()

	source = filepath.Join(t.TempDir(), "dev")
	WriteModel(t, source, "Dev", map[string]string{
		"Customer.tmdl":       SourceCustomer,
		"Sales.tmdl":          Sales,
		"Product.tmdl":        Product,
		"LocalDateTable.tmdl": LocalDateTable,
	})

	target = filepath.Join(t.TempDir(), "prod")
	WriteModel(t, target, "Prod", map[string]string{
		"Customer.tmdl": TargetCustomer,
		"Sales.tmdl":    Sales,
		"Region.tmdl":   Region,
	})

	return source, target
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
