// Package compare reports the differences between two sets of parsed tables.
package compare

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/tmdl"
)

// DefaultDiffLimit is the number of unified diff lines kept per table.
const DefaultDiffLimit = 400

// diffContext is the number of unchanged lines around each hunk.
const diffContext = 3

// Counts holds the size of every category of a Report.
type Counts struct {
	SourceTotal  int `json:"source_total" yaml:"source_total"`
	TargetTotal  int `json:"target_total" yaml:"target_total"`
	Identical    int `json:"identical" yaml:"identical"`
	Different    int `json:"different" yaml:"different"`
	OnlyInSource int `json:"only_in_source" yaml:"only_in_source"`
	OnlyInTarget int `json:"only_in_target" yaml:"only_in_target"`
}

// Lists holds the table names of every category, sorted.
type Lists struct {
	Identical    []string `json:"identical" yaml:"identical"`
	Different    []string `json:"different" yaml:"different"`
	OnlyInSource []string `json:"only_in_source" yaml:"only_in_source"`
	OnlyInTarget []string `json:"only_in_target" yaml:"only_in_target"`
}

// TableDiff describes how one table differs between source and target.
type TableDiff struct {
	ColumnsOnlyInSource  []string `json:"cols_only_in_source" yaml:"cols_only_in_source"`
	ColumnsOnlyInTarget  []string `json:"cols_only_in_target" yaml:"cols_only_in_target"`
	MeasuresOnlyInSource []string `json:"measures_only_in_source" yaml:"measures_only_in_source"`
	MeasuresOnlyInTarget []string `json:"measures_only_in_target" yaml:"measures_only_in_target"`

	// TextDiff is a unified diff of the raw texts. It is only computed when
	// the column and measure names of both sides are the same.
	TextDiff []string `json:"textual_diff_snippet,omitempty" yaml:"textual_diff_snippet,omitempty"`
}

// HasStructuralChanges reports whether any column or measure is missing on
// one side.
func (d TableDiff) HasStructuralChanges() bool {
	return len(d.ColumnsOnlyInSource) > 0 || len(d.ColumnsOnlyInTarget) > 0 ||
		len(d.MeasuresOnlyInSource) > 0 || len(d.MeasuresOnlyInTarget) > 0
}

// Report is the result of Compare.
type Report struct {
	Counts  Counts               `json:"counts" yaml:"counts"`
	Lists   Lists                `json:"lists" yaml:"lists"`
	Details map[string]TableDiff `json:"details" yaml:"details"`
}

// HasDifferences reports whether the two sides are not identical.
func (r *Report) HasDifferences() bool {
	return r.Counts.Different > 0 || r.Counts.OnlyInSource > 0 || r.Counts.OnlyInTarget > 0
}

type options struct {
	diffLimit int
}

// Option configures Compare.
type Option func(*options)

// WithDiffLimit sets how many unified diff lines are kept per table.
// Values below one keep the default.
func WithDiffLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.diffLimit = n
		}
	}
}

// Compare classifies every table name of source and target.
//
// Names present on one side only are reported as such. A common table is
// identical when its texts are byte-identical. Otherwise its column and
// measure name sets are compared, and only when they match is a textual
// diff computed. A common table with neither structural changes nor a
// textual diff is counted as identical.
func Compare(source, target map[string]*tmdl.Table, opts ...Option) *Report {
	o := options{diffLimit: DefaultDiffLimit}
	for _, opt := range opts {
		opt(&o)
	}

	report := &Report{
		Lists: Lists{
			Identical:    []string{},
			Different:    []string{},
			OnlyInSource: []string{},
			OnlyInTarget: []string{},
		},
		Details: make(map[string]TableDiff),
	}

	var common []string
	for name := range source {
		if _, ok := target[name]; ok {
			common = append(common, name)
		} else {
			report.Lists.OnlyInSource = append(report.Lists.OnlyInSource, name)
		}
	}
	for name := range target {
		if _, ok := source[name]; !ok {
			report.Lists.OnlyInTarget = append(report.Lists.OnlyInTarget, name)
		}
	}
	sort.Strings(common)
	sort.Strings(report.Lists.OnlyInSource)
	sort.Strings(report.Lists.OnlyInTarget)

	for _, name := range common {
		src, tgt := source[name], target[name]
		if src.Text == tgt.Text {
			report.Lists.Identical = append(report.Lists.Identical, name)
			continue
		}

		d := TableDiff{
			ColumnsOnlyInSource:  src.Columns.Minus(tgt.Columns),
			ColumnsOnlyInTarget:  tgt.Columns.Minus(src.Columns),
			MeasuresOnlyInSource: src.Measures.Minus(tgt.Measures),
			MeasuresOnlyInTarget: tgt.Measures.Minus(src.Measures),
		}
		if !d.HasStructuralChanges() {
			d.TextDiff = UnifiedDiff(name, src.Text, tgt.Text, o.diffLimit)
		}

		if d.HasStructuralChanges() || len(d.TextDiff) > 0 {
			report.Lists.Different = append(report.Lists.Different, name)
			report.Details[name] = d
		} else {
			report.Lists.Identical = append(report.Lists.Identical, name)
		}
	}

	report.Counts = Counts{
		SourceTotal:  len(source),
		TargetTotal:  len(target),
		Identical:    len(report.Lists.Identical),
		Different:    len(report.Lists.Different),
		OnlyInSource: len(report.Lists.OnlyInSource),
		OnlyInTarget: len(report.Lists.OnlyInTarget),
	}
	return report
}

// UnifiedDiff returns at most limit lines of a unified diff from the source
// text to the target text of a table, without line terminators.
func UnifiedDiff(name, source, target string, limit int) []string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(source),
		B:        splitLines(target),
		FromFile: name + " (source)",
		ToFile:   name + " (target)",
		Context:  diffContext,
	})
	if err != nil || diff == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return lines
}

// noNewlineMarker follows a last line that has no line terminator.
const noNewlineMarker = "\\ No newline at end of file\n"

// splitLines splits text into newline terminated lines. A last line without
// a terminator carries the no-newline marker, so it differs from the same
// line with one and the diff output stays one entry per line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n" + noNewlineMarker
	return lines
}
