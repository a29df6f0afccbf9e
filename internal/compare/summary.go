package compare

import (
	"fmt"
	"sort"
	"strings"
)

// Summary renders the report as plain text: the counts, then the tables
// found on one side only, then the structural differences of every
// different table. It is the format written by --report-file.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tables in source: %d\n", r.Counts.SourceTotal)
	fmt.Fprintf(&b, "Tables in target: %d\n", r.Counts.TargetTotal)
	fmt.Fprintf(&b, "Identical: %d\n", r.Counts.Identical)
	fmt.Fprintf(&b, "Different: %d\n", r.Counts.Different)
	fmt.Fprintf(&b, "Only in source: %d\n", r.Counts.OnlyInSource)
	fmt.Fprintf(&b, "Only in target: %d\n", r.Counts.OnlyInTarget)

	writeNameList(&b, "Tables only in source:", r.Lists.OnlyInSource)
	writeNameList(&b, "Tables only in target:", r.Lists.OnlyInTarget)

	if len(r.Details) > 0 {
		b.WriteString("\nDifferences by table:\n")
		for _, name := range r.detailNames() {
			d := r.Details[name]
			fmt.Fprintf(&b, "- %s:\n", name)
			writeDetail(&b, "Columns only in source", d.ColumnsOnlyInSource)
			writeDetail(&b, "Columns only in target", d.ColumnsOnlyInTarget)
			writeDetail(&b, "Measures only in source", d.MeasuresOnlyInSource)
			writeDetail(&b, "Measures only in target", d.MeasuresOnlyInTarget)
			if len(d.TextDiff) > 0 {
				fmt.Fprintf(&b, "    * Text differs (%d diff lines)\n", len(d.TextDiff))
			}
		}
	}

	return b.String()
}

// detailNames returns the names of the different tables in report order.
func (r *Report) detailNames() []string {
	if len(r.Lists.Different) == len(r.Details) {
		return r.Lists.Different
	}
	names := make([]string, 0, len(r.Details))
	for name := range r.Details {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeNameList(b *strings.Builder, title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, name := range names {
		fmt.Fprintf(b, "  - %s\n", name)
	}
}

func writeDetail(b *strings.Builder, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "    * %s: %s\n", label, strings.Join(names, ", "))
}
