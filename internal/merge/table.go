// Package merge folds a source model into a target model additively: new
// tables are copied and common tables gain the columns and measures they
// lack. Nothing the target already declares is removed or overwritten.
package merge

import (
	"strings"
	"unicode"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/tmdl"
)

// ExcludedPrefix marks the date tables the modeling tool generates on its
// own. They are never merged.
const ExcludedPrefix = "LocalDateTable"

// IsExcluded reports whether the table name must be left out of a merge.
func IsExcluded(name string) bool {
	return strings.HasPrefix(name, ExcludedPrefix)
}

// CleanNewTable returns the text written for a table the target lacks: the
// source text without variation blocks and lineage tags.
func CleanNewTable(source string) string {
	return tmdl.StripTransient(source)
}

// MergeTable merges the source text of a table into its target text and
// returns the new target text along with the names of the columns and
// measures that were added.
//
// The result is the target text up to its partition, then the columns and
// measures only the source declares on consecutive lines, then the source
// partition, with one blank line between those groups. When the source has
// no partition the target keeps its own.
// Columns and measures the target declares after its partition are moved in
// front of the additions so that none of them is lost.
func MergeTable(source, target string) (string, []string) {
	source = tmdl.RemoveVariationBlocks(source)

	srcColumns := tmdl.ExtractColumnBlocks(source)
	srcMeasures := tmdl.ExtractMeasureBlocks(source)
	tgtColumns := tmdl.ExtractColumnBlocks(target)
	tgtMeasures := tmdl.ExtractMeasureBlocks(target)

	groups := [][]string{{tmdl.TextBeforePartition(target)}}

	for _, b := range tmdl.BlocksAfterPartition(target) {
		groups = append(groups, []string{b.Text})
	}

	var additions []string
	added := []string{}
	for _, pair := range []struct{ src, tgt *tmdl.BlockMap }{
		{srcColumns, tgtColumns},
		{srcMeasures, tgtMeasures},
	} {
		for _, b := range pair.src.Blocks() {
			if pair.tgt.Has(b.Name) {
				continue
			}
			additions = append(additions, tmdl.RemoveLineageTags(b.Text))
			added = append(added, b.Name)
		}
	}
	groups = append(groups, additions)

	if part, ok := tmdl.ExtractPartitionBlock(source); ok {
		groups = append(groups, []string{tmdl.RemoveLineageTags(part.Text)})
	} else if part, ok := tmdl.ExtractPartitionBlock(target); ok {
		groups = append(groups, []string{part.Text})
	}

	return joinGroups(groups), added
}

// joinGroups writes the sections of a group on consecutive lines and
// separates the groups by one blank line. Trailing whitespace is trimmed from
// every section, blank sections and empty groups are dropped, and the result
// ends with exactly one newline.
func joinGroups(groups [][]string) string {
	var b strings.Builder
	for _, group := range groups {
		first := true
		for _, s := range group {
			s = strings.TrimRightFunc(s, unicode.IsSpace)
			if strings.TrimSpace(s) == "" {
				continue
			}
			switch {
			case first && b.Len() > 0:
				b.WriteString("\n\n")
			case !first:
				b.WriteByte('\n')
			}
			b.WriteString(s)
			first = false
		}
	}
	b.WriteByte('\n')
	return b.String()
}
