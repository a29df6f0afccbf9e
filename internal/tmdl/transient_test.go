package tmdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveVariationBlocks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "nested lines are dropped",
			in: "\tcolumn Date\n" +
				"\t\tdataType: dateTime\n" +
				"\n" +
				"\t\tvariation Variation\n" +
				"\t\t\tisDefault\n" +
				"\t\t\trelationship: abc\n" +
				"\n" +
				"\t\tannotation SummarizationSetBy = Automatic\n",
			want: "\tcolumn Date\n" +
				"\t\tdataType: dateTime\n" +
				"\n" +
				"\t\tannotation SummarizationSetBy = Automatic\n",
		},
		{
			name: "shallower line ends the skip",
			in:   "\t\tvariation V\n\t\t\tx\n\tcolumn Next\n",
			want: "\tcolumn Next\n",
		},
		{
			name: "variation at end of text",
			in:   "\tcolumn A\n\t\tvariation V\n\t\t\tisDefault\n",
			want: "\tcolumn A\n",
		},
		{
			name: "consecutive variations",
			in:   "\tcolumn A\n\t\tvariation V1\n\t\t\tx\n\t\tvariation V2\n\t\t\ty\n\t\tsummarizeBy: none\n",
			want: "\tcolumn A\n\t\tsummarizeBy: none\n",
		},
		{
			name: "blank lines inside the region do not end it",
			in:   "\tvariation V\n\n\n\t\tx\n\n\tkept\n",
			want: "\tkept\n",
		},
		{
			name: "variation keyword needs a name",
			in:   "\tvariation\n\t\tx\n",
			want: "\tvariation\n\t\tx\n",
		},
		{
			name: "no trailing newline is preserved",
			in:   "a\n\tvariation V\n\t\tx\nb",
			want: "a\nb",
		},
		{
			name: "empty text",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveVariationBlocks(tt.in))
		})
	}
}

func TestRemoveVariationBlocks_SalesTable(t *testing.T) {
	out := RemoveVariationBlocks(salesTable)
	assert.NotContains(t, out, "variation")
	assert.NotContains(t, out, "isDefault")
	assert.NotContains(t, out, "defaultHierarchy")
	assert.Contains(t, out, "\t\tsourceColumn: OrderDate\n\n\t\tannotation SummarizationSetBy = Automatic\n")
	assert.Equal(t, ExtractColumnBlocks(salesTable).Names(), ExtractColumnBlocks(out).Names())
}

func TestRemoveLineageTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "any indentation",
			in:   "table T\n\tlineageTag: 1\n\tcolumn A\n\t\tlineageTag: 2\n\t\tdataType: string\n",
			want: "table T\n\tcolumn A\n\t\tdataType: string\n",
		},
		{
			name: "only whole lineage lines",
			in:   "\t\tdescription: lineageTag: is a word here\n",
			want: "\t\tdescription: lineageTag: is a word here\n",
		},
		{
			name: "text made only of lineage tags",
			in:   "lineageTag: 1\n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveLineageTags(tt.in))
		})
	}
}

func TestStripTransient(t *testing.T) {
	out := StripTransient(salesTable)
	assert.NotContains(t, out, "lineageTag")
	assert.NotContains(t, out, "variation")
	assert.Contains(t, out, "partition Sales = m")
}
