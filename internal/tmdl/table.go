package tmdl

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileExtension is the extension of table definition files.
const FileExtension = ".tmdl"

// NameSet is an unordered set of element names.
type NameSet map[string]struct{}

// NewNameSet returns a set holding names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name.
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in ascending order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Minus returns the sorted names of s that are not in other.
func (s NameSet) Minus(other NameSet) []string {
	out := []string{}
	for name := range s {
		if !other.Has(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same names.
func (s NameSet) Equal(other NameSet) bool {
	if len(s) != len(other) {
		return false
	}
	for name := range s {
		if !other.Has(name) {
			return false
		}
	}
	return true
}

// Table is one parsed table file. Tables are never modified after parsing;
// a merge produces new text instead.
type Table struct {
	Name     string
	File     string
	Text     string
	Columns  NameSet
	Measures NameSet
}

// ParseTable builds a Table from the text of file. The name comes from the
// first table declaration, or from the file name without extension when
// the text has none.
func ParseTable(file, text string) *Table {
	lines := Scan(text)

	name := ""
	if i := firstOfKind(lines, KindTable); i >= 0 {
		name = lines[i].Name
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}

	return &Table{
		Name:     name,
		File:     file,
		Text:     text,
		Columns:  namesOfKind(lines, KindColumn),
		Measures: namesOfKind(lines, KindMeasure),
	}
}

// ReadTable reads and parses the table file at path.
func ReadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a directory listing
	if err != nil {
		return nil, fmt.Errorf("read table file: %w", err)
	}
	return ParseTable(path, Decode(data)), nil
}

// ColumnBlocks returns the column blocks of the table text.
func (t *Table) ColumnBlocks() *BlockMap {
	return ExtractColumnBlocks(t.Text)
}

// MeasureBlocks returns the measure blocks of the table text.
func (t *Table) MeasureBlocks() *BlockMap {
	return ExtractMeasureBlocks(t.Text)
}
