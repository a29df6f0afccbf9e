package tmdl

import "sort"

// Block is the verbatim text of one declaration, with trailing whitespace
// removed.
type Block struct {
	Kind Kind
	Name string
	Text string
	Line int // 1-based line of the declaration
}

// BlockMap maps element names to their blocks and remembers the order in
// which the names were first seen.
type BlockMap struct {
	order  []string
	blocks map[string]Block
}

// NewBlockMap returns an empty BlockMap.
func NewBlockMap() *BlockMap {
	return &BlockMap{blocks: make(map[string]Block)}
}

// Add stores b under its name. A name that is already present keeps its
// first block.
func (m *BlockMap) Add(b Block) bool {
	if _, ok := m.blocks[b.Name]; ok {
		return false
	}
	m.order = append(m.order, b.Name)
	m.blocks[b.Name] = b
	return true
}

// Get returns the block stored under name.
func (m *BlockMap) Get(name string) (Block, bool) {
	b, ok := m.blocks[name]
	return b, ok
}

// Has reports whether name is present.
func (m *BlockMap) Has(name string) bool {
	_, ok := m.blocks[name]
	return ok
}

// Len returns the number of blocks.
func (m *BlockMap) Len() int {
	return len(m.order)
}

// Names returns the names in discovery order.
func (m *BlockMap) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Blocks returns the blocks in discovery order.
func (m *BlockMap) Blocks() []Block {
	out := make([]Block, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.blocks[name])
	}
	return out
}

// NameSet returns the names as a set.
func (m *BlockMap) NameSet() NameSet {
	s := make(NameSet, len(m.order))
	for _, name := range m.order {
		s.Add(name)
	}
	return s
}

// ExtractColumnBlocks returns the block of every column declared in text.
// A block runs from its declaration line to the line before the next
// column, measure or partition keyword, or to the end of text.
func ExtractColumnBlocks(text string) *BlockMap {
	return extractBlocks(Scan(text), KindColumn)
}

// ExtractMeasureBlocks returns the block of every measure declared in text,
// delimited the same way as columns.
func ExtractMeasureBlocks(text string) *BlockMap {
	return extractBlocks(Scan(text), KindMeasure)
}

func extractBlocks(lines []Line, kind Kind) *BlockMap {
	m := NewBlockMap()
	for i := 0; i < len(lines); i++ {
		if lines[i].Kind != kind {
			continue
		}
		end := i + 1
		for end < len(lines) && lines[end].Boundary == "" {
			end++
		}
		m.Add(Block{
			Kind: kind,
			Name: lines[i].Name,
			Text: trimRight(joinLines(lines[i:end])),
			Line: lines[i].Number,
		})
		i = end - 1
	}
	return m
}

// ExtractPartitionBlock returns the first partition declared in text. The
// block extends to the end of text, or to the next column or measure
// keyword if one follows the partition. Only one partition per table is
// supported; later partitions stay inside the first block.
func ExtractPartitionBlock(text string) (Block, bool) {
	lines := Scan(text)
	start := firstOfKind(lines, KindPartition)
	if start < 0 {
		return Block{}, false
	}
	end := start + 1
	for end < len(lines) && lines[end].Boundary != "column" && lines[end].Boundary != "measure" {
		end++
	}
	return Block{
		Kind: KindPartition,
		Name: lines[start].Name,
		Text: trimRight(joinLines(lines[start:end])),
		Line: lines[start].Number,
	}, true
}

// TextBeforePartition returns the lines of text that precede its first
// partition declaration, right-trimmed and terminated by a single newline.
// Text without a partition is returned whole.
func TextBeforePartition(text string) string {
	lines := Scan(text)
	if start := firstOfKind(lines, KindPartition); start >= 0 {
		lines = lines[:start]
	}
	return trimRight(joinLines(lines)) + "\n"
}

// BlocksAfterPartition returns the column and measure blocks declared after
// the first partition of text, in order.
func BlocksAfterPartition(text string) []Block {
	lines := Scan(text)
	start := firstOfKind(lines, KindPartition)
	if start < 0 {
		return nil
	}
	var out []Block
	for _, kind := range []Kind{KindColumn, KindMeasure} {
		for _, b := range extractBlocks(lines, kind).Blocks() {
			if b.Line > lines[start].Number {
				out = append(out, b)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

func firstOfKind(lines []Line, kind Kind) int {
	for i, l := range lines {
		if l.Kind == kind {
			return i
		}
	}
	return -1
}

// ColumnNames returns the set of column names declared in text. It always
// equals the key set of ExtractColumnBlocks(text).
func ColumnNames(text string) NameSet {
	return namesOfKind(Scan(text), KindColumn)
}

// MeasureNames returns the set of measure names declared in text. It always
// equals the key set of ExtractMeasureBlocks(text).
func MeasureNames(text string) NameSet {
	return namesOfKind(Scan(text), KindMeasure)
}

func namesOfKind(lines []Line, kind Kind) NameSet {
	s := make(NameSet)
	for _, l := range lines {
		if l.Kind == kind {
			s.Add(l.Name)
		}
	}
	return s
}
