package tmdl

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind identifies the declaration a line starts.
type Kind int

// Line kinds recognized by the scanner.
const (
	KindOther Kind = iota
	KindBlank
	KindTable
	KindColumn
	KindMeasure
	KindPartition
	KindVariation
	KindLineageTag
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindTable:
		return "table"
	case KindColumn:
		return "column"
	case KindMeasure:
		return "measure"
	case KindPartition:
		return "partition"
	case KindVariation:
		return "variation"
	case KindLineageTag:
		return "lineageTag"
	default:
		return "other"
	}
}

var (
	tableDecl     = regexp.MustCompile(`^table\s+(.+)$`)
	columnDecl    = regexp.MustCompile(`^column\s+(?:'((?:[^']|'')+)'|([A-Za-z0-9_]+))`)
	measureDecl   = regexp.MustCompile(`^measure\s+'?([^'=]+?)'?\s*=`)
	partitionDecl = regexp.MustCompile(`^partition\s+(\S.*)$`)
	variationDecl = regexp.MustCompile(`^variation\s+(\S+)`)

	// boundaryKeyword matches the keywords that end a column or measure block,
	// whether or not the rest of the line is a well formed declaration.
	boundaryKeyword = regexp.MustCompile(`^(column|measure|partition)\b`)
)

const lineageTagPrefix = "lineageTag:"

// Line is one classified line of a table file.
type Line struct {
	Text   string // line content without the newline
	Number int    // 1-based
	Indent int    // leading whitespace, in characters
	Kind   Kind
	Name   string // declared name for table, column, measure, partition and variation lines

	// Boundary is the keyword (column, measure or partition) that makes this
	// line the end of the preceding block, or empty.
	Boundary string
}

// Scan splits text into classified lines. A trailing newline does not
// produce an extra empty line.
func Scan(text string) []Line {
	raw := splitLines(text)
	lines := make([]Line, len(raw))
	for i, s := range raw {
		lines[i] = classify(s, i+1)
	}
	return lines
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func classify(s string, number int) Line {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	l := Line{
		Text:   s,
		Number: number,
		Indent: utf8.RuneCountInString(s[:len(s)-len(trimmed)]),
	}

	if strings.TrimSpace(trimmed) == "" {
		l.Kind = KindBlank
		return l
	}

	if m := boundaryKeyword.FindStringSubmatch(trimmed); m != nil {
		l.Boundary = m[1]
	}

	switch {
	case strings.HasPrefix(trimmed, lineageTagPrefix):
		l.Kind = KindLineageTag
	case l.Boundary == "column":
		if m := columnDecl.FindStringSubmatch(trimmed); m != nil {
			l.Kind = KindColumn
			l.Name = m[2]
			if m[1] != "" {
				l.Name = strings.TrimSpace(strings.ReplaceAll(m[1], "''", "'"))
			}
		}
	case l.Boundary == "measure":
		if m := measureDecl.FindStringSubmatch(trimmed); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				l.Kind = KindMeasure
				l.Name = name
			}
		}
	case l.Boundary == "partition":
		if m := partitionDecl.FindStringSubmatch(trimmed); m != nil {
			l.Kind = KindPartition
			name, _, _ := strings.Cut(m[1], "=")
			l.Name = unquote(strings.TrimSpace(name))
		}
	case variationDecl.MatchString(trimmed):
		l.Kind = KindVariation
		l.Name = variationDecl.FindStringSubmatch(trimmed)[1]
	default:
		if m := tableDecl.FindStringSubmatch(trimmed); m != nil {
			if name := unquote(strings.TrimSpace(m[1])); name != "" {
				l.Kind = KindTable
				l.Name = name
			}
		}
	}

	return l
}

// unquote strips one pair of surrounding single quotes and undoubles
// embedded quotes.
func unquote(name string) string {
	if len(name) >= 2 && name[0] == '\'' && name[len(name)-1] == '\'' {
		return strings.TrimSpace(strings.ReplaceAll(name[1:len(name)-1], "''", "'"))
	}
	return name
}

func joinLines(lines []Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
