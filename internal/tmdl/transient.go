package tmdl

import "strings"

type scanState int

const (
	stateNormal scanState = iota
	stateInsideVariationSkip
)

// RemoveVariationBlocks deletes every variation declaration together with
// the lines nested under it. The skipped region ends at the first non-blank
// line indented no deeper than the variation line; that line is kept unless
// it starts another variation.
func RemoveVariationBlocks(text string) string {
	lines := Scan(text)
	kept := make([]Line, 0, len(lines))

	state := stateNormal
	baseIndent := 0
	for _, l := range lines {
		if state == stateInsideVariationSkip {
			if l.Kind == KindBlank || l.Indent > baseIndent {
				continue
			}
			state = stateNormal
		}
		if l.Kind == KindVariation {
			state = stateInsideVariationSkip
			baseIndent = l.Indent
			continue
		}
		kept = append(kept, l)
	}

	return rebuild(text, kept)
}

// RemoveLineageTags deletes every lineageTag line, whatever block it
// belongs to.
func RemoveLineageTags(text string) string {
	lines := Scan(text)
	kept := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Kind != KindLineageTag {
			kept = append(kept, l)
		}
	}
	return rebuild(text, kept)
}

// StripTransient removes variations and lineage tags.
func StripTransient(text string) string {
	return RemoveLineageTags(RemoveVariationBlocks(text))
}

// rebuild joins kept lines and restores the trailing newline of the
// original text.
func rebuild(original string, kept []Line) string {
	out := joinLines(kept)
	if len(kept) > 0 && strings.HasSuffix(original, "\n") {
		out += "\n"
	}
	return out
}
