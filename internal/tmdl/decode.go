package tmdl

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// replacementChar is written in place of byte sequences that are not valid UTF-8.
const replacementChar = "\uFFFD"

// Decode converts the raw bytes of a table file to text.
//
// Decoding never fails: a byte order mark selects the encoding and is dropped,
// invalid sequences become U+FFFD, and CRLF or lone CR line endings become LF.
func Decode(data []byte) string {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		out = bytes.ToValidUTF8(data, []byte(replacementChar))
	}
	if !utf8.Valid(out) {
		out = bytes.ToValidUTF8(out, []byte(replacementChar))
	}
	return normalizeNewlines(string(out))
}

// NeedsReplacement reports whether Decode has to substitute any bytes of data.
func NeedsReplacement(data []byte) bool {
	return !utf8.Valid(data)
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
