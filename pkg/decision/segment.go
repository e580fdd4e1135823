package decision

import "regexp"

// space matches one whitespace character, including the non-breaking and
// other Unicode space separators that PDF text layers emit.
const space = `[\s\p{Zs}]`

var blankLine = regexp.MustCompile(`\n` + space + `*\n`)

// Segment splits text into paragraphs on blank-line boundaries.
// Paragraphs are returned untrimmed and empty entries are kept; callers trim
// at the point of use.
func Segment(text string) []string {
	return blankLine.Split(text, -1)
}
