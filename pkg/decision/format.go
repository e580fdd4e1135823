package decision

import (
	"regexp"
	"strings"
)

// Formatter renders decision paragraphs into markup.
type Formatter interface {
	Format(paragraphs []string) (string, error)
	Name() string
}

const (
	lineBreak = "<br>"
	indent    = "&nbsp;&nbsp;"
)

var (
	sentenceBreak  = regexp.MustCompile(`([;.])+` + space + `*\n`)
	repeatedBreaks = regexp.MustCompile(`<br>\s*(?:<br>\s*)+`)
	listItem       = regexp.MustCompile(`^<p>([0-9]+)\.`)
	subListItem    = regexp.MustCompile(`^<p>` + indent + space + `*([0-9]+)\.([0-9]+)`)
	whitespaceRun  = regexp.MustCompile(space + `+`)
)

// CollapseWhitespace replaces every whitespace run, including Unicode space
// separators, with a single space. It is idempotent.
func CollapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// StructuredFormatter renders each paragraph as a <p> element, keeps line
// breaks that end a sentence or list clause as <br>, and indents numbered
// items and sub-items. Paragraphs are joined with a single newline.
type StructuredFormatter struct{}

// Name returns the formatter name.
func (StructuredFormatter) Name() string {
	return "structured"
}

// Format renders the paragraphs. Whitespace is collapsed per paragraph after
// segmentation, so the newline between paragraphs survives.
func (f StructuredFormatter) Format(paragraphs []string) (string, error) {
	rendered := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		rendered[i] = f.paragraph(p)
	}
	return strings.Join(rendered, "\n"), nil
}

func (StructuredFormatter) paragraph(p string) string {
	text := strings.TrimSpace(p)
	text = sentenceBreak.ReplaceAllString(text, "${1}"+lineBreak)
	text = strings.ReplaceAll(text, "\n", " ")

	html := "<p>" + text + "</p>"
	html = repeatedBreaks.ReplaceAllString(html, lineBreak)
	html = listItem.ReplaceAllString(html, "<p>"+indent+" ${1}.")
	// sub-items override the single indent added above
	html = subListItem.ReplaceAllString(html, "<p>"+indent+indent+" ${1}.${2}")
	return CollapseWhitespace(html)
}

// SimpleFormatter is the line-break-only rendering of the first service
// revision: paragraphs are joined by a blank line, double spaces are reduced
// and every newline becomes <br />.
type SimpleFormatter struct{}

// Name returns the formatter name.
func (SimpleFormatter) Name() string {
	return "simple"
}

// Format renders the paragraphs without paragraph markup.
func (SimpleFormatter) Format(paragraphs []string) (string, error) {
	trimmed := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		trimmed[i] = strings.TrimSpace(p)
	}
	text := strings.TrimSpace(strings.Join(trimmed, "\n\n"))
	text = strings.ReplaceAll(text, "  ", " ")
	return strings.ReplaceAll(text, "\n", "<br />"), nil
}
