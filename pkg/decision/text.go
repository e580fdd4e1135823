package decision

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PlainText converts decision markup into plain text with one line per
// paragraph and a newline for each <br>. Indentation entities are kept as
// non-breaking spaces. Text without markup is returned trimmed. Fallback
// results hold raw text and must not be passed through PlainText.
func PlainText(markup string) (string, error) {
	if !strings.Contains(markup, "<") {
		return strings.TrimSpace(markup), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse decision markup: %w", err)
	}
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	})

	paragraphs := doc.Find("p")
	if paragraphs.Length() == 0 {
		return strings.TrimSpace(doc.Find("body").Text()), nil
	}

	lines := paragraphs.Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimRight(s.Text(), " ")
	})
	return strings.Join(lines, "\n"), nil
}
