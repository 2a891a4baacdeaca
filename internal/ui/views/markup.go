package views

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
)

// segment is a run of text that is either highlighted or not
type segment struct {
	text        string
	highlighted bool
}

// highlightTags are the elements the search backend wraps matched terms in
var highlightTags = map[string]bool{
	"mark":   true,
	"em":     true,
	"strong": true,
	"b":      true,
}

// parseMarkup turns a server-provided fragment into text segments.
// Highlight elements become highlighted segments; all other markup is dropped.
func parseMarkup(fragment string) []segment {
	if !strings.ContainsAny(fragment, "<&") {
		return []segment{{text: fragment}}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return []segment{{text: fragment}}
	}

	var out []segment
	var walk func(sel *goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			node := child.Get(0)
			switch node.Type {
			case html.TextNode:
				out = append(out, segment{text: node.Data})
			case html.ElementNode:
				if isHighlight(child) {
					out = append(out, segment{text: child.Text(), highlighted: true})
					return
				}
				walk(child)
			}
		})
	}
	walk(doc.Find("body"))
	return out
}

func isHighlight(sel *goquery.Selection) bool {
	if highlightTags[goquery.NodeName(sel)] {
		return true
	}
	return sel.HasClass("highlighted") || sel.HasClass("highlight")
}

// PlainText returns the fragment with all markup removed and whitespace collapsed
func PlainText(fragment string) string {
	var b strings.Builder
	for _, s := range parseMarkup(fragment) {
		b.WriteString(s.text)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// renderMarkup styles a fragment, applying hl to highlighted runs
func renderMarkup(fragment string, base, hl lipgloss.Style) string {
	segments := parseMarkup(fragment)
	var b strings.Builder
	for i, s := range segments {
		text := collapseSpaces(s.text, i == 0, i == len(segments)-1)
		if text == "" {
			continue
		}
		if s.highlighted {
			b.WriteString(hl.Render(text))
		} else {
			b.WriteString(base.Render(text))
		}
	}
	return b.String()
}

// collapseSpaces squeezes whitespace runs to one space, keeping a single
// boundary space between segments
func collapseSpaces(s string, first, last bool) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if first || last {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if !first && isSpace(s[0]) {
		out = " " + out
	}
	if !last && isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}
