package views

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"qsearch/internal/domain"
)

// HitCard renders a single search hit. It holds no state beyond styling.
type HitCard struct {
	styles  *Styles
	baseURL *url.URL
}

// NewHitCard creates a card renderer. Relative hit URLs are resolved against
// baseURL when it is a valid absolute URL.
func NewHitCard(styles *Styles, baseURL string) *HitCard {
	card := &HitCard{styles: styles}
	if u, err := url.Parse(baseURL); err == nil && u.IsAbs() {
		card.baseURL = u
	}
	return card
}

// Link returns the absolute target of a hit
func (c *HitCard) Link(hit domain.Hit) string {
	if c.baseURL == nil || hit.URL == "" {
		return hit.URL
	}
	ref, err := url.Parse(hit.URL)
	if err != nil {
		return hit.URL
	}
	return c.baseURL.ResolveReference(ref).String()
}

// Render returns the card for hit, wrapped to width
func (c *HitCard) Render(hit domain.Hit, width int) string {
	s := c.styles
	inner := width - s.Card.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	link := c.Link(hit)
	title := renderMarkup(hit.Title, s.CardTitle, s.Highlight)
	if s.Hyperlinks && link != "" {
		title = termenv.Hyperlink(link, title)
	}

	lines := []string{title}
	if link != "" {
		lines = append(lines, s.CardURL.Render(link))
	}
	lines = append(lines, wrap(renderMarkup(hit.Summary, s.Summary, s.Highlight), inner))
	if hit.Keywords != "" {
		lines = append(lines, wrap(s.Keywords.Render(PlainText(hit.Keywords)), inner))
	}
	if hit.HasContent() {
		lines = append(lines, s.Content.Width(inner).Render(renderMarkup(hit.Content, lipgloss.NewStyle(), s.Highlight)))
	}

	return s.Card.Render(strings.Join(lines, "\n"))
}

func wrap(text string, width int) string {
	if text == "" {
		return ""
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
