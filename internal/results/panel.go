// Package results holds the result panel: the displayed result set, the
// loading state and the scroll position check that asks for the next page.
package results

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"qsearch/internal/debounce"
	"qsearch/internal/domain"
	"qsearch/internal/eventbus"
	"qsearch/internal/ui/views"
)

// DefaultScrollDebounce is the quiet time after the last scroll before the position is checked
const DefaultScrollDebounce = 100 * time.Millisecond

// TypeGuide renders hits as guide cards
const TypeGuide = "guide"

const (
	noResultsText = "No results found"
	loadingText   = "Loading..."
)

// HitRenderer renders one hit variant
type HitRenderer interface {
	Render(hit domain.Hit, width int) string
}

// Options configures a Panel
type Options struct {
	// Placeholder is shown before any search has run
	Placeholder string
	// Renderers maps result types to hit renderers
	Renderers      map[string]HitRenderer
	ScrollDebounce time.Duration
	// OnScrollSettled is called from the debounce timer once scrolling stops.
	// The owner must call CheckScroll from its own event loop in response.
	OnScrollSettled func()
	Log             zerolog.Logger
}

// Panel is the result list state. It is not safe for concurrent use: all
// methods except Scrolled's timer callback run on the owner's event loop.
type Panel struct {
	bus        eventbus.EventBus
	resultType string
	styles     *views.Styles
	opts       Options
	log        zerolog.Logger

	result  *domain.SearchResult // nil until a result set exists
	loading bool

	hitTops    []int // top line of every rendered hit card, from the last Render
	lastBottom int
	scroll     *debounce.Debouncer
}

// NewPanel creates a panel publishing next-page requests on bus
func NewPanel(bus eventbus.EventBus, resultType string, styles *views.Styles, opts Options) *Panel {
	if opts.ScrollDebounce <= 0 {
		opts.ScrollDebounce = DefaultScrollDebounce
	}
	p := &Panel{
		bus:        bus,
		resultType: resultType,
		styles:     styles,
		opts:       opts,
		log:        opts.Log.With().Str("component", "panel").Logger(),
	}
	settle := opts.OnScrollSettled
	if settle == nil {
		settle = func() {}
	}
	p.scroll = debounce.New(opts.ScrollDebounce, settle)
	return p
}

// Attach subscribes deliver to the form events the panel consumes and returns
// the function detaching it. deliver must hand the event to Apply on the
// owner's loop.
func (p *Panel) Attach(deliver func(eventbus.DomainEvent)) func() {
	var unsubs []func()
	for _, et := range []eventbus.EventType{
		eventbus.EventResults,
		eventbus.EventMoreResults,
		eventbus.EventSearchStarted,
		eventbus.EventSearchEnded,
	} {
		unsubs = append(unsubs, p.bus.Subscribe(et, deliver))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
		p.scroll.Stop()
	}
}

// Apply updates the panel from a form event. It reports whether the event
// was one the panel consumes.
func (p *Panel) Apply(event eventbus.DomainEvent) bool {
	switch e := event.(type) {
	case eventbus.ResultsEvent:
		if e.Result.IsEmpty() {
			p.result = nil
		} else {
			r := e.Result
			r.Hits = append([]domain.Hit(nil), e.Result.Hits...)
			p.result = &r
		}
	case eventbus.MoreResultsEvent:
		if p.result == nil {
			r := e.Result
			r.Hits = append([]domain.Hit(nil), e.Result.Hits...)
			p.result = &r
			return true
		}
		p.result.Hits = append(p.result.Hits, e.Result.Hits...)
		p.result.HasMoreHits = e.Result.HasMoreHits
		p.result.Total = e.Result.Total
	case eventbus.SearchStartedEvent:
		p.loading = true
	case eventbus.SearchEndedEvent:
		p.loading = false
		if e.Err != nil {
			p.log.Warn().Err(e.Err).Int("page", e.Page).Msg("Search failed, keeping current results")
		}
	default:
		return false
	}
	return true
}

// Loading reports whether a search is in flight
func (p *Panel) Loading() bool {
	return p.loading
}

// Result returns the displayed result set, or nil
func (p *Panel) Result() *domain.SearchResult {
	return p.result
}

// Hits returns the displayed hits
func (p *Panel) Hits() []domain.Hit {
	if p.result == nil {
		return nil
	}
	return p.result.Hits
}

// Render draws the panel at width and records where each hit card starts
func (p *Panel) Render(width int) string {
	p.hitTops = p.hitTops[:0]

	if p.result != nil {
		if len(p.result.Hits) == 0 {
			return p.styles.Empty.Render(noResultsText)
		}

		renderer := p.opts.Renderers[p.resultType]
		var blocks []string
		line := 0
		if renderer != nil {
			for _, hit := range p.result.Hits {
				card := renderer.Render(hit, width)
				p.hitTops = append(p.hitTops, line)
				blocks = append(blocks, card)
				line += lipgloss.Height(card)
			}
		}
		if p.loading {
			blocks = append(blocks, p.styles.Loading.Render(loadingText))
		}
		return strings.Join(blocks, "\n")
	}

	if p.loading {
		return p.styles.Loading.Render(loadingText)
	}
	return p.opts.Placeholder
}

// Scrolled records the bottom line of the visible area and (re)starts the
// scroll debounce
func (p *Panel) Scrolled(bottom int) {
	p.lastBottom = bottom
	p.scroll.Trigger()
}

// CheckScroll publishes a next-page request when more hits exist and the
// visible area reaches the top of the last rendered hit card. It reports
// whether a request was published.
func (p *Panel) CheckScroll() bool {
	if p.result == nil || !p.result.HasMoreHits {
		p.log.Debug().Msg("No more hits")
		return false
	}
	if len(p.hitTops) == 0 {
		return false
	}
	lastTop := p.hitTops[len(p.hitTops)-1]
	if p.lastBottom < lastTop {
		return false
	}
	p.log.Debug().Int("bottom", p.lastBottom).Int("last_hit", lastTop).Msg("Requesting next page")
	p.bus.Publish(eventbus.NextPageEvent{})
	return true
}

// DefaultRenderers returns the renderer set with the guide card as the only variant
func DefaultRenderers(guide HitRenderer) map[string]HitRenderer {
	return map[string]HitRenderer{TypeGuide: guide}
}
