// Package search implements the search form: it collects field values, turns
// edits into debounced HTTP searches, owns the pagination cursor and publishes
// the search lifecycle on the event bus.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"qsearch/internal/debounce"
	"qsearch/internal/domain"
	"qsearch/internal/eventbus"
)

// DefaultMinChars is the input length below which edits do not search
const DefaultMinChars = 3

// DefaultDebounce is the inactivity window before an edit triggers a search
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrSearchInFlight is returned when a search is dropped because another one has not finished
	ErrSearchInFlight = errors.New("search already in flight")
	// ErrUnknownField is returned for a field the form does not own
	ErrUnknownField = errors.New("unknown field")
)

// FieldKind selects how edits of a field are interpreted
type FieldKind int

const (
	// KindInput fields react to every keystroke
	KindInput FieldKind = iota
	// KindSelect fields react to committed values
	KindSelect
)

// Field is one form control
type Field struct {
	Name string
	Kind FieldKind
}

// Searcher runs one search request
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (*domain.Response, error)
}

// Options configures a Form
type Options struct {
	MinChars int
	Debounce time.Duration
	// Params are sent with every request, before field values
	Params []domain.Param
	// ErrorHandler receives failures of searches nobody waits on
	// (debounced and next-page searches). Defaults to logging.
	ErrorHandler func(error)
	Log          zerolog.Logger
}

// Form watches field values and runs searches
type Form struct {
	searcher Searcher
	bus      eventbus.EventBus
	fields   []Field
	opts     Options
	log      zerolog.Logger

	mu         sync.Mutex
	values     map[string]string
	cursor     domain.Cursor
	generation uint64 // bumped by Clear; responses of older generations are dropped

	loading   atomic.Bool
	debouncer *debounce.Debouncer

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	detached    bool
	wg          sync.WaitGroup
}

// NewForm creates a form. Call Attach before use.
func NewForm(searcher Searcher, bus eventbus.EventBus, fields []Field, opts Options) *Form {
	if opts.MinChars < 0 {
		opts.MinChars = 0
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	f := &Form{
		searcher: searcher,
		bus:      bus,
		fields:   slices.Clone(fields),
		opts:     opts,
		log:      opts.Log.With().Str("component", "form").Logger(),
		values:   make(map[string]string, len(fields)),
	}
	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.debouncer = debounce.New(opts.Debounce, f.searchDebounced)
	return f
}

// Attach starts listening for next-page requests on the bus
func (f *Form) Attach() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unsubscribe != nil {
		return
	}
	f.unsubscribe = f.bus.Subscribe(eventbus.EventNextPage, func(eventbus.DomainEvent) {
		if !f.track() {
			return
		}
		go func() {
			defer f.wg.Done()
			f.report(f.NextPage(f.ctx))
		}()
	})
}

// Detach stops listening, drops a pending debounced search and waits for
// background searches to return
func (f *Form) Detach() {
	f.mu.Lock()
	unsubscribe := f.unsubscribe
	f.unsubscribe = nil
	f.detached = true
	f.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	f.debouncer.Stop()
	f.cancel()
	f.wg.Wait()
}

// Fields returns the form controls in declaration order
func (f *Form) Fields() []Field {
	return slices.Clone(f.fields)
}

// Value returns the current value of a field
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Cursor returns the pagination cursor of the active query
func (f *Form) Cursor() domain.Cursor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// Loading reports whether a search is in flight
func (f *Form) Loading() bool {
	return f.loading.Load()
}

// Set records a field value without triggering a search
func (f *Form) Set(name, value string) error {
	if _, ok := f.field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.mu.Lock()
	f.values[name] = value
	f.mu.Unlock()
	return nil
}

// Change records a new value for the named field and reacts to it
func (f *Form) Change(name, value string) error {
	field, ok := f.field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	f.mu.Lock()
	f.values[name] = value
	f.mu.Unlock()

	if field.Kind == KindInput {
		if value == "" {
			f.Clear()
			return nil
		}
		if utf8.RuneCountInString(value) < f.opts.MinChars {
			f.log.Debug().Str("field", name).Int("len", utf8.RuneCountInString(value)).Msg("Below min chars, ignoring")
			return nil
		}
	}

	f.debouncer.Trigger()
	return nil
}

// Clear resets the cursor and publishes an empty result set
func (f *Form) Clear() {
	f.debouncer.Cancel()

	f.mu.Lock()
	f.cursor = domain.Cursor{}
	f.generation++
	f.mu.Unlock()

	f.bus.Publish(eventbus.ResultsEvent{Result: domain.SearchResult{}})
}

// Search runs a fresh query from the first page
func (f *Form) Search(ctx context.Context) error {
	return f.run(ctx, func(domain.Cursor) domain.Cursor { return domain.Cursor{} })
}

// NextPage runs the continuation search for the page after the current one.
// A continuation dropped by the in-flight gate or failing does not advance
// the page.
func (f *Form) NextPage(ctx context.Context) error {
	return f.run(ctx, domain.Cursor.Next)
}

// Request builds the request for page from the current field values
func (f *Form) Request(page int) domain.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	params := make([]domain.Param, 0, len(f.opts.Params)+len(f.fields))
	params = append(params, f.opts.Params...)
	for _, field := range f.fields {
		if v := f.values[field.Name]; v != "" {
			params = append(params, domain.Param{Name: field.Name, Value: v})
		}
	}
	return domain.SearchRequest{Params: params, Page: page}
}

// run executes one search for the cursor step derives from the committed
// cursor. The cursor is read only once the in-flight gate is held.
func (f *Form) run(ctx context.Context, step func(domain.Cursor) domain.Cursor) (err error) {
	if !f.loading.CompareAndSwap(false, true) {
		return ErrSearchInFlight
	}

	f.mu.Lock()
	cur := step(f.cursor)
	gen := f.generation
	f.mu.Unlock()

	f.bus.Publish(eventbus.SearchStartedEvent{Page: cur.Page})
	defer func() {
		f.loading.Store(false)
		f.bus.Publish(eventbus.SearchEndedEvent{Page: cur.Page, Err: err})
	}()

	req := f.Request(cur.Page)
	resp, err := f.searcher.Search(ctx, req)
	if err != nil {
		return err
	}

	hits := resp.Hits
	if hits == nil {
		hits = []domain.Hit{}
	}

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		f.log.Debug().Int("page", cur.Page).Msg("Dropping response of a cleared query")
		return nil
	}
	next, continuation, hasMore := cur.Advance(len(hits), resp.Total)
	f.cursor = next
	f.mu.Unlock()

	result := domain.SearchResult{Hits: hits, Total: resp.Total, HasMoreHits: hasMore}
	f.log.Info().
		Int("page", next.Page).
		Int("hits", len(hits)).
		Int("received", next.Total).
		Int("total", resp.Total).
		Bool("more", hasMore).
		Msg("Search completed")

	if continuation {
		f.bus.Publish(eventbus.MoreResultsEvent{Result: result})
	} else {
		f.bus.Publish(eventbus.ResultsEvent{Result: result})
	}
	return nil
}

func (f *Form) searchDebounced() {
	if !f.track() {
		return
	}
	defer f.wg.Done()
	f.report(f.Search(f.ctx))
}

// track registers a background search unless the form is detached
func (f *Form) track() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detached {
		return false
	}
	f.wg.Add(1)
	return true
}

// report hands failures of unattended searches to the error handler
func (f *Form) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrSearchInFlight):
		f.log.Debug().Msg("Search in flight, trigger dropped")
	case f.opts.ErrorHandler != nil:
		f.opts.ErrorHandler(err)
	default:
		f.log.Error().Err(err).Msg("Search failed")
	}
}

func (f *Form) field(name string) (Field, bool) {
	for _, field := range f.fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}
