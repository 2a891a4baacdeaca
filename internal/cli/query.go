package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"qsearch/internal/config"
	"qsearch/internal/domain"
	"qsearch/internal/eventbus"
	"qsearch/internal/search"
	"qsearch/internal/ui/views"
)

var (
	queryPages int
	queryJSON  bool
	querySet   []string
	queryWidth int
)

var queryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Run a search and print the hits",
	Long: `Run a search without the interactive UI. The terms fill the first
text field; other fields are set with --set name=value.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryPages, "pages", "p", 1, "Number of pages to fetch")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print hits as JSON")
	queryCmd.Flags().StringArrayVar(&querySet, "set", nil, "Field value as name=value (repeatable)")
	queryCmd.Flags().IntVar(&queryWidth, "width", 100, "Card width")
	rootCmd.AddCommand(queryCmd)
}

// queryOutput is the JSON document printed by query --json
type queryOutput struct {
	Total       int          `json:"total"`
	HasMoreHits bool         `json:"hasMoreHits"`
	Pages       int          `json:"pages"`
	Hits        []domain.Hit `json:"hits"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryPages < 1 {
		return fmt.Errorf("--pages must be at least 1, got %d", queryPages)
	}

	cfg, log, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	bus := eventbus.New(log)
	defer bus.Close()

	form, _, err := search.NewFromConfig(cfg, bus, log, nil)
	if err != nil {
		return err
	}
	if err := applyValues(form, cfg, args, querySet); err != nil {
		return err
	}

	form.Attach()
	defer form.Detach()

	out, err := collect(cmd.Context(), form, bus, queryPages)
	if err != nil {
		return err
	}

	if queryJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	return writeCards(cmd.OutOrStdout(), cfg, out, queryWidth)
}

// applyValues fills the form from positional terms and --set pairs
func applyValues(form *search.Form, cfg *config.Config, terms, pairs []string) error {
	if len(terms) > 0 {
		name := firstInput(cfg.Fields)
		if name == "" {
			return fmt.Errorf("no text field configured for search terms")
		}
		if err := form.Set(name, strings.Join(terms, " ")); err != nil {
			return err
		}
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --set %q, expected name=value", pair)
		}
		if err := form.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

func firstInput(fields []config.Field) string {
	for _, f := range fields {
		if f.Kind != config.KindSelect {
			return f.Name
		}
	}
	return ""
}

// collect runs the first search and asks for more pages through the bus
// until pages are fetched or the endpoint has nothing left
func collect(ctx context.Context, form *search.Form, bus eventbus.EventBus, pages int) (*queryOutput, error) {
	events := make(chan eventbus.DomainEvent, 16)
	forward := func(e eventbus.DomainEvent) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}
	for _, t := range []eventbus.EventType{eventbus.EventResults, eventbus.EventMoreResults, eventbus.EventSearchEnded} {
		unsubscribe := bus.Subscribe(t, forward)
		defer unsubscribe()
	}

	out := &queryOutput{Hits: []domain.Hit{}}
	go form.Search(ctx) // outcome arrives as SearchEndedEvent

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case e := <-events:
			switch ev := e.(type) {
			case eventbus.ResultsEvent:
				if out.Pages > 0 && len(ev.Result.Hits) == 0 {
					// an empty continuation page ends the listing
					out.HasMoreHits = false
					continue
				}
				out.Hits = append([]domain.Hit{}, ev.Result.Hits...)
				out.Total = ev.Result.Total
				out.HasMoreHits = ev.Result.HasMoreHits
			case eventbus.MoreResultsEvent:
				out.Hits = append(out.Hits, ev.Result.Hits...)
				out.Total = ev.Result.Total
				out.HasMoreHits = ev.Result.HasMoreHits
			case eventbus.SearchEndedEvent:
				if ev.Err != nil {
					return nil, ev.Err
				}
				out.Pages++
				if out.Pages >= pages || !out.HasMoreHits {
					return out, nil
				}
				bus.Publish(eventbus.NextPageEvent{})
			}
		}
	}
}

func writeJSON(w io.Writer, out *queryOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeCards(w io.Writer, cfg *config.Config, out *queryOutput, width int) error {
	if len(out.Hits) == 0 {
		_, err := fmt.Fprintln(w, "No results found")
		return err
	}

	styles := views.NewStyles()
	styles.Hyperlinks = false
	card := views.NewHitCard(styles, cfg.Server)
	for _, hit := range out.Hits {
		if _, err := fmt.Fprintln(w, card.Render(hit, width)); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d of %d hits", len(out.Hits), out.Total)
	if out.HasMoreHits {
		summary += ", more available"
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
