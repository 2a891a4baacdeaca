package search

import (
	"sort"

	"github.com/rs/zerolog"

	"qsearch/internal/config"
	"qsearch/internal/domain"
	"qsearch/internal/eventbus"
)

// FieldsFromConfig converts configured controls into form fields
func FieldsFromConfig(fields []config.Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		kind := KindInput
		if f.Kind == config.KindSelect {
			kind = KindSelect
		}
		out = append(out, Field{Name: f.Name, Kind: kind})
	}
	return out
}

// ParamsFromConfig returns the fixed request parameters ordered by name
func ParamsFromConfig(params map[string]string) []domain.Param {
	out := make([]domain.Param, 0, len(params))
	for name, value := range params {
		if value == "" {
			continue
		}
		out = append(out, domain.Param{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NewFromConfig builds the client and the form described by cfg
func NewFromConfig(cfg *config.Config, bus eventbus.EventBus, log zerolog.Logger, onError func(error)) (*Form, *Client, error) {
	client, err := NewClient(cfg.Server, cfg.API, cfg.Timeout.Duration, log)
	if err != nil {
		return nil, nil, err
	}
	form := NewForm(client, bus, FieldsFromConfig(cfg.Fields), Options{
		MinChars:     cfg.MinChars,
		Debounce:     cfg.Debounce.Duration,
		Params:       ParamsFromConfig(cfg.Params),
		ErrorHandler: onError,
		Log:          log,
	})
	return form, client, nil
}
