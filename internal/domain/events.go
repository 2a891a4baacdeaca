package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchStarted EventType = "SearchStarted"
	EventSearchEnded   EventType = "SearchEnded"
	EventResults       EventType = "Results"
	EventMoreResults   EventType = "MoreResults"
	EventNextPage      EventType = "NextPage"
	EventConfigLoaded  EventType = "ConfigLoaded"
	EventConfigSaved   EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchStartedEvent is emitted right before the HTTP call is issued
type SearchStartedEvent struct {
	Page int
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// SearchEndedEvent is emitted when a search finishes, whatever the outcome
type SearchEndedEvent struct {
	Page int
	Err  error // nil on success
}

func (e SearchEndedEvent) Type() EventType { return EventSearchEnded }

// ResultsEvent replaces the displayed result set
type ResultsEvent struct {
	Result SearchResult
}

func (e ResultsEvent) Type() EventType { return EventResults }

// MoreResultsEvent extends the displayed result set with a continuation page
type MoreResultsEvent struct {
	Result SearchResult
}

func (e MoreResultsEvent) Type() EventType { return EventMoreResults }

// NextPageEvent asks the form for the next page of the active query
type NextPageEvent struct{}

func (e NextPageEvent) Type() EventType { return EventNextPage }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
