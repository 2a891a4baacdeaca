package ui

import (
	"qsearch/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// scrollSettledMsg is sent once the results viewport stopped scrolling
type scrollSettledMsg struct{}

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	err error
}
