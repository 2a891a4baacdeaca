package domain

// Hit represents one search result record returned by the backend
type Hit struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Keywords string `json:"keywords,omitempty"`
	Content  string `json:"content,omitempty"`
	Type     string `json:"type,omitempty"`
}

// HasContent reports whether the optional content block should be shown
func (h Hit) HasContent() bool {
	return h.Content != ""
}

// Response is the JSON body returned by the search endpoint
type Response struct {
	Hits  []Hit `json:"hits"`
	Total int   `json:"total"`
}

// SearchResult is the payload of Results and MoreResults events.
// A zero SearchResult (nil Hits) is the cleared payload.
type SearchResult struct {
	Hits        []Hit `json:"hits"`
	Total       int   `json:"total"`
	HasMoreHits bool  `json:"hasMoreHits"`
}

// IsEmpty reports whether the result carries no result set at all (cleared)
func (r SearchResult) IsEmpty() bool {
	return r.Hits == nil
}

// Param is a single query parameter of a search request
type Param struct {
	Name  string
	Value string
}

// SearchRequest is built fresh for every fetch
type SearchRequest struct {
	Params []Param // non-empty field values, in field order
	Page   int     // zero-based
}

// Get returns the value of the named parameter
func (r SearchRequest) Get(name string) (string, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Cursor tracks pagination progress for the active query.
// It is a value: every search works on its own copy.
type Cursor struct {
	Page  int
	Total int // cumulative hits received for the query
}

// Next returns the cursor for the following page
func (c Cursor) Next() Cursor {
	return Cursor{Page: c.Page + 1, Total: c.Total}
}

// Advance applies a response of hitCount hits to the cursor. The response is a
// continuation when it answers a page past the first and carried hits; any
// other response restarts the running total.
func (c Cursor) Advance(hitCount, reportedTotal int) (next Cursor, continuation bool, hasMoreHits bool) {
	next = c
	if c.Page > 0 && hitCount > 0 {
		next.Total = c.Total + hitCount
		continuation = true
	} else {
		next.Total = hitCount
	}
	return next, continuation, reportedTotal > next.Total
}
