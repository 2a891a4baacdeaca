//go:build e2e && unix

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// guideServer is a search endpoint holding total numbered guides served in pages of size
type guideServer struct {
	total int
	size  int

	mu      sync.Mutex
	queries []string
}

func startGuideServer(t *testing.T, total, size int) (*guideServer, string) {
	t.Helper()
	gs := &guideServer{total: total, size: size}
	ts := httptest.NewServer(gs)
	t.Cleanup(ts.Close)
	return gs, ts.URL
}

func (g *guideServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/search" {
		http.NotFound(w, r)
		return
	}
	g.mu.Lock()
	g.queries = append(g.queries, r.URL.RawQuery)
	g.mu.Unlock()

	q := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	type hit struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		URL     string `json:"url"`
	}
	hits := []hit{}
	for i := page * g.size; i < (page+1)*g.size && i < g.total; i++ {
		hits = append(hits, hit{
			Title:   fmt.Sprintf("Guide-%02d about <mark>%s</mark>", i, q),
			Summary: "Summary of guide " + strconv.Itoa(i),
			URL:     "/guides/" + strconv.Itoa(i),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"hits": hits, "total": g.total})
}

func (g *guideServer) requests() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.queries...)
}
