package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"qsearch/internal/domain"
)

// DefaultTimeout is the time after which a search request is aborted
const DefaultTimeout = time.Second

// maxErrorBody caps how much of a failed response body is kept in HTTPError
const maxErrorBody = 64 << 10

const truncatedMarker = "[truncated]"

// HTTPError is returned when the endpoint answers with a non-2xx status.
// Body holds the response text, cut after 64 KiB with a "[truncated]" marker.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("response status is %d; response: %s", e.StatusCode, e.Body)
}

// Client performs search requests against the HTTP endpoint
type Client struct {
	httpClient *http.Client
	endpoint   *url.URL
	timeout    time.Duration
	log        zerolog.Logger
}

// NewClient creates a client for api resolved against server.
// An absolute api URL is used as is.
func NewClient(server, api string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	ref, err := url.Parse(api)
	if err != nil {
		return nil, fmt.Errorf("invalid api path %q: %w", api, err)
	}

	endpoint := ref
	if !ref.IsAbs() {
		base, err := url.Parse(server)
		if err != nil {
			return nil, fmt.Errorf("invalid server url %q: %w", server, err)
		}
		if !base.IsAbs() {
			return nil, fmt.Errorf("server url %q must be absolute", server)
		}
		endpoint = base.ResolveReference(ref)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		timeout:    timeout,
		log:        log.With().Str("component", "client").Logger(),
	}, nil
}

// Endpoint returns the resolved endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// URL returns the full request URL for req
func (c *Client) URL(req domain.SearchRequest) string {
	u := *c.endpoint
	q := u.Query()
	for _, p := range req.Params {
		q.Set(p.Name, p.Value)
	}
	q.Set("page", strconv.Itoa(req.Page))
	u.RawQuery = q.Encode()
	return u.String()
}

// Search issues a GET for req. The call is aborted once the client timeout
// elapses; the resulting error wraps context.DeadlineExceeded.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (*domain.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.URL(req)
	requestID := uuid.NewString()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug().Str("request_id", requestID).Err(err).Msg("Search request failed")
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Search response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
		text := string(body)
		if len(body) > maxErrorBody {
			text = string(body[:maxErrorBody]) + truncatedMarker
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: text}
	}

	var out domain.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &out, nil
}
