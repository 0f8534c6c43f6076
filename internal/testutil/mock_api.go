// Package testutil provides testing utilities for the Idalon client.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock Idalon API server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	requestCount  int
	lastQuery     url.Values
	lastHeader    http.Header
	requestedURLs []string
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastQuery = r.URL.Query()
		mock.lastHeader = r.Header.Clone()
		mock.requestedURLs = append(mock.requestedURLs, r.URL.RequestURI())
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Not Found"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastQuery = nil
	m.lastHeader = nil
	m.requestedURLs = nil
}

// Transport returns a RoundTripper that sends every request to the mock server,
// whatever host the request URL names. Resource types carry fixed production URLs,
// so tests swap the transport instead of the URL.
func (m *MockAPI) Transport() http.RoundTripper {
	target, _ := url.Parse(m.server.URL)
	return &redirectTransport{
		target: target,
		next:   &http.Transport{DisableKeepAlives: true},
	}
}

// HTTPClient returns an http.Client using Transport.
func (m *MockAPI) HTTPClient() *http.Client {
	return &http.Client{Transport: m.Transport(), Timeout: 10 * time.Second}
}

// Get sends a GET request through Transport, so the mock can stand in for the API client.
func (m *MockAPI) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return m.HTTPClient().Do(req)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetCollection serves a paged collection of total items at path. The handler honours the
// offset and limit query parameters and builds each item with item(index).
func (m *MockAPI) SetCollection(path string, total int, item func(index int) any) {
	m.SetHandler(path, PagedHandler(total, item))
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockAPI) LastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// LastHeader returns the headers of the most recent request.
func (m *MockAPI) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// RequestedURLs returns the request URIs in the order they were received.
func (m *MockAPI) RequestedURLs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.requestedURLs...)
}

// PagedHandler serves {"total": total, "items": [...]} sliced by the offset and limit parameters.
func PagedHandler(total int, item func(index int) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = 10
		}

		items := make([]any, 0, limit)
		for i := offset; i < offset+limit && i < total; i++ {
			items = append(items, item(i))
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"total": total,
			"items": items,
		})
	}
}

// NewJSONResponse creates a 200 OK response with a JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewErrorResponse creates an error response with the given status code.
func NewErrorResponse(statusCode int) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body:       `{"message": "` + http.StatusText(statusCode) + `"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitedResponse creates a 200 OK response announcing the remaining request budget.
func NewRateLimitedResponse(body string, remaining, resetSeconds int) MockResponse {
	resp := NewJSONResponse(body)
	resp.Headers["X-RateLimit-Remaining"] = strconv.Itoa(remaining)
	resp.Headers["X-RateLimit-Reset"] = strconv.Itoa(resetSeconds)
	return resp
}

// redirectTransport rewrites scheme and host to the mock server.
type redirectTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	req.Host = t.target.Host
	return t.next.RoundTrip(req)
}
