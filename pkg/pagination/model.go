package pagination

import (
	"context"
	"net/http"
	"net/url"
)

// Collection is a decoded list response: the server-reported total and the items of one page.
type Collection[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// Transport sends a GET request and returns the raw response.
// *client.Client implements it; tests can use any http.RoundTripper behind a thin adapter.
type Transport interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// Resource is a record type with a fixed collection endpoint.
// Implementations must work on the zero value, generic code never has an instance at hand.
type Resource interface {
	ResourceURL() *url.URL
}

// Model binds a record type to its filter type.
type Model[F any] interface {
	Resource

	// DefaultFilters returns the filter preset used when the caller has no preference.
	DefaultFilters() F
}

// Paginable is implemented by pointers to filter types that carry an offset/limit cursor.
//
// Implementations must keep Page() == Offset/Limit and SetPage(n) => Offset = n*Limit,
// the paginator's exhaustion check depends on it.
type Paginable[F any] interface {
	*F

	Page() int
	SetPage(page int)
	PageSize() int
}
