package pagination

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

const recordsPath = "/v2/records"

// record is a minimal resource used to exercise the engine without the concrete models.
type record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (record) ResourceURL() *url.URL {
	return &url.URL{Scheme: "https", Host: "api.idalon.test", Path: recordsPath}
}

func (record) DefaultFilters() recordFilters {
	return recordFilters{Offset: 0, Limit: 10, OrderBy: "id"}
}

type recordFilters struct {
	Offset  int    `schema:"offset"`
	Limit   int    `schema:"limit"`
	Season  *int   `schema:"season,omitempty"`
	OrderBy string `schema:"orderBy"`
}

func (f recordFilters) Page() int {
	if f.Limit <= 0 {
		return 0
	}
	return f.Offset / f.Limit
}

func (f *recordFilters) SetPage(page int) {
	f.Offset = page * f.Limit
}

func (f recordFilters) PageSize() int {
	return f.Limit
}

func recordItem(i int) any {
	return map[string]any{"id": i, "name": "record"}
}

// failingTransport fails every request with err and counts the attempts.
type failingTransport struct {
	err   error
	calls int
}

func (t *failingTransport) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	t.calls++
	return nil, t.err
}

var errConnectionRefused = errors.New("dial tcp: connection refused")
