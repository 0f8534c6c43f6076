package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	queryEncoder = schema.NewEncoder()
	tracer       = otel.Tracer("github.com/Sternrassler/idalon-client/pkg/pagination")
)

// FindOne fetches the record with the given identifier from T's collection endpoint.
func FindOne[T Resource](ctx context.Context, transport Transport, id string) (T, error) {
	var model T
	if strings.Trim(id, "/") == "" {
		var zero T
		return zero, failed(&RequestError{Kind: ErrorKindFetch, URL: model.ResourceURL().String(), Err: ErrEmptyID})
	}
	return FetchOne[T](ctx, transport, model.ResourceURL().JoinPath(id).String())
}

// FindMany fetches one page of T's collection, selected by filters.
// Filters with a Validate method are checked first.
func FindMany[T Model[F], F any](ctx context.Context, transport Transport, filters F) (*Collection[T], error) {
	var model T
	rawURL := model.ResourceURL().String()
	if err := validateFilters(&filters); err != nil {
		return nil, failed(&RequestError{Kind: ErrorKindFetch, URL: rawURL, Err: err})
	}
	return FetchMany[T](ctx, transport, rawURL, filters)
}

type validatable interface {
	Validate() error
}

// validateFilters runs the Validate method of filters, if it has one.
func validateFilters(filters any) error {
	v, ok := filters.(validatable)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilters, err)
	}
	return nil
}

// FetchOne GETs rawURL and decodes the body into a T.
func FetchOne[T any](ctx context.Context, transport Transport, rawURL string) (T, error) {
	var value T
	if err := fetch(ctx, transport, rawURL, &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// FetchMany GETs rawURL with filters encoded as query parameters and decodes a Collection.
// filters may be nil, a struct or a pointer to a struct tagged with `schema` keys.
func FetchMany[T any](ctx context.Context, transport Transport, rawURL string, filters any) (*Collection[T], error) {
	target, err := withQuery(rawURL, filters)
	if err != nil {
		return nil, failed(&RequestError{Kind: ErrorKindFetch, URL: rawURL, Err: err})
	}

	var page Collection[T]
	if err := fetch(ctx, transport, target, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// withQuery merges the encoded filters into the query string of rawURL.
func withQuery(rawURL string, filters any) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if filters == nil {
		return u.String(), nil
	}

	values := url.Values{}
	if err := queryEncoder.Encode(filters, values); err != nil {
		return "", fmt.Errorf("encode filters: %w", err)
	}

	query := u.Query()
	for key, vals := range values {
		for _, val := range vals {
			query.Add(key, val)
		}
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// fetch performs the request and decodes a successful body into out.
func fetch(ctx context.Context, transport Transport, rawURL string, out any) error {
	ctx, span := tracer.Start(ctx, "idalon.fetch", trace.WithAttributes(
		attribute.String("url.full", rawURL),
	))
	defer span.End()

	log.Debug().Str("url", rawURL).Msg("Fetching resource")

	resp, err := transport.Get(ctx, rawURL)
	if err != nil {
		return failed(&RequestError{Kind: ErrorKindFetch, URL: rawURL, Err: err}, span)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain so the connection can be reused; the body itself is never inspected.
		_, _ = io.Copy(io.Discard, resp.Body)
		return failed(&RequestError{Kind: ErrorKindBadStatus, URL: rawURL, StatusCode: resp.StatusCode}, span)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(&RequestError{Kind: ErrorKindFetch, URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}, span)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return failed(&RequestError{Kind: ErrorKindParse, URL: rawURL, StatusCode: resp.StatusCode, Err: err}, span)
	}

	return nil
}

// failed records err on the metrics and on the optional span and returns it.
func failed(err *RequestError, spans ...trace.Span) error {
	fetchErrorsTotal.WithLabelValues(string(err.Kind)).Inc()
	for _, span := range spans {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(err.Kind))
	}
	return err
}
