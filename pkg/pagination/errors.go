package pagination

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	// ErrorKindFetch means the server could not be reached or the response could not be read.
	ErrorKindFetch ErrorKind = "fetch"

	// ErrorKindParse means the body did not decode into the expected shape.
	ErrorKindParse ErrorKind = "parse"

	// ErrorKindBadStatus means the server answered with a status code >= 400.
	ErrorKindBadStatus ErrorKind = "bad_status"
)

// Sentinels for errors.Is, one per ErrorKind.
var (
	ErrFetch     = errors.New("failed to fetch URL")
	ErrParse     = errors.New("failed to parse JSON from URL")
	ErrBadStatus = errors.New("request returned an error status code")
)

// Caller errors. They are reported as ErrorKindFetch and no request is sent.
var (
	ErrInvalidFilters = errors.New("invalid filters")
	ErrEmptyID        = errors.New("empty record id")
)

// RequestError is returned by every fetch function.
type RequestError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Kind == ErrorKindBadStatus {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind.sentinel(), e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind.sentinel(), e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Kind.sentinel(), e.URL)
}

// Unwrap returns the underlying transport or decoder error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *RequestError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k ErrorKind) sentinel() error {
	switch k {
	case ErrorKindFetch:
		return ErrFetch
	case ErrorKindParse:
		return ErrParse
	case ErrorKindBadStatus:
		return ErrBadStatus
	default:
		return errors.New(string(k))
	}
}

// KindOf returns the kind of a RequestError anywhere in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return ""
}
