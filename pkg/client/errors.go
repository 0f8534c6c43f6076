package client

import (
	"errors"
	"net/http"
)

// Errors returned by the client in place of a response.
var (
	// ErrRateLimited is returned when the shared request budget is critical.
	ErrRateLimited = errors.New("request blocked: rate limit critical")

	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("request blocked: circuit breaker open")

	errServerStatus = errors.New("server error status")
)

// ErrorClass represents a classification of failed requests.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses and locally blocked requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassCircuitOpen represents requests rejected by the circuit breaker.
	ErrorClassCircuitOpen ErrorClass = "circuit_open"

	// ErrorClassNetwork represents network and timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// classifyError categorizes a failed request for observability.
// It returns "" for a successful response.
func classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		switch {
		case errors.Is(err, ErrCircuitOpen):
			return ErrorClassCircuitOpen
		case errors.Is(err, ErrRateLimited):
			return ErrorClassRateLimit
		default:
			return ErrorClassNetwork
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
