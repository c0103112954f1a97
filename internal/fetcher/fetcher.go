// Package fetcher makes the single upstream HTTP call of a provider run.
package fetcher

import (
	"context"
	"fmt"
)

// Request describes one upstream call.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Headers     map[string]string
}

// Fetcher performs an upstream request and returns the full response body.
// It never retries; a failed call is reported to the caller as-is.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d from %s", e.StatusCode, e.URL)
}
