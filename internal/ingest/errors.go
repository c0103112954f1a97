package ingest

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/wefrigerator/fridge-ingest/internal/fetcher"
)

// Error kinds a run can fail with. Match them with errors.Is or eris.Is.
var (
	ErrUnauthorized         = eris.New("unauthorized")
	ErrConfigurationMissing = eris.New("configuration missing")
	ErrSourceRegistryMiss   = eris.New("source registry miss")
	ErrUpstreamUnavailable  = eris.New("upstream unavailable")
	ErrSinkUpsert           = eris.New("sink upsert failed")
)

// ConfigurationMessage is the client-facing text for ErrConfigurationMissing.
const ConfigurationMessage = "internal configuration error: missing external store configuration"

// RunError is a failed run. Error returns the client-facing message; Is
// matches the kind; Unwrap exposes the underlying cause.
type RunError struct {
	Kind     error
	Provider string
	Message  string
	Err      error
}

func (e *RunError) Error() string { return e.Message }

func (e *RunError) Is(target error) bool { return target == e.Kind }

func (e *RunError) Unwrap() error { return e.Err }

func runError(kind error, provider, message string, cause error) *RunError {
	return &RunError{Kind: kind, Provider: provider, Message: message, Err: cause}
}

// upstreamReason renders a fetch failure the way it is reported to callers.
func upstreamReason(err error) string {
	var statusErr *fetcher.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("API returned %d", statusErr.StatusCode)
	}
	return err.Error()
}
