package feed

import (
	"errors"
	"fmt"
)

// ErrFetchTimeout reports that a one-shot fetch exceeded its deadline.
// Fetches are never retried internally; callers surface the failure and
// let the user retry (re-entering the screen, re-running the command).
var ErrFetchTimeout = errors.New("feed: fetch timed out")

// BackendError is a failure reported by the realtime database itself,
// e.g. a permission-denied rule or a malformed path. It is surfaced
// verbatim, never retried.
type BackendError struct {
	Path   string
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("feed: backend error on %q: status %d: %s", e.Path, e.Status, e.Body)
}
