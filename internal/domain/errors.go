package domain

import (
	"errors"
	"fmt"
)

// ErrPageLimit is returned when repository pagination does not terminate
// within the configured number of pages.
var ErrPageLimit = errors.New("repository listing exceeded page limit")

// UpstreamError is a non-success response from the GitHub REST API.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %d %s", e.Endpoint, e.StatusCode, e.Status)
}

// ScrapeError is any failure while recovering the pinned set.
// It never aborts a run.
type ScrapeError struct {
	Reason string
	Err    error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape pinned repositories: %s: %v", e.Reason, e.Err)
	}
	return "scrape pinned repositories: " + e.Reason
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// PersistenceError is a failure to write the output document.
type PersistenceError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
