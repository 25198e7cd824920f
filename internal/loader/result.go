package loader

import (
	"context"

	"github.com/sonroyaalmerol/fairbeat/internal/queue"
)

// LoadType discriminates the outcome of a resolution.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeEmpty    LoadType = "empty"
)

// LoadResult is the value a resolver produces exactly once per request.
// Failures are reported through the error return of Resolve instead.
type LoadResult struct {
	Type LoadType

	// Track is set for LoadTypeTrack.
	Track queue.Track

	// PlaylistName and Tracks are set for LoadTypePlaylist.
	PlaylistName string
	Tracks       []queue.Track
}

// Resolver turns an identifier (URL, search term, playlist id) into zero, one
// or many playable tracks. Implementations may block; the pipeline guarantees
// at most one Resolve call is in flight per session.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*LoadResult, error)
}

// LoadError is a classified resolution failure. Common failures are expected,
// user-actionable conditions whose message is surfaced verbatim to the
// requester; anything else is treated as suspicious and only reported to the
// operator log.
type LoadError struct {
	Message string
	Common  bool
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *LoadError) Unwrap() error { return e.Cause }

// CommonError builds a failure safe to show to the requester as-is.
func CommonError(message string) *LoadError {
	return &LoadError{Message: message, Common: true}
}

// SuspiciousError builds an unexpected failure; the requester only sees a
// generic apology.
func SuspiciousError(message string, cause error) *LoadError {
	return &LoadError{Message: message, Cause: cause}
}
