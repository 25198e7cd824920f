package loader

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReplySink delivers fire-and-forget notifications for one request.
// Implementations log their own delivery failures; the pipeline never lets a
// misbehaving sink stall advancement.
type ReplySink interface {
	Reply(text string)
	ReplyWithRequesterName(text string)
}

// PlaybackController is the playback session the pipeline feeds.
type PlaybackController interface {
	IsPaused() bool
	TrackCount() int
	Play()
}

// CollectionInfo describes a slow-loading external collection (a large
// playlist or album) before it is resolved.
type CollectionInfo struct {
	Name       string
	TotalItems int
}

// CollectionSource recognizes identifiers that point at slow-loading
// collections and returns their metadata. Unrecognized identifiers report
// ok=false and skip the rate-limit gate entirely.
type CollectionSource interface {
	Metadata(ctx context.Context, identifier string) (info *CollectionInfo, ok bool)
}

// RateLimiter decides whether a slow-loading collection request may enter the
// pipeline at all.
type RateLimiter interface {
	IsRateLimited(req *Request, info *CollectionInfo, itemCount int) bool
}

// Request is one pending resolution. It is immutable after creation and
// consumed exactly once: handled to success or failure, never retried.
//
// PlaylistLimit and MaxTracks carry the submitting guild's settings:
// PlaylistLimit truncates collection outcomes to at most that many tracks,
// and MaxTracks overrides the pipeline's capacity ceiling for this request.
// Zero leaves the pipeline defaults in charge.
type Request struct {
	ID            uuid.UUID
	Identifier    string
	RequesterID   string
	RequesterName string
	Priority      bool
	Quiet         bool
	StartOffset   time.Duration
	PlaylistLimit int
	MaxTracks     int
	Sink          ReplySink
}

func NewRequest(identifier, requesterID, requesterName string, sink ReplySink) *Request {
	return &Request{
		ID:            uuid.New(),
		Identifier:    identifier,
		RequesterID:   requesterID,
		RequesterName: requesterName,
		Sink:          sink,
	}
}
