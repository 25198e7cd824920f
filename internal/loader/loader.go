package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sonroyaalmerol/fairbeat/internal/queue"
)

const (
	// DefaultMaxTracks caps queued plus resolved tracks per session.
	DefaultMaxTracks = 10_000

	// DefaultLongLoadThreshold is the collection size above which the
	// requester is warned that loading may take a while.
	DefaultLongLoadThreshold = 50
)

// Loader serializes concurrent load requests into a single in-flight
// resolution per playback session. Producers append to an unbounded pending
// list from any goroutine; only the pipeline's own worker removes from it.
// The resolving flag is claimed with a compare-and-swap so exactly one worker
// exists at a time, and every completion - success, failure or panic - drains
// the next pending request before the pipeline goes idle.
type Loader struct {
	queue       *queue.TrackQueue
	player      PlaybackController
	resolver    Resolver
	limiter     RateLimiter
	collections CollectionSource

	maxTracks         int
	longLoadThreshold int

	mu      sync.Mutex
	pending []*Request

	resolving atomic.Bool
}

// Options carries the optional collaborators; zero values disable the
// rate-limit gate and fall back to the defaults.
type Options struct {
	Limiter           RateLimiter
	Collections       CollectionSource
	MaxTracks         int
	LongLoadThreshold int
}

func New(q *queue.TrackQueue, player PlaybackController, resolver Resolver, opts Options) *Loader {
	l := &Loader{
		queue:             q,
		player:            player,
		resolver:          resolver,
		limiter:           opts.Limiter,
		collections:       opts.Collections,
		maxTracks:         opts.MaxTracks,
		longLoadThreshold: opts.LongLoadThreshold,
	}
	if l.maxTracks <= 0 {
		l.maxTracks = DefaultMaxTracks
	}
	if l.longLoadThreshold <= 0 {
		l.longLoadThreshold = DefaultLongLoadThreshold
	}
	return l
}

// Submit hands a request to the pipeline. Requests for recognized
// slow-loading collections go through the rate-limit gate first and are
// dropped with a notice when disallowed; everything else is buffered and, if
// the pipeline is idle, resolution starts immediately.
func (l *Loader) Submit(ctx context.Context, req *Request) {
	if l.collections != nil {
		if info, ok := l.collections.Metadata(ctx, req.Identifier); ok {
			if l.limiter != nil && l.limiter.IsRateLimited(req, info, info.TotalItems) {
				slog.Info("load request rate limited",
					"requestID", req.ID,
					"userID", req.RequesterID,
					"identifier", req.Identifier,
					"items", info.TotalItems)
				l.notify(req, "you are loading too many large playlists right now, try again later")
				return
			}
			if info.TotalItems > l.longLoadThreshold {
				l.notify(req, fmt.Sprintf("loading **%s** (%d tracks), this may take a while", info.Name, info.TotalItems))
			}
		}
	}

	l.mu.Lock()
	l.pending = append(l.pending, req)
	l.mu.Unlock()

	l.maybeStart(ctx)
}

// PendingCount returns how many requests are buffered behind the in-flight
// one.
func (l *Loader) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Resolving reports whether a resolution is currently in flight.
func (l *Loader) Resolving() bool {
	return l.resolving.Load()
}

func (l *Loader) pop() *Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil
	}
	req := l.pending[0]
	l.pending = l.pending[1:]
	return req
}

func (l *Loader) hasPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending) > 0
}

// maybeStart claims the resolving flag and starts a worker for the next
// pending request. The empty-recheck loop closes the race where a producer
// appends between a failed pop and the flag reset.
func (l *Loader) maybeStart(ctx context.Context) {
	for {
		if !l.resolving.CompareAndSwap(false, true) {
			return
		}
		req := l.pop()
		if req == nil {
			l.resolving.Store(false)
			if !l.hasPending() {
				return
			}
			continue
		}
		go l.run(ctx, req)
		return
	}
}

// run is the pipeline worker. It owns the resolving flag until the pending
// list drains, then releases it and re-checks for racing producers.
func (l *Loader) run(ctx context.Context, req *Request) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pipeline fault, resetting",
				"panic", r)
			if req != nil {
				l.failSafely(req, fmt.Errorf("pipeline fault: %v", r))
			}
			l.resolving.Store(false)
			l.maybeStart(ctx)
		}
	}()

	for req != nil {
		l.process(ctx, req)
		req = l.pop()
	}

	l.resolving.Store(false)
	if l.hasPending() {
		l.maybeStart(ctx)
	}
}

// process resolves a single request and applies its outcome. A panic
// anywhere in here is contained and routed through the failure path so the
// worker loop always advances.
func (l *Loader) process(ctx context.Context, req *Request) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("load request panicked",
				"requestID", req.ID,
				"identifier", req.Identifier,
				"panic", r)
			l.failSafely(req, fmt.Errorf("load panicked: %v", r))
		}
	}()

	limit := l.maxTracksFor(req)
	if l.player.TrackCount() >= limit {
		slog.Info("track ceiling reached, dropping request",
			"requestID", req.ID,
			"userID", req.RequesterID,
			"limit", limit)
		l.notify(req, fmt.Sprintf("can't queue more than %d tracks", limit))
		return
	}

	res, err := l.resolver.Resolve(ctx, req.Identifier)
	if err != nil {
		l.handleFailure(req, err)
		return
	}
	if res == nil {
		l.handleFailure(req, errors.New("resolver returned no result"))
		return
	}

	switch res.Type {
	case LoadTypeTrack:
		l.handleTrack(req, res.Track)
	case LoadTypePlaylist:
		l.handlePlaylist(req, res)
	default:
		slog.Debug("no matches", "requestID", req.ID, "identifier", req.Identifier)
		l.notify(req, fmt.Sprintf("no results for `%s`", req.Identifier))
	}
}

// maxTracksFor returns the capacity ceiling for a request, preferring the
// guild setting it carries over the pipeline default.
func (l *Loader) maxTracksFor(req *Request) int {
	if req.MaxTracks > 0 {
		return req.MaxTracks
	}
	return l.maxTracks
}

func (l *Loader) handleTrack(req *Request, t queue.Track) {
	limit := l.maxTracksFor(req)
	if l.player.TrackCount()+1 > limit {
		l.notify(req, fmt.Sprintf("can't queue more than %d tracks", limit))
		return
	}

	if req.StartOffset > 0 {
		t.Offset = req.StartOffset
	}
	e := queue.NewEntry(t, req.RequesterID, req.Priority)
	if req.Priority {
		l.queue.AddFirst(e)
	} else {
		l.queue.Add(e)
	}
	slog.Info("queued track",
		"requestID", req.ID,
		"userID", req.RequesterID,
		"title", t.Title,
		"priority", req.Priority)

	if !req.Quiet {
		l.notify(req, fmt.Sprintf("**%s** added to the queue", t.Title))
	}
	l.startPlayback()
}

func (l *Loader) handlePlaylist(req *Request, res *LoadResult) {
	if len(res.Tracks) == 0 {
		l.notify(req, fmt.Sprintf("no results for `%s`", req.Identifier))
		return
	}

	tracks := res.Tracks
	truncated := false
	if req.PlaylistLimit > 0 && len(tracks) > req.PlaylistLimit {
		tracks = tracks[:req.PlaylistLimit]
		truncated = true
	}

	// a partial playlist is worse than none; drop the outcome whole when it
	// would blow past the ceiling
	limit := l.maxTracksFor(req)
	if l.player.TrackCount()+len(tracks) > limit {
		l.notify(req, fmt.Sprintf("can't queue more than %d tracks", limit))
		return
	}

	entries := make([]*queue.Entry, 0, len(tracks))
	for _, t := range tracks {
		entries = append(entries, queue.NewEntry(t, req.RequesterID, req.Priority))
	}
	if req.Priority {
		l.queue.AddAllFirst(entries)
	} else {
		l.queue.AddAll(entries)
	}
	slog.Info("queued playlist",
		"requestID", req.ID,
		"userID", req.RequesterID,
		"playlist", res.PlaylistName,
		"tracks", len(entries),
		"truncated", truncated)

	if !req.Quiet {
		msg := fmt.Sprintf("**%s** added to the queue (%d tracks)", res.PlaylistName, len(entries))
		if truncated {
			msg = fmt.Sprintf("**%s** added to the queue (first %d of %d tracks)", res.PlaylistName, len(entries), len(res.Tracks))
		}
		l.notify(req, msg)
	}
	l.startPlayback()
}

func (l *Loader) handleFailure(req *Request, err error) {
	var le *LoadError
	if errors.As(err, &le) && le.Common {
		slog.Info("load failed",
			"requestID", req.ID,
			"identifier", req.Identifier,
			"err", err)
		l.notify(req, le.Message)
		return
	}

	attrs := []any{
		"requestID", req.ID,
		"userID", req.RequesterID,
		"identifier", req.Identifier,
		"err", err,
	}
	if le != nil && le.Cause != nil {
		attrs = append(attrs, "cause", le.Cause)
	}
	slog.Error("suspicious load failure", attrs...)
	l.notify(req, "something went wrong while loading your track, sorry about that")
}

// failSafely runs the failure path with its own containment; used after the
// regular handling already panicked once.
func (l *Loader) failSafely(req *Request, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("failure path panicked", "requestID", req.ID, "panic", r)
		}
	}()
	l.handleFailure(req, err)
}

// notify delivers through the request's reply sink. Sink faults are logged
// and swallowed; they must never break pipeline advancement.
func (l *Loader) notify(req *Request, text string) {
	if req.Sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("reply sink failed", "requestID", req.ID, "panic", r)
		}
	}()
	req.Sink.ReplyWithRequesterName(text)
}

func (l *Loader) startPlayback() {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("playback start failed", "panic", r)
		}
	}()
	if !l.player.IsPaused() {
		l.player.Play()
	}
}
