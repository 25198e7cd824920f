package queue

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// Track is a resolved playable item as produced by a resolver. The queue
// treats it as opaque payload; only Duration and IsStream are inspected.
type Track struct {
	Identifier string
	Title      string
	Artist     string
	URL        string
	Duration   time.Duration
	Offset     time.Duration // where playback should start
	IsStream   bool
	Thumbnail  string
}

// RepeatMode controls what ProvideNext does with the last played entry.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatSingle
	RepeatAll
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatSingle:
		return "single"
	case RepeatAll:
		return "all"
	default:
		return "none"
	}
}

func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "single":
		return RepeatSingle
	case "all":
		return RepeatAll
	default:
		return RepeatNone
	}
}

var entryIDs atomic.Int64

// Entry is a track plus its ownership and ordering metadata. Once added it is
// owned exclusively by the queue; replaying under a repeat mode always goes
// through a clone with a fresh identity. The priority flag and shuffle rank
// are atomics because the queue rewrites them under its mutex while entries
// already handed out through Range or Ordered are still being read.
type Entry struct {
	id        int64
	track     Track
	requester string
	priority  atomic.Bool
	rank      atomic.Int32
}

func NewEntry(track Track, requester string, priority bool) *Entry {
	e := &Entry{
		id:        entryIDs.Add(1),
		track:     track,
		requester: requester,
	}
	e.priority.Store(priority)
	e.rank.Store(rand.Int31())
	return e
}

func (e *Entry) ID() int64         { return e.id }
func (e *Entry) Track() Track      { return e.track }
func (e *Entry) Requester() string { return e.requester }
func (e *Entry) Priority() bool    { return e.priority.Load() }

func (e *Entry) Duration() time.Duration { return e.track.Duration }
func (e *Entry) IsStream() bool          { return e.track.IsStream }

// clone returns a fresh entry for the same track. The priority flag does not
// survive a replay.
func (e *Entry) clone() *Entry {
	return NewEntry(e.track, e.requester, false)
}
