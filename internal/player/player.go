package player

import (
	"log/slog"
	"sync"

	"github.com/sonroyaalmerol/fairbeat/internal/queue"
)

type Status int

const (
	StatusPlaying Status = iota
	StatusPaused
	StatusIdle
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

// Player is one guild's playback session. It owns a TrackQueue and tracks
// what is currently playing; the audio transport itself lives behind the
// gateway and is driven from the handlers.
type Player struct {
	guildID string
	queue   *queue.TrackQueue

	mu         sync.Mutex
	status     Status
	nowPlaying *queue.Entry
}

func New(guildID string) *Player {
	return &Player{
		guildID: guildID,
		queue:   queue.New(),
		status:  StatusIdle,
	}
}

func (p *Player) GuildID() string          { return p.guildID }
func (p *Player) Queue() *queue.TrackQueue { return p.queue }

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Player) IsPaused() bool {
	return p.Status() == StatusPaused
}

func (p *Player) NowPlaying() *queue.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nowPlaying
}

// TrackCount counts the current track plus everything still queued.
func (p *Player) TrackCount() int {
	p.mu.Lock()
	playing := p.nowPlaying != nil
	p.mu.Unlock()

	n := p.queue.Size()
	if playing {
		n++
	}
	return n
}

// Play starts playback if idle, pulling the next entry from the queue. A
// paused session stays paused; Resume is the explicit way out.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusPlaying || p.status == StatusPaused {
		return
	}
	p.startNextLocked()
}

// startNextLocked pulls the next entry and transitions the status. Caller
// must hold p.mu.
func (p *Player) startNextLocked() {
	next := p.queue.ProvideNext()
	if next == nil {
		p.status = StatusIdle
		p.nowPlaying = nil
		return
	}
	p.nowPlaying = next
	p.status = StatusPlaying
	slog.Info("now playing",
		"guildID", p.guildID,
		"title", next.Track().Title,
		"requester", next.Requester())
}

// Skip abandons the current track and starts the next one. The queue forgets
// the skipped track so repeat modes do not resurrect it.
func (p *Player) Skip() *queue.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.Skipped()
	p.startNextLocked()
	return p.nowPlaying
}

// OnTrackEnd advances to the next entry when the current one finishes
// naturally, honoring the queue's repeat mode.
func (p *Player) OnTrackEnd() *queue.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusPlaying {
		return nil
	}
	p.startNextLocked()
	return p.nowPlaying
}

func (p *Player) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusPlaying {
		return false
	}
	p.status = StatusPaused
	return true
}

func (p *Player) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.status {
	case StatusPaused:
		p.status = StatusPlaying
		return true
	case StatusIdle:
		p.startNextLocked()
		return p.status == StatusPlaying
	}
	return false
}

// Stop halts playback and empties the queue.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusIdle
	p.nowPlaying = nil
	p.queue.Clear()
}
