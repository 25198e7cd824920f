package player

import (
	"testing"
	"time"

	"github.com/sonroyaalmerol/fairbeat/internal/loader"
	"github.com/sonroyaalmerol/fairbeat/internal/queue"
)

func addTrack(p *Player, title string) *queue.Entry {
	e := queue.NewEntry(queue.Track{Title: title, Duration: time.Minute}, "alice", false)
	p.Queue().Add(e)
	return e
}

func TestPlay_PullsFromQueue(t *testing.T) {
	p := New("guild")
	e := addTrack(p, "one")

	p.Play()
	if p.Status() != StatusPlaying {
		t.Fatalf("status = %v, want playing", p.Status())
	}
	if p.NowPlaying() != e {
		t.Error("now playing is not the queued entry")
	}
	if got := p.TrackCount(); got != 1 {
		t.Errorf("TrackCount() = %d, want 1 (current track)", got)
	}
}

func TestPlay_NoopWhenPaused(t *testing.T) {
	p := New("guild")
	addTrack(p, "one")
	p.Play()
	if !p.Pause() {
		t.Fatal("pause failed")
	}

	addTrack(p, "two")
	p.Play()
	if p.Status() != StatusPaused {
		t.Errorf("Play() resumed a paused session, status = %v", p.Status())
	}
}

func TestSkip_ForgetsCurrentTrack(t *testing.T) {
	p := New("guild")
	addTrack(p, "one")
	addTrack(p, "two")
	p.Queue().SetRepeat(queue.RepeatAll)
	p.Play()

	next := p.Skip()
	if next == nil || next.Track().Title != "two" {
		t.Fatalf("Skip() advanced to %v, want two", next)
	}
	// the skipped track must not have been replayed into the queue
	if got := p.Queue().Size(); got != 0 {
		t.Errorf("queue size after skip = %d, want 0", got)
	}
}

func TestOnTrackEnd_HonorsRepeatAll(t *testing.T) {
	p := New("guild")
	addTrack(p, "one")
	p.Queue().SetRepeat(queue.RepeatAll)
	p.Play()
	first := p.NowPlaying()

	next := p.OnTrackEnd()
	if next == nil {
		t.Fatal("repeat all ended playback")
	}
	if next.ID() == first.ID() {
		t.Error("replayed entry kept the old identity, want a clone")
	}
	if next.Track() != first.Track() {
		t.Error("replayed entry wraps a different track")
	}
}

func TestOnTrackEnd_GoesIdleWhenDrained(t *testing.T) {
	p := New("guild")
	addTrack(p, "one")
	p.Play()

	if next := p.OnTrackEnd(); next != nil {
		t.Fatalf("OnTrackEnd() = %v, want nil", next)
	}
	if p.Status() != StatusIdle {
		t.Errorf("status = %v, want idle", p.Status())
	}
	if p.TrackCount() != 0 {
		t.Errorf("TrackCount() = %d, want 0", p.TrackCount())
	}
}

func TestResume_FromIdleStartsQueue(t *testing.T) {
	p := New("guild")
	if p.Resume() {
		t.Error("resume on empty idle session reported success")
	}
	addTrack(p, "one")
	if !p.Resume() {
		t.Error("resume with queued tracks failed")
	}
	if p.Status() != StatusPlaying {
		t.Errorf("status = %v, want playing", p.Status())
	}
}

func TestManager_SessionPerGuild(t *testing.T) {
	m := NewManager(nil, loader.Options{})
	a := m.Get("guild-a")
	if a != m.Get("guild-a") {
		t.Error("same guild returned different sessions")
	}
	if a == m.Get("guild-b") {
		t.Error("different guilds share a session")
	}
	if m.Peek("guild-c") != nil {
		t.Error("Peek created a session")
	}

	total, playing, queued := m.Stats()
	if total != 2 || playing != 0 || queued != 0 {
		t.Errorf("Stats() = %d,%d,%d, want 2,0,0", total, playing, queued)
	}
}
