package player

import (
	"sync"

	"github.com/sonroyaalmerol/fairbeat/internal/loader"
)

// Session bundles a guild's player with its resolution pipeline.
type Session struct {
	Player *Player
	Loader *loader.Loader
}

// Manager hands out one Session per guild, creating it on first use. Every
// session shares the resolver and pipeline options.
type Manager struct {
	resolver loader.Resolver
	opts     loader.Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(resolver loader.Resolver, opts loader.Options) *Manager {
	return &Manager{
		resolver: resolver,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Get(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[guildID]; ok {
		return s
	}
	p := New(guildID)
	s := &Session{
		Player: p,
		Loader: loader.New(p.Queue(), p, m.resolver, m.opts),
	}
	m.sessions[guildID] = s
	return s
}

// Peek returns the session for a guild without creating one.
func (m *Manager) Peek(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[guildID]
}

// Stats counts sessions and queue totals for the stats endpoint.
func (m *Manager) Stats() (total, playing, queued int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		total++
		if s.Player.Status() == StatusPlaying {
			playing++
		}
		queued += s.Player.Queue().Size()
	}
	return total, playing, queued
}
