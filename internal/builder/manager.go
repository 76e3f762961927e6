package builder

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/preview"
)

// ManagerConfig holds what every session is built with.
type ManagerConfig struct {
	Composer       preview.Composer
	Saver          Saver
	DefaultContent string
	Debounce       time.Duration
	FileURL        func(fileID string) string
	Lggr           logger.Logger
}

// Session is a builder together with its notification inbox.
type Session struct {
	*Builder
	Inbox *Inbox
}

// Manager owns the open builder sessions.
type Manager struct {
	cfg  ManagerConfig
	lggr logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		lggr:     cfg.Lggr.Named("BuilderManager"),
		sessions: make(map[string]*Session),
	}
}

// Create opens a session. seed prefills it for editing a saved QR code.
func (m *Manager) Create(seed *Seed) *Session {
	id := uuid.New().String()
	inbox := &Inbox{}
	pv := preview.New(m.cfg.Composer, m.cfg.DefaultContent, m.cfg.Lggr.With("session", id), m.cfg.Debounce)
	s := &Session{
		Builder: New(id, Config{
			Saver:    m.cfg.Saver,
			Notifier: inbox,
			Preview:  pv,
			FileURL:  m.cfg.FileURL,
			Lggr:     m.cfg.Lggr,
		}, seed),
		Inbox: inbox,
	}

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.lggr.Debugw("Builder session opened", "session", id, "editing", seed != nil && seed.QRID != "", "open", n)
	return s
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close closes and forgets the session with id.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	m.lggr.Debugw("Builder session closed", "session", id)
	return nil
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions unused for longer than maxIdle and returns how many
// were closed.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.lggr.Infow("Closed idle builder sessions", "count", len(stale))
	}
	return len(stale)
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
