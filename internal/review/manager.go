package review

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/enrich"
)

// Manager owns the lifetime of the single active review session: one
// session per review pass, destroyed when the user exits review mode.
type Manager struct {
	mu sync.Mutex

	store    *deck.Store
	enricher enrich.Enricher
	logger   *slog.Logger
	onEvent  EventFunc

	session *Session
	cancel  context.CancelFunc
}

// NewManager creates a session manager bound to the deck store.
func NewManager(store *deck.Store, enricher enrich.Enricher, logger *slog.Logger, onEvent EventFunc) *Manager {
	return &Manager{
		store:    store,
		enricher: enricher,
		logger:   logger,
		onEvent:  onEvent,
	}
}

// Start snapshots the deck into a fresh session and begins its tick
// loop, replacing any session already running.
func (m *Manager) Start() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()

	s := NewSession(m.store.Cards(), m.store.Prefs(), m.store, m.enricher, m.logger, m.onEvent)
	ctx, cancel := context.WithCancel(context.Background())
	m.session = s
	m.cancel = cancel
	go s.Run(ctx)

	m.logger.Info("review: session started", slog.Int("queue", s.Snapshot().QueueLength))
	return s
}

// Current returns the active session, if any.
func (m *Manager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.session != nil
}

// Stop destroys the active session. Abandoned dwell time carries no
// credit.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.session != nil {
		m.logger.Info("review: session ended")
		m.session = nil
	}
}
