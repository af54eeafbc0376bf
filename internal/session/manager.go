package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/delphi-enrich-web/internal/constants"
	"github.com/kapu/delphi-enrich-web/internal/domain"
	"github.com/kapu/delphi-enrich-web/internal/enrichment"
	"github.com/kapu/delphi-enrich-web/internal/flow"
	"github.com/kapu/delphi-enrich-web/pkg/errors"
	"go.uber.org/zap"
)

// APIFactory builds the enrichment API one session talks through. The jar
// belongs to that session alone.
type APIFactory func(jar http.CookieJar) flow.EnrichmentAPI

type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// Session is one browser session: its id and the controller driving it.
type Session struct {
	ID         string
	Controller *flow.Controller
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager keeps live controllers keyed by session id and mirrors their
// snapshots to a Store.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	store   Store
	factory APIFactory
	sink    flow.ConfirmationSink
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

func NewManager(store Store, factory APIFactory, sink flow.ConfirmationSink, cfg Config, logger *zap.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = constants.SessionConfig.DefaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = constants.SessionConfig.SweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*entry),
		store:    store,
		factory:  factory,
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session for id. An empty, malformed or unknown id yields a
// fresh session with a new id; callers compare IDs to decide whether to set
// the cookie.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return m.create(uuid.NewString())
	}

	if s := m.lookup(id); s != nil {
		return s, nil
	}

	snapshot, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return m.create(uuid.NewString())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have rehydrated it while the store was loading.
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		return e.session, nil
	}
	s, err := m.newSessionLocked(id, snapshot)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Session rehydrated", zap.String("session", id))
	return s, nil
}

// Save writes the controller snapshot to the store.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	if err := m.store.Save(ctx, s.ID, s.Controller.Snapshot()); err != nil {
		return err
	}
	m.touch(s.ID)
	return nil
}

// Sweep evicts sessions idle longer than the TTL from memory. Their snapshots
// stay in the store until it expires them.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.cfg.TTL)
	removed := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	m.logger.Info("Session janitor started",
		zap.Duration("interval", m.cfg.SweepInterval),
		zap.Duration("ttl", m.cfg.TTL),
	)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Session janitor stopped")
			return
		case <-ticker.C:
			removed := m.Sweep()
			if ms, ok := m.store.(*MemoryStore); ok {
				removed += ms.Sweep()
			}
			if removed > 0 {
				m.logger.Debug("Expired sessions swept", zap.Int("removed", removed))
			}
		}
	}
}

// Len reports how many sessions are live in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) lookup(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if e.lastSeen.Before(m.now().Add(-m.cfg.TTL)) {
		delete(m.sessions, id)
		return nil
	}
	e.lastSeen = m.now()
	return e.session
}

func (m *Manager) touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
	}
}

func (m *Manager) create(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.newSessionLocked(id, nil)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Session created", zap.String("session", id))
	return s, nil
}

// must be called with lock held
func (m *Manager) newSessionLocked(id string, snapshot *domain.State) (*Session, error) {
	jar, err := enrichment.NewCookieJar()
	if err != nil {
		return nil, errors.NewSessionError("failed to create cookie jar", "create", id, err)
	}
	s := &Session{
		ID:         id,
		Controller: flow.Restore(snapshot, m.factory(jar), m.sink, m.logger.With(zap.String("session", id))),
	}
	m.sessions[id] = &entry{session: s, lastSeen: m.now()}
	return s, nil
}
