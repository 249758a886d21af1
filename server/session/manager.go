package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"portfolio-arcade/server/engine"
	"portfolio-arcade/server/rps"
)

const DefaultTTL = 2 * time.Hour

var ErrNotFound = errors.New("session not found")

// Hooks run after state changes, outside any session lock. The server uses
// them for best-effort persistence.
type Hooks struct {
	OnRound func(sessionID string, r rps.Round, sb rps.Scoreboard)
	OnReset func(sessionID string, exponent float64)
	OnHand  func(tableID string, res *engine.Result)
}

type Config struct {
	TTL    time.Duration
	Tuning rps.Tuning
	Seed   int64 // 0 seeds from the clock
	Hooks  Hooks
}

// Manager owns every live game session and poker table. Entries expire after
// TTL without use; each access slides the expiry.
type Manager struct {
	mu       sync.Mutex
	ttl      time.Duration
	tuning   rps.Tuning
	hooks    Hooks
	seeds    *rand.Rand
	now      func() time.Time
	sessions map[string]*Session
	tables   map[string]*Table
	log      *logrus.Entry
}

func NewManager(cfg Config, log *logrus.Entry) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		ttl:      cfg.TTL,
		tuning:   cfg.Tuning,
		hooks:    cfg.Hooks,
		seeds:    engine.NewRand(cfg.Seed),
		now:      time.Now,
		sessions: make(map[string]*Session),
		tables:   make(map[string]*Table),
		log:      log,
	}
}

func (m *Manager) nextSeedLocked() int64 {
	s := m.seeds.Int63()
	if s == 0 {
		s = 1
	}
	return s
}

func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		game:      rps.NewGame(m.tuning, rand.New(rand.NewSource(m.nextSeedLocked()))),
		elo:       newElo(),
		hooks:     m.hooks,
		expiresAt: now.Add(m.ttl),
	}
	m.sessions[s.ID] = s
	m.log.WithField("session", s.ID).Debug("session created")
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if !now.Before(s.expiresAt) {
		delete(m.sessions, id)
		go s.StopSimulation()
		return nil, ErrNotFound
	}
	s.expiresAt = now.Add(m.ttl)
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.StopSimulation()
	}
}

func (m *Manager) CreateTable(cfg engine.Config) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.Seed == 0 {
		cfg.Seed = m.nextSeedLocked()
	}
	et, err := engine.NewTable(cfg)
	if err != nil {
		return nil, err
	}
	now := m.now()
	t := &Table{
		ID:        uuid.NewString(),
		CreatedAt: now,
		table:     et,
		bot:       engine.NewBot(m.nextSeedLocked()),
		rng:       rand.New(rand.NewSource(m.nextSeedLocked())),
		hooks:     m.hooks,
		elo:       newElo(),
		expiresAt: now.Add(m.ttl),
	}
	m.tables[t.ID] = t
	m.log.WithField("table", t.ID).Debug("table created")
	return t, nil
}

func (m *Manager) GetTable(id string) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if !now.Before(t.expiresAt) {
		delete(m.tables, id)
		return nil, ErrNotFound
	}
	t.expiresAt = now.Add(m.ttl)
	return t, nil
}

// Len reports live sessions and tables, expired ones included until swept.
func (m *Manager) Len() (sessions, tables int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), len(m.tables)
}

// Sweep drops expired sessions and tables and returns how many went.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	now := m.now()
	var stale []*Session
	n := 0
	for id, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			delete(m.sessions, id)
			stale = append(stale, s)
			n++
		}
	}
	for id, t := range m.tables {
		if !now.Before(t.expiresAt) {
			delete(m.tables, id)
			n++
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		s.StopSimulation()
	}
	return n
}

// Run sweeps on a ticker until ctx ends.
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = m.ttl / 4
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				m.log.WithField("expired", n).Info("swept idle sessions")
			}
		}
	}
}

// StopAll halts every running simulation, for shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()
	for _, s := range all {
		s.StopSimulation()
	}
}
