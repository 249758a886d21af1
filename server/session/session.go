package session

import (
	"context"
	"sync"
	"time"

	"portfolio-arcade/server/rating"
	"portfolio-arcade/server/rps"
)

// Session is one visitor's rock-paper-scissors game. Every method is safe for
// concurrent use; the websocket, the simulator and plain requests may share
// a session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	game  *rps.Game
	elo   rating.Elo
	sim   *rps.Simulator
	hooks Hooks

	expiresAt time.Time // guarded by Manager.mu
}

func newElo() rating.Elo { return rating.NewElo(rating.DefaultStart, rating.DefaultK) }

// View is the JSON shape of a session.
type View struct {
	ID         string       `json:"session_id"`
	Snapshot   rps.Snapshot `json:"state"`
	Elo        rating.Elo   `json:"elo"`
	Simulating bool         `json:"simulating"`
}

// Play resolves one round and updates the visitor's rating.
func (s *Session) Play(user rps.Move) rps.Round {
	s.mu.Lock()
	r := s.game.Play(user)
	s.elo.UpdateRound(rating.Score(r.Outcome == rps.Win, r.Outcome == rps.Tie))
	sb := s.game.Scoreboard()
	s.mu.Unlock()
	if s.hooks.OnRound != nil {
		s.hooks.OnRound(s.ID, r, sb)
	}
	return r
}

func (s *Session) Reset() View {
	s.mu.Lock()
	s.game.Reset()
	s.elo = newElo()
	v := s.viewLocked()
	s.mu.Unlock()
	if s.hooks.OnReset != nil {
		s.hooks.OnReset(s.ID, v.Snapshot.Exponent)
	}
	return v
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	return View{
		ID:         s.ID,
		Snapshot:   s.game.Snapshot(),
		Elo:        s.elo,
		Simulating: s.sim != nil && s.sim.Running(),
	}
}

// StartSimulation drives the session from a synthetic player. Only one
// simulation runs per session.
func (s *Session) StartSimulation(ctx context.Context, user rps.SyntheticUser, interval time.Duration, limit int, onRound func(rps.Round)) (*rps.Simulator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim != nil && s.sim.Running() {
		return nil, rps.ErrAlreadyRunning
	}
	sim := rps.NewSimulator(s, user, interval, onRound)
	sim.SetLimit(limit)
	if err := sim.Start(ctx); err != nil {
		return nil, err
	}
	s.sim = sim
	return sim, nil
}

func (s *Session) StopSimulation() {
	s.mu.Lock()
	sim := s.sim
	s.sim = nil
	s.mu.Unlock()
	if sim != nil {
		sim.Stop()
	}
}
