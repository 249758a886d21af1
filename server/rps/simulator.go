package rps

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	MinInterval     = 10 * time.Millisecond
	MaxInterval     = 4000 * time.Millisecond
	DefaultInterval = 250 * time.Millisecond
)

var ErrAlreadyRunning = errors.New("simulation already running")

// Player is anything that can resolve a round, typically a *Game or a
// locked wrapper around one.
type Player interface {
	Play(user Move) Round
}

// ClampInterval keeps a tick interval inside [MinInterval, MaxInterval].
// Zero selects DefaultInterval.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultInterval
	case d < MinInterval:
		return MinInterval
	case d > MaxInterval:
		return MaxInterval
	}
	return d
}

// Simulator feeds synthetic moves into a Player on a fixed tick.
type Simulator struct {
	player   Player
	user     SyntheticUser
	interval time.Duration
	limit    int
	onRound  func(Round)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSimulator(p Player, u SyntheticUser, interval time.Duration, onRound func(Round)) *Simulator {
	return &Simulator{
		player:   p,
		user:     u,
		interval: ClampInterval(interval),
		onRound:  onRound,
	}
}

// SetLimit stops the simulation after n rounds; n <= 0 means unlimited.
func (s *Simulator) SetLimit(n int) { s.limit = n }

func (s *Simulator) Interval() time.Duration { return s.interval }

func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	return nil
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	played := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r := s.player.Play(s.user.Next())
			played++
			if s.onRound != nil {
				s.onRound(r)
			}
			if s.limit > 0 && played >= s.limit {
				return
			}
		}
	}
}

// Stop halts the ticker and waits for the loop to exit. Stopping an idle
// simulator is a no-op.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Done is closed when the current run ends. It is nil before Start.
func (s *Simulator) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
