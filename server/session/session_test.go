package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"portfolio-arcade/server/agent"
	"portfolio-arcade/server/engine"
	"portfolio-arcade/server/odds"
	"portfolio-arcade/server/rps"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestManager(hooks Hooks) (*Manager, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewManager(Config{TTL: time.Hour, Tuning: rps.DefaultTuning(), Seed: 1, Hooks: hooks}, nil)
	m.now = c.now
	return m, c
}

func TestManagerExpiry(t *testing.T) {
	m, c := newTestManager(Hooks{})
	s := m.Create()
	if _, err := m.Get(s.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.advance(50 * time.Minute)
	if _, err := m.Get(s.ID); err != nil {
		t.Fatalf("access should slide expiry: %v", err)
	}
	c.advance(50 * time.Minute)
	if _, err := m.Get(s.ID); err != nil {
		t.Fatalf("still inside the slid window: %v", err)
	}
	c.advance(61 * time.Minute)
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManagerSweep(t *testing.T) {
	m, c := newTestManager(Hooks{})
	m.Create()
	m.Create()
	if _, err := m.CreateTable(engine.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	c.advance(2 * time.Hour)
	keep := m.Create()
	if n := m.Sweep(); n != 3 {
		t.Fatalf("swept %d, want 3", n)
	}
	if s, tb := m.Len(); s != 1 || tb != 0 {
		t.Fatalf("left %d sessions %d tables", s, tb)
	}
	if _, err := m.Get(keep.ID); err != nil {
		t.Fatalf("fresh session swept: %v", err)
	}
}

func TestSessionPlayAndReset(t *testing.T) {
	var mu sync.Mutex
	var rounds []rps.Round
	resets := 0
	m, _ := newTestManager(Hooks{
		OnRound: func(id string, r rps.Round, sb rps.Scoreboard) {
			mu.Lock()
			rounds = append(rounds, r)
			mu.Unlock()
		},
		OnReset: func(string, float64) { resets++ },
	})
	s := m.Create()
	for i := 0; i < 10; i++ {
		s.Play(rps.Rock)
	}
	v := s.View()
	if v.Snapshot.Rounds != 10 || len(rounds) != 10 {
		t.Fatalf("rounds %d, hooks %d", v.Snapshot.Rounds, len(rounds))
	}
	if v.Elo.Games != 10 {
		t.Fatalf("elo games %d", v.Elo.Games)
	}
	v = s.Reset()
	if v.Snapshot.Rounds != 0 || v.Elo.Games != 0 || resets != 1 {
		t.Fatalf("reset view %+v, resets %d", v, resets)
	}
}

func TestSessionSimulationSingleRun(t *testing.T) {
	m, _ := newTestManager(Hooks{})
	s := m.Create()
	if _, err := s.StartSimulation(context.Background(), rps.ConstantUser{Move: rps.Paper}, time.Second, 0, nil); err != nil {
		t.Fatalf("StartSimulation: %v", err)
	}
	if _, err := s.StartSimulation(context.Background(), rps.ConstantUser{Move: rps.Paper}, time.Second, 0, nil); !errors.Is(err, rps.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if !s.View().Simulating {
		t.Fatalf("view should report the running simulation")
	}
	s.StopSimulation()
	if s.View().Simulating {
		t.Fatalf("still simulating after stop")
	}
}

func TestSessionSimulationLimit(t *testing.T) {
	m, _ := newTestManager(Hooks{})
	s := m.Create()
	got := make(chan rps.Round, 16)
	sim, err := s.StartSimulation(context.Background(), rps.ConstantUser{Move: rps.Paper}, rps.MinInterval, 3, func(r rps.Round) { got <- r })
	if err != nil {
		t.Fatalf("StartSimulation: %v", err)
	}
	select {
	case <-sim.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("simulation did not finish")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rounds, got %d", len(got))
	}
	if s.View().Snapshot.Rounds != 3 {
		t.Fatalf("simulated rounds not applied")
	}
}

func TestTableHandFlow(t *testing.T) {
	hands := 0
	m, _ := newTestManager(Hooks{OnHand: func(string, *engine.Result) { hands++ }})
	tb, err := m.CreateTable(engine.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tb.Act(agent.ActionIn{Action: "check"}); !errors.Is(err, engine.ErrHandOver) {
		t.Fatalf("act before start: %v", err)
	}
	for hand := 1; hand <= 5; hand++ {
		v, err := tb.Start()
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		for steps := 0; v.Observation.InProgress; steps++ {
			if steps > 50 {
				t.Fatalf("hand did not finish")
			}
			if v.Observation.ToAct != 0 {
				t.Fatalf("waiting on seat %d, not the human", v.Observation.ToAct)
			}
			action := "call"
			if v.Observation.ToCall == 0 {
				action = "check"
			}
			if v, err = tb.Act(agent.ActionIn{Action: action}); err != nil {
				t.Fatalf("Act(%s): %v", action, err)
			}
		}
		if v.Observation.Result == nil || v.Stats.Hands != hand {
			t.Fatalf("hand %d not recorded: %+v", hand, v.Stats)
		}
	}
	if hands != 5 {
		t.Fatalf("OnHand called %d times", hands)
	}
	if _, err := tb.Act(agent.ActionIn{Action: "fold"}); !errors.Is(err, engine.ErrHandOver) {
		t.Fatalf("act after hand: %v", err)
	}
}

func TestTableOdds(t *testing.T) {
	m, _ := newTestManager(Hooks{})
	tb, err := m.CreateTable(engine.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tb.Odds(100); !errors.Is(err, engine.ErrHandOver) {
		t.Fatalf("odds before a hand: %v", err)
	}
	if _, err := tb.Start(); err != nil {
		t.Fatal(err)
	}
	rep, err := tb.Odds(200)
	if err != nil || rep.WinLikelihood < 0 || rep.WinLikelihood > 1 {
		t.Fatalf("Odds = %+v, %v", rep, err)
	}
}

func mustCards(t *testing.T, ss ...string) []engine.Card {
	t.Helper()
	out := make([]engine.Card, len(ss))
	for i, s := range ss {
		c, err := engine.ParseCard(s)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = c
	}
	return out
}

func TestTableOddsHeadsUpRiverIsExact(t *testing.T) {
	m, _ := newTestManager(Hooks{})
	cfg := engine.DefaultConfig()
	cfg.Seats = []string{"You", "Bot"}
	tb, err := m.CreateTable(cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Heads-up the button posts the small blind and acts first preflop.
	if err := tb.table.StartHand(); err != nil {
		t.Fatal(err)
	}
	if tb.table.ToAct != 0 {
		t.Fatalf("human should act first, to act %d", tb.table.ToAct)
	}

	pre, err := tb.Odds(300)
	if err != nil {
		t.Fatal(err)
	}
	if pre.Exact || pre.Iterations != 300 || pre.Opponents != 1 {
		t.Fatalf("preflop report %+v", pre)
	}
	if pre.ToCall != cfg.BB-cfg.SB || pre.Pot != cfg.SB+cfg.BB || pre.CallEV == nil {
		t.Fatalf("preflop call fields %+v", pre)
	}
	if want := odds.CallEV(pre.WinLikelihood, pre.Pot, pre.ToCall); *pre.CallEV != want {
		t.Fatalf("call ev %v, want %v", *pre.CallEV, want)
	}

	tb.table.Players[0].Hole = mustCards(t, "As", "Ah")
	tb.table.Board = mustCards(t, "Ad", "Ac", "2s", "7h", "9d")
	river, err := tb.Odds(300)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := odds.RiverEquity(tb.table.Players[0].Hole, tb.table.Board)
	if !river.Exact || river.Iterations != 0 || river.WinLikelihood != want || want < 0.99 {
		t.Fatalf("river report %+v, enumerated %v", river, want)
	}
}
