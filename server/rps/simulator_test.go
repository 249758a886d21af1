package rps

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"
)

type lockedGame struct {
	mu sync.Mutex
	g  *Game
}

func (l *lockedGame) Play(m Move) Round {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Play(m)
}

func TestClampInterval(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		0:                      DefaultInterval,
		time.Millisecond:       MinInterval,
		500 * time.Millisecond: 500 * time.Millisecond,
		time.Minute:            MaxInterval,
	}
	for in, want := range cases {
		if got := ClampInterval(in); got != want {
			t.Fatalf("ClampInterval(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSimulatorStopsAtLimit(t *testing.T) {
	lg := &lockedGame{g: NewGame(DefaultTuning(), rand.New(rand.NewSource(1)))}
	var mu sync.Mutex
	var rounds []Round
	sim := NewSimulator(lg, ConstantUser{Move: Rock}, MinInterval, func(r Round) {
		mu.Lock()
		rounds = append(rounds, r)
		mu.Unlock()
	})
	sim.SetLimit(5)
	if err := sim.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-sim.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("simulation did not finish")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(rounds) != 5 {
		t.Fatalf("expected 5 rounds, got %d", len(rounds))
	}
	for i, r := range rounds {
		if r.Number != i+1 || r.User != Rock {
			t.Fatalf("unexpected round %d: %+v", i, r)
		}
	}
	if sim.Running() {
		t.Fatalf("simulator still marked running")
	}
}

func TestSimulatorStartTwice(t *testing.T) {
	lg := &lockedGame{g: NewGame(DefaultTuning(), rand.New(rand.NewSource(1)))}
	sim := NewSimulator(lg, ConstantUser{Move: Paper}, time.Second, nil)
	if err := sim.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sim.Stop()
	if err := sim.Start(context.Background()); err != ErrAlreadyRunning {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestSimulatorStopAndRestart(t *testing.T) {
	lg := &lockedGame{g: NewGame(DefaultTuning(), rand.New(rand.NewSource(1)))}
	sim := NewSimulator(lg, NewUniformUser(rand.New(rand.NewSource(2))), MinInterval, nil)
	sim.Stop() // idle stop is a no-op
	if err := sim.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	sim.Stop()
	if sim.Running() {
		t.Fatalf("still running after Stop")
	}
	if err := sim.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	sim.Stop()
}

func TestSimulatorContextCancel(t *testing.T) {
	lg := &lockedGame{g: NewGame(DefaultTuning(), rand.New(rand.NewSource(1)))}
	sim := NewSimulator(lg, ConstantUser{Move: Rock}, MinInterval, nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := sim.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
	select {
	case <-sim.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("cancel did not stop the simulator")
	}
}
