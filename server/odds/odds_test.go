package odds

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"portfolio-arcade/server/engine"
)

func cards(t *testing.T, s string) []engine.Card {
	t.Helper()
	var out []engine.Card
	for _, f := range strings.Fields(s) {
		c, err := engine.ParseCard(f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, c)
	}
	return out
}

func TestWinLikelihoodAcesPreflop(t *testing.T) {
	p, err := WinLikelihood(cards(t, "Ah Ad"), nil, 1, 4000, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if p < 0.80 || p > 0.90 {
		t.Fatalf("aces vs one random hand = %.3f, want about 0.85", p)
	}
	multi, err := WinLikelihood(cards(t, "Ah Ad"), nil, 4, 4000, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if multi >= p {
		t.Fatalf("more opponents should lower the odds: %.3f >= %.3f", multi, p)
	}
}

func TestWinLikelihoodRejectsBadInput(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	if _, err := WinLikelihood(cards(t, "Ah"), nil, 1, 10, r); !errors.Is(err, ErrBadInput) {
		t.Fatalf("one hole card: %v", err)
	}
	if _, err := WinLikelihood(cards(t, "Ah Kd"), cards(t, "Ah 2c 3d"), 1, 10, r); !errors.Is(err, ErrBadInput) {
		t.Fatalf("duplicate card: %v", err)
	}
	if _, err := WinLikelihood(cards(t, "Ah Kd"), nil, 0, 10, r); !errors.Is(err, ErrBadInput) {
		t.Fatalf("no opponents: %v", err)
	}
}

func TestRiverEquity(t *testing.T) {
	eq, err := RiverEquity(cards(t, "2c 3d"), cards(t, "As Ks Qs Js Ts"))
	if err != nil {
		t.Fatal(err)
	}
	if eq != 0.5 {
		t.Fatalf("board plays for everyone, equity %.3f", eq)
	}
	eq, err = RiverEquity(cards(t, "Ah Ad"), cards(t, "As 7d 2c 9h Kc"))
	if err != nil {
		t.Fatal(err)
	}
	if eq != 1 {
		t.Fatalf("trip aces on a dry board should be the nuts, equity %.3f", eq)
	}
	if _, err := RiverEquity(cards(t, "Ah Ad"), cards(t, "As 7d 2c")); !errors.Is(err, ErrBadInput) {
		t.Fatalf("incomplete board: %v", err)
	}
}

func TestCallEV(t *testing.T) {
	if got := CallEV(0.5, 100, 50); got != 50 {
		t.Fatalf("CallEV = %v, want 50", got)
	}
	if got := CallEV(0, 100, 50); got != -50 {
		t.Fatalf("CallEV = %v, want -50", got)
	}
}
