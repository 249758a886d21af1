package rating

import (
	"math"
	"math/rand"
	"sort"

	"portfolio-arcade/server/engine"
)

// WilsonCI95 bounds a win rate, counting ties as half a win.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 resamples the mean of vals B times.
func BootstrapCI95(vals []float64, B int, r *rand.Rand) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[r.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	return res[int(0.025*float64(B-1))], res[int(0.975*float64(B-1))]
}

// SeatStats tracks one seat's tendencies across poker hands.
type SeatStats struct {
	Hands    int `json:"hands"`
	VPIP     int `json:"vpip"`
	PFR      int `json:"pfr"`
	SawFlop  int `json:"saw_flop"`
	WTSD     int `json:"went_to_showdown"`
	WSD      int `json:"won_at_showdown"`
	Calls    int `json:"calls"`
	Aggr     int `json:"aggressive"`
	NetChips int `json:"net_chips"`
}

// AF is the aggression factor (raises per call).
func (s *SeatStats) AF() float64 {
	if s.Calls == 0 {
		return float64(s.Aggr)
	}
	return float64(s.Aggr) / float64(s.Calls)
}

func (s *SeatStats) BBPer100(bb int) float64 {
	if s.Hands == 0 || bb <= 0 {
		return 0
	}
	return (float64(s.NetChips) / float64(bb)) / (float64(s.Hands) / 100.0)
}

// RecordHand folds one finished hand into the seat's totals.
func (s *SeatStats) RecordHand(history []engine.Action, res *engine.Result, seat, net int) {
	s.Hands++
	s.NetChips += net
	var vpip, pfr, foldedPre, folded bool
	for _, a := range history {
		if a.Seat != seat {
			continue
		}
		switch a.Kind {
		case engine.Call:
			s.Calls++
		case engine.Raise:
			s.Aggr++
		case engine.Fold:
			folded = true
			foldedPre = a.Street == engine.Preflop
		}
		if a.Street == engine.Preflop {
			vpip = vpip || a.Kind == engine.Call || a.Kind == engine.Raise
			pfr = pfr || a.Kind == engine.Raise
		}
	}
	if vpip {
		s.VPIP++
	}
	if pfr {
		s.PFR++
	}
	if res == nil {
		return
	}
	if !foldedPre && len(res.Board) >= 3 {
		s.SawFlop++
	}
	if res.Showdown && !folded {
		s.WTSD++
		for _, w := range res.Winners() {
			if w == seat {
				s.WSD++
			}
		}
	}
}
