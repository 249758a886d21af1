package rating

import "math"

const (
	DefaultStart = 1500.0
	DefaultK     = 24.0
)

// Elo rates the visitor against the house opponent.
type Elo struct {
	Visitor float64 `json:"visitor"`
	House   float64 `json:"house"`
	K       float64 `json:"k"`
	Games   int     `json:"games"`
}

func NewElo(start, k float64) Elo { return Elo{Visitor: start, House: start, K: k} }

// Expected is the visitor's expected score.
func (e Elo) Expected() float64 {
	return 1.0 / (1.0 + math.Pow(10, (e.House-e.Visitor)/400.0))
}

// Score maps an outcome to [0,1]: win 1, tie 0.5, loss 0.
func Score(win, tie bool) float64 {
	if tie {
		return 0.5
	}
	if win {
		return 1.0
	}
	return 0.0
}

// UpdateRound applies one game-of-chance round and returns the visitor delta.
// K anneals slowly so long sessions settle.
func (e *Elo) UpdateRound(score float64) float64 {
	d := e.K * decay(e.Games) * (score - e.Expected())
	e.Visitor += d
	e.House -= d
	e.Games++
	return d
}

// UpdateHand rates one poker hand from the visitor's net chips. The score is
// a soft margin in big blinds and K grows with the pot.
func (e *Elo) UpdateHand(net, pot, bb int) float64 {
	lambdaBB := 6.0
	s := 0.5
	if bb > 0 {
		s = 0.5 + 0.5*math.Tanh(float64(net)/(lambdaBB*float64(bb)))
	}
	k := e.K * potScale(pot, bb) * marginScale(net, bb) * decay(e.Games)
	d := k * (s - e.Expected())
	e.Visitor += d
	e.House -= d
	e.Games++
	return d
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func potScale(pot, bb int) float64 {
	if bb <= 0 || pot <= 0 {
		return 1.0
	}
	return clamp(float64(pot)/(2.0*float64(bb)), 0.5, 3.0)
}

func marginScale(net, bb int) float64 {
	if bb <= 0 {
		return 1.0
	}
	m := math.Abs(float64(net)) / float64(bb)
	return 1.0 + 0.35*math.Tanh(m/8.0)
}

func decay(games int) float64 {
	return 1.0 / (1.0 + 0.001*float64(games))
}
