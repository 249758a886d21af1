package rps

import (
	"encoding/json"
	"math"
	"strings"
)

// RegretRecord is the accumulated regret per move.
type RegretRecord [NumMoves]float64

func (r RegretRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, NumMoves)
	for _, m := range Moves {
		out[strings.ToLower(m.String())] = r[m]
	}
	return json.Marshal(out)
}

func (r *RegretRecord) UnmarshalJSON(b []byte) error {
	var in map[string]float64
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*r = RegretRecord{}
	for k, v := range in {
		m, err := ParseMove(k)
		if err != nil {
			return err
		}
		r[m] = v
	}
	return nil
}

// Matrix counts move pairs, indexed [from][to].
type Matrix [NumMoves][NumMoves]int

func (m Matrix) rowSum(from Move) int {
	s := 0
	for _, n := range m[from] {
		s += n
	}
	return s
}

// rowProbs normalizes one row. A row with no observations yields zeros.
func (m Matrix) rowProbs(from Move) [NumMoves]float64 {
	var out [NumMoves]float64
	sum := m.rowSum(from)
	if sum == 0 {
		return out
	}
	for i, n := range m[from] {
		out[i] = float64(n) / float64(sum)
	}
	return out
}

func (m Matrix) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]int, NumMoves)
	for _, from := range Moves {
		row := make(map[string]int, NumMoves)
		for _, to := range Moves {
			row[strings.ToLower(to.String())] = m[from][to]
		}
		out[strings.ToLower(from.String())] = row
	}
	return json.Marshal(out)
}

func (m *Matrix) UnmarshalJSON(b []byte) error {
	var in map[string]map[string]int
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*m = Matrix{}
	for fk, row := range in {
		from, err := ParseMove(fk)
		if err != nil {
			return err
		}
		for tk, n := range row {
			to, err := ParseMove(tk)
			if err != nil {
				return err
			}
			m[from][to] = n
		}
	}
	return nil
}

// Predictor picks the AI's move from a first-order Markov model of the
// user, falling back to regret matching before any history exists.
// It is not safe for concurrent use.
type Predictor struct {
	tuning Tuning
	rng    Rand

	regrets     RegretRecord
	transitions Matrix // [previous user move][user move]
	responses   Matrix // [ai move][user move]

	prevUser    Move
	hasPrevUser bool
	lastAI      Move
	hasLastAI   bool

	exponent float64
	aiWins   int
	aiLosses int
}

func NewPredictor(t Tuning, rng Rand) *Predictor {
	p := &Predictor{tuning: t, rng: rng}
	p.Reset()
	return p
}

func (p *Predictor) Reset() {
	p.regrets = RegretRecord{}
	p.transitions = Matrix{}
	p.responses = Matrix{}
	p.prevUser, p.hasPrevUser = 0, false
	p.lastAI, p.hasLastAI = 0, false
	p.exponent = p.tuning.InitialExponent
	p.aiWins, p.aiLosses = 0, 0
}

// RecordRound folds one played round into the tables.
func (p *Predictor) RecordRound(user, ai Move) {
	if p.hasPrevUser {
		p.transitions[p.prevUser][user]++
	}
	p.responses[ai][user]++

	actual := Reward(user, user)
	for _, m := range Moves {
		if m == user {
			continue
		}
		p.regrets[m] += (Reward(m, user) - actual) * p.tuning.Amplification
	}

	switch Judge(user, ai) {
	case Lose:
		p.aiWins++
	case Win:
		p.aiLosses++
	}
	p.adjustExponent()

	p.prevUser, p.hasPrevUser = user, true
	p.lastAI, p.hasLastAI = ai, true
}

func (p *Predictor) adjustExponent() {
	t := p.tuning
	switch {
	case p.aiLosses > p.aiWins:
		p.exponent = math.Min(t.MaxExponent, p.exponent+t.ExponentStep)
	case p.aiWins > p.aiLosses:
		p.exponent = math.Max(t.MinExponent, p.exponent-t.ExponentStep)
	}
}

// Predict returns the distribution over the user's next move and whether
// any history backed it.
func (p *Predictor) Predict() ([NumMoves]float64, bool) {
	var dist [NumMoves]float64
	if !p.hasPrevUser {
		return dist, false
	}
	trans := p.transitions.rowProbs(p.prevUser)
	var resp [NumMoves]float64
	if p.hasLastAI {
		resp = p.responses.rowProbs(p.lastAI)
	}

	total := 0.0
	for i := range dist {
		dist[i] = p.tuning.TransitionWeight*math.Pow(trans[i], p.exponent) +
			p.tuning.ResponseWeight*math.Pow(resp[i], p.tuning.ResponseExponent)
		total += dist[i]
	}
	if total <= 0 {
		return [NumMoves]float64{}, false
	}
	for i := range dist {
		dist[i] /= total
	}
	return dist, true
}

// SelectMove returns the AI's move for the next round.
func (p *Predictor) SelectMove() Move {
	if dist, ok := p.Predict(); ok {
		predicted := Moves[Sample(dist[:], p.rng)]
		return predicted.Counter()
	}
	return p.regretMove()
}

func (p *Predictor) regretMove() Move {
	weights := make([]float64, NumMoves)
	for i, r := range p.regrets {
		if r > 0 {
			weights[i] = r
		}
	}
	return Moves[Sample(weights, p.rng)]
}

func (p *Predictor) Exponent() float64     { return p.exponent }
func (p *Predictor) Regrets() RegretRecord { return p.regrets }
func (p *Predictor) Transitions() Matrix   { return p.transitions }
func (p *Predictor) Responses() Matrix     { return p.responses }
func (p *Predictor) Tuning() Tuning        { return p.tuning }

func (p *Predictor) PreviousUserMove() (Move, bool) {
	return p.prevUser, p.hasPrevUser
}
