package rps

import (
	"fmt"
	"math"
	"strings"
)

// SyntheticUser stands in for a human during auto-simulation.
type SyntheticUser interface {
	Next() Move
}

type UniformUser struct{ rng Rand }

func NewUniformUser(rng Rand) *UniformUser { return &UniformUser{rng: rng} }

func (u *UniformUser) Next() Move { return Moves[u.rng.Intn(NumMoves)] }

type ConstantUser struct{ Move Move }

func (u ConstantUser) Next() Move { return u.Move }

// DefaultMarkovMatrix is a "sticky" player that repeats its last move half
// of the time and otherwise prefers the move that beats it.
var DefaultMarkovMatrix = [NumMoves][NumMoves]float64{
	Rock:     {Rock: 0.50, Paper: 0.35, Scissors: 0.15},
	Paper:    {Rock: 0.15, Paper: 0.50, Scissors: 0.35},
	Scissors: {Rock: 0.35, Paper: 0.15, Scissors: 0.50},
}

// MarkovUser draws each move from the row of its previous move.
type MarkovUser struct {
	matrix [NumMoves][NumMoves]float64
	prev   Move
	rng    Rand
}

func NewMarkovUser(matrix [NumMoves][NumMoves]float64, rng Rand) (*MarkovUser, error) {
	for _, from := range Moves {
		total := 0.0
		for _, p := range matrix[from] {
			if p < 0 {
				return nil, fmt.Errorf("row %s has a negative probability", from)
			}
			total += p
		}
		// 1% slack for hand-written matrices
		if math.Abs(1-total) > 0.01 {
			return nil, fmt.Errorf("row %s sums to %.3f, want 1", from, total)
		}
	}
	return &MarkovUser{matrix: matrix, prev: Moves[rng.Intn(NumMoves)], rng: rng}, nil
}

func (u *MarkovUser) Next() Move {
	row := u.matrix[u.prev]
	u.prev = Moves[Sample(row[:], u.rng)]
	return u.prev
}

// NewSyntheticUser maps a name from the API ("uniform", "markov", or a move
// name for a constant player) to a user.
func NewSyntheticUser(kind string, rng Rand) (SyntheticUser, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "uniform", "random":
		return NewUniformUser(rng), nil
	case "markov":
		return NewMarkovUser(DefaultMarkovMatrix, rng)
	}
	m, err := ParseMove(kind)
	if err != nil {
		return nil, fmt.Errorf("unknown synthetic user %q", kind)
	}
	return ConstantUser{Move: m}, nil
}
