package rps

import (
	"errors"
	"fmt"
	"strings"
)

type Move int

const (
	Rock Move = iota
	Paper
	Scissors
)

const NumMoves = 3

// Moves lists every valid move in table order.
var Moves = [NumMoves]Move{Rock, Paper, Scissors}

var ErrInvalidMove = errors.New("invalid move")

func (m Move) Valid() bool { return m >= Rock && m <= Scissors }

func (m Move) String() string {
	switch m {
	case Rock:
		return "Rock"
	case Paper:
		return "Paper"
	case Scissors:
		return "Scissors"
	default:
		return fmt.Sprintf("Move(%d)", int(m))
	}
}

// Counter returns the move that beats m.
func (m Move) Counter() Move {
	switch m {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	default:
		return Rock
	}
}

func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock", "r":
		return Rock, nil
	case "paper", "p":
		return Paper, nil
	case "scissors", "s":
		return Scissors, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMove, s)
}

func (m Move) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMove, int(m))
	}
	return []byte(strings.ToLower(m.String())), nil
}

func (m *Move) UnmarshalText(b []byte) error {
	v, err := ParseMove(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Outcome is a round result seen from the user's side.
type Outcome string

const (
	Win  Outcome = "win"
	Lose Outcome = "lose"
	Tie  Outcome = "tie"
)

// Judge compares the two moves of a round.
func Judge(user, ai Move) Outcome {
	switch {
	case user == ai:
		return Tie
	case user.Counter() == ai:
		return Lose
	default:
		return Win
	}
}

// rewards[ai][user]: +1 when the AI's move wins, -1 when it loses.
var rewards = [NumMoves][NumMoves]float64{
	Rock:     {Rock: 0, Paper: -1, Scissors: 1},
	Paper:    {Rock: 1, Paper: 0, Scissors: -1},
	Scissors: {Rock: -1, Paper: 1, Scissors: 0},
}

// Reward is the payoff of playing ai against user.
func Reward(ai, user Move) float64 { return rewards[ai][user] }
