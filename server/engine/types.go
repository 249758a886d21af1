package engine

import "errors"

type ActionKind string

const (
	Fold  ActionKind = "fold"
	Check ActionKind = "check"
	Call  ActionKind = "call"
	Raise ActionKind = "raise"
)

type Street string

const (
	Preflop  Street = "preflop"
	Flop     Street = "flop"
	Turn     Street = "turn"
	River    Street = "river"
	Showdown Street = "showdown"
)

type Action struct {
	Seat   int        `json:"seat"`
	Street Street     `json:"street"`
	Kind   ActionKind `json:"action"`
	Amount int        `json:"to,omitempty"`
}

type Card struct {
	Rank int
	Suit byte
} // e.g. "As" => rank 14, suit 's'

var (
	ErrHandInProgress   = errors.New("hand in progress")
	ErrHandOver         = errors.New("hand is over")
	ErrNotEnoughPlayers = errors.New("not enough players with chips")
	ErrIllegalAction    = errors.New("illegal action")
)
