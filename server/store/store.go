package store

import (
	"context"
	"time"
)

// Store persists sessions, rounds, contact submissions and poker hands. The
// game path treats every write as best-effort.
type Store interface {
	CreateSession(ctx context.Context, id string, createdAt time.Time) error
	InsertRound(ctx context.Context, r Round) error
	SaveScoreboard(ctx context.Context, s Scoreboard) error
	SessionScore(ctx context.Context, id string) (Scoreboard, error)
	RPSStats(ctx context.Context) (Stats, error)
	InsertContact(ctx context.Context, c Contact) (int64, error)
	MarkContactDelivered(ctx context.Context, id int64, delivered bool, failure string) error
	InsertPokerHand(ctx context.Context, h PokerHand) error
	Close() error
}

type Round struct {
	SessionID string
	Number    int
	User      string
	AI        string
	Outcome   string // from the visitor's side: win|lose|tie
	Exponent  float64
	PlayedAt  time.Time
}

type Scoreboard struct {
	SessionID string  `json:"session_id"`
	UserWins  int     `json:"user_wins"`
	AIWins    int     `json:"ai_wins"`
	Ties      int     `json:"ties"`
	Exponent  float64 `json:"exponent"`
}

type Stats struct {
	Sessions int `json:"sessions"`
	Rounds   int `json:"rounds"`
	UserWins int `json:"user_wins"`
	AIWins   int `json:"ai_wins"`
	Ties     int `json:"ties"`
}

type Contact struct {
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

type PokerHand struct {
	TableID   string
	HandNo    int
	Winners   []int
	Pot       int
	Board     []string
	Showdown  bool
	CreatedAt time.Time
}

// Nop discards writes. It backs STORE_MODE=none.
type Nop struct{}

func (Nop) CreateSession(context.Context, string, time.Time) error { return nil }
func (Nop) InsertRound(context.Context, Round) error               { return nil }
func (Nop) SaveScoreboard(context.Context, Scoreboard) error       { return nil }
func (Nop) SessionScore(context.Context, string) (Scoreboard, error) {
	return Scoreboard{}, ErrNotFound
}
func (Nop) RPSStats(context.Context) (Stats, error)                         { return Stats{}, nil }
func (Nop) InsertContact(context.Context, Contact) (int64, error)           { return 0, nil }
func (Nop) MarkContactDelivered(context.Context, int64, bool, string) error { return nil }
func (Nop) InsertPokerHand(context.Context, PokerHand) error                { return nil }
func (Nop) Close() error                                                    { return nil }
