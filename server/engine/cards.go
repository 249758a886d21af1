package engine

import (
	"fmt"
	"math/rand"
	"time"
)

const ranks = "  23456789TJQKA"

// NewRand seeds a generator. Seed 0 uses the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// NewDeck returns a 52-card deck shuffled by r.
func NewDeck(r *rand.Rand) []Card {
	deck := FullDeck()
	r.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// FullDeck returns the 52 cards in suit-major order.
func FullDeck() []Card {
	deck := make([]Card, 0, 52)
	for s := 0; s < 4; s++ {
		for rnk := 2; rnk <= 14; rnk++ {
			deck = append(deck, Card{Rank: rnk, Suit: "cdhs"[s]})
		}
	}
	return deck
}

func (c Card) String() string {
	if c.Rank < 2 || c.Rank > 14 {
		return "??"
	}
	return fmt.Sprintf("%c%c", ranks[c.Rank], c.Suit)
}

// ParseCard reads the two-character form produced by String ("As", "Td").
// "10" is accepted for ten.
func ParseCard(s string) (Card, error) {
	if len(s) == 3 && s[:2] == "10" {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("bad card %q", s)
	}
	var rank int
	switch r := s[0]; r {
	case 'A', 'a':
		rank = 14
	case 'K', 'k':
		rank = 13
	case 'Q', 'q':
		rank = 12
	case 'J', 'j':
		rank = 11
	case 'T', 't':
		rank = 10
	default:
		if r >= '2' && r <= '9' {
			rank = int(r - '0')
		}
	}
	if rank == 0 {
		return Card{}, fmt.Errorf("bad rank in %q", s)
	}
	suit := s[1]
	if suit >= 'A' && suit <= 'Z' {
		suit += 'a' - 'A'
	}
	if suit != 'c' && suit != 'd' && suit != 'h' && suit != 's' {
		return Card{}, fmt.Errorf("bad suit in %q", s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

func (c Card) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Card) UnmarshalText(b []byte) error {
	v, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// CardStrings formats cards for JSON and logs.
func CardStrings(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
