package engine

import (
	poker "github.com/paulhankin/poker"
)

// HandValue is a library score. Larger values are stronger hands; keep every
// comparison going through Beats so the ordering lives in one place.
type HandValue int16

func Beats(a, b HandValue) bool { return a > b }

func toPH(c Card) poker.Card {
	var s poker.Suit
	switch c.Suit {
	case 'd':
		s = poker.Diamond
	case 'h':
		s = poker.Heart
	case 's':
		s = poker.Spade
	default:
		s = poker.Club
	}
	// library ranks run 1..13 with the ace low
	r := poker.Rank(c.Rank)
	if c.Rank == 14 {
		r = poker.Rank(1)
	}
	card, _ := poker.MakeCard(s, r)
	return card
}

func toPHSlice(cs []Card) []poker.Card {
	out := make([]poker.Card, len(cs))
	for i, c := range cs {
		out[i] = toPH(c)
	}
	return out
}

// Evaluate scores the best five-card hand out of 5, 6 or 7 cards.
func Evaluate(cards []Card) HandValue {
	pcs := toPHSlice(cards)
	switch len(pcs) {
	case 7:
		var a7 [7]poker.Card
		copy(a7[:], pcs)
		return HandValue(poker.Eval7(&a7))
	case 5:
		var a5 [5]poker.Card
		copy(a5[:], pcs)
		return HandValue(poker.Eval5(&a5))
	default:
		return bestOfFiveSubsets(pcs)
	}
}

// EvaluateWith scores hole cards combined with a board.
func EvaluateWith(hole, board []Card) HandValue {
	all := make([]Card, 0, len(hole)+len(board))
	all = append(all, hole...)
	return Evaluate(append(all, board...))
}

func bestOfFiveSubsets(pcs []poker.Card) HandValue {
	n := len(pcs)
	if n < 5 {
		var a5 [5]poker.Card
		copy(a5[:n], pcs)
		return HandValue(poker.Eval5(&a5))
	}
	var best HandValue
	first := true
	var choose [5]int
	var five [5]poker.Card
	var rec func(start, k int)
	rec = func(start, k int) {
		if k == 5 {
			for i := 0; i < 5; i++ {
				five[i] = pcs[choose[i]]
			}
			score := HandValue(poker.Eval5(&five))
			if first || Beats(score, best) {
				best, first = score, false
			}
			return
		}
		for i := start; i <= n-(5-k); i++ {
			choose[k] = i
			rec(i+1, k+1)
		}
	}
	rec(0, 0)
	return best
}

// Describe names the hand ("pair of aces", ...). Empty when the library
// cannot describe the card count.
func Describe(cards []Card) string {
	d, err := poker.Describe(toPHSlice(cards))
	if err != nil {
		return ""
	}
	return d
}
