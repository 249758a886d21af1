// Package odds estimates hold'em equities by Monte Carlo sampling and, on a
// complete river board, by exact enumeration.
package odds

import (
	"errors"
	"fmt"
	"math/rand"

	"portfolio-arcade/server/engine"
)

const DefaultIterations = 1000

var ErrBadInput = errors.New("odds: bad input")

func remaining(used ...[]engine.Card) ([]engine.Card, error) {
	seen := map[engine.Card]bool{}
	for _, cs := range used {
		for _, c := range cs {
			if seen[c] {
				return nil, fmt.Errorf("%w: duplicate card %s", ErrBadInput, c)
			}
			seen[c] = true
		}
	}
	out := make([]engine.Card, 0, 52-len(seen))
	for _, c := range engine.FullDeck() {
		if !seen[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

// WinLikelihood is the hero's chance to win against a number of opponents
// holding random cards, with ties counted as a share of a win.
func WinLikelihood(hole, board []engine.Card, opponents, iters int, r *rand.Rand) (float64, error) {
	if len(hole) != 2 || len(board) > 5 || opponents < 1 || opponents > 9 {
		return 0, fmt.Errorf("%w: %d hole, %d board, %d opponents", ErrBadInput, len(hole), len(board), opponents)
	}
	if iters <= 0 {
		iters = DefaultIterations
	}
	deck, err := remaining(hole, board)
	if err != nil {
		return 0, err
	}
	need := 5 - len(board) + 2*opponents
	full := make([]engine.Card, 5)
	copy(full, board)
	var won float64
	for i := 0; i < iters; i++ {
		partialShuffle(deck, need, r)
		k := copy(full[len(board):], deck[:5-len(board)])
		next := deck[k:]
		hero := engine.EvaluateWith(hole, full)
		best, ties := true, 1
		for o := 0; o < opponents; o++ {
			v := engine.EvaluateWith(next[2*o:2*o+2], full)
			if engine.Beats(v, hero) {
				best = false
				break
			}
			if !engine.Beats(hero, v) {
				ties++
			}
		}
		if best {
			won += 1 / float64(ties)
		}
	}
	return won / float64(iters), nil
}

// RiverEquity enumerates every opponent holding on a complete board.
func RiverEquity(hole, board []engine.Card) (float64, error) {
	if len(hole) != 2 || len(board) != 5 {
		return 0, fmt.Errorf("%w: river equity needs 2 hole and 5 board cards", ErrBadInput)
	}
	avail, err := remaining(hole, board)
	if err != nil {
		return 0, err
	}
	hero := engine.EvaluateWith(hole, board)
	var total, win, tie int
	for i := 0; i < len(avail); i++ {
		for j := i + 1; j < len(avail); j++ {
			total++
			v := engine.EvaluateWith([]engine.Card{avail[i], avail[j]}, board)
			switch {
			case engine.Beats(hero, v):
				win++
			case !engine.Beats(v, hero):
				tie++
			}
		}
	}
	return (float64(win) + 0.5*float64(tie)) / float64(total), nil
}

// CallEV is the chip expectation of calling toCall into pot with the given
// equity; folding is worth zero.
func CallEV(equity float64, pot, toCall int) float64 {
	b := float64(toCall)
	return equity*(float64(pot)+b) - (1-equity)*b
}

func partialShuffle(deck []engine.Card, n int, r *rand.Rand) {
	for i := 0; i < n && i < len(deck); i++ {
		j := i + r.Intn(len(deck)-i)
		deck[i], deck[j] = deck[j], deck[i]
	}
}
