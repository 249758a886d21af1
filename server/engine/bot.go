package engine

import "math/rand"

// Bot is the house opponent: a coin-flip policy that folds about 30% of the
// time, calls 40% and raises the rest by one small blind over the current bet.
type Bot struct {
	rng *rand.Rand
}

func NewBot(seed int64) *Bot { return &Bot{rng: NewRand(seed)} }

// Decide picks a legal action for the table's actor. Folding is replaced by
// a check when nothing is owed.
func (b *Bot) Decide(t *Table) (ActionKind, int) {
	legal := t.Legal()
	if len(legal) == 0 {
		return Check, 0
	}
	free := t.IsLegal(Check)
	passive := func() ActionKind {
		if free {
			return Check
		}
		return Call
	}
	r := b.rng.Float64()
	switch {
	case r < 0.3:
		if free {
			return Check, 0
		}
		return Fold, 0
	case r < 0.7:
		return passive(), 0
	}
	if !t.IsLegal(Raise) {
		return passive(), 0
	}
	lo, hi := t.RaiseBounds()
	to := t.CurBet + t.Cfg.SB
	if to < lo {
		to = lo
	}
	if to > hi {
		to = hi
	}
	return Raise, to
}

// PlayBots lets every non-human seat act until a human is to act or the hand
// ends. It returns the actions taken.
func PlayBots(t *Table, b *Bot) ([]Action, error) {
	var out []Action
	for t.InProgress() {
		a := t.Actor()
		if a == nil || a.Human {
			break
		}
		kind, amt := b.Decide(t)
		if err := t.Apply(kind, amt); err != nil {
			return out, err
		}
		out = append(out, t.History[len(t.History)-1])
	}
	return out, nil
}
