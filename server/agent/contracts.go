package agent

import (
	"fmt"

	"portfolio-arcade/server/engine"
)

type SeatView struct {
	Seat       int      `json:"seat"`
	Name       string   `json:"name"`
	Stack      int      `json:"stack"`
	Committed  int      `json:"committed"`
	Folded     bool     `json:"folded"`
	AllIn      bool     `json:"all_in"`
	InHand     bool     `json:"in_hand"`
	LastAction string   `json:"last_action,omitempty"`
	HoleCards  []string `json:"hole_cards,omitempty"` // own seat, or everyone after showdown
}

// Observation is the table as one seat is allowed to see it.
type Observation struct {
	HandNo     int            `json:"hand_no"`
	Seat       int            `json:"seat"`
	Street     string         `json:"street"`
	HoleCards  []string       `json:"hole_cards"`
	Board      []string       `json:"board"`
	Seats      []SeatView     `json:"seats"`
	Button     int            `json:"button"`
	ToAct      int            `json:"to_act"`
	Blinds     map[string]int `json:"blinds"`
	Pot        int            `json:"pot"`
	ToCall     int            `json:"to_call"`
	MinRaiseTo int            `json:"min_raise_to"`
	MaxRaiseTo int            `json:"max_raise_to"`
	Legal      []string       `json:"legal_actions"` // only when this seat is to act
	InProgress bool           `json:"in_progress"`
	Result     *engine.Result `json:"result,omitempty"`
}

type ActionIn struct {
	Action string `json:"action"`           // fold|check|call|raise
	Amount *int   `json:"amount,omitempty"` // raise-to, required for raise
}

func BuildObservation(t *engine.Table, seat int) Observation {
	o := Observation{
		HandNo:     t.HandNo,
		Seat:       seat,
		Street:     string(t.Street),
		Board:      engine.CardStrings(t.Board),
		Button:     t.Button,
		ToAct:      t.ToAct,
		Blinds:     map[string]int{"sb": t.Cfg.SB, "bb": t.Cfg.BB},
		Pot:        t.Pot(),
		InProgress: t.InProgress(),
		Legal:      []string{},
		Result:     t.Result,
	}
	reveal := t.Result != nil && t.Result.Showdown
	for _, p := range t.Players {
		v := SeatView{
			Seat: p.Seat, Name: p.Name, Stack: p.Stack, Committed: p.Committed,
			Folded: p.Folded, AllIn: p.AllIn, InHand: p.InHand, LastAction: string(p.LastAction),
		}
		if p.Seat == seat || (reveal && !p.Folded && p.InHand) {
			v.HoleCards = engine.CardStrings(p.Hole)
		}
		if p.Seat == seat {
			o.HoleCards = v.HoleCards
		}
		o.Seats = append(o.Seats, v)
	}
	if a := t.Actor(); a != nil && a.Seat == seat {
		o.ToCall = t.ToCall()
		o.MinRaiseTo, o.MaxRaiseTo = t.RaiseBounds()
		for _, k := range t.Legal() {
			o.Legal = append(o.Legal, string(k))
		}
	}
	return o
}

// Validate checks a submitted action against the observation and returns the
// engine action. A call with nothing owed is treated as a check.
func Validate(o Observation, a ActionIn) (engine.ActionKind, int, error) {
	kind := engine.ActionKind(a.Action)
	if o.ToCall == 0 && kind == engine.Call {
		kind = engine.Check
	}
	ok := false
	for _, la := range o.Legal {
		if la == string(kind) {
			ok = true
			break
		}
	}
	if !ok {
		return "", 0, fmt.Errorf("%w: %q (legal: %v)", engine.ErrIllegalAction, a.Action, o.Legal)
	}
	if kind != engine.Raise {
		return kind, 0, nil
	}
	if a.Amount == nil {
		return "", 0, fmt.Errorf("%w: raise requires amount", engine.ErrIllegalAction)
	}
	if *a.Amount < o.MinRaiseTo || *a.Amount > o.MaxRaiseTo {
		return "", 0, fmt.Errorf("%w: raise amount %d out of bounds [%d, %d]", engine.ErrIllegalAction, *a.Amount, o.MinRaiseTo, o.MaxRaiseTo)
	}
	return kind, *a.Amount, nil
}
