package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"portfolio-arcade/server/agent"
	"portfolio-arcade/server/engine"
	"portfolio-arcade/server/odds"
	"portfolio-arcade/server/rating"
)

var ErrNoHumanSeat = errors.New("table has no human seat")

// Table is a poker table where one human plays the house bots.
type Table struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	table      *engine.Table
	bot        *engine.Bot
	rng        *rand.Rand
	hooks      Hooks
	elo        rating.Elo
	stats      rating.SeatStats
	startStack int
	recorded   int

	expiresAt time.Time // guarded by Manager.mu
}

// TableView is the human seat's observation plus running ratings.
type TableView struct {
	ID          string            `json:"table_id"`
	Observation agent.Observation `json:"observation"`
	BotActions  []engine.Action   `json:"bot_actions,omitempty"`
	Elo         rating.Elo        `json:"elo"`
	Stats       rating.SeatStats  `json:"stats"`
}

func (t *Table) human() int { return t.table.Cfg.HumanSeat }

func (t *Table) viewLocked(bots []engine.Action) TableView {
	return TableView{
		ID:          t.ID,
		Observation: agent.BuildObservation(t.table, t.human()),
		BotActions:  bots,
		Elo:         t.elo,
		Stats:       t.stats,
	}
}

func (t *Table) View() TableView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked(nil)
}

// Start deals the next hand and lets the bots act up to the human's turn.
// A busted human, or a table without opponents, is rebought first.
func (t *Table) Start() (TableView, error) {
	t.mu.Lock()
	if t.human() < 0 {
		t.mu.Unlock()
		return TableView{}, ErrNoHumanSeat
	}
	if t.table.InProgress() {
		t.mu.Unlock()
		return TableView{}, engine.ErrHandInProgress
	}
	if t.table.Players[t.human()].Stack == 0 {
		_ = t.table.Rebuy()
	}
	err := t.startLocked()
	if errors.Is(err, engine.ErrNotEnoughPlayers) {
		_ = t.table.Rebuy()
		err = t.startLocked()
	}
	if err != nil {
		t.mu.Unlock()
		return TableView{}, err
	}
	bots, err := engine.PlayBots(t.table, t.bot)
	res := t.settleLocked()
	v := t.viewLocked(bots)
	t.mu.Unlock()
	t.notify(res)
	return v, err
}

func (t *Table) startLocked() error {
	t.startStack = t.table.Players[t.human()].Stack
	return t.table.StartHand()
}

// Act applies the human's action and then the bots' replies.
func (t *Table) Act(in agent.ActionIn) (TableView, error) {
	t.mu.Lock()
	if !t.table.InProgress() {
		t.mu.Unlock()
		return TableView{}, engine.ErrHandOver
	}
	obs := agent.BuildObservation(t.table, t.human())
	kind, amount, err := agent.Validate(obs, in)
	if err != nil {
		t.mu.Unlock()
		return TableView{}, err
	}
	if err := t.table.Apply(kind, amount); err != nil {
		t.mu.Unlock()
		return TableView{}, err
	}
	bots, err := engine.PlayBots(t.table, t.bot)
	res := t.settleLocked()
	v := t.viewLocked(bots)
	t.mu.Unlock()
	t.notify(res)
	return v, err
}

// settleLocked records a finished hand once. It returns the result to
// report, nil while the hand is still running.
func (t *Table) settleLocked() *engine.Result {
	res := t.table.Result
	if t.table.InProgress() || res == nil || res.HandNo == t.recorded {
		return nil
	}
	net := t.table.Players[t.human()].Stack - t.startStack
	t.stats.RecordHand(t.table.History, res, t.human(), net)
	t.elo.UpdateHand(net, res.Pot, t.table.Cfg.BB)
	t.recorded = res.HandNo
	return res
}

func (t *Table) notify(res *engine.Result) {
	if res != nil && t.hooks.OnHand != nil {
		t.hooks.OnHand(t.ID, res)
	}
}

// OddsReport is the human seat's chance to win at the current street.
type OddsReport struct {
	WinLikelihood float64  `json:"win_likelihood"`
	Opponents     int      `json:"opponents"`
	Iterations    int      `json:"iterations,omitempty"`
	Exact         bool     `json:"exact"`
	Pot           int      `json:"pot"`
	ToCall        int      `json:"to_call"`
	CallEV        *float64 `json:"call_ev,omitempty"` // only while the human owes chips
}

// Odds estimates the human's chance to win against the live opponents. A
// river heads-up is enumerated exactly; everything else is sampled.
func (t *Table) Odds(iters int) (OddsReport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.human() < 0 {
		return OddsReport{}, ErrNoHumanSeat
	}
	me := t.table.Players[t.human()]
	if len(me.Hole) != 2 {
		return OddsReport{}, engine.ErrHandOver
	}
	rep := OddsReport{Pot: t.table.Pot()}
	if me.Folded {
		return rep, nil
	}
	for _, p := range t.table.Players {
		if p != me && p.InHand && !p.Folded {
			rep.Opponents++
		}
	}
	if rep.Opponents == 0 {
		rep.WinLikelihood, rep.Exact = 1, true
		return rep, nil
	}

	var err error
	if len(t.table.Board) == 5 && rep.Opponents == 1 {
		rep.WinLikelihood, err = odds.RiverEquity(me.Hole, t.table.Board)
		rep.Exact = true
	} else {
		rep.Iterations = iters
		if rep.Iterations <= 0 {
			rep.Iterations = odds.DefaultIterations
		}
		rep.WinLikelihood, err = odds.WinLikelihood(me.Hole, t.table.Board, rep.Opponents, rep.Iterations, t.rng)
	}
	if err != nil {
		return OddsReport{}, err
	}
	if t.table.InProgress() && t.table.ToAct == t.human() {
		rep.ToCall = t.table.ToCall()
		if rep.ToCall > 0 {
			ev := odds.CallEV(rep.WinLikelihood, rep.Pot, rep.ToCall)
			rep.CallEV = &ev
		}
	}
	return rep, nil
}
