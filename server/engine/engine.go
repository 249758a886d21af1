package engine

import (
	"fmt"
	"math/rand"
)

type Config struct {
	SB         int      `json:"small_blind"`
	BB         int      `json:"big_blind"`
	StartStack int      `json:"start_stack"`
	Seats      []string `json:"seats"`
	HumanSeat  int      `json:"human_seat"`
	Seed       int64    `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		SB:         500,
		BB:         1000,
		StartStack: 100000,
		Seats:      []string{"You", "Opponent 1", "Opponent 2", "Opponent 3", "Opponent 4"},
		HumanSeat:  0,
	}
}

func (c Config) Validate() error {
	switch {
	case len(c.Seats) < 2 || len(c.Seats) > 10:
		return fmt.Errorf("need 2..10 seats, got %d", len(c.Seats))
	case c.SB <= 0 || c.BB < c.SB:
		return fmt.Errorf("blinds %d/%d invalid", c.SB, c.BB)
	case c.StartStack < c.BB:
		return fmt.Errorf("start stack %d below big blind", c.StartStack)
	case c.HumanSeat < -1 || c.HumanSeat >= len(c.Seats):
		return fmt.Errorf("human seat %d out of range", c.HumanSeat)
	}
	return nil
}

type Player struct {
	Seat        int        `json:"seat"`
	Name        string     `json:"name"`
	Human       bool       `json:"human"`
	Stack       int        `json:"stack"`
	Committed   int        `json:"committed"`   // this street
	Contributed int        `json:"contributed"` // this hand
	Hole        []Card     `json:"hole,omitempty"`
	Folded      bool       `json:"folded"`
	AllIn       bool       `json:"all_in"`
	InHand      bool       `json:"in_hand"`
	LastAction  ActionKind `json:"last_action,omitempty"`
	acted       bool
}

func (p *Player) live() bool   { return p.InHand && !p.Folded }
func (p *Player) active() bool { return p.live() && !p.AllIn }

type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
	Winners  []int `json:"winners,omitempty"`
}

type Payout struct {
	Seat   int    `json:"seat"`
	Amount int    `json:"amount"`
	Hand   string `json:"hand,omitempty"`
}

type Result struct {
	HandNo   int      `json:"hand_no"`
	Pot      int      `json:"pot"`
	Board    []Card   `json:"board"`
	Showdown bool     `json:"showdown"`
	Pots     []Pot    `json:"pots"`
	Payouts  []Payout `json:"payouts"`
}

// Winners lists every seat that was paid, in seat order.
func (r *Result) Winners() []int {
	out := make([]int, 0, len(r.Payouts))
	for _, p := range r.Payouts {
		out = append(out, p.Seat)
	}
	return out
}

// Table is a no-limit hold'em table. It is not safe for concurrent use.
type Table struct {
	Cfg      Config    `json:"config"`
	Players  []*Player `json:"players"`
	Button   int       `json:"button"`
	HandNo   int       `json:"hand_no"`
	Board    []Card    `json:"board"`
	Street   Street    `json:"street"`
	ToAct    int       `json:"to_act"`
	CurBet   int       `json:"current_bet"`
	MinRaise int       `json:"min_raise"`
	History  []Action  `json:"history"`
	Result   *Result   `json:"result,omitempty"`

	deck    []Card
	rng     *rand.Rand
	playing bool
}

func NewTable(cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Table{Cfg: cfg, Button: -1, ToAct: -1, rng: NewRand(cfg.Seed)}
	for i, name := range cfg.Seats {
		t.Players = append(t.Players, &Player{
			Seat: i, Name: name, Human: i == cfg.HumanSeat, Stack: cfg.StartStack,
		})
	}
	return t, nil
}

func (t *Table) InProgress() bool { return t.playing }

// Actor is the seat to act, nil between hands.
func (t *Table) Actor() *Player {
	if !t.playing || t.ToAct < 0 {
		return nil
	}
	return t.Players[t.ToAct]
}

// Pot is every chip put in during the current (or last) hand.
func (t *Table) Pot() int {
	total := 0
	for _, p := range t.Players {
		total += p.Contributed
	}
	return total
}

// Chips counts stacks plus chips still in the pot.
func (t *Table) Chips() int {
	total := 0
	for _, p := range t.Players {
		total += p.Stack
	}
	if t.playing {
		total += t.Pot()
	}
	return total
}

func (t *Table) next(from int, ok func(*Player) bool) int {
	n := len(t.Players)
	for i := 1; i <= n; i++ {
		s := ((from+i)%n + n) % n
		if ok(t.Players[s]) {
			return s
		}
	}
	return -1
}

func (t *Table) StartHand() error {
	if t.playing {
		return ErrHandInProgress
	}
	funded := 0
	for _, p := range t.Players {
		if p.Stack > 0 {
			funded++
		}
	}
	if funded < 2 {
		return ErrNotEnoughPlayers
	}
	for _, p := range t.Players {
		*p = Player{Seat: p.Seat, Name: p.Name, Human: p.Human, Stack: p.Stack, InHand: p.Stack > 0}
	}
	inHand := func(p *Player) bool { return p.InHand }
	t.Button = t.next(t.Button, inHand)
	t.HandNo++
	t.Board, t.History, t.Result = nil, nil, nil
	t.Street = Preflop
	t.CurBet, t.MinRaise = 0, t.Cfg.BB
	t.deck = NewDeck(t.rng)
	t.playing = true

	for round := 0; round < 2; round++ {
		s := t.Button
		for i := 0; i < funded; i++ {
			s = t.next(s, inHand)
			t.Players[s].Hole = append(t.Players[s].Hole, t.pop())
		}
	}

	sb := t.next(t.Button, inHand)
	if funded == 2 {
		sb = t.Button
	}
	bb := t.next(sb, inHand)
	t.bet(t.Players[sb], t.Cfg.SB)
	t.bet(t.Players[bb], t.Cfg.BB)
	if t.CurBet < t.Cfg.BB {
		t.CurBet = t.Cfg.BB
	}
	t.ToAct = bb
	t.settle()
	return nil
}

func (t *Table) pop() Card { c := t.deck[0]; t.deck = t.deck[1:]; return c }

func (t *Table) bet(p *Player, amt int) {
	if amt >= p.Stack {
		amt = p.Stack
		p.AllIn = true
	}
	p.Stack -= amt
	p.Committed += amt
	p.Contributed += amt
	if p.Committed > t.CurBet {
		t.CurBet = p.Committed
	}
}

// ToCall is what the actor owes to stay in.
func (t *Table) ToCall() int {
	a := t.Actor()
	if a == nil {
		return 0
	}
	owe := t.CurBet - a.Committed
	if owe > a.Stack {
		owe = a.Stack
	}
	if owe < 0 {
		return 0
	}
	return owe
}

// RaiseBounds returns the legal raise-to range for the actor. A stack too
// short for a full raise may still go all-in.
func (t *Table) RaiseBounds() (min, max int) {
	a := t.Actor()
	if a == nil {
		return 0, 0
	}
	max = a.Committed + a.Stack
	min = t.CurBet + t.MinRaise
	if min > max {
		min = max
	}
	return min, max
}

func (t *Table) Legal() []ActionKind {
	a := t.Actor()
	if a == nil || !a.active() {
		return nil
	}
	var out []ActionKind
	if t.CurBet-a.Committed <= 0 {
		out = append(out, Check)
	} else {
		out = append(out, Fold, Call)
	}
	opponents := false
	for _, p := range t.Players {
		if p != a && p.active() {
			opponents = true
			break
		}
	}
	if opponents && a.Stack > t.CurBet-a.Committed {
		out = append(out, Raise)
	}
	return out
}

func (t *Table) IsLegal(kind ActionKind) bool {
	for _, k := range t.Legal() {
		if k == kind {
			return true
		}
	}
	return false
}

// Apply plays one action for the seat in ToAct. Raise amounts are raise-to.
func (t *Table) Apply(kind ActionKind, amount int) error {
	if !t.playing {
		return ErrHandOver
	}
	if !t.IsLegal(kind) {
		return fmt.Errorf("%w: %s with %d to call", ErrIllegalAction, kind, t.ToCall())
	}
	a := t.Actor()
	rec := Action{Seat: a.Seat, Street: t.Street, Kind: kind}
	switch kind {
	case Fold:
		a.Folded = true
	case Check:
	case Call:
		t.bet(a, t.ToCall())
		rec.Amount = a.Committed
	case Raise:
		lo, hi := t.RaiseBounds()
		if amount < lo || amount > hi {
			return fmt.Errorf("%w: raise to %d outside [%d, %d]", ErrIllegalAction, amount, lo, hi)
		}
		prev := t.CurBet
		t.bet(a, amount-a.Committed)
		if inc := a.Committed - prev; inc > t.MinRaise {
			t.MinRaise = inc
		}
		for _, p := range t.Players {
			if p != a {
				p.acted = false
			}
		}
		rec.Amount = a.Committed
	}
	a.acted = true
	a.LastAction = kind
	t.History = append(t.History, rec)
	t.settle()
	return nil
}

func (t *Table) needsAction(p *Player) bool {
	return p.active() && (!p.acted || p.Committed < t.CurBet)
}

func (t *Table) roundDone() bool {
	var active []*Player
	for _, p := range t.Players {
		if p.active() {
			active = append(active, p)
		}
	}
	if len(active) == 1 && active[0].Committed >= t.CurBet {
		return true
	}
	for _, p := range active {
		if t.needsAction(p) {
			return false
		}
	}
	return true
}

// settle moves the hand forward after an action: next actor, next street,
// run-out or payout.
func (t *Table) settle() {
	from := t.ToAct
	for {
		live := 0
		last := -1
		for _, p := range t.Players {
			if p.live() {
				live++
				last = p.Seat
			}
		}
		if live == 1 {
			t.finish(t.uncontested(last))
			return
		}
		if !t.roundDone() {
			t.ToAct = t.next(from, t.needsAction)
			return
		}
		if t.Street == River {
			t.finish(t.showdown())
			return
		}
		t.nextStreet()
		from = t.Button
	}
}

func (t *Table) nextStreet() {
	switch t.Street {
	case Preflop:
		t.Board = append(t.Board, t.pop(), t.pop(), t.pop())
		t.Street = Flop
	case Flop:
		t.Board = append(t.Board, t.pop())
		t.Street = Turn
	case Turn:
		t.Board = append(t.Board, t.pop())
		t.Street = River
	}
	t.CurBet, t.MinRaise = 0, t.Cfg.BB
	for _, p := range t.Players {
		p.Committed = 0
		p.acted = false
	}
}

func (t *Table) uncontested(seat int) *Result {
	pot := t.Pot()
	return &Result{
		Pot:     pot,
		Pots:    []Pot{{Amount: pot, Eligible: []int{seat}, Winners: []int{seat}}},
		Payouts: []Payout{{Seat: seat, Amount: pot}},
	}
}

// BuildPots splits contributions into a main pot and side pots. Folded
// chips stay in the pots they reached but their seats are not eligible.
func BuildPots(players []*Player) []Pot {
	left := make([]int, len(players))
	for i, p := range players {
		left[i] = p.Contributed
	}
	var pots []Pot
	for {
		level := 0
		for i, p := range players {
			if p.live() && left[i] > 0 && (level == 0 || left[i] < level) {
				level = left[i]
			}
		}
		if level == 0 {
			break
		}
		var pot Pot
		for i, p := range players {
			take := left[i]
			if take > level {
				take = level
			}
			pot.Amount += take
			left[i] -= take
			if p.live() && take == level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		pots = append(pots, pot)
	}
	rest := 0
	for _, c := range left {
		rest += c
	}
	if rest > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += rest
	}
	return pots
}

func (t *Table) showdown() *Result {
	t.Street = Showdown
	values := make(map[int]HandValue)
	for _, p := range t.Players {
		if p.live() {
			values[p.Seat] = EvaluateWith(p.Hole, t.Board)
		}
	}
	res := &Result{Pot: t.Pot(), Showdown: true, Pots: BuildPots(t.Players)}
	won := make(map[int]int)
	for i := range res.Pots {
		pot := &res.Pots[i]
		var best HandValue
		for j, s := range pot.Eligible {
			v := values[s]
			switch {
			case j == 0 || Beats(v, best):
				best = v
				pot.Winners = []int{s}
			case !Beats(best, v):
				pot.Winners = append(pot.Winners, s)
			}
		}
		pot.Winners = t.fromButton(pot.Winners)
		share := pot.Amount / len(pot.Winners)
		for _, s := range pot.Winners {
			won[s] += share
		}
		won[pot.Winners[0]] += pot.Amount - share*len(pot.Winners)
	}
	for _, p := range t.Players {
		if amt, ok := won[p.Seat]; ok {
			res.Payouts = append(res.Payouts, Payout{
				Seat: p.Seat, Amount: amt, Hand: Describe(append(append([]Card{}, p.Hole...), t.Board...)),
			})
		}
	}
	return res
}

// fromButton orders seats starting left of the button.
func (t *Table) fromButton(seats []int) []int {
	n := len(t.Players)
	out := make([]int, 0, len(seats))
	for i := 1; i <= n; i++ {
		s := (t.Button + i) % n
		for _, w := range seats {
			if w == s {
				out = append(out, s)
			}
		}
	}
	return out
}

func (t *Table) finish(res *Result) {
	for _, p := range res.Payouts {
		t.Players[p.Seat].Stack += p.Amount
	}
	res.HandNo = t.HandNo
	res.Board = append([]Card(nil), t.Board...)
	t.Result = res
	t.ToAct = -1
	t.playing = false
}

// Rebuy resets busted seats to the starting stack between hands.
func (t *Table) Rebuy() error {
	if t.playing {
		return ErrHandInProgress
	}
	for _, p := range t.Players {
		if p.Stack == 0 {
			p.Stack = t.Cfg.StartStack
		}
	}
	return nil
}
