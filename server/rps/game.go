package rps

type Scoreboard struct {
	UserWins int `json:"user_wins"`
	AIWins   int `json:"ai_wins"`
	Ties     int `json:"ties"`
}

func (s Scoreboard) Rounds() int { return s.UserWins + s.AIWins + s.Ties }

func (s *Scoreboard) add(o Outcome) {
	switch o {
	case Win:
		s.UserWins++
	case Lose:
		s.AIWins++
	default:
		s.Ties++
	}
}

// Round is one resolved play.
type Round struct {
	Number   int     `json:"round"`
	User     Move    `json:"user_move"`
	AI       Move    `json:"ai_move"`
	Outcome  Outcome `json:"outcome"`
	Exponent float64 `json:"exponent"`
}

// Snapshot is a copy of everything the game tracks.
type Snapshot struct {
	Scoreboard  Scoreboard   `json:"scoreboard"`
	Regrets     RegretRecord `json:"regrets"`
	Transitions Matrix       `json:"transitions"`
	Responses   Matrix       `json:"responses"`
	Exponent    float64      `json:"exponent"`
	Rounds      int          `json:"rounds"`
}

// Game is one player's session against the predictor.
type Game struct {
	predictor *Predictor
	score     Scoreboard
	rounds    int
}

func NewGame(t Tuning, rng Rand) *Game {
	return &Game{predictor: NewPredictor(t, rng)}
}

// Play resolves a round: the AI commits to its move before looking at user.
func (g *Game) Play(user Move) Round {
	ai := g.predictor.SelectMove()
	outcome := Judge(user, ai)
	g.score.add(outcome)
	g.predictor.RecordRound(user, ai)
	g.rounds++
	return Round{
		Number:   g.rounds,
		User:     user,
		AI:       ai,
		Outcome:  outcome,
		Exponent: g.predictor.Exponent(),
	}
}

func (g *Game) Reset() {
	g.predictor.Reset()
	g.score = Scoreboard{}
	g.rounds = 0
}

func (g *Game) Scoreboard() Scoreboard { return g.score }
func (g *Game) Predictor() *Predictor  { return g.predictor }

func (g *Game) Snapshot() Snapshot {
	p := g.predictor
	return Snapshot{
		Scoreboard:  g.score,
		Regrets:     p.Regrets(),
		Transitions: p.Transitions(),
		Responses:   p.Responses(),
		Exponent:    p.Exponent(),
		Rounds:      g.rounds,
	}
}
