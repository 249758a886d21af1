package main

import (
	"fmt"
	"io"
	"math/rand"

	"portfolio-arcade/server/rating"
	"portfolio-arcade/server/rps"
)

const (
	glickoPeriod   = 50
	bootstrapDraws = 1000
)

var simUsers = []string{"uniform", "markov", "rock"}

// simReport is the predictor's record against one synthetic player.
type simReport struct {
	User       string
	Rounds     int
	Score      rps.Scoreboard
	Exponent   float64
	WinRate    float64
	Wilson     [2]float64
	Bootstrap  [2]float64
	Elo        rating.Elo
	House      rating.Glicko2
	Challenger rating.Glicko2
}

// simulateUser plays rounds of kind against a fresh game. Everything is
// derived from seed, so equal inputs give equal reports.
func simulateUser(kind string, rounds int, tuning rps.Tuning, seed int64) (simReport, error) {
	user, err := rps.NewSyntheticUser(kind, rand.New(rand.NewSource(seed)))
	if err != nil {
		return simReport{}, err
	}
	game := rps.NewGame(tuning, rand.New(rand.NewSource(seed+1)))
	elo := rating.NewElo(rating.DefaultStart, rating.DefaultK)
	house, challenger := rating.NewGlicko2(), rating.NewGlicko2()

	scores := make([]float64, 0, rounds)
	var houseGames, userGames []rating.Game
	houseAt, userAt := *house, *challenger
	for i := 0; i < rounds; i++ {
		r := game.Play(user.Next())
		visitor := rating.Score(r.Outcome == rps.Win, r.Outcome == rps.Tie)
		elo.UpdateRound(visitor)
		scores = append(scores, 1-visitor)
		houseGames = append(houseGames, rating.Game{Opp: userAt, Score: 1 - visitor})
		userGames = append(userGames, rating.Game{Opp: houseAt, Score: visitor})
		if len(houseGames) == glickoPeriod || i == rounds-1 {
			house.Period(houseGames, rating.DefaultTau)
			challenger.Period(userGames, rating.DefaultTau)
			houseGames, userGames = houseGames[:0], userGames[:0]
			houseAt, userAt = *house, *challenger
		}
	}

	sb := game.Scoreboard()
	rep := simReport{
		User:       kind,
		Rounds:     rounds,
		Score:      sb,
		Exponent:   game.Snapshot().Exponent,
		Elo:        elo,
		House:      *house,
		Challenger: *challenger,
	}
	if rounds > 0 {
		rep.WinRate = float64(sb.AIWins) / float64(rounds)
	}
	rep.Wilson[0], rep.Wilson[1] = rating.WilsonCI95(sb.AIWins, sb.Ties, rounds)
	rep.Bootstrap[0], rep.Bootstrap[1] = rating.BootstrapCI95(scores, bootstrapDraws, rand.New(rand.NewSource(seed+2)))
	return rep, nil
}

// runSimulation prints the predictor's record against every synthetic
// player kind.
func runSimulation(w io.Writer, cfg Config, tuning rps.Tuning) error {
	p := newPalette(w, cfg.UseColor)
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	rounds := cfg.SimRounds
	if rounds <= 0 {
		rounds = 1000
	}
	p.section(fmt.Sprintf("Predictor vs synthetic players (%d rounds, seed %d)", rounds, seed))
	for i, kind := range simUsers {
		rep, err := simulateUser(kind, rounds, tuning, seed+int64(10*i))
		if err != nil {
			return err
		}
		printReport(p, rep)
	}
	return nil
}

func printReport(p *palette, rep simReport) {
	p.section(p.cyan(rep.User))
	p.line("score (AI-user-tie)", fmt.Sprintf("%d-%d-%d", rep.Score.AIWins, rep.Score.UserWins, rep.Score.Ties))
	p.line("AI win rate", p.rate(rep.WinRate))
	p.line("Wilson 95% (ties ½)", fmt.Sprintf("[%.3f, %.3f]", rep.Wilson[0], rep.Wilson[1]))
	p.line("bootstrap 95% score", fmt.Sprintf("[%.3f, %.3f]", rep.Bootstrap[0], rep.Bootstrap[1]))
	p.line("final exponent", fmt.Sprintf("%.2f", rep.Exponent))
	p.line("Elo house/visitor", fmt.Sprintf("%.0f / %.0f", rep.Elo.House, rep.Elo.Visitor))
	p.line("Glicko-2 house", fmt.Sprintf("%.0f ± %.0f (σ %.4f, %d periods)", rep.House.Rating, 2*rep.House.RD, rep.House.Volatility, rep.House.Periods))
	p.line("Glicko-2 player", fmt.Sprintf("%.0f ± %.0f", rep.Challenger.Rating, 2*rep.Challenger.RD))
}
