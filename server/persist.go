package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"portfolio-arcade/server/engine"
	"portfolio-arcade/server/rps"
	"portfolio-arcade/server/session"
	"portfolio-arcade/server/store"
)

const storeTimeout = 3 * time.Second

// recorder mirrors game state into the store. Writes are best-effort: a
// failure is logged and the player never sees it.
type recorder struct {
	st  store.Store
	log *logrus.Logger
}

func (rc *recorder) hooks() session.Hooks {
	return session.Hooks{
		OnRound: rc.round,
		OnReset: rc.reset,
		OnHand:  rc.hand,
	}
}

func (rc *recorder) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

func (rc *recorder) sessionCreated(s *session.Session) {
	ctx, cancel := rc.ctx()
	defer cancel()
	if err := rc.st.CreateSession(ctx, s.ID, s.CreatedAt); err != nil {
		rc.log.WithError(err).WithField("session", s.ID).Warn("persist session")
	}
}

func (rc *recorder) round(id string, r rps.Round, sb rps.Scoreboard) {
	ctx, cancel := rc.ctx()
	defer cancel()
	err := rc.st.InsertRound(ctx, store.Round{
		SessionID: id,
		Number:    r.Number,
		User:      moveName(r.User),
		AI:        moveName(r.AI),
		Outcome:   string(r.Outcome),
		Exponent:  r.Exponent,
		PlayedAt:  time.Now(),
	})
	if err == nil {
		err = rc.st.SaveScoreboard(ctx, scoreRow(id, sb, r.Exponent))
	}
	if err != nil {
		rc.log.WithError(err).WithFields(logrus.Fields{"session": id, "round": r.Number}).Warn("persist round")
	}
}

func (rc *recorder) reset(id string, exponent float64) {
	ctx, cancel := rc.ctx()
	defer cancel()
	if err := rc.st.SaveScoreboard(ctx, scoreRow(id, rps.Scoreboard{}, exponent)); err != nil {
		rc.log.WithError(err).WithField("session", id).Warn("persist reset")
	}
}

func (rc *recorder) hand(tableID string, res *engine.Result) {
	ctx, cancel := rc.ctx()
	defer cancel()
	err := rc.st.InsertPokerHand(ctx, store.PokerHand{
		TableID:   tableID,
		HandNo:    res.HandNo,
		Winners:   res.Winners(),
		Pot:       res.Pot,
		Board:     engine.CardStrings(res.Board),
		Showdown:  res.Showdown,
		CreatedAt: time.Now(),
	})
	if err != nil {
		rc.log.WithError(err).WithFields(logrus.Fields{"table": tableID, "hand": res.HandNo}).Warn("persist hand")
	}
}

func scoreRow(id string, sb rps.Scoreboard, exponent float64) store.Scoreboard {
	return store.Scoreboard{SessionID: id, UserWins: sb.UserWins, AIWins: sb.AIWins, Ties: sb.Ties, Exponent: exponent}
}

func moveName(m rps.Move) string {
	b, err := m.MarshalText()
	if err != nil {
		return m.String()
	}
	return string(b)
}
