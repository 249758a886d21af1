package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"portfolio-arcade/server/agent"
	"portfolio-arcade/server/engine"
	"portfolio-arcade/server/odds"
	"portfolio-arcade/server/session"
)

const maxOddsIterations = 20000

// tableRequest overrides the default five-seat table. Zero fields keep the
// defaults.
type tableRequest struct {
	Opponents  int `json:"opponents"`
	SmallBlind int `json:"small_blind"`
	BigBlind   int `json:"big_blind"`
	StartStack int `json:"start_stack"`
}

func (req tableRequest) config() engine.Config {
	cfg := engine.DefaultConfig()
	if req.Opponents > 0 {
		cfg.Seats = []string{"You"}
		for i := 1; i <= req.Opponents; i++ {
			cfg.Seats = append(cfg.Seats, fmt.Sprintf("Opponent %d", i))
		}
	}
	if req.SmallBlind > 0 {
		cfg.SB = req.SmallBlind
	}
	if req.BigBlind > 0 {
		cfg.BB = req.BigBlind
	}
	if req.StartStack > 0 {
		cfg.StartStack = req.StartStack
	}
	return cfg
}

func (s *server) tableFrom(r *http.Request) (*session.Table, error) {
	return s.sessions.GetTable(chi.URLParam(r, "id"))
}

func (s *server) createTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	t, err := s.sessions.CreateTable(req.config())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.WithField("table", t.ID).Info("poker table created")
	writeJSON(w, http.StatusCreated, t.View())
}

func (s *server) getTable(w http.ResponseWriter, r *http.Request) {
	t, err := s.tableFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t.View())
}

func (s *server) startHand(w http.ResponseWriter, r *http.Request) {
	t, err := s.tableFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := t.Start()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.WithFields(logrus.Fields{"table": t.ID, "hand": v.Observation.HandNo}).Debug("hand started")
	writeJSON(w, http.StatusOK, v)
}

func (s *server) act(w http.ResponseWriter, r *http.Request) {
	t, err := s.tableFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in agent.ActionIn
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	v, err := t.Act(in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *server) odds(w http.ResponseWriter, r *http.Request) {
	t, err := s.tableFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	iters := odds.DefaultIterations
	if v := r.URL.Query().Get("iterations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad iterations")
			return
		}
		iters = min(n, maxOddsIterations)
	}
	rep, err := t.Odds(iters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
