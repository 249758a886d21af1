package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"portfolio-arcade/server/engine"
	"portfolio-arcade/server/rating"
	"portfolio-arcade/server/rps"
	"portfolio-arcade/server/session"
	"portfolio-arcade/server/store"
)

// sessionResponse is the live session plus the totals last written to the
// store, when there are any.
type sessionResponse struct {
	session.View
	Persisted *store.Scoreboard `json:"persisted,omitempty"`
}

func (s *server) sessionFrom(r *http.Request) (*session.Session, error) {
	return s.sessions.Get(chi.URLParam(r, "id"))
}

func (s *server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.rec.sessionCreated(sess)
	s.log.WithField("session", sess.ID).Info("rps session created")
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := sessionResponse{View: sess.View()}
	if sb, err := s.store.SessionScore(r.Context(), sess.ID); err == nil {
		resp.Persisted = &sb
	} else if !errors.Is(err, store.ErrNotFound) {
		s.log.WithError(err).WithField("session", sess.ID).Warn("load persisted scoreboard")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessionFrom(r); err != nil {
		s.fail(w, r, err)
		return
	}
	s.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type playRequest struct {
	Move string `json:"move"`
}

type playResponse struct {
	Round   rps.Round    `json:"round"`
	Session session.View `json:"session"`
}

func (s *server) play(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req playRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	m, err := rps.ParseMove(req.Move)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	round := sess.Play(m)
	writeJSON(w, http.StatusOK, playResponse{Round: round, Session: sess.View()})
}

func (s *server) reset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Reset())
}

// simulate streams synthetic rounds as server-sent events until the round
// limit is reached or the client goes away.
func (s *server) simulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	interval := s.simInterval
	if v := q.Get("interval_ms"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad interval_ms")
			return
		}
		interval = rps.ClampInterval(time.Duration(ms) * time.Millisecond)
	}
	limit := atoiDef(q.Get("rounds"), 0)
	user, err := rps.NewSyntheticUser(q.Get("user"), engine.NewRand(0))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream unsupported")
		return
	}

	rounds := make(chan rps.Round, 64)
	sim, err := sess.StartSimulation(ctx, user, interval, limit, func(rd rps.Round) {
		select {
		case rounds <- rd:
		case <-ctx.Done():
		}
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer sim.Stop()

	log := s.log.WithFields(logrus.Fields{"session": sess.ID, "interval": sim.Interval().String(), "limit": limit})
	log.Info("simulation started")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event string, v any) {
		b, _ := json.Marshal(v)
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
		flusher.Flush()
	}
	send("start", sess.View())

	done := sim.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info("simulation client gone")
			return
		case rd := <-rounds:
			send("round", rd)
		case <-done:
		drain:
			for {
				select {
				case rd := <-rounds:
					send("round", rd)
				default:
					break drain
				}
			}
			send("done", sess.View())
			log.Info("simulation finished")
			return
		}
	}
}

func (s *server) stopSimulation(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess.StopSimulation()
	writeJSON(w, http.StatusOK, sess.View())
}

type statsResponse struct {
	Sessions     int        `json:"sessions"`
	LiveSessions int        `json:"live_sessions"`
	Rounds       int        `json:"rounds"`
	UserWins     int        `json:"user_wins"`
	AIWins       int        `json:"ai_wins"`
	Ties         int        `json:"ties"`
	AIWinRate    float64    `json:"ai_win_rate"`
	CI95         [2]float64 `json:"ai_win_rate_ci95"`
}

// rpsStats reports the persisted aggregate. The interval counts ties as half
// a win for the predictor.
func (s *server) rpsStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.RPSStats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	live, _ := s.sessions.Len()
	out := statsResponse{
		Sessions:     st.Sessions,
		LiveSessions: live,
		Rounds:       st.Rounds,
		UserWins:     st.UserWins,
		AIWins:       st.AIWins,
		Ties:         st.Ties,
	}
	if st.Rounds > 0 {
		out.AIWinRate = float64(st.AIWins) / float64(st.Rounds)
	}
	out.CI95[0], out.CI95[1] = rating.WilsonCI95(st.AIWins, st.Ties, st.Rounds)
	writeJSON(w, http.StatusOK, out)
}
