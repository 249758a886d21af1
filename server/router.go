package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"portfolio-arcade/server/engine"
	"portfolio-arcade/server/mailer"
	"portfolio-arcade/server/rps"
	"portfolio-arcade/server/session"
	"portfolio-arcade/server/store"
)

// server holds what the handlers share. mail is nil when SendGrid is not
// configured; the contact endpoint then answers 500.
type server struct {
	sessions    *session.Manager
	store       store.Store
	rec         *recorder
	mail        mailer.Sender
	autoreply   bool
	simInterval time.Duration
	log         *logrus.Logger
}

func newServer(m *session.Manager, st store.Store, rec *recorder, mail mailer.Sender, autoreply bool, simInterval time.Duration, log *logrus.Logger) *server {
	if simInterval <= 0 {
		simInterval = rps.DefaultInterval
	}
	return &server{
		sessions:    m,
		store:       st,
		rec:         rec,
		mail:        mail,
		autoreply:   autoreply,
		simInterval: simInterval,
		log:         log,
	}
}

func Router(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		live, tables := s.sessions.Len()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": live, "tables": tables})
	})

	r.Route("/api/rps", func(r chi.Router) {
		r.Get("/stats", s.rpsStats)
		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/play", s.play)
			r.Post("/reset", s.reset)
			r.Get("/simulate", s.simulate)
			r.Delete("/simulate", s.stopSimulation)
			r.Get("/ws", s.ws)
		})
	})

	r.Route("/api/poker/tables", func(r chi.Router) {
		r.Post("/", s.createTable)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTable)
			r.Post("/start", s.startHand)
			r.Post("/act", s.act)
			r.Get("/odds", s.odds)
		})
	})

	r.Post("/api/contact", s.contact)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusOf maps domain errors to HTTP codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rps.ErrInvalidMove),
		errors.Is(err, engine.ErrIllegalAction),
		errors.Is(err, mailer.ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrHandInProgress),
		errors.Is(err, engine.ErrHandOver),
		errors.Is(err, rps.ErrAlreadyRunning),
		errors.Is(err, session.ErrNoHumanSeat):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= 500 {
		s.log.WithError(err).WithField("req_id", middleware.GetReqID(r.Context())).Error(r.URL.Path)
	}
	writeError(w, code, err.Error())
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
