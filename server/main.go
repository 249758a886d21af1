package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"portfolio-arcade/server/mailer"
	"portfolio-arcade/server/session"
	"portfolio-arcade/server/store"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	log := newLogger(cfg.LogLevel, cfg.LogFormat)

	var migrate, simulate bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--simulate":
			simulate = true
		default:
			log.Fatalf("unknown flag %s (want --migrate or --simulate)", a)
		}
	}

	tuning, err := cfg.tuning()
	if err != nil {
		log.Fatal(err)
	}

	// The terminal run needs no store and no network.
	if simulate {
		if err := runSimulation(os.Stdout, cfg, tuning); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	st, err := openStore(ctx, cfg, migrate, log)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()
	if migrate {
		log.Info("migrated")
		return
	}

	var mail mailer.Sender
	mcfg, err := mailer.ResolveConfig()
	if err != nil {
		log.WithError(err).Warn("contact form disabled")
	} else {
		mail = mailer.NewClient(mcfg)
	}

	rec := &recorder{st: st, log: log}
	sessions := session.NewManager(session.Config{
		TTL:    cfg.SessionTTL,
		Tuning: tuning,
		Seed:   cfg.Seed,
		Hooks:  rec.hooks(),
	}, logrus.NewEntry(log))
	go sessions.Run(ctx, 0)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           Router(newServer(sessions, st, rec, mail, mcfg.Autoreply, cfg.SimInterval, log)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// no WriteTimeout: SSE and websocket responses stay open
	}
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		sessions.StopAll()
		shutdown, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = srv.Shutdown(shutdown)
	}()

	log.WithFields(logrus.Fields{"store": cfg.StoreMode, "ttl": cfg.SessionTTL.String()}).
		Infof("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-idle
	log.Info("stopped")
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	cancel()
}

// openStore picks the backend from STORE_MODE. Postgres migrates only when
// asked; the SQLite file is always brought up to date on open.
func openStore(ctx context.Context, cfg Config, migrate bool, log *logrus.Logger) (store.Store, error) {
	switch cfg.StoreMode {
	case storePostgres:
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, err
		}
		if migrate || cfg.AutoMigrate {
			if err := store.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		log.Info("store: postgres")
		return db, nil
	case storeSQLite:
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("store: sqlite")
		return db, nil
	default:
		log.Warn("store: none, nothing is persisted")
		return store.Nop{}, nil
	}
}
