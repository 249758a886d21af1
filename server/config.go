package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"portfolio-arcade/server/rps"
	"portfolio-arcade/server/session"
	"portfolio-arcade/server/store"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// durationDef accepts Go durations ("90m") or bare minutes ("120").
func durationDef(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	return def
}

const (
	storePostgres = "postgres"
	storeSQLite   = "sqlite"
	storeNone     = "none"
)

type Config struct {
	Port        string
	StoreMode   string
	DatabaseURL string
	SQLitePath  string
	AutoMigrate bool
	SessionTTL  time.Duration
	TuningFile  string
	SimInterval time.Duration
	SimRounds   int
	Seed        int64
	LogLevel    string
	LogFormat   string
	UseColor    bool
}

func loadConfig() Config {
	dsn := getenv("DATABASE_URL", "")
	mode := storeSQLite
	if dsn != "" {
		mode = storePostgres
	}
	return Config{
		Port:        getenv("PORT", "8080"),
		StoreMode:   strings.ToLower(getenv("STORE_MODE", mode)),
		DatabaseURL: dsn,
		SQLitePath:  getenv("SQLITE_PATH", store.DefaultSQLitePath),
		AutoMigrate: asBool(os.Getenv("AUTO_MIGRATE")),
		SessionTTL:  durationDef(os.Getenv("SESSION_TTL"), session.DefaultTTL),
		TuningFile:  os.Getenv("RPS_TUNING_FILE"),
		SimInterval: rps.ClampInterval(time.Duration(atoiDef(os.Getenv("SIM_INTERVAL_MS"), int(rps.DefaultInterval/time.Millisecond))) * time.Millisecond),
		SimRounds:   atoiDef(os.Getenv("SIM_ROUNDS"), 1000),
		Seed:        int64(atoiDef(os.Getenv("SEED"), 0)),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "text"),
		UseColor:    os.Getenv("NO_COLOR") == "" && strings.TrimSpace(os.Getenv("USE_COLOR")) != "0",
	}
}

func (c Config) Validate() error {
	switch c.StoreMode {
	case storePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_MODE=postgres needs DATABASE_URL")
		}
	case storeSQLite, storeNone:
	default:
		return fmt.Errorf("unknown STORE_MODE %q (postgres|sqlite|none)", c.StoreMode)
	}
	return nil
}

// tuning reads RPS_TUNING_FILE when set.
func (c Config) tuning() (rps.Tuning, error) {
	if c.TuningFile == "" {
		return rps.DefaultTuning(), nil
	}
	return rps.LoadTuning(c.TuningFile)
}
