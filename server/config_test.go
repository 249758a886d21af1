package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"portfolio-arcade/server/rps"
	"portfolio-arcade/server/session"
	"portfolio-arcade/server/store"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_MODE", "DATABASE_URL", "SQLITE_PATH", "AUTO_MIGRATE", "SESSION_TTL", "RPS_TUNING_FILE", "SIM_INTERVAL_MS", "SIM_ROUNDS", "SEED", "NO_COLOR", "USE_COLOR"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg := loadConfig()
	if cfg.Port != "8080" || cfg.StoreMode != storeSQLite || cfg.SQLitePath != store.DefaultSQLitePath {
		t.Fatalf("defaults %+v", cfg)
	}
	if cfg.SessionTTL != session.DefaultTTL || cfg.SimInterval != rps.DefaultInterval || cfg.SimRounds != 1000 {
		t.Fatalf("default timings %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/arcade")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("SIM_INTERVAL_MS", "1")
	t.Setenv("AUTO_MIGRATE", "yes")
	cfg := loadConfig()
	if cfg.StoreMode != storePostgres || !cfg.AutoMigrate {
		t.Fatalf("postgres not selected: %+v", cfg)
	}
	if cfg.SessionTTL != 90*time.Minute {
		t.Fatalf("ttl %v", cfg.SessionTTL)
	}
	if cfg.SimInterval != rps.MinInterval {
		t.Fatalf("interval not clamped: %v", cfg.SimInterval)
	}

	t.Setenv("SESSION_TTL", "30")
	if got := loadConfig().SessionTTL; got != 30*time.Minute {
		t.Fatalf("bare minutes ttl %v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		cfg Config
		ok  bool
	}{
		{Config{StoreMode: storeSQLite}, true},
		{Config{StoreMode: storeNone}, true},
		{Config{StoreMode: storePostgres, DatabaseURL: "postgres://x"}, true},
		{Config{StoreMode: storePostgres}, false},
		{Config{StoreMode: "mongo"}, false},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); (err == nil) != tc.ok {
			t.Fatalf("%+v: err=%v", tc.cfg, err)
		}
	}
}

func TestConfigTuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("amplification: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tu, err := Config{TuningFile: path}.tuning()
	if err != nil || tu.Amplification != 3 || tu.InitialExponent != 2.5 {
		t.Fatalf("tuning %+v, %v", tu, err)
	}
	if _, err := (Config{TuningFile: path + ".missing"}).tuning(); err == nil {
		t.Fatalf("missing tuning file accepted")
	}
}

func TestAsBool(t *testing.T) {
	for _, s := range []string{"1", "true", "YES", " on "} {
		if !asBool(s) {
			t.Fatalf("%q should be true", s)
		}
	}
	for _, s := range []string{"", "0", "off", "nah"} {
		if asBool(s) {
			t.Fatalf("%q should be false", s)
		}
	}
}
