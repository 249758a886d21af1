package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const DefaultSQLitePath = "arcade_local.db"

// SQLite is the single-file store used for local runs and tests.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, wrapOpen(errors.New("empty sqlite database path"))
	}
	if path != ":memory:" {
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, wrapOpen(err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpen(err)
	}
	// one connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, wrapOpen(err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrapOpen(err)
	}
	s := &SQLite{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Migrate(ctx context.Context) error {
	raw, err := schema.ReadFile("schema_sqlite.sql")
	if err != nil {
		return wrapMigrate(err)
	}
	if _, err := s.db.ExecContext(ctx, string(raw)); err != nil {
		return wrapMigrate(err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ms(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().UnixMilli()
}

func (s *SQLite) CreateSession(ctx context.Context, id string, createdAt time.Time) error {
	at := ms(createdAt)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO rps_sessions (id, created_at_ms, updated_at_ms)
VALUES (?, ?, ?)
ON CONFLICT (id) DO NOTHING
`, id, at, at)
	return wrapCreateSession(err)
}

func (s *SQLite) InsertRound(ctx context.Context, r Round) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO rps_rounds (session_id, round_no, user_move, ai_move, outcome, exponent, played_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, r.SessionID, r.Number, r.User, r.AI, r.Outcome, r.Exponent, ms(r.PlayedAt))
	return wrapInsertRound(err)
}

func (s *SQLite) SaveScoreboard(ctx context.Context, sb Scoreboard) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE rps_sessions
   SET user_wins = ?, ai_wins = ?, ties = ?, exponent = ?, updated_at_ms = ?
 WHERE id = ?
`, sb.UserWins, sb.AIWins, sb.Ties, sb.Exponent, ms(time.Now()), sb.SessionID)
	if err != nil {
		return wrapSaveScoreboard(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrapSaveScoreboard(ErrNotFound)
	}
	return nil
}

func (s *SQLite) SessionScore(ctx context.Context, id string) (Scoreboard, error) {
	sb := Scoreboard{SessionID: id}
	err := s.db.QueryRowContext(ctx, `
SELECT user_wins, ai_wins, ties, exponent FROM rps_sessions WHERE id = ?
`, id).Scan(&sb.UserWins, &sb.AIWins, &sb.Ties, &sb.Exponent)
	if errors.Is(err, sql.ErrNoRows) {
		return sb, ErrNotFound
	}
	return sb, wrapSessionScore(err)
}

func (s *SQLite) RPSStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
SELECT (SELECT count(*) FROM rps_sessions),
       count(*),
       coalesce(sum(outcome = 'win'), 0),
       coalesce(sum(outcome = 'lose'), 0),
       coalesce(sum(outcome = 'tie'), 0)
  FROM rps_rounds
`).Scan(&st.Sessions, &st.Rounds, &st.UserWins, &st.AIWins, &st.Ties)
	return st, wrapStats(err)
}

func (s *SQLite) InsertContact(ctx context.Context, c Contact) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO contact_messages (name, email, message, created_at_ms)
VALUES (?, ?, ?, ?)
`, c.Name, c.Email, c.Message, ms(c.CreatedAt))
	if err != nil {
		return 0, wrapInsertContact(err)
	}
	id, err := res.LastInsertId()
	return id, wrapInsertContact(err)
}

func (s *SQLite) MarkContactDelivered(ctx context.Context, id int64, delivered bool, failure string) error {
	var at, f any
	if delivered {
		at = ms(time.Now())
	}
	if failure != "" {
		f = failure
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE contact_messages SET delivered = ?, delivered_at_ms = ?, failure = ? WHERE id = ?
`, delivered, at, f, id)
	if err != nil {
		return wrapMarkContact(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrapMarkContact(ErrNotFound)
	}
	return nil
}

func (s *SQLite) InsertPokerHand(ctx context.Context, h PokerHand) error {
	winners := h.Winners
	if winners == nil {
		winners = []int{}
	}
	raw, err := json.Marshal(winners)
	if err != nil {
		return wrapInsertHand(err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO poker_hands (table_id, hand_no, winners_json, pot, board, showdown, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (table_id, hand_no) DO NOTHING
`, h.TableID, h.HandNo, string(raw), h.Pot, strings.Join(h.Board, " "), h.Showdown, ms(h.CreatedAt))
	return wrapInsertHand(err)
}

// PokerHands lists recorded hands for a table, oldest first.
func (s *SQLite) PokerHands(ctx context.Context, tableID string) ([]PokerHand, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT hand_no, winners_json, pot, board, showdown, created_at_ms
  FROM poker_hands WHERE table_id = ? ORDER BY hand_no
`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PokerHand
	for rows.Next() {
		h := PokerHand{TableID: tableID}
		var winners, board string
		var at int64
		if err := rows.Scan(&h.HandNo, &winners, &h.Pot, &board, &h.Showdown, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(winners), &h.Winners); err != nil {
			return nil, errors.Wrapf(err, "hand %d winners", h.HandNo)
		}
		h.Board = strings.Fields(board)
		h.CreatedAt = time.UnixMilli(at).UTC()
		out = append(out, h)
	}
	return out, rows.Err()
}
