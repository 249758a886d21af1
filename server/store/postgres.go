package store

import (
	"context"
	"embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

//go:embed schema.sql schema_sqlite.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

var _ Store = (*DB)(nil)

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, wrapOpen(err)
	}
	return &DB{p}, nil
}

func (db *DB) Close() error                   { db.Pool.Close(); return nil }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return wrapMigrate(err)
	}
	if _, err = db.Exec(ctx, string(sqlBytes)); err != nil {
		return wrapMigrate(err)
	}
	return nil
}

func (db *DB) CreateSession(ctx context.Context, id string, createdAt time.Time) error {
	_, err := db.Exec(ctx, `
		INSERT INTO rps_sessions(id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, createdAt)
	if err != nil {
		return wrapCreateSession(err)
	}
	return nil
}

func (db *DB) InsertRound(ctx context.Context, r Round) error {
	_, err := db.Exec(ctx, `
		INSERT INTO rps_rounds(session_id, round_no, user_move, ai_move, outcome, exponent, played_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, r.SessionID, r.Number, r.User, r.AI, r.Outcome, r.Exponent, r.PlayedAt)
	if err != nil {
		return wrapInsertRound(err)
	}
	return nil
}

func (db *DB) SaveScoreboard(ctx context.Context, s Scoreboard) error {
	tag, err := db.Exec(ctx, `
		UPDATE rps_sessions
		   SET user_wins = $2,
		       ai_wins = $3,
		       ties = $4,
		       exponent = $5,
		       updated_at = now()
		 WHERE id = $1
	`, s.SessionID, s.UserWins, s.AIWins, s.Ties, s.Exponent)
	if err != nil {
		return wrapSaveScoreboard(err)
	}
	if tag.RowsAffected() == 0 {
		return wrapSaveScoreboard(ErrNotFound)
	}
	return nil
}

func (db *DB) SessionScore(ctx context.Context, id string) (Scoreboard, error) {
	s := Scoreboard{SessionID: id}
	err := db.QueryRow(ctx, `
		SELECT user_wins, ai_wins, ties, exponent
		  FROM rps_sessions WHERE id = $1
	`, id).Scan(&s.UserWins, &s.AIWins, &s.Ties, &s.Exponent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, ErrNotFound
		}
		return s, wrapSessionScore(err)
	}
	return s, nil
}

func (db *DB) RPSStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := db.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM rps_sessions),
		       count(*),
		       count(*) FILTER (WHERE outcome = 'win'),
		       count(*) FILTER (WHERE outcome = 'lose'),
		       count(*) FILTER (WHERE outcome = 'tie')
		  FROM rps_rounds
	`).Scan(&st.Sessions, &st.Rounds, &st.UserWins, &st.AIWins, &st.Ties)
	if err != nil {
		return st, wrapStats(err)
	}
	return st, nil
}

func (db *DB) InsertContact(ctx context.Context, c Contact) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO contact_messages(name, email, message, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, c.Name, c.Email, c.Message, c.CreatedAt).Scan(&id)
	if err != nil {
		return 0, wrapInsertContact(err)
	}
	return id, nil
}

func (db *DB) MarkContactDelivered(ctx context.Context, id int64, delivered bool, failure string) error {
	var f any
	if failure != "" {
		f = failure
	}
	tag, err := db.Exec(ctx, `
		UPDATE contact_messages
		   SET delivered = $2,
		       delivered_at = CASE WHEN $2 THEN now() ELSE NULL END,
		       failure = $3
		 WHERE id = $1
	`, id, delivered, f)
	if err != nil {
		return wrapMarkContact(err)
	}
	if tag.RowsAffected() == 0 {
		return wrapMarkContact(ErrNotFound)
	}
	return nil
}

func (db *DB) InsertPokerHand(ctx context.Context, h PokerHand) error {
	winners := h.Winners
	if winners == nil {
		winners = []int{}
	}
	board := h.Board
	if board == nil {
		board = []string{}
	}
	_, err := db.Exec(ctx, `
		INSERT INTO poker_hands(table_id, hand_no, winners, pot, board, showdown, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (table_id, hand_no) DO NOTHING
	`, h.TableID, h.HandNo, winners, h.Pot, board, h.Showdown, h.CreatedAt)
	return wrapInsertHand(err)
}
