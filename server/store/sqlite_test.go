package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openMem(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteRoundsAndStats(t *testing.T) {
	ctx := context.Background()
	s := openMem(t)
	now := time.Now()
	for _, id := range []string{"a", "b"} {
		if err := s.CreateSession(ctx, id, now); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}
	if err := s.CreateSession(ctx, "a", now); err != nil {
		t.Fatalf("duplicate session should be ignored: %v", err)
	}
	outcomes := []string{"win", "lose", "lose", "tie", "lose"}
	for i, o := range outcomes {
		r := Round{SessionID: "a", Number: i + 1, User: "rock", AI: "paper", Outcome: o, Exponent: 2.5, PlayedAt: now}
		if err := s.InsertRound(ctx, r); err != nil {
			t.Fatalf("InsertRound: %v", err)
		}
	}
	st, err := s.RPSStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{Sessions: 2, Rounds: 5, UserWins: 1, AIWins: 3, Ties: 1}
	if st != want {
		t.Fatalf("stats %+v, want %+v", st, want)
	}
	if err := s.InsertRound(ctx, Round{SessionID: "missing", Number: 1, User: "rock", AI: "rock", Outcome: "tie"}); err == nil {
		t.Fatalf("round for unknown session should violate the foreign key")
	}
}

func TestSQLiteEmptyStats(t *testing.T) {
	st, err := openMem(t).RPSStats(context.Background())
	if err != nil || st != (Stats{}) {
		t.Fatalf("empty stats = %+v, %v", st, err)
	}
}

func TestSQLiteScoreboard(t *testing.T) {
	ctx := context.Background()
	s := openMem(t)
	if _, err := s.SessionScore(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SaveScoreboard(ctx, Scoreboard{SessionID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on save, got %v", err)
	}
	if err := s.CreateSession(ctx, "s1", time.Now()); err != nil {
		t.Fatal(err)
	}
	want := Scoreboard{SessionID: "s1", UserWins: 4, AIWins: 7, Ties: 2, Exponent: 3.1}
	if err := s.SaveScoreboard(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := s.SessionScore(ctx, "s1")
	if err != nil || got != want {
		t.Fatalf("SessionScore = %+v, %v", got, err)
	}
}

func TestSQLiteContacts(t *testing.T) {
	ctx := context.Background()
	s := openMem(t)
	id, err := s.InsertContact(ctx, Contact{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	if err != nil || id <= 0 {
		t.Fatalf("InsertContact = %d, %v", id, err)
	}
	if err := s.MarkContactDelivered(ctx, id, false, "provider down"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkContactDelivered(ctx, id, true, ""); err != nil {
		t.Fatal(err)
	}
	var delivered bool
	var failure *string
	if err := s.db.QueryRow(`SELECT delivered, failure FROM contact_messages WHERE id = ?`, id).Scan(&delivered, &failure); err != nil {
		t.Fatal(err)
	}
	if !delivered || failure != nil {
		t.Fatalf("delivered=%v failure=%v", delivered, failure)
	}
	if err := s.MarkContactDelivered(ctx, id+100, true, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLitePokerHands(t *testing.T) {
	ctx := context.Background()
	s := openMem(t)
	h := PokerHand{TableID: "t1", HandNo: 1, Winners: []int{0, 3}, Pot: 4000, Board: []string{"As", "Kd", "7c", "7h", "2s"}, Showdown: true}
	if err := s.InsertPokerHand(ctx, h); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertPokerHand(ctx, h); err != nil {
		t.Fatalf("duplicate hand should be ignored: %v", err)
	}
	hands, err := s.PokerHands(ctx, "t1")
	if err != nil || len(hands) != 1 {
		t.Fatalf("PokerHands = %v, %v", hands, err)
	}
	got := hands[0]
	if len(got.Winners) != 2 || got.Winners[1] != 3 || len(got.Board) != 5 || !got.Showdown || got.Pot != 4000 {
		t.Fatalf("round trip %+v", got)
	}
}

func TestOpenSQLiteCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "arcade.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	_ = s.Close()
	if _, err := OpenSQLite(context.Background(), "  "); err == nil {
		t.Fatalf("empty path should fail")
	}
}
