package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/companion/internal/game"
)

func sample(id string, finished time.Time) Result {
	return Result{
		ID:         id,
		SessionID:  "s1",
		Kind:       game.KindClicker,
		Score:      42,
		Moves:      1,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
	}
}

func exerciseLedger(t *testing.T, l Ledger) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := l.Record(ctx, sample(id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}
	if err := l.Record(ctx, sample("a", base)); err != nil {
		t.Fatalf("duplicate record: %v", err)
	}

	got, err := l.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("recent = %+v, want [c b]", got)
	}

	all, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("recent len = %d, want 3", len(all))
	}

	r, err := l.Get(ctx, "b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Kind != game.KindClicker || r.Score != 42 || !r.FinishedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("get = %+v", r)
	}
	if _, err := l.Get(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing err = %v, want ErrNotFound", err)
	}

	for i, score := range []int{5, 90, 90} {
		r := sample("m"+string(rune('0'+i)), base.Add(time.Duration(10+i)*time.Second))
		r.Kind = game.KindMemory
		r.Score = score
		if err := l.Record(ctx, r); err != nil {
			t.Fatalf("record memory: %v", err)
		}
	}
	best, err := l.Best(ctx, game.KindMemory, 2)
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if len(best) != 2 || best[0].ID != "m1" || best[1].ID != "m2" {
		t.Fatalf("best = %+v, want [m1 m2]", best)
	}
	if riddles, _ := l.Best(ctx, game.KindRiddle, 10); len(riddles) != 0 {
		t.Fatalf("riddle best = %+v, want none", riddles)
	}
}

func TestMemoryLedger(t *testing.T) {
	exerciseLedger(t, NewMemoryLedger(0))
}

func TestMemoryLedger_EvictsOldest(t *testing.T) {
	l := NewMemoryLedger(2)
	ctx := context.Background()
	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		_ = l.Record(ctx, sample(id, now))
	}
	if _, err := l.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected oldest to be evicted, err = %v", err)
	}
}

func TestSQLiteLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "companion.db")
	l, err := OpenSQLite(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer l.Close()
	exerciseLedger(t, l)
}

func TestSQLiteLedger_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companion.db")
	l, err := OpenSQLite(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_ = l.Close()

	l, err = OpenSQLite(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = l.Close()
}
