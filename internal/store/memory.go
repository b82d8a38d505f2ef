// internal/store/memory.go
//
// Results ledger: a history feed of finished mini-games.
// A result is recorded whenever a game is replaced by another or the session
// returns to the game menu. The ledger is never read back into game state;
// the session high score stays session-scoped.
//
// Implementations:
//   - memory (this file): bounded in-process ring, lost on restart.
//   - sqlite (sqlite.go): durable rows in game_results.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/companion/internal/game"
)

// ErrNotFound is returned when a result ID is unknown.
var ErrNotFound = errors.New("not found")

// Result is one finished game.
type Result struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Kind       game.Kind `json:"kind"`
	Score      int       `json:"score"`
	Moves      int       `json:"moves"` // memory: pairs evaluated; clicker: upgrades; riddle: riddles solved
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Ledger persists finished game results.
type Ledger interface {
	// Record appends a result. Recording the same ID twice is a no-op.
	Record(ctx context.Context, r Result) error

	// Get retrieves a result by ID.
	Get(ctx context.Context, id string) (Result, error)

	// Recent returns up to limit results, newest first.
	Recent(ctx context.Context, limit int) ([]Result, error)

	// Best returns the top results for one game kind: highest score first,
	// earlier finish breaking ties.
	Best(ctx context.Context, kind game.Kind, limit int) ([]Result, error)

	Close() error
}

const defaultMemoryCap = 200

// memory is an in-memory Ledger keeping the newest results.
type memory struct {
	mu      sync.RWMutex // guards results
	limit   int
	results []Result // oldest first
}

// NewMemoryLedger constructs an in-memory Ledger holding at most capacity
// results (0 selects the default).
func NewMemoryLedger(capacity int) Ledger {
	if capacity <= 0 {
		capacity = defaultMemoryCap
	}
	return &memory{limit: capacity}
}

// Record appends r, evicting the oldest result when full.
func (m *memory) Record(ctx context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.results {
		if x.ID == r.ID {
			return nil
		}
	}
	m.results = append(m.results, r)
	if len(m.results) > m.limit {
		m.results = m.results[len(m.results)-m.limit:]
	}
	return nil
}

// Get looks up a result by ID.
func (m *memory) Get(ctx context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.results {
		if r.ID == id {
			return r, nil
		}
	}
	return Result{}, ErrNotFound
}

// Recent returns the newest results first.
func (m *memory) Recent(ctx context.Context, limit int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.results) {
		limit = len(m.results)
	}
	out := make([]Result, 0, limit)
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.results[i])
	}
	return out, nil
}

// Best ranks results of kind by score.
func (m *memory) Best(ctx context.Context, kind game.Kind, limit int) ([]Result, error) {
	m.mu.RLock()
	out := make([]Result, 0)
	for _, r := range m.results {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].FinishedAt.Before(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
