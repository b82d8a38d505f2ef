// internal/session/manager.go
//
// GameSessionManager: which mini-game is active and everything around it.
// Responsibilities:
//   - Own the active game as a tagged union (none/memory/clicker/riddle).
//   - Start/Reset transitions: discard the old game, reset the shared score,
//     move the mood.
//   - Forward commands to the active game and schedule the delayed effects it
//     returns.
//   - Cancel every outstanding effect when the game is replaced, reset or the
//     session closes; a generation counter drops effects that were already
//     firing when the game changed.
//   - Record each finished game to the results ledger (best effort), after
//     the lock is released.
//
// All state is guarded by one mutex; commands and timer firings are applied
// one at a time in arrival order. Mood events raised under the lock are
// queued and published once it is released, in the order they were raised,
// so mood subscribers may read the manager.

package session

import (
	"context"
	"errors"
	mrand "math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/companion/internal/content"
	"github.com/robalobadob/companion/internal/cue"
	"github.com/robalobadob/companion/internal/game"
	"github.com/robalobadob/companion/internal/mood"
	"github.com/robalobadob/companion/internal/schedule"
	"github.com/robalobadob/companion/internal/seed"
	"github.com/robalobadob/companion/internal/store"
)

var (
	// ErrUnknownGame is returned by Start for a kind that is not playable.
	ErrUnknownGame = errors.New("unknown game")
	// ErrNotActive is returned when a command targets a game that is not running.
	ErrNotActive = errors.New("game not active")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// recordTimeout bounds a single ledger write.
const recordTimeout = 5 * time.Second

// ScoreBoard is the shared score plus the session high score.
type ScoreBoard interface {
	game.Scorer
	Score() int
	HighScore() int
}

// Config wires a Manager. Content, Mood and Score are required.
type Config struct {
	SessionID string
	Content   *content.Library
	Mood      game.MoodTrigger
	Score     ScoreBoard
	Cues      cue.Player
	Rand      *mrand.Rand
	Scheduler schedule.Scheduler
	Ledger    store.Ledger
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Manager is the GameSessionManager for one companion session.
type Manager struct {
	mu sync.Mutex

	id     string
	lib    *content.Library
	env    game.Env
	mood   game.MoodTrigger
	score  ScoreBoard
	rng    *mrand.Rand
	sched  schedule.Scheduler
	ledger store.Ledger
	log    zerolog.Logger
	now    func() time.Time

	kind      game.Kind
	memory    *game.MemoryMatch
	clicker   *game.Clicker
	riddle    *game.RiddleQuiz
	startedAt time.Time

	gen       uint64
	timers    map[int]schedule.Cancel
	nextTimer int
	closed    bool

	pending    []mood.Event // raised under mu, published by unlock
	publishing bool
}

// queuedMood is the game-facing mood trigger: it only records the event.
// Callers hold m.mu.
type queuedMood struct{ m *Manager }

// Transition queues ev and returns the mood it will produce.
func (q queuedMood) Transition(ev mood.Event) mood.Mood {
	q.m.pending = append(q.m.pending, ev)
	return mood.Next(mood.Default, ev)
}

// Snapshot is the game consumer view.
type Snapshot struct {
	Kind      game.Kind             `json:"kind"`
	Memory    *game.MemorySnapshot  `json:"memory,omitempty"`
	Clicker   *game.ClickerSnapshot `json:"clicker,omitempty"`
	Riddle    *game.RiddleSnapshot  `json:"riddle,omitempty"`
	Score     int                   `json:"score"`
	HighScore int                   `json:"highScore"`
}

// NewManager returns a manager with no active game.
func NewManager(cfg Config) *Manager {
	if cfg.Rand == nil {
		cfg.Rand = seed.Entropy()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = schedule.Real{}
	}
	if cfg.Ledger == nil {
		cfg.Ledger = store.NewMemoryLedger(0)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	m := &Manager{
		id:     cfg.SessionID,
		lib:    cfg.Content,
		mood:   cfg.Mood,
		score:  cfg.Score,
		rng:    cfg.Rand,
		sched:  cfg.Scheduler,
		ledger: cfg.Ledger,
		log:    cfg.Logger,
		now:    cfg.Now,
		kind:   game.KindNone,
		timers: make(map[int]schedule.Cancel),
	}
	m.env = game.Env{Mood: queuedMood{m}, Score: cfg.Score, Cues: cfg.Cues}
	return m
}

// Kind returns the active game kind.
func (m *Manager) Kind() game.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}

// Start discards any current game and starts a fresh one of kind.
func (m *Manager) Start(ctx context.Context, kind game.Kind) error {
	if !kind.Playable() {
		return ErrUnknownGame
	}
	m.mu.Lock()
	if m.closed {
		m.unlock()
		return ErrClosed
	}

	prev, done := m.finishLocked()
	m.clearLocked()

	m.kind = kind
	m.startedAt = m.now()
	switch kind {
	case game.KindMemory:
		m.memory = game.NewMemoryMatch(m.env)
		m.memory.Deal(m.lib.Symbols, m.rng)
	case game.KindClicker:
		m.clicker = game.NewClicker(m.env)
	case game.KindRiddle:
		m.riddle = game.NewRiddleQuiz(m.env, m.lib.Riddles)
	}
	m.score.Reset()
	m.env.Mood.Transition(mood.EventGameStarted)
	m.unlock()

	if done {
		m.record(ctx, prev)
	}
	m.log.Debug().Str("session", m.id).Str("game", string(kind)).Msg("game started")
	return nil
}

// Reset returns to the game menu from any state. It is idempotent.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.unlock()
		return ErrClosed
	}
	prev, done := m.finishLocked()
	m.clearLocked()
	m.score.Reset()
	m.env.Mood.Transition(mood.EventGameReset)
	m.unlock()

	if done {
		m.record(ctx, prev)
	}
	return nil
}

// Close records the active game, cancels every pending effect, and rejects
// further commands.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.unlock()
		return
	}
	prev, done := m.finishLocked()
	m.clearLocked()
	m.closed = true
	m.unlock()

	if done {
		m.record(ctx, prev)
	}
}

// Flip forwards to the memory game.
func (m *Manager) Flip(cardID int) (bool, error) {
	m.mu.Lock()
	defer m.unlock()
	if err := m.activeLocked(game.KindMemory); err != nil {
		return false, err
	}
	ok, fx := m.memory.Flip(cardID)
	m.scheduleLocked(fx)
	return ok, nil
}

// Click forwards to the clicker game and returns the new count.
func (m *Manager) Click() (int, error) {
	m.mu.Lock()
	defer m.unlock()
	if err := m.activeLocked(game.KindClicker); err != nil {
		return 0, err
	}
	return m.clicker.Click(), nil
}

// BuyUpgrade forwards to the clicker game.
func (m *Manager) BuyUpgrade() (bool, error) {
	m.mu.Lock()
	defer m.unlock()
	if err := m.activeLocked(game.KindClicker); err != nil {
		return false, err
	}
	return m.clicker.BuyUpgrade(), nil
}

// SubmitAnswer forwards to the riddle game.
func (m *Manager) SubmitAnswer(text string) (game.Verdict, error) {
	m.mu.Lock()
	defer m.unlock()
	if err := m.activeLocked(game.KindRiddle); err != nil {
		return game.VerdictNone, err
	}
	v, fx := m.riddle.SubmitAnswer(text)
	m.scheduleLocked(fx)
	return v, nil
}

// Snapshot returns the current game view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{Kind: m.kind, Score: m.score.Score(), HighScore: m.score.HighScore()}
	switch m.kind {
	case game.KindMemory:
		ms := m.memory.Snapshot()
		s.Memory = &ms
	case game.KindClicker:
		cs := m.clicker.Snapshot()
		s.Clicker = &cs
	case game.KindRiddle:
		rs := m.riddle.Snapshot()
		s.Riddle = &rs
	}
	return s
}

// PendingEffects reports how many delayed effects are outstanding.
func (m *Manager) PendingEffects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manager) activeLocked(kind game.Kind) error {
	if m.closed {
		return ErrClosed
	}
	if m.kind != kind {
		return ErrNotActive
	}
	return nil
}

// scheduleLocked hands effects to the scheduler. A firing effect re-acquires
// the lock and is dropped if the game changed since it was scheduled.
func (m *Manager) scheduleLocked(fx []game.Effect) {
	for _, e := range fx {
		id := m.nextTimer
		m.nextTimer++
		gen := m.gen
		run := e.Run
		m.timers[id] = m.sched.After(e.After, func() {
			m.mu.Lock()
			defer m.unlock()
			delete(m.timers, id)
			if m.closed || gen != m.gen {
				return
			}
			run()
		})
	}
}

// clearLocked cancels pending effects and drops the active game.
func (m *Manager) clearLocked() {
	for id, cancel := range m.timers {
		cancel()
		delete(m.timers, id)
	}
	m.gen++
	m.kind = game.KindNone
	m.memory, m.clicker, m.riddle = nil, nil, nil
}

// unlock releases m.mu after publishing queued mood events. Only the
// outermost caller publishes; events queued by a subscriber that re-enters
// the manager are drained by the same loop, so order is preserved.
func (m *Manager) unlock() {
	if m.publishing {
		m.mu.Unlock()
		return
	}
	m.publishing = true
	for len(m.pending) > 0 {
		evs := m.pending
		m.pending = nil
		m.mu.Unlock()
		for _, ev := range evs {
			m.mood.Transition(ev)
		}
		m.mu.Lock()
	}
	m.publishing = false
	m.mu.Unlock()
}

// finishLocked builds the ledger entry for the active game. It reports false
// when no game is active.
func (m *Manager) finishLocked() (store.Result, bool) {
	if m.kind == game.KindNone {
		return store.Result{}, false
	}
	r := store.Result{
		SessionID:  m.id,
		Kind:       m.kind,
		Score:      m.score.Score(),
		StartedAt:  m.startedAt,
		FinishedAt: m.now(),
	}
	switch m.kind {
	case game.KindMemory:
		r.ID = m.memory.ID
		r.Moves = m.memory.Moves()
	case game.KindClicker:
		r.ID = m.clicker.ID
		r.Moves = m.clicker.Snapshot().UpgradesBought
	case game.KindRiddle:
		r.ID = m.riddle.ID
		r.Moves = m.riddle.Index()
		if m.riddle.Verdict() == game.VerdictCorrect {
			r.Moves++
		}
	}
	return r, true
}

// record writes r to the ledger. The write outlives a canceled request.
func (m *Manager) record(ctx context.Context, r store.Result) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := m.ledger.Record(ctx, r); err != nil {
		m.log.Warn().Err(err).Str("session", m.id).Str("game", string(r.Kind)).Msg("record result")
	}
}
