// internal/companion/session.go
//
// The companion context object. One Session is created when the companion
// window opens and owns everything the window shows:
//   - the MoodController every other component reports to,
//   - the ScoreKeeper shared by the mini-games,
//   - the GameSessionManager and the ChatOrchestrator,
//   - the sound cue sink and the voice-input flag.
//
// Close tears all of it down: pending game timers are canceled and a chat
// reply still in flight is dropped when it arrives.
//
// Mood changes are published with no session or game lock held, so a mood
// subscriber may read Snapshot.

package companion

import (
	"context"
	"errors"
	mrand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/companion/internal/chat"
	"github.com/robalobadob/companion/internal/content"
	"github.com/robalobadob/companion/internal/cue"
	"github.com/robalobadob/companion/internal/mood"
	"github.com/robalobadob/companion/internal/schedule"
	"github.com/robalobadob/companion/internal/score"
	"github.com/robalobadob/companion/internal/seed"
	"github.com/robalobadob/companion/internal/session"
	"github.com/robalobadob/companion/internal/store"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("companion closed")
	// ErrListening rejects typed messages while voice input is active.
	ErrListening = errors.New("voice input in progress")
)

// Config holds what every session is built from.
type Config struct {
	Content           *content.Library
	Completer         chat.Completer
	CompletionTimeout time.Duration
	Ledger            store.Ledger
	Scheduler         schedule.Scheduler
	CuePlayer         cue.Player
	SoundEnabled      bool
	DeckSeed          string // non-empty: reproducible shuffles and fallback picks
	Logger            zerolog.Logger
	Now               func() time.Time

	// Rand overrides random sources per purpose ("deck", "chat"). Tests only.
	Rand func(purpose string) *mrand.Rand
}

// Session is one open companion window.
type Session struct {
	ID       string
	OpenedAt time.Time

	Mood  *mood.Controller
	Score *score.Keeper
	Games *session.Manager
	Chat  *chat.Orchestrator
	Sound *cue.Sink

	mu        sync.Mutex
	listening bool
	closed    bool
	unsub     func()
	log       zerolog.Logger
}

// Snapshot is the full view of a session for the presentation layer.
type Snapshot struct {
	ID          string           `json:"id"`
	OpenedAt    time.Time        `json:"openedAt"`
	Mood        mood.Mood        `json:"mood"`
	Listening   bool             `json:"listening"`
	Game        session.Snapshot `json:"game"`
	Messages    []chat.Message   `json:"messages"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Sound       cue.State        `json:"sound"`
}

// Open creates a session with a fresh mood, score, game menu and greeting.
func Open(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		key := cfg.DeckSeed
		cfg.Rand = func(purpose string) *mrand.Rand { return seed.New(key, purpose) }
	}

	id := uuid.NewString()
	logger := cfg.Logger.With().Str("session", id).Logger()

	mc := mood.NewController()
	sc := score.NewKeeper()
	sink := cue.NewSink(cfg.SoundEnabled, cfg.CuePlayer)

	s := &Session{
		ID:       id,
		OpenedAt: cfg.Now(),
		Mood:     mc,
		Score:    sc,
		Sound:    sink,
		log:      logger,
	}
	s.Games = session.NewManager(session.Config{
		SessionID: id,
		Content:   cfg.Content,
		Mood:      mc,
		Score:     sc,
		Cues:      sink,
		Rand:      cfg.Rand("deck"),
		Scheduler: cfg.Scheduler,
		Ledger:    cfg.Ledger,
		Logger:    logger,
		Now:       cfg.Now,
	})
	s.Chat = chat.New(chat.Config{
		Completer: cfg.Completer,
		Mood:      mc,
		Cues:      sink,
		Rand:      cfg.Rand("chat"),
		Timeout:   cfg.CompletionTimeout,
		Logger:    logger,
		Now:       cfg.Now,
	})
	s.unsub = mc.Subscribe(func(m mood.Mood) {
		logger.Debug().Str("mood", string(m)).Msg("mood changed")
	})
	logger.Info().Msg("companion opened")
	return s
}

// Say submits a typed chat message. It is rejected while listening.
func (s *Session) Say(ctx context.Context, text string) ([]chat.Message, error) {
	s.mu.Lock()
	closed, listening := s.closed, s.listening
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if listening {
		return nil, ErrListening
	}
	msgs, err := s.Chat.Submit(ctx, text)
	if errors.Is(err, chat.ErrClosed) {
		return nil, ErrClosed
	}
	return msgs, err
}

// BeginListening marks voice capture active and moves the mood to thinking.
func (s *Session) BeginListening() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	started := !s.listening
	s.listening = true
	s.mu.Unlock()

	if started {
		s.Mood.Transition(mood.EventListening)
	}
	return nil
}

// EndListening settles voice capture (result, error or stop) and returns the
// trimmed transcript for the caller to place in the input box. An empty
// transcript means capture ended without a result.
func (s *Session) EndListening(transcript string) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	stopped := s.listening
	s.listening = false
	s.mu.Unlock()

	if stopped {
		s.Mood.Transition(mood.EventListeningDone)
	}
	return strings.TrimSpace(transcript), nil
}

// SelectMood applies an explicit choice from settings.
func (s *Session) SelectMood(name string) (mood.Mood, error) {
	m, err := mood.Parse(strings.TrimSpace(strings.ToLower(name)))
	if err != nil {
		return s.Mood.Current(), err
	}
	return s.Mood.Select(m), nil
}

// SetSound toggles sound cues.
func (s *Session) SetSound(enabled bool) cue.State {
	s.Sound.SetEnabled(enabled)
	return s.Sound.Snapshot()
}

// Snapshot returns the session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	listening := s.listening
	s.mu.Unlock()
	return Snapshot{
		ID:          s.ID,
		OpenedAt:    s.OpenedAt,
		Mood:        s.Mood.Current(),
		Listening:   listening,
		Game:        s.Games.Snapshot(),
		Messages:    s.Chat.Messages(),
		Suggestions: s.Chat.Suggestions(),
		Sound:       s.Sound.Snapshot(),
	}
}

// Closed reports whether Close has run.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels pending game effects, records the active game and stops the
// chat. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.listening = false
	s.mu.Unlock()

	s.Games.Close(ctx)
	s.Chat.Close()
	s.unsub()
	s.log.Info().Msg("companion closed")
}
