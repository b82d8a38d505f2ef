// internal/chat/chat.go
//
// ChatOrchestrator: the companion's transcript and the turn protocol around
// the completion service.
//
// A turn:
//  1. appends the user message and moves the mood to thinking,
//  2. sends persona + full transcript to the Completer,
//  3. appends the reply (or a fallback) and moves the mood back to happy.
//
// Turns are strictly queued: a second Submit waits until the first has
// appended its reply, so the transcript always alternates user/companion and
// every request carries the previous reply. Failures never surface to the
// caller; they become friendly fallback replies.

package chat

import (
	"context"
	"errors"
	mrand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/companion/internal/cue"
	"github.com/robalobadob/companion/internal/mood"
	"github.com/robalobadob/companion/internal/seed"
)

var (
	// ErrNotConfigured is returned by a Completer that has no credentials. It
	// must be returned without attempting network I/O.
	ErrNotConfigured = errors.New("completion service not configured")
	// ErrEmptyReply is returned by a Completer whose response held no text.
	ErrEmptyReply = errors.New("completion returned no content")
	// ErrClosed is returned once the orchestrator is closed. A reply that
	// arrives after Close is dropped.
	ErrClosed = errors.New("chat closed")
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderCompanion Sender = "companion"
)

// Message is one transcript entry. Messages are never mutated once appended.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Role tags a turn sent to the completion service.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a completion request.
type Turn struct {
	Role    Role
	Content string
}

// Completer produces a single reply for an ordered conversation.
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, turns []Turn) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, turns []Turn) (string, error) {
	return f(ctx, turns)
}

// MoodTrigger receives mood events.
type MoodTrigger interface {
	Transition(ev mood.Event) mood.Mood
}

// Config wires an Orchestrator. Mood is required; a nil Completer behaves
// as an unconfigured one.
type Config struct {
	Completer Completer
	Mood      MoodTrigger
	Cues      cue.Player
	Rand      *mrand.Rand
	Timeout   time.Duration // per completion call; 0 means no extra deadline
	Persona   string
	Logger    zerolog.Logger
	Now       func() time.Time
	NewID     func() string
}

// Orchestrator is the ChatOrchestrator for one companion session.
type Orchestrator struct {
	turn chan struct{} // one token: held for the whole of a turn

	mu     sync.Mutex // guards log, rng, closed
	log    []Message
	rng    *mrand.Rand
	closed bool

	completer Completer
	mood      MoodTrigger
	cues      cue.Player
	timeout   time.Duration
	persona   string
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// New returns an orchestrator whose transcript holds the greeting.
func New(cfg Config) *Orchestrator {
	if cfg.Rand == nil {
		cfg.Rand = seed.Entropy()
	}
	if cfg.Persona == "" {
		cfg.Persona = Persona
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	o := &Orchestrator{
		turn:      make(chan struct{}, 1),
		rng:       cfg.Rand,
		completer: cfg.Completer,
		mood:      cfg.Mood,
		cues:      cfg.Cues,
		timeout:   cfg.Timeout,
		persona:   cfg.Persona,
		logger:    cfg.Logger,
		now:       cfg.Now,
		newID:     cfg.NewID,
	}
	o.log = append(o.log, o.message(SenderCompanion, Greeting))
	return o
}

// Submit runs one chat turn and returns the two messages it appended (user,
// companion). Blank input is a no-op and returns nil. Submit waits for any
// turn already in flight; ctx bounds both the wait and the completion call.
func (o *Orchestrator) Submit(ctx context.Context, text string) ([]Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	select {
	case o.turn <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-o.turn }()

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, ErrClosed
	}
	user := o.message(SenderUser, text)
	o.log = append(o.log, user)
	turns := o.turnsLocked()
	o.mu.Unlock()

	o.mood.Transition(mood.EventUserMessage)

	reply, err := o.complete(ctx, turns)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.logger.Debug().Msg("reply dropped: chat closed")
		return nil, ErrClosed
	}
	var ev mood.Event
	reply, ev = o.resolveLocked(reply, err)
	msg := o.message(SenderCompanion, reply)
	o.log = append(o.log, msg)
	o.mu.Unlock()

	o.mood.Transition(ev)
	if o.cues != nil {
		o.cues.Play(cue.Moof)
	}
	return []Message{user, msg}, nil
}

// Messages returns a copy of the transcript.
func (o *Orchestrator) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.log))
	copy(out, o.log)
	return out
}

// Suggestions returns opening questions while the transcript holds only the
// greeting, and nil afterwards.
func (o *Orchestrator) Suggestions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.log) > 1 {
		return nil
	}
	out := make([]string, shownSuggestions)
	copy(out, suggestedQuestions)
	return out
}

// Close stops accepting turns. A turn in flight completes its call but its
// reply is not appended.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

func (o *Orchestrator) complete(ctx context.Context, turns []Turn) (string, error) {
	if o.completer == nil {
		return "", ErrNotConfigured
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return o.completer.Complete(ctx, turns)
}

// resolveLocked maps a completion outcome to the reply text and mood event.
func (o *Orchestrator) resolveLocked(reply string, err error) (string, mood.Event) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return UnconfiguredReplies[o.rng.IntN(len(UnconfiguredReplies))], mood.EventReplyFailed
	case errors.Is(err, ErrEmptyReply):
		return EmptyReply, mood.EventReplyFailed
	case err != nil:
		o.logger.Warn().Err(err).Msg("completion failed")
		return TroubleReply, mood.EventReplyFailed
	case strings.TrimSpace(reply) == "":
		return EmptyReply, mood.EventReplyFailed
	}
	return reply, mood.EventReplyReceived
}

// turnsLocked builds persona + transcript as completion turns.
func (o *Orchestrator) turnsLocked() []Turn {
	turns := make([]Turn, 0, len(o.log)+1)
	turns = append(turns, Turn{Role: RoleSystem, Content: o.persona})
	for _, m := range o.log {
		role := RoleAssistant
		if m.Sender == SenderUser {
			role = RoleUser
		}
		turns = append(turns, Turn{Role: role, Content: m.Text})
	}
	return turns
}

func (o *Orchestrator) message(from Sender, text string) Message {
	return Message{ID: o.newID(), Text: text, Sender: from, Timestamp: o.now()}
}
