// internal/mood/mood.go
//
// The companion's emotional display state.
// Responsibilities:
//   - Define the four moods and the events that move between them.
//   - Hold the single current mood for a companion session (Controller).
//   - Publish every transition to subscribers (chat, games, presentation).
//
// Notes:
//   - Next is a pure function of (current, event); Controller wraps it with
//     locking and fan-out.
//   - There is no terminal mood and no transition ever fails.
package mood

import (
	"fmt"
	"sync"
)

// Mood is the companion's current emotional display state.
type Mood string

const (
	Happy    Mood = "happy"
	Excited  Mood = "excited"
	Thinking Mood = "thinking"
	Sleeping Mood = "sleeping"
)

// Default is the mood every new session starts in.
const Default = Happy

// All lists the moods in display order.
var All = []Mood{Happy, Excited, Thinking, Sleeping}

// Valid reports whether m is one of the four defined moods.
func (m Mood) Valid() bool {
	switch m {
	case Happy, Excited, Thinking, Sleeping:
		return true
	}
	return false
}

// Parse converts user input (e.g. a settings selection) into a Mood.
func Parse(s string) (Mood, error) {
	m := Mood(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mood %q", s)
	}
	return m, nil
}

// Event is something that happened in chat or in a game.
type Event string

const (
	EventUserMessage   Event = "user_message"   // user sent a message / AI turn begins
	EventReplyReceived Event = "reply_received" // completion returned text
	EventReplyFailed   Event = "reply_failed"   // fallback reply was used
	EventWinningMove   Event = "winning_move"   // match found, correct answer, click
	EventMismatch      Event = "mismatch"       // memory pair did not match
	EventWrongAnswer   Event = "wrong_answer"   // riddle answer incorrect
	EventUpgradeBought Event = "upgrade_bought" // clicker upgrade purchased
	EventGameStarted   Event = "game_started"
	EventGameReset     Event = "game_reset"
	EventListening     Event = "listening"      // voice capture started
	EventListeningDone Event = "listening_done" // transcript, error or stop
)

// transitions maps each event to its target mood. The companion's reaction
// does not depend on the mood it was in.
var transitions = map[Event]Mood{
	EventUserMessage:   Thinking,
	EventReplyReceived: Happy,
	EventReplyFailed:   Happy, // stays upbeat
	EventWinningMove:   Excited,
	EventMismatch:      Thinking,
	EventWrongAnswer:   Thinking,
	EventUpgradeBought: Happy,
	EventGameStarted:   Excited,
	EventGameReset:     Happy,
	EventListening:     Thinking,
	EventListeningDone: Happy,
}

// Next returns the mood that follows current when ev happens.
// Unknown events leave the mood unchanged.
func Next(current Mood, ev Event) Mood {
	if m, ok := transitions[ev]; ok {
		return m
	}
	if !current.Valid() {
		return Default
	}
	return current
}

// Controller owns the current mood of one companion session.
// It is safe for concurrent use; subscribers run outside the lock.
type Controller struct {
	mu      sync.Mutex
	current Mood
	nextID  int
	subs    map[int]func(Mood)
}

// NewController returns a controller in the default mood.
func NewController() *Controller {
	return &Controller{current: Default, subs: make(map[int]func(Mood))}
}

// Current returns the current mood.
func (c *Controller) Current() Mood {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Transition applies ev and returns the resulting mood.
func (c *Controller) Transition(ev Event) Mood {
	c.mu.Lock()
	m := Next(c.current, ev)
	c.current = m
	subs := c.snapshotSubs()
	c.mu.Unlock()

	publish(subs, m)
	return m
}

// Select sets the mood chosen explicitly by the user (idle/settings).
// Invalid moods are ignored and the current mood is returned.
func (c *Controller) Select(m Mood) Mood {
	c.mu.Lock()
	if !m.Valid() {
		cur := c.current
		c.mu.Unlock()
		return cur
	}
	c.current = m
	subs := c.snapshotSubs()
	c.mu.Unlock()

	publish(subs, m)
	return m
}

// Subscribe registers fn to be called with every new mood.
// The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Mood)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) snapshotSubs() []func(Mood) {
	out := make([]func(Mood), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func publish(subs []func(Mood), m Mood) {
	for _, fn := range subs {
		fn(m)
	}
}
