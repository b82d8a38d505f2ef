// Package cue carries "play a sound" signals from chat and games to the audio
// collaborator. The core never synthesizes audio; it only emits cues.
package cue

import (
	"sync"

	"github.com/rs/zerolog"
)

// Cue names a sound effect.
type Cue string

// Moof is the companion's signature sound.
const Moof Cue = "moof"

// Player plays a cue. Implementations must not block.
type Player interface {
	Play(c Cue)
}

// State is what the presentation layer polls to decide whether to play a
// sound: Played increments once per emitted cue.
type State struct {
	Enabled bool   `json:"enabled"`
	Played  uint64 `json:"played"`
	Last    Cue    `json:"last,omitempty"`
}

// Sink gates cues behind the user's sound setting and counts them.
type Sink struct {
	mu    sync.Mutex
	out   Player
	state State
}

// NewSink returns a sink forwarding to out (which may be nil).
func NewSink(enabled bool, out Player) *Sink {
	return &Sink{out: out, state: State{Enabled: enabled}}
}

// Play emits c unless sound is disabled.
func (s *Sink) Play(c Cue) {
	s.mu.Lock()
	if !s.state.Enabled {
		s.mu.Unlock()
		return
	}
	s.state.Played++
	s.state.Last = c
	out := s.out
	s.mu.Unlock()

	if out != nil {
		out.Play(c)
	}
}

// SetEnabled toggles sound.
func (s *Sink) SetEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Enabled = on
}

// Snapshot returns the current state.
func (s *Sink) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LogPlayer writes cues to a logger at debug level.
type LogPlayer struct {
	Logger zerolog.Logger
}

// Play implements Player.
func (p LogPlayer) Play(c Cue) {
	p.Logger.Debug().Str("cue", string(c)).Msg("play cue")
}
