// internal/game/types.go
//
// Shared types for the companion's mini-games.
// Defines:
//   - Kind: which game is active (none/memory/clicker/riddle).
//   - Env: the collaborators every game reports to (mood, score, sound cues).
//   - Effect: a delayed state change the owner must schedule.
//
// Games are explicit state machines. Commands mutate state synchronously and
// return the delayed effects they need (e.g. "flip these cards back in 1s")
// instead of starting timers themselves, so the owner decides when and whether
// an effect runs.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/robalobadob/companion/internal/cue"
	"github.com/robalobadob/companion/internal/mood"
)

// Kind identifies a game.
type Kind string

const (
	KindNone    Kind = "none"
	KindMemory  Kind = "memory"
	KindClicker Kind = "clicker"
	KindRiddle  Kind = "riddle"
)

// Playable reports whether k names a startable game.
func (k Kind) Playable() bool {
	return k == KindMemory || k == KindClicker || k == KindRiddle
}

// MenuItem describes a game for the picker.
type MenuItem struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Menu lists the playable games in display order.
var Menu = []MenuItem{
	{KindMemory, "Memory Match", "Match pairs of cards"},
	{KindClicker, "Moof Clicker", "Click to make Clarus moof!"},
	{KindRiddle, "DogCow Riddles", "Test your DogCow knowledge"},
}

// Scoring rules and reveal delays.
const (
	MatchAward   = 10
	RiddleAward  = 25
	UpgradeStep  = 50
	MatchDelay   = 500 * time.Millisecond
	NoMatchDelay = 1000 * time.Millisecond
	AdvanceDelay = 2000 * time.Millisecond
)

// MoodTrigger receives mood events.
type MoodTrigger interface {
	Transition(ev mood.Event) mood.Mood
}

// Scorer is the shared running score.
type Scorer interface {
	Add(n int) int
	Reset()
}

// Env bundles what a game reports to. Cues may be nil.
type Env struct {
	Mood  MoodTrigger
	Score Scorer
	Cues  cue.Player
}

func (e Env) play() {
	if e.Cues != nil {
		e.Cues.Play(cue.Moof)
	}
}

// Effect is a state change to apply After a delay. Run must be invoked on
// the same logical thread as the game's commands.
type Effect struct {
	After time.Duration
	Run   func()
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
