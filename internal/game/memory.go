// internal/game/memory.go
//
// Memory-match: find the pairs in a shuffled deck.
//
// Stages: idle → dealt → (flipping → resolving)* → complete
//
//   - Deal builds K symbols × 2 cards, Fisher–Yates shuffles them with the
//     injected random source, and resets moves and score.
//   - Flip turns one card face up. The second card of a pair moves the game to
//     resolving: moves increments immediately and a delayed Effect either marks
//     the pair matched (MatchDelay) or turns it face down again (NoMatchDelay).
//   - While a pair is resolving every Flip is a no-op, so at most two cards are
//     ever face-up-unmatched.
//
// Completion (all cards matched) is reported through Stage/Complete only.

package game

import (
	mrand "math/rand/v2"

	"github.com/robalobadob/companion/internal/mood"
)

// Card is one memory card. ID is its position in the deck.
type Card struct {
	ID      int    `json:"id"`
	Symbol  string `json:"symbol"`
	Flipped bool   `json:"flipped"`
	Matched bool   `json:"matched"`
}

// Stage is the memory game's coarse state.
type Stage string

const (
	StageIdle      Stage = "idle"
	StageDealt     Stage = "dealt"
	StageFlipping  Stage = "flipping"
	StageResolving Stage = "resolving"
	StageComplete  Stage = "complete"
)

// MemoryMatch holds one memory-match game.
type MemoryMatch struct {
	ID string

	env     Env
	cards   []Card
	pending []int
	moves   int
	dealt   bool
}

// MemorySnapshot is a read-only copy of the game for presentation.
type MemorySnapshot struct {
	Stage   Stage  `json:"stage"`
	Cards   []Card `json:"cards"`
	Pending []int  `json:"pending"`
	Moves   int    `json:"moves"`
}

// NewMemoryMatch returns an idle game; call Deal to start.
func NewMemoryMatch(env Env) *MemoryMatch {
	return &MemoryMatch{ID: randomID(), env: env}
}

// Deal builds a fresh shuffled deck from symbols (K distinct faces, 2K cards)
// and resets moves and score.
func (g *MemoryMatch) Deal(symbols []string, rng *mrand.Rand) {
	cards := make([]Card, 0, 2*len(symbols))
	for _, s := range symbols {
		cards = append(cards, Card{Symbol: s})
	}
	for _, s := range symbols {
		cards = append(cards, Card{Symbol: s})
	}
	shuffle(cards, rng)
	for i := range cards {
		cards[i].ID = i
	}

	g.cards = cards
	g.pending = g.pending[:0]
	g.moves = 0
	g.dealt = true
	if g.env.Score != nil {
		g.env.Score.Reset()
	}
}

// shuffle is Fisher–Yates: for i from the last index down to 1, swap i with a
// uniformly random index j ≤ i.
func shuffle(cards []Card, rng *mrand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Flip turns card id face up. It reports whether anything changed and
// returns the resolution effect once a pair is complete.
func (g *MemoryMatch) Flip(id int) (bool, []Effect) {
	if !g.dealt || len(g.pending) == 2 || id < 0 || id >= len(g.cards) {
		return false, nil
	}
	c := &g.cards[id]
	if c.Flipped || c.Matched {
		return false, nil
	}
	c.Flipped = true
	g.pending = append(g.pending, id)
	if len(g.pending) < 2 {
		return true, nil
	}

	g.moves++
	a, b := g.pending[0], g.pending[1]
	if g.cards[a].Symbol == g.cards[b].Symbol {
		return true, []Effect{{After: MatchDelay, Run: func() { g.resolveMatch(a, b) }}}
	}
	return true, []Effect{{After: NoMatchDelay, Run: func() { g.resolveMismatch(a, b) }}}
}

func (g *MemoryMatch) resolveMatch(a, b int) {
	if !g.isPending(a, b) {
		return
	}
	g.cards[a].Matched = true
	g.cards[b].Matched = true
	g.pending = g.pending[:0]
	if g.env.Score != nil {
		g.env.Score.Add(MatchAward)
	}
	if g.env.Mood != nil {
		g.env.Mood.Transition(mood.EventWinningMove)
	}
	g.env.play()
}

func (g *MemoryMatch) resolveMismatch(a, b int) {
	if !g.isPending(a, b) {
		return
	}
	g.cards[a].Flipped = false
	g.cards[b].Flipped = false
	g.pending = g.pending[:0]
	if g.env.Mood != nil {
		g.env.Mood.Transition(mood.EventMismatch)
	}
}

// isPending guards effects against running twice or after a re-deal.
func (g *MemoryMatch) isPending(a, b int) bool {
	return len(g.pending) == 2 && g.pending[0] == a && g.pending[1] == b
}

// Moves returns the number of pairs evaluated.
func (g *MemoryMatch) Moves() int { return g.moves }

// Complete reports whether every card is matched.
func (g *MemoryMatch) Complete() bool {
	if !g.dealt || len(g.cards) == 0 {
		return false
	}
	for _, c := range g.cards {
		if !c.Matched {
			return false
		}
	}
	return true
}

// Stage derives the coarse state.
func (g *MemoryMatch) Stage() Stage {
	switch {
	case !g.dealt:
		return StageIdle
	case g.Complete():
		return StageComplete
	case len(g.pending) == 2:
		return StageResolving
	case len(g.pending) == 1:
		return StageFlipping
	default:
		return StageDealt
	}
}

// Snapshot copies the game state.
func (g *MemoryMatch) Snapshot() MemorySnapshot {
	cards := make([]Card, len(g.cards))
	copy(cards, g.cards)
	pending := make([]int, len(g.pending))
	copy(pending, g.pending)
	return MemorySnapshot{Stage: g.Stage(), Cards: cards, Pending: pending, Moves: g.moves}
}
