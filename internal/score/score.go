// Package score keeps the running score of the active game and the
// session's high score.
package score

import "sync"

// Keeper accumulates the current game's score and tracks the best score
// seen during the companion session. HighScore is never persisted.
type Keeper struct {
	mu    sync.Mutex
	score int
	high  int
}

// NewKeeper returns a keeper with both counters at zero.
func NewKeeper() *Keeper { return &Keeper{} }

// Add increases the score by n (negative n is ignored) and returns the new
// score. The high score is updated whenever the score exceeds it.
func (k *Keeper) Add(n int) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	if n > 0 {
		k.score += n
	}
	k.updateHighScore()
	return k.score
}

// Reset sets the score back to zero; the high score is kept.
func (k *Keeper) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.score = 0
}

// Score returns the current game's score.
func (k *Keeper) Score() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.score
}

// HighScore returns the best score observed this session.
func (k *Keeper) HighScore() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.high
}

func (k *Keeper) updateHighScore() {
	if k.score > k.high {
		k.high = k.score
	}
}
