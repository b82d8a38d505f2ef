package game

import (
	"strings"
	"testing"

	"github.com/robalobadob/companion/internal/content"
	"github.com/robalobadob/companion/internal/cue"
	"github.com/robalobadob/companion/internal/mood"
	"github.com/robalobadob/companion/internal/score"
	"github.com/robalobadob/companion/internal/seed"
)

type fixture struct {
	mood  *mood.Controller
	score *score.Keeper
	cues  *cue.Sink
	env   Env
}

func newFixture() *fixture {
	f := &fixture{mood: mood.NewController(), score: score.NewKeeper(), cues: cue.NewSink(true, nil)}
	f.env = Env{Mood: f.mood, Score: f.score, Cues: f.cues}
	return f
}

func runAll(fx []Effect) {
	for _, e := range fx {
		e.Run()
	}
}

var fourSymbols = []string{"dog", "cow", "star", "note"}

// ---------------------------------------------------------------- memory

func TestDeal_EverySymbolTwice(t *testing.T) {
	for s := uint64(0); s < 50; s++ {
		g := NewMemoryMatch(newFixture().env)
		g.Deal(fourSymbols, seed.Fixed(s))

		snap := g.Snapshot()
		if len(snap.Cards) != 8 {
			t.Fatalf("seed %d: deck length = %d, want 8", s, len(snap.Cards))
		}
		counts := map[string]int{}
		for i, c := range snap.Cards {
			if c.ID != i {
				t.Fatalf("seed %d: card %d has id %d", s, i, c.ID)
			}
			if c.Flipped || c.Matched {
				t.Fatalf("seed %d: card %d dealt face up", s, i)
			}
			counts[c.Symbol]++
		}
		for _, sym := range fourSymbols {
			if counts[sym] != 2 {
				t.Fatalf("seed %d: symbol %q appears %d times", s, sym, counts[sym])
			}
		}
		if snap.Stage != StageDealt {
			t.Fatalf("seed %d: stage = %s, want dealt", s, snap.Stage)
		}
	}
}

func TestDeal_SameSeedSameDeck(t *testing.T) {
	a := NewMemoryMatch(Env{})
	b := NewMemoryMatch(Env{})
	a.Deal(fourSymbols, seed.Fixed(7))
	b.Deal(fourSymbols, seed.Fixed(7))
	for i := range a.cards {
		if a.cards[i].Symbol != b.cards[i].Symbol {
			t.Fatalf("card %d differs: %q vs %q", i, a.cards[i].Symbol, b.cards[i].Symbol)
		}
	}
}

func TestDeal_ResetsScore(t *testing.T) {
	f := newFixture()
	f.score.Add(40)
	g := NewMemoryMatch(f.env)
	g.Deal(fourSymbols, seed.Fixed(1))
	if f.score.Score() != 0 {
		t.Fatalf("score = %d, want 0", f.score.Score())
	}
}

func pairOf(g *MemoryMatch, id int) int {
	for i, c := range g.cards {
		if i != id && c.Symbol == g.cards[id].Symbol {
			return i
		}
	}
	return -1
}

func firstDifferent(g *MemoryMatch, id int) int {
	for i, c := range g.cards {
		if c.Symbol != g.cards[id].Symbol {
			return i
		}
	}
	return -1
}

func TestMemory_EndToEnd(t *testing.T) {
	f := newFixture()
	g := NewMemoryMatch(f.env)
	g.Deal(fourSymbols, seed.Fixed(42))

	other := firstDifferent(g, 0)
	if ok, fx := g.Flip(0); !ok || fx != nil {
		t.Fatalf("first flip: ok=%v fx=%v", ok, fx)
	}
	if g.Stage() != StageFlipping {
		t.Fatalf("stage = %s, want flipping", g.Stage())
	}
	ok, fx := g.Flip(other)
	if !ok || len(fx) != 1 || fx[0].After != NoMatchDelay {
		t.Fatalf("second flip: ok=%v fx=%v", ok, fx)
	}
	if g.Stage() != StageResolving || g.Moves() != 1 {
		t.Fatalf("stage = %s moves = %d, want resolving/1", g.Stage(), g.Moves())
	}
	runAll(fx)
	if g.cards[0].Flipped || g.cards[other].Flipped {
		t.Fatal("mismatched pair should be face down again")
	}
	if g.Moves() != 1 {
		t.Fatalf("moves = %d, want 1", g.Moves())
	}
	if f.mood.Current() != mood.Thinking {
		t.Fatalf("mood = %s, want thinking", f.mood.Current())
	}

	pair := pairOf(g, 0)
	g.Flip(0)
	ok, fx = g.Flip(pair)
	if !ok || len(fx) != 1 || fx[0].After != MatchDelay {
		t.Fatalf("matching flip: ok=%v fx=%v", ok, fx)
	}
	runAll(fx)
	if !g.cards[0].Matched || !g.cards[pair].Matched {
		t.Fatal("expected both cards matched")
	}
	if f.score.Score() != MatchAward {
		t.Fatalf("score = %d, want %d", f.score.Score(), MatchAward)
	}
	if g.Moves() != 2 {
		t.Fatalf("moves = %d, want 2", g.Moves())
	}
	if f.mood.Current() != mood.Excited {
		t.Fatalf("mood = %s, want excited", f.mood.Current())
	}
	if f.cues.Snapshot().Played != 1 {
		t.Fatalf("cues = %d, want 1", f.cues.Snapshot().Played)
	}

	// Matched cards are excluded from further flips.
	if ok, _ := g.Flip(0); ok {
		t.Fatal("flipping a matched card must be a no-op")
	}
}

func TestMemory_AtMostTwoPending(t *testing.T) {
	g := NewMemoryMatch(newFixture().env)
	g.Deal(fourSymbols, seed.Fixed(3))

	g.Flip(0)
	_, fx := g.Flip(1)
	for id := 2; id < 8; id++ {
		if ok, _ := g.Flip(id); ok {
			t.Fatalf("flip %d accepted while a pair is resolving", id)
		}
	}
	if n := len(g.Snapshot().Pending); n != 2 {
		t.Fatalf("pending = %d, want 2", n)
	}
	runAll(fx)
	if n := len(g.Snapshot().Pending); n != 0 {
		t.Fatalf("pending = %d after resolve, want 0", n)
	}
}

func TestMemory_FlipNoOps(t *testing.T) {
	g := NewMemoryMatch(newFixture().env)
	if ok, _ := g.Flip(0); ok {
		t.Fatal("flip before deal must be a no-op")
	}
	g.Deal(fourSymbols, seed.Fixed(5))
	if ok, _ := g.Flip(-1); ok {
		t.Fatal("negative id accepted")
	}
	if ok, _ := g.Flip(8); ok {
		t.Fatal("out of range id accepted")
	}
	g.Flip(2)
	if ok, _ := g.Flip(2); ok {
		t.Fatal("flipping an already flipped card must be a no-op")
	}
}

func TestMemory_EffectRunsOnce(t *testing.T) {
	f := newFixture()
	g := NewMemoryMatch(f.env)
	g.Deal(fourSymbols, seed.Fixed(9))
	g.Flip(0)
	_, fx := g.Flip(pairOf(g, 0))
	runAll(fx)
	runAll(fx)
	if f.score.Score() != MatchAward {
		t.Fatalf("score = %d, want a single award", f.score.Score())
	}
}

func TestMemory_CompletesWhenAllMatched(t *testing.T) {
	g := NewMemoryMatch(newFixture().env)
	g.Deal(fourSymbols, seed.Fixed(11))
	for id := range g.cards {
		if g.cards[id].Matched {
			continue
		}
		g.Flip(id)
		_, fx := g.Flip(pairOf(g, id))
		runAll(fx)
	}
	if !g.Complete() || g.Stage() != StageComplete {
		t.Fatalf("stage = %s, want complete", g.Stage())
	}
	if g.Moves() != 4 {
		t.Fatalf("moves = %d, want 4", g.Moves())
	}
}

// ---------------------------------------------------------------- clicker

func TestClicker_EndToEnd(t *testing.T) {
	f := newFixture()
	c := NewClicker(f.env)

	for i := 0; i < 50; i++ {
		c.Click()
	}
	if c.Count() != 50 || f.score.Score() != 50 {
		t.Fatalf("count = %d score = %d, want 50/50", c.Count(), f.score.Score())
	}
	if f.mood.Current() != mood.Excited {
		t.Fatalf("mood = %s, want excited", f.mood.Current())
	}
	if !c.CanAfford() {
		t.Fatal("expected upgrade to be affordable")
	}
	if !c.BuyUpgrade() {
		t.Fatal("expected upgrade to succeed")
	}
	snap := c.Snapshot()
	if snap.Count != 0 || snap.Multiplier != 2 || snap.UpgradesBought != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.UpgradeCost != 100 {
		t.Fatalf("next cost = %d, want 100", snap.UpgradeCost)
	}
	if f.mood.Current() != mood.Happy {
		t.Fatalf("mood = %s, want happy", f.mood.Current())
	}
	if f.score.Score() != 50 {
		t.Fatalf("score = %d, spending must not lower it", f.score.Score())
	}

	c.Click()
	if c.Count() != 2 || f.score.Score() != 52 {
		t.Fatalf("count = %d score = %d, want 2/52", c.Count(), f.score.Score())
	}
}

func TestClicker_UnaffordableUpgradeIsNoOp(t *testing.T) {
	f := newFixture()
	c := NewClicker(f.env)
	for i := 0; i < 49; i++ {
		c.Click()
	}
	if c.BuyUpgrade() {
		t.Fatal("upgrade must fail at 49 moofs")
	}
	snap := c.Snapshot()
	if snap.Count != 49 || snap.Multiplier != 1 || snap.UpgradesBought != 0 {
		t.Fatalf("snapshot changed: %+v", snap)
	}
}

func TestClicker_NeverNegative(t *testing.T) {
	f := newFixture()
	c := NewClicker(f.env)
	ops := "ccubccccuuccccccccccccccccccccccccccccccccccccccccccccuuccccccccccccccccccccccccccccccccccccccccccccccccccccccccccu"
	for _, op := range ops {
		before := c.Snapshot()
		if op == 'u' {
			ok := c.BuyUpgrade()
			if ok != (before.Count >= (before.UpgradesBought+1)*UpgradeStep) {
				t.Fatalf("upgrade result %v at count %d", ok, before.Count)
			}
			if ok && c.Snapshot().Multiplier != before.Multiplier+1 {
				t.Fatal("multiplier must increase by exactly 1")
			}
		} else {
			c.Click()
		}
		if c.Count() < 0 || f.score.Score() < 0 {
			t.Fatalf("negative state: count %d score %d", c.Count(), f.score.Score())
		}
	}
}

// ---------------------------------------------------------------- riddle

func riddles(t *testing.T) []content.Riddle {
	t.Helper()
	lib, err := content.Default()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	return lib.Riddles
}

func TestRiddle_CanonicalAnswer(t *testing.T) {
	f := newFixture()
	q := NewRiddleQuiz(f.env, riddles(t))

	v, fx := q.SubmitAnswer(" DogCow ")
	if v != VerdictCorrect {
		t.Fatalf("verdict = %q, want correct", v)
	}
	if f.score.Score() != RiddleAward {
		t.Fatalf("score = %d, want %d", f.score.Score(), RiddleAward)
	}
	if f.mood.Current() != mood.Excited {
		t.Fatalf("mood = %s, want excited", f.mood.Current())
	}
	if len(fx) != 1 || fx[0].After != AdvanceDelay {
		t.Fatalf("effects = %v", fx)
	}
	if q.Index() != 0 {
		t.Fatal("must not advance before the delay")
	}
	runAll(fx)
	snap := q.Snapshot()
	if snap.Index != 1 || snap.Answer != "" || snap.Verdict != VerdictNone {
		t.Fatalf("snapshot after advance = %+v", snap)
	}
}

func TestRiddle_IncorrectShowsHintAndStays(t *testing.T) {
	f := newFixture()
	q := NewRiddleQuiz(f.env, riddles(t))

	v, fx := q.SubmitAnswer("cat")
	if v != VerdictIncorrect || fx != nil {
		t.Fatalf("verdict = %q fx = %v", v, fx)
	}
	snap := q.Snapshot()
	if snap.Index != 0 {
		t.Fatalf("index = %d, want 0", snap.Index)
	}
	if !strings.Contains(snap.Hint, "talking to me") {
		t.Fatalf("hint = %q", snap.Hint)
	}
	if f.mood.Current() != mood.Thinking {
		t.Fatalf("mood = %s, want thinking", f.mood.Current())
	}
	if f.score.Score() != 0 {
		t.Fatalf("score = %d, want 0", f.score.Score())
	}
}

func TestRiddle_IgnoredSubmissions(t *testing.T) {
	f := newFixture()
	q := NewRiddleQuiz(f.env, riddles(t))

	if v, _ := q.SubmitAnswer("   "); v != VerdictNone {
		t.Fatalf("empty answer verdict = %q", v)
	}
	_, fx := q.SubmitAnswer("dogcow")
	if v, _ := q.SubmitAnswer("dogcow"); v != VerdictNone {
		t.Fatal("answers while advancing must be ignored")
	}
	if f.score.Score() != RiddleAward {
		t.Fatalf("score = %d, want a single award", f.score.Score())
	}
	runAll(fx)
}

func TestRiddle_LastRiddleEndsSequence(t *testing.T) {
	f := newFixture()
	rs := riddles(t)
	q := NewRiddleQuiz(f.env, rs)

	for i, r := range rs {
		v, fx := q.SubmitAnswer(strings.ToUpper(r.Answer))
		if v != VerdictCorrect {
			t.Fatalf("riddle %d verdict = %q", i, v)
		}
		if i == len(rs)-1 && fx != nil {
			t.Fatal("last riddle must not schedule an advance")
		}
		runAll(fx)
	}
	if !q.Finished() || q.Index() != len(rs)-1 {
		t.Fatalf("finished = %v index = %d", q.Finished(), q.Index())
	}
	if f.score.Score() != RiddleAward*len(rs) {
		t.Fatalf("score = %d", f.score.Score())
	}
	if v, _ := q.SubmitAnswer("anything"); v != VerdictNone {
		t.Fatal("answers after the sequence ended must be ignored")
	}
}
