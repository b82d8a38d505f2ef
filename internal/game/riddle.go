// internal/game/riddle.go
//
// DogCow riddles: answer a fixed sequence of questions in order.
//
//   - SubmitAnswer canonicalizes the text (trim + lowercase) and compares it to
//     the current riddle's canonical answer.
//   - Correct: +RiddleAward, mood excited, and (unless this is the last riddle)
//     an AdvanceDelay effect that moves to the next riddle and clears the
//     answer buffer. A correct answer on the last riddle ends the sequence.
//   - Incorrect: mood thinking, no advance; the hint becomes visible.
//   - Empty answers, answers while an advance is pending, and answers after the
//     sequence ended are no-ops.

package game

import (
	"github.com/robalobadob/companion/internal/content"
	"github.com/robalobadob/companion/internal/mood"
)

// Verdict is the outcome of the latest answer.
type Verdict string

const (
	// VerdictNone means no answer yet, or the buffer was cleared.
	VerdictNone      Verdict = ""
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// RiddleQuiz holds one riddle game.
type RiddleQuiz struct {
	ID string

	env       Env
	riddles   []content.Riddle
	index     int
	answer    string
	verdict   Verdict
	advancing bool
}

// RiddleSnapshot is a read-only copy of the game for presentation.
type RiddleSnapshot struct {
	Index     int     `json:"index"`
	Total     int     `json:"total"`
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Verdict   Verdict `json:"verdict,omitempty"`
	Hint      string  `json:"hint,omitempty"`
	Advancing bool    `json:"advancing"`
	Finished  bool    `json:"finished"`
}

// NewRiddleQuiz starts at the first riddle with no progress. riddles must
// be non-empty.
func NewRiddleQuiz(env Env, riddles []content.Riddle) *RiddleQuiz {
	return &RiddleQuiz{ID: randomID(), env: env, riddles: riddles}
}

// SubmitAnswer checks text against the current riddle. The returned verdict is
// VerdictNone when the submission was ignored.
func (q *RiddleQuiz) SubmitAnswer(text string) (Verdict, []Effect) {
	canon := content.Canonical(text)
	if canon == "" || q.advancing || q.Finished() {
		return VerdictNone, nil
	}
	q.answer = text

	if canon != q.riddles[q.index].Answer {
		q.verdict = VerdictIncorrect
		if q.env.Mood != nil {
			q.env.Mood.Transition(mood.EventWrongAnswer)
		}
		return VerdictIncorrect, nil
	}

	q.verdict = VerdictCorrect
	if q.env.Score != nil {
		q.env.Score.Add(RiddleAward)
	}
	if q.env.Mood != nil {
		q.env.Mood.Transition(mood.EventWinningMove)
	}
	q.env.play()

	if q.index >= len(q.riddles)-1 {
		return VerdictCorrect, nil
	}
	q.advancing = true
	from := q.index
	return VerdictCorrect, []Effect{{After: AdvanceDelay, Run: func() { q.advance(from) }}}
}

func (q *RiddleQuiz) advance(from int) {
	if !q.advancing || q.index != from || q.index >= len(q.riddles)-1 {
		return
	}
	q.index++
	q.answer = ""
	q.verdict = VerdictNone
	q.advancing = false
}

// Index returns the current riddle position.
func (q *RiddleQuiz) Index() int { return q.index }

// Verdict returns the outcome of the latest answer.
func (q *RiddleQuiz) Verdict() Verdict { return q.verdict }

// Finished reports whether the last riddle has been answered correctly.
func (q *RiddleQuiz) Finished() bool {
	return q.index == len(q.riddles)-1 && q.verdict == VerdictCorrect
}

// Snapshot copies the game state. The hint is only included after an
// incorrect answer.
func (q *RiddleQuiz) Snapshot() RiddleSnapshot {
	r := q.riddles[q.index]
	s := RiddleSnapshot{
		Index:     q.index,
		Total:     len(q.riddles),
		Question:  r.Question,
		Answer:    q.answer,
		Verdict:   q.verdict,
		Advancing: q.advancing,
		Finished:  q.Finished(),
	}
	if q.verdict == VerdictIncorrect {
		s.Hint = r.Hint
	}
	return s
}
