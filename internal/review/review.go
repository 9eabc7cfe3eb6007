// Package review builds flashcards from answers the user got wrong.
package review

import (
	"math/rand/v2"
	"slices"

	"github.com/abhisek/studyquiz/internal/session"
	"github.com/abhisek/studyquiz/internal/store"
)

// Card is one missed question.
type Card struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// Deck turns stored missed answers into cards, keeping their order
// (newest result first).
func Deck(missed []store.MissedAnswer) []Card {
	cards := make([]Card, 0, len(missed))
	for _, m := range missed {
		cards = append(cards, Card{
			Question:      m.Question,
			UserAnswer:    m.UserAnswer,
			CorrectAnswer: m.CorrectAnswer,
			Explanation:   m.Explanation,
		})
	}
	return cards
}

// FromSummary returns cards for the incorrect answers of one attempt.
func FromSummary(sum session.Summary) []Card {
	var cards []Card
	for _, a := range sum.Missed() {
		cards = append(cards, Card{
			Question:      a.Question,
			UserAnswer:    a.UserAnswer,
			CorrectAnswer: a.CorrectAnswer,
			Explanation:   a.Explanation,
		})
	}
	return cards
}

// FromResult returns cards for the incorrect answers of a stored result.
func FromResult(r store.Result) []Card {
	var cards []Card
	for _, a := range r.Answers {
		if a.IsCorrect {
			continue
		}
		cards = append(cards, Card{
			Question:      a.Question,
			UserAnswer:    a.UserAnswer,
			CorrectAnswer: a.CorrectAnswer,
			Explanation:   a.Explanation,
		})
	}
	return cards
}

// Shuffle returns a shuffled copy of cards. A nil r uses the global source.
func Shuffle(cards []Card, r *rand.Rand) []Card {
	out := slices.Clone(cards)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if r == nil {
		rand.Shuffle(len(out), swap)
	} else {
		r.Shuffle(len(out), swap)
	}
	return out
}

// Cursor walks a deck one card at a time, front side first.
type Cursor struct {
	Cards   []Card
	Index   int
	Flipped bool
}

// Current returns the card on screen.
func (c *Cursor) Current() (Card, bool) {
	if c.Index < 0 || c.Index >= len(c.Cards) {
		return Card{}, false
	}
	return c.Cards[c.Index], true
}

// Flip toggles between question and answer.
func (c *Cursor) Flip() { c.Flipped = !c.Flipped }

// Next moves to the next card, if any.
func (c *Cursor) Next() bool {
	if c.Index+1 >= len(c.Cards) {
		return false
	}
	c.Index++
	c.Flipped = false
	return true
}

// Prev moves to the previous card, if any.
func (c *Cursor) Prev() bool {
	if c.Index == 0 {
		return false
	}
	c.Index--
	c.Flipped = false
	return true
}

// Restart reshuffles the deck and returns to the first card.
func (c *Cursor) Restart(r *rand.Rand) {
	c.Cards = Shuffle(c.Cards, r)
	c.Index = 0
	c.Flipped = false
}
