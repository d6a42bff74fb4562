// Package models defines the domain types for memocurve.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/memocurve/internal/apperr"
	"github.com/starford/memocurve/internal/schedule"
)

// Card is a single flashcard together with its lifetime review schedule
// and completion history.
//
// Schedule is derived once from CreatedAt and never changes. NextDue and
// ReviewCount are derived from CompletedAt; the only mutators are
// CompleteStage and UndoStage, which keep all three consistent. Callers
// must not edit CompletedAt directly.
type Card struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Meaning    string `json:"meaning,omitempty"`
	Example    string `json:"example,omitempty"`
	AIQuestion string `json:"ai_question,omitempty"`

	CreatedAt   time.Time   `json:"created_at"`
	ReviewCount int         `json:"review_count"`
	Schedule    []time.Time `json:"schedule"`
	CompletedAt []time.Time `json:"completed_at"`
	NextDue     time.Time   `json:"next_due"`
}

// NewCard creates a card with a fresh ID and the full 12-stage schedule
// anchored at now.
func NewCard(content, meaning, example string, now time.Time) Card {
	sched := schedule.Generate(now)
	return Card{
		ID:          uuid.NewString(),
		Content:     content,
		Meaning:     meaning,
		Example:     example,
		CreatedAt:   now,
		ReviewCount: 0,
		Schedule:    sched,
		CompletedAt: []time.Time{},
		NextDue:     sched[0],
	}
}

// Validate checks the card's structural invariants.
func (c Card) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Content, validation.Required),
		validation.Field(&c.Schedule, validation.Length(schedule.StageCount, schedule.StageCount)),
		validation.Field(&c.CompletedAt, validation.Length(0, schedule.StageCount)),
	)
}

// NextStageIndex returns the index of the first pending stage, which is
// schedule.StageCount for a fully reviewed card.
func (c Card) NextStageIndex() int {
	return len(c.CompletedAt)
}

// FullyReviewed reports whether every stage has been completed.
func (c Card) FullyReviewed() bool {
	return len(c.CompletedAt) >= schedule.StageCount
}

// Due reports whether the card's next review is due at now, allowing the
// given early-credit grace window.
func (c Card) Due(now time.Time, grace time.Duration) bool {
	return !c.NextDue.After(now.Add(grace))
}

// CompleteStage records a completed review at now. It appends to the tail
// of the completion history, advances ReviewCount, and re-derives NextDue.
// A fully reviewed card is left untouched and apperr.ErrOutOfOrder is
// returned.
func (c *Card) CompleteStage(now time.Time) error {
	if c.FullyReviewed() {
		return apperr.ErrOutOfOrder
	}
	c.CompletedAt = append(c.CompletedAt, now)
	c.recompute()
	return nil
}

// UndoStage removes the most recent completion. Only the tail of the
// history may be removed; an empty history yields apperr.ErrOutOfOrder.
func (c *Card) UndoStage() error {
	if len(c.CompletedAt) == 0 {
		return apperr.ErrOutOfOrder
	}
	c.CompletedAt = c.CompletedAt[:len(c.CompletedAt)-1]
	c.recompute()
	return nil
}

// recompute re-derives ReviewCount and NextDue from the completion
// history. Called after every committed mutation of CompletedAt.
func (c *Card) recompute() {
	c.ReviewCount = len(c.CompletedAt)
	c.NextDue = schedule.NextDue(c.Schedule, c.CompletedAt)
}

// Clone returns a deep copy so callers can hand cards across goroutine
// boundaries without sharing slice backing arrays.
func (c Card) Clone() Card {
	out := c
	out.Schedule = append([]time.Time(nil), c.Schedule...)
	out.CompletedAt = append([]time.Time(nil), c.CompletedAt...)
	return out
}
