// Package progress implements the manual stage editor behind the
// forgetting-curve chart and the per-stage status view it renders.
package progress

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/memocurve/internal/apperr"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/schedule"
)

// CardStore is the slice of the deck store the editor needs.
type CardStore interface {
	Get(id string) (models.Card, error)
	Update(models.Card) error
}

// Editor applies user-driven check/uncheck of individual stages while
// enforcing strict sequential order: only the immediate next pending
// stage may be completed, and only the most recent completion undone.
type Editor struct {
	store  CardStore
	logger *slog.Logger
	now    func() time.Time
}

// NewEditor creates a stage editor over the given store.
func NewEditor(store CardStore, logger *slog.Logger) *Editor {
	return &Editor{store: store, logger: logger, now: time.Now}
}

// ToggleStage marks the stage at index completed or not. Out-of-order
// toggles are rejected with apperr.ErrOutOfOrder and leave the card
// untouched. On success the mutated card is persisted and returned.
func (e *Editor) ToggleStage(id string, index int, completed bool) (models.Card, error) {
	card, err := e.store.Get(id)
	if err != nil {
		return models.Card{}, err
	}
	if index < 0 || index >= schedule.StageCount {
		return models.Card{}, fmt.Errorf("stage %d: %w", index, apperr.ErrOutOfOrder)
	}

	next := card.NextStageIndex()
	switch {
	case completed && index == next:
		if err := card.CompleteStage(e.now()); err != nil {
			return models.Card{}, err
		}
	case !completed && index == next-1:
		if err := card.UndoStage(); err != nil {
			return models.Card{}, err
		}
	default:
		return models.Card{}, fmt.Errorf("stage %d (next pending %d): %w", index, next, apperr.ErrOutOfOrder)
	}

	if err := e.store.Update(card); err != nil {
		return models.Card{}, err
	}
	e.logger.Info("progress: stage toggled",
		slog.String("id", id),
		slog.Int("stage", index),
		slog.Bool("completed", completed))
	return card, nil
}

// StageInfo is one row of the per-card progress view.
type StageInfo struct {
	Index       int        `json:"index"`
	Label       string     `json:"label"`
	Due         time.Time  `json:"due"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StageView renders the 12-stage status table for a card at now.
func StageView(card models.Card, now time.Time) []StageInfo {
	out := make([]StageInfo, len(card.Schedule))
	for i, due := range card.Schedule {
		info := StageInfo{
			Index:  i,
			Label:  schedule.StageLabel(i),
			Due:    due,
			Status: schedule.Classify(card.Schedule, card.CompletedAt, i, now).String(),
		}
		if i < len(card.CompletedAt) {
			done := card.CompletedAt[i]
			info.CompletedAt = &done
		}
		out[i] = info
	}
	return out
}
