package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/memocurve/internal/cardservice"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/progress"
	"github.com/starford/memocurve/internal/review"
)

// CreateCardRequest is the request body for creating a card.
type CreateCardRequest struct {
	Content string `json:"content" example:"serendipity" validate:"required"`
	Meaning string `json:"meaning" example:"a happy accident"`
	Example string `json:"example" example:"finding it was pure serendipity"`
}

// Validate checks the create payload before it reaches the deck.
func (r CreateCardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Meaning, validation.Length(0, 2000)),
		validation.Field(&r.Example, validation.Length(0, 2000)),
	)
}

// UpdateCardRequest is the request body for editing a card's display fields.
type UpdateCardRequest struct {
	Content string `json:"content" validate:"required"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// Validate checks the update payload.
func (r UpdateCardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Meaning, validation.Length(0, 2000)),
		validation.Field(&r.Example, validation.Length(0, 2000)),
	)
}

// DeleteCardsRequest carries the ids to remove.
type DeleteCardsRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// ToggleStageRequest marks a stage completed or undone in the progress editor.
type ToggleStageRequest struct {
	Completed bool `json:"completed"`
}

// CardListResponse wraps the dashboard listing (aliased from the domain layer).
type CardListResponse = cardservice.ListResult

// CardProgressResponse is the stage chart for one card.
type CardProgressResponse struct {
	Card   models.Card          `json:"card"`
	Stages []progress.StageInfo `json:"stages"`
}

// DeleteCardsResponse reports how many cards were removed.
type DeleteCardsResponse struct {
	Deleted int `json:"deleted" example:"3" validate:"required"`
}

// ImportResponse reports spreadsheet import counts (aliased from the domain layer).
type ImportResponse = cardservice.ImportResult

// ReviewView is the review session snapshot (aliased from the domain layer).
type ReviewView = review.View
