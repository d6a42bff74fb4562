package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memocurve/internal/apperr"
	"github.com/starford/memocurve/internal/cardservice"
	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/progress"
	"github.com/starford/memocurve/internal/review"
)

// Handler holds API route handlers.
type Handler struct {
	cards   *cardservice.Service
	editor  *progress.Editor
	reviews *review.Manager
	store   *deck.Store
}

// NewHandler creates a new Handler.
func NewHandler(cards *cardservice.Service, editor *progress.Editor, reviews *review.Manager, store *deck.Store) *Handler {
	return &Handler{cards: cards, editor: editor, reviews: reviews, store: store}
}

// ListCards handles GET /api/cards.
//
//	@Summary		List cards with optional content search
//	@Tags			cards
//	@Produce		json
//	@Param			q	query		string	false	"Filter by content substring"
//	@Success		200	{object}	CardListResponse
//	@Security		BearerAuth
//	@Router			/cards [get]
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	res := h.cards.ListCards(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, res)
}

// CreateCard handles POST /api/cards.
//
//	@Summary		Create a new card with a fresh review schedule
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateCardRequest	true	"Card to create"
//	@Success		201		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [post]
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	card, err := h.cards.CreateCard(r.Context(), req.Content, req.Meaning, req.Example)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// GetCard handles GET /api/cards/{id}.
//
//	@Summary		Get a single card by id
//	@Tags			cards
//	@Produce		json
//	@Param			id	path		string	true	"Card id"
//	@Success		200	{object}	models.Card
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [get]
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.GetCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// UpdateCard handles PUT /api/cards/{id}.
//
//	@Summary		Edit a card's display fields
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Card id"
//	@Param			body	body		UpdateCardRequest	true	"Updated fields"
//	@Success		200		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [put]
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	card, err := h.cards.UpdateCard(r.Context(), chi.URLParam(r, "id"), req.Content, req.Meaning, req.Example)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		}
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DeleteCards handles DELETE /api/cards.
//
//	@Summary		Delete cards by id
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DeleteCardsRequest	true	"Ids to remove"
//	@Success		200		{object}	DeleteCardsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [delete]
func (h *Handler) DeleteCards(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req DeleteCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("ids are required"))
		return
	}
	deleted, err := h.cards.DeleteCards(r.Context(), req.IDs)
	if err != nil {
		slog.Error("delete cards failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DeleteCardsResponse{Deleted: deleted})
}

// CardProgress handles GET /api/cards/{id}/progress.
//
//	@Summary		Get the 12-stage review chart for a card
//	@Tags			progress
//	@Produce		json
//	@Param			id	path		string	true	"Card id"
//	@Success		200	{object}	CardProgressResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id}/progress [get]
func (h *Handler) CardProgress(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.GetCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, CardProgressResponse{
		Card:   card,
		Stages: progress.StageView(card, time.Now()),
	})
}

// ToggleStage handles PUT /api/cards/{id}/stages/{index}.
//
//	@Summary		Mark a review stage completed or undo it
//	@Tags			progress
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Card id"
//	@Param			index	path		int					true	"Stage index (0-11)"
//	@Param			body	body		ToggleStageRequest	true	"Desired completion state"
//	@Success		200		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id}/stages/{index} [put]
func (h *Handler) ToggleStage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("stage index must be a number"))
		return
	}
	var req ToggleStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	card, err := h.editor.ToggleStage(chi.URLParam(r, "id"), index, req.Completed)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrOutOfOrder):
			writeJSON(w, http.StatusConflict, errorBody(err.Error()))
		default:
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		}
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// ImportCards handles POST /api/cards/import.
//
//	@Summary		Import cards from an XLSX workbook
//	@Tags			cards
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Workbook with Content/Meaning/Example columns"
//	@Success		200		{object}	ImportResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/import [post]
func (h *Handler) ImportCards(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 20<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("form file 'file' is required"))
		return
	}
	defer file.Close()

	res, err := h.cards.Import(r.Context(), file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ExportCards handles GET /api/cards/export.
//
//	@Summary		Download the deck as an XLSX workbook
//	@Tags			cards
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success		200	{file}	binary
//	@Security		BearerAuth
//	@Router			/cards/export [get]
func (h *Handler) ExportCards(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="cards.xlsx"`)
	if err := h.cards.Export(r.Context(), w); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
	}
}

// GetPrefs handles GET /api/prefs.
//
//	@Summary		Get review preferences
//	@Tags			prefs
//	@Produce		json
//	@Success		200	{object}	models.Prefs
//	@Security		BearerAuth
//	@Router			/prefs [get]
func (h *Handler) GetPrefs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Prefs())
}

// PutPrefs handles PUT /api/prefs.
//
//	@Summary		Replace review preferences
//	@Tags			prefs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Prefs	true	"New preferences"
//	@Success		200		{object}	models.Prefs
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prefs [put]
func (h *Handler) PutPrefs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var prefs models.Prefs
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.SavePrefs(prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
