package api

import (
	"net/http"
)

// StartReview handles POST /api/review. Starting while a session is
// already running replaces it with a fresh queue.
//
//	@Summary		Start a review session over the current deck
//	@Tags			review
//	@Produce		json
//	@Success		201	{object}	ReviewView
//	@Security		BearerAuth
//	@Router			/review [post]
func (h *Handler) StartReview(w http.ResponseWriter, r *http.Request) {
	session := h.reviews.Start()
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

// GetReview handles GET /api/review.
//
//	@Summary		Get the current review session snapshot
//	@Tags			review
//	@Produce		json
//	@Success		200	{object}	ReviewView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/review [get]
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	session, ok := h.reviews.Current()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no active review session"))
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// StopReview handles DELETE /api/review.
//
//	@Summary		End the current review session
//	@Tags			review
//	@Success		204	"Session stopped"
//	@Security		BearerAuth
//	@Router			/review [delete]
func (h *Handler) StopReview(w http.ResponseWriter, r *http.Request) {
	h.reviews.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// NextCard handles POST /api/review/next. Moving on before the dwell
// timer fires abandons the current card without review credit.
//
//	@Summary		Advance to the next card in the session
//	@Tags			review
//	@Produce		json
//	@Success		200	{object}	ReviewView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/review/next [post]
func (h *Handler) NextCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.reviews.Current()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no active review session"))
		return
	}
	session.Next()
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// PrevCard handles POST /api/review/prev.
//
//	@Summary		Go back to the previous card in the session
//	@Tags			review
//	@Produce		json
//	@Success		200	{object}	ReviewView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/review/prev [post]
func (h *Handler) PrevCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.reviews.Current()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no active review session"))
		return
	}
	session.Prev()
	writeJSON(w, http.StatusOK, session.Snapshot())
}
