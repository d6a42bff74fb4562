package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memocurve/internal/cardservice"
	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/progress"
	"github.com/starford/memocurve/internal/review"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(cards *cardservice.Service, editor *progress.Editor, reviews *review.Manager, store *deck.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(cards, editor, reviews, store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Cards CRUD and spreadsheet exchange. Import/export are registered
	// before the {id} routes so chi matches the literal segments first.
	r.Get("/cards", h.ListCards)
	r.Post("/cards", h.CreateCard)
	r.Delete("/cards", h.DeleteCards)
	r.Post("/cards/import", h.ImportCards)
	r.Get("/cards/export", h.ExportCards)
	r.Get("/cards/{id}", h.GetCard)
	r.Put("/cards/{id}", h.UpdateCard)

	// Manual progress editing.
	r.Get("/cards/{id}/progress", h.CardProgress)
	r.Put("/cards/{id}/stages/{index}", h.ToggleStage)

	// Review preferences.
	r.Get("/prefs", h.GetPrefs)
	r.Put("/prefs", h.PutPrefs)

	// Review session lifecycle.
	r.Post("/review", h.StartReview)
	r.Get("/review", h.GetReview)
	r.Delete("/review", h.StopReview)
	r.Post("/review/next", h.NextCard)
	r.Post("/review/prev", h.PrevCard)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
