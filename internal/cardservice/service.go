// Package cardservice coordinates deck operations for the dashboard:
// card creation and deletion, listing, and spreadsheet import/export.
package cardservice

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/models"
)

// EventFunc is called after a card mutation with the event kind
// (created, updated or deleted) and the card id.
type EventFunc func(kind, id string)

// Service owns the dashboard-facing card operations.
type Service struct {
	store   *deck.Store
	logger  *slog.Logger
	onEvent EventFunc
	now     func() time.Time
}

// NewService creates a card service over the deck store. onEvent may be
// nil when no one listens for card events.
func NewService(store *deck.Store, logger *slog.Logger, onEvent EventFunc) *Service {
	return &Service{store: store, logger: logger, onEvent: onEvent, now: time.Now}
}

func (s *Service) publish(kind, id string) {
	if s.onEvent != nil {
		s.onEvent(kind, id)
	}
}

// ListResult is the dashboard listing with summary counts.
type ListResult struct {
	Cards []models.Card `json:"cards"`
	Total int           `json:"total"`
	Due   int           `json:"due"`
}

// ListCards returns cards matching the optional content search, along
// with the total deck size and the number of cards due now.
func (s *Service) ListCards(_ context.Context, search string) ListResult {
	cards := s.store.Cards()
	now := s.now()

	res := ListResult{Total: len(cards), Due: s.store.DueCount(now)}
	if search == "" {
		res.Cards = cards
		return res
	}
	needle := strings.ToLower(search)
	res.Cards = []models.Card{}
	for _, c := range cards {
		if strings.Contains(strings.ToLower(c.Content), needle) {
			res.Cards = append(res.Cards, c)
		}
	}
	return res
}

// CreateCard validates and adds a manually entered card.
func (s *Service) CreateCard(_ context.Context, content, meaning, example string) (models.Card, error) {
	card := models.NewCard(strings.TrimSpace(content), strings.TrimSpace(meaning), strings.TrimSpace(example), s.now())
	if err := card.Validate(); err != nil {
		return models.Card{}, err
	}
	if err := s.store.Add(card); err != nil {
		return models.Card{}, err
	}
	s.logger.Info("card created", slog.String("id", card.ID))
	s.publish("created", card.ID)
	return card, nil
}

// GetCard returns a single card by id.
func (s *Service) GetCard(_ context.Context, id string) (models.Card, error) {
	return s.store.Get(id)
}

// UpdateCard edits the display fields of an existing card. Progress and
// schedule fields are owned by the review flow and left untouched.
func (s *Service) UpdateCard(_ context.Context, id, content, meaning, example string) (models.Card, error) {
	card, err := s.store.Get(id)
	if err != nil {
		return models.Card{}, err
	}
	card.Content = strings.TrimSpace(content)
	card.Meaning = strings.TrimSpace(meaning)
	card.Example = strings.TrimSpace(example)
	if err := card.Validate(); err != nil {
		return models.Card{}, err
	}
	if err := s.store.Update(card); err != nil {
		return models.Card{}, err
	}
	s.publish("updated", card.ID)
	return card, nil
}

// DeleteCards removes the cards with the given ids and returns how many
// were removed.
func (s *Service) DeleteCards(_ context.Context, ids []string) (int, error) {
	removed, err := s.store.Delete(ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cards deleted", slog.Int("count", len(removed)))
	for _, id := range removed {
		s.publish("deleted", id)
	}
	return len(removed), nil
}
