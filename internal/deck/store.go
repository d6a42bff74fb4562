// Package deck owns the in-memory card collection and review preferences
// and persists them through a storage.Provider as opaque JSON blobs.
package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/starford/memocurve/internal/apperr"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/storage"
)

// Blob keys used with the storage provider.
const (
	KeyCards = "cards"
	KeyPrefs = "prefs"
)

// Store is the single owner of the card collection. Every mutation is a
// synchronous read-modify-write that persists the full list, so each
// provider write is last-write-wins per call.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	logger   *slog.Logger

	cards []models.Card
	prefs models.Prefs

	// sums records the digest of the last blob written per key so the
	// watcher can tell our own saves apart from external edits.
	sums map[string]string
}

// Open loads the deck from the provider. Corrupt or missing blobs fall
// back to an empty collection and default preferences; neither is fatal.
func Open(provider storage.Provider, logger *slog.Logger) *Store {
	s := &Store{
		provider: provider,
		logger:   logger,
		cards:    []models.Card{},
		prefs:    models.DefaultPrefs(),
		sums:     make(map[string]string),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s
}

func (s *Store) loadLocked() {
	if data, err := s.provider.Read(KeyCards); err == nil {
		var cards []models.Card
		if jsonErr := json.Unmarshal(data, &cards); jsonErr != nil {
			s.logger.Warn("deck: corrupt card blob, starting empty",
				slog.String("error", jsonErr.Error()))
		} else {
			s.cards = cards
			s.sums[KeyCards] = sum(data)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("deck: read cards failed, starting empty",
			slog.String("error", err.Error()))
	}

	if data, err := s.provider.Read(KeyPrefs); err == nil {
		var prefs models.Prefs
		if jsonErr := json.Unmarshal(data, &prefs); jsonErr != nil {
			s.logger.Warn("deck: corrupt prefs blob, using defaults",
				slog.String("error", jsonErr.Error()))
		} else if valErr := prefs.Validate(); valErr != nil {
			s.logger.Warn("deck: invalid persisted prefs, using defaults",
				slog.String("error", valErr.Error()))
		} else {
			s.prefs = prefs
			s.sums[KeyPrefs] = sum(data)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("deck: read prefs failed, using defaults",
			slog.String("error", err.Error()))
	}
}

// Cards returns a deep snapshot of the collection.
func (s *Store) Cards() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Card, len(s.cards))
	for i, c := range s.cards {
		out[i] = c.Clone()
	}
	return out
}

// Get returns the card with the given id.
func (s *Store) Get(id string) (models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return models.Card{}, fmt.Errorf("deck: card %s: %w", id, apperr.ErrNotFound)
}

// Add appends a new card and persists the collection.
func (s *Store) Add(card models.Card) error {
	return s.AddAll([]models.Card{card})
}

// AddAll appends cards in one persisted batch (bulk import path).
func (s *Store) AddAll(cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, cards...)
	return s.saveCardsLocked()
}

// Update replaces the card with the same id. Replace-by-id keeps every
// provider write trivially last-write-wins.
func (s *Store) Update(card models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cards {
		if c.ID == card.ID {
			s.cards[i] = card.Clone()
			return s.saveCardsLocked()
		}
	}
	return fmt.Errorf("deck: card %s: %w", card.ID, apperr.ErrNotFound)
}

// Delete removes all cards whose ids are listed and returns the ids
// actually removed. Unknown ids are ignored.
func (s *Store) Delete(ids []string) ([]string, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cards[:0]
	var removed []string
	for _, c := range s.cards {
		if _, ok := drop[c.ID]; ok {
			removed = append(removed, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	s.cards = kept
	return removed, s.saveCardsLocked()
}

// Prefs returns the current review preferences.
func (s *Store) Prefs() models.Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SavePrefs validates and persists new preferences.
func (s *Store) SavePrefs(p models.Prefs) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("deck: marshal prefs: %w", err)
	}
	if err := s.provider.Write(KeyPrefs, data); err != nil {
		return err
	}
	s.sums[KeyPrefs] = sum(data)
	return nil
}

// DueCount returns the number of cards whose next review time has passed.
func (s *Store) DueCount(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.cards {
		if !c.FullyReviewed() && !c.NextDue.After(now) {
			n++
		}
	}
	return n
}

// Reload re-reads the blobs from the provider, skipping blobs whose
// content matches what this store last wrote (our own saves echoed back
// by the file watcher). It reports whether anything changed.
func (s *Store) Reload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	if data, err := s.provider.Read(KeyCards); err == nil && sum(data) != s.sums[KeyCards] {
		var cards []models.Card
		if jsonErr := json.Unmarshal(data, &cards); jsonErr != nil {
			s.logger.Warn("deck: reload skipped corrupt card blob",
				slog.String("error", jsonErr.Error()))
		} else {
			s.cards = cards
			s.sums[KeyCards] = sum(data)
			changed = true
		}
	}
	if data, err := s.provider.Read(KeyPrefs); err == nil && sum(data) != s.sums[KeyPrefs] {
		var prefs models.Prefs
		if jsonErr := json.Unmarshal(data, &prefs); jsonErr == nil && prefs.Validate() == nil {
			s.prefs = prefs
			s.sums[KeyPrefs] = sum(data)
			changed = true
		}
	}
	return changed
}

func (s *Store) saveCardsLocked() error {
	data, err := json.Marshal(s.cards)
	if err != nil {
		return fmt.Errorf("deck: marshal cards: %w", err)
	}
	if err := s.provider.Write(KeyCards, data); err != nil {
		return err
	}
	s.sums[KeyCards] = sum(data)
	return nil
}

// sum returns the hex-encoded SHA-256 digest of a blob.
func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
