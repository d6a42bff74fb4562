// Package review implements the dwell-driven review session.
//
// A session is a snapshot of the deck ordered by next due time. While a
// card is displayed a one-second tick accumulates dwell time; once dwell
// reaches the configured trigger the review is committed — if the card
// is actually due. Viewing a future card never advances its progress.
package review

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/starford/memocurve/internal/enrich"
	"github.com/starford/memocurve/internal/models"
)

// Grace is the early-credit window: a review completed up to this long
// before the scheduled time still counts as on-time. Requiring the exact
// scheduled minute is hostile to real usage.
const Grace = 10 * time.Minute

// enrichTimeout bounds a single question-generation request.
const enrichTimeout = 30 * time.Second

// State describes the session with respect to the displayed card.
type State int

const (
	// StateIdle means there is no current card (empty queue).
	StateIdle State = iota
	// StateViewing means a card is shown and the dwell timer is running.
	StateViewing
	// StateRegistered means the current visit has been recorded (or
	// short-circuited) and the timer is stopped.
	StateRegistered
)

// String returns the state name used in API payloads.
func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateRegistered:
		return "registered"
	default:
		return "idle"
	}
}

// Session events delivered through the EventFunc callback.
const (
	EventRegistered  = "review.registered"
	EventCardUpdated = "card.updated"
)

// CardWriter persists a mutated card. *deck.Store satisfies this.
type CardWriter interface {
	Update(models.Card) error
}

// EventFunc is called after a session-driven card event.
type EventFunc func(event string, card models.Card)

// Session drives one review pass over the deck. All methods are safe for
// concurrent use; the dwell timer is advanced by Run's one-second tick.
type Session struct {
	mu sync.Mutex

	writer   CardWriter
	enricher enrich.Enricher
	prefs    models.Prefs
	logger   *slog.Logger
	onEvent  EventFunc

	queue      []models.Card
	pos        int
	dwell      int
	registered bool

	// inflight dedupes enrichment requests per (card, content) so two
	// overlapping generations cannot race on the cached question.
	inflight map[string]struct{}

	now func() time.Time
}

// NewSession creates a session over a snapshot of cards, ordered
// ascending by next due time. The snapshot is not re-sorted mid-session.
// onEvent may be nil.
func NewSession(cards []models.Card, prefs models.Prefs, writer CardWriter, enricher enrich.Enricher, logger *slog.Logger, onEvent EventFunc) *Session {
	queue := make([]models.Card, len(cards))
	for i, c := range cards {
		queue[i] = c.Clone()
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].NextDue.Before(queue[j].NextDue)
	})

	s := &Session{
		writer:   writer,
		enricher: enricher,
		prefs:    prefs,
		logger:   logger,
		onEvent:  onEvent,
		queue:    queue,
		inflight: make(map[string]struct{}),
		now:      time.Now,
	}
	if len(queue) > 0 {
		s.maybeEnrich(queue[0].Clone())
	}
	return s
}

// Run advances the dwell timer once per second until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick accumulates one second of dwell time for the current card and
// commits the review when the trigger threshold is crossed. The timer
// does not run once the visit is registered.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 || s.registered {
		return
	}
	s.dwell++
	if s.dwell >= s.prefs.ReviewDurationTrigger {
		s.commitLocked()
	}
}

// commitLocked records the current card's review if it is due within the
// grace window and the current stage has not already been completed.
// Either way the visit becomes registered and the card is written back;
// the write is idempotent when nothing was mutated.
func (s *Session) commitLocked() {
	now := s.now()
	card := &s.queue[s.pos]

	isDue := card.Due(now, Grace)
	// Guards a double-commit for the same stage: under the derived-state
	// invariant this is normally false, but a second invocation before
	// the first write lands must not double-increment.
	duplicate := len(card.CompletedAt) > card.ReviewCount

	if isDue && !duplicate {
		if err := card.CompleteStage(now); err != nil {
			// Fully reviewed card: registered, no further credit.
			s.logger.Debug("review: card fully reviewed", slog.String("id", card.ID))
		}
	}
	s.registered = true

	if err := s.writer.Update(card.Clone()); err != nil {
		s.logger.Warn("review: persist failed",
			slog.String("id", card.ID),
			slog.String("error", err.Error()))
	}
	if s.onEvent != nil {
		s.onEvent(EventRegistered, card.Clone())
	}
}

// Next advances to the following card; a no-op at the end of the queue.
func (s *Session) Next() { s.move(1) }

// Prev moves back one card; a no-op at the start of the queue.
func (s *Session) Prev() { s.move(-1) }

func (s *Session) move(delta int) {
	s.mu.Lock()
	np := s.pos + delta
	if np < 0 || np >= len(s.queue) {
		s.mu.Unlock()
		return
	}
	s.pos = np
	s.dwell = 0
	s.registered = false
	card := s.queue[np].Clone()
	s.mu.Unlock()

	s.maybeEnrich(card)
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case len(s.queue) == 0:
		return StateIdle
	case s.registered:
		return StateRegistered
	default:
		return StateViewing
	}
}

// Current returns the displayed card, if any.
func (s *Session) Current() (models.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return models.Card{}, false
	}
	return s.queue[s.pos].Clone(), true
}

// View is the session snapshot returned to the UI.
type View struct {
	State        string       `json:"state"`
	Position     int          `json:"position"`
	QueueLength  int          `json:"queue_length"`
	DwellSeconds int          `json:"dwell_seconds"`
	Trigger      int          `json:"trigger_seconds"`
	Registered   bool         `json:"registered"`
	Due          bool         `json:"due"`
	Card         *models.Card `json:"card,omitempty"`
}

// Snapshot reports the observable session state for the API layer.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		State:        s.stateLocked().String(),
		Position:     s.pos,
		QueueLength:  len(s.queue),
		DwellSeconds: s.dwell,
		Trigger:      s.prefs.ReviewDurationTrigger,
		Registered:   s.registered,
	}
	if len(s.queue) > 0 {
		card := s.queue[s.pos].Clone()
		v.Card = &card
		v.Due = card.Due(s.now(), Grace)
	}
	return v
}

// maybeEnrich issues one asynchronous question generation for a card
// whose cached question is empty, when the field configuration shows it.
// Requests are deduped per (id, content); a response arriving after the
// user navigated away is still applied (last-write-wins on the cache).
func (s *Session) maybeEnrich(card models.Card) {
	if card.AIQuestion != "" || !s.prefs.WantsAIQuestion() || s.enricher == nil {
		return
	}
	key := card.ID + "\x00" + card.Content

	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return
	}
	s.inflight[key] = struct{}{}
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
		defer cancel()

		q, err := s.enricher.GenerateQuestion(ctx, card.Content)

		s.mu.Lock()
		delete(s.inflight, key)
		if err != nil || q == "" || q == card.AIQuestion {
			s.mu.Unlock()
			if err != nil {
				s.logger.Warn("review: enrichment failed",
					slog.String("id", card.ID),
					slog.String("error", err.Error()))
			}
			return
		}
		updated := card
		for i := range s.queue {
			if s.queue[i].ID == card.ID {
				s.queue[i].AIQuestion = q
				updated = s.queue[i].Clone()
				break
			}
		}
		s.mu.Unlock()

		updated.AIQuestion = q
		if err := s.writer.Update(updated); err != nil {
			s.logger.Warn("review: enrichment persist failed",
				slog.String("id", card.ID),
				slog.String("error", err.Error()))
			return
		}
		if s.onEvent != nil {
			s.onEvent(EventCardUpdated, updated)
		}
	}()
}
