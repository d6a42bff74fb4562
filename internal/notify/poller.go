// Package notify polls the deck for due cards and pushes reminder events
// to connected clients.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/sse"
)

// DefaultInterval is how often the poller checks for due cards when the
// config does not say otherwise.
const DefaultInterval = 60 * time.Second

// Poller periodically counts due cards and publishes a review.due event
// when the count rises above zero or changes.
type Poller struct {
	store    *deck.Store
	broker   *sse.Broker
	logger   *slog.Logger
	interval time.Duration

	lastDue int
	now     func() time.Time
}

// NewPoller creates a due-card poller. A non-positive interval falls back
// to DefaultInterval.
func NewPoller(store *deck.Store, broker *sse.Broker, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		store:    store,
		broker:   broker,
		logger:   logger,
		interval: interval,
		lastDue:  -1,
		now:      time.Now,
	}
}

// Run blocks, polling until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll performs a single due check. An event goes out only when cards are
// due and the count differs from the previous poll, so an untouched deck
// does not spam reminders every tick. Decks with reminders switched off
// stay quiet entirely.
func (p *Poller) Poll() {
	if p.store.Prefs().ReminderMethod == models.ReminderNone {
		return
	}
	due := p.store.DueCount(p.now())
	if due > 0 && due != p.lastDue {
		p.logger.Info("cards due for review", slog.Int("count", due))
		p.broker.Publish(sse.Event{Type: "review.due", Data: map[string]int{"count": due}})
	}
	p.lastDue = due
}
