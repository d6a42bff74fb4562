package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/sse"
	"github.com/starford/memocurve/internal/testutil"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testPoller(t *testing.T) (*Poller, *deck.Store, chan []byte) {
	t.Helper()
	store := testutil.TestStore(t)
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	ch := broker.Subscribe()

	// Reminders are opt-in; a fresh deck defaults to none.
	prefs := store.Prefs()
	prefs.ReminderMethod = models.ReminderPush
	if err := store.SavePrefs(prefs); err != nil {
		t.Fatalf("SavePrefs: %v", err)
	}

	p := NewPoller(store, broker, time.Minute, testutil.Logger())
	p.now = func() time.Time { return testNow }
	return p, store, ch
}

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return ""
	}
}

func expectSilence(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected event %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPollPublishesWhenDue(t *testing.T) {
	p, store, ch := testPoller(t)

	card := models.NewCard("sagacious", "", "", testNow.Add(-2*time.Hour))
	if err := store.Add(card); err != nil {
		t.Fatalf("Add: %v", err)
	}

	p.Poll()
	msg := recv(t, ch)
	if !strings.Contains(msg, "event: review.due") {
		t.Errorf("event = %q, want review.due", msg)
	}
	if !strings.Contains(msg, `"count":1`) {
		t.Errorf("event = %q, want count 1", msg)
	}
}

func TestPollHonorsDisabledReminders(t *testing.T) {
	p, store, ch := testPoller(t)

	if err := store.Add(models.NewCard("sagacious", "", "", testNow.Add(-2*time.Hour))); err != nil {
		t.Fatalf("Add: %v", err)
	}

	prefs := store.Prefs()
	prefs.ReminderMethod = models.ReminderNone
	if err := store.SavePrefs(prefs); err != nil {
		t.Fatalf("SavePrefs: %v", err)
	}

	// A due card with reminders off must not produce an event.
	p.Poll()
	expectSilence(t, ch)

	// Switching reminders back on picks the due card up again.
	prefs.ReminderMethod = models.ReminderEmail
	if err := store.SavePrefs(prefs); err != nil {
		t.Fatalf("SavePrefs: %v", err)
	}
	p.Poll()
	if msg := recv(t, ch); !strings.Contains(msg, `"count":1`) {
		t.Errorf("event = %q, want count 1", msg)
	}
}

func TestPollSilentWhenNothingDue(t *testing.T) {
	p, store, ch := testPoller(t)

	// A fresh card is not due for 30 minutes.
	if err := store.Add(models.NewCard("nascent", "", "", testNow)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	p.Poll()
	expectSilence(t, ch)
}

func TestPollSuppressesRepeats(t *testing.T) {
	p, store, ch := testPoller(t)

	if err := store.Add(models.NewCard("alpha", "", "", testNow.Add(-2*time.Hour))); err != nil {
		t.Fatalf("Add: %v", err)
	}

	p.Poll()
	recv(t, ch)

	// Same due count again must stay quiet.
	p.Poll()
	expectSilence(t, ch)

	// A newly due card changes the count and fires again.
	if err := store.Add(models.NewCard("beta", "", "", testNow.Add(-3*time.Hour))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	p.Poll()
	if msg := recv(t, ch); !strings.Contains(msg, `"count":2`) {
		t.Errorf("event = %q, want count 2", msg)
	}
}
