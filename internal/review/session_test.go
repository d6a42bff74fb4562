package review

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/schedule"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeWriter records every persisted card.
type fakeWriter struct {
	mu      sync.Mutex
	updates []models.Card
}

func (f *fakeWriter) Update(c models.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, c)
	return nil
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeWriter) last() models.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[len(f.updates)-1]
}

// fakeEnricher returns a canned question and signals each call.
type fakeEnricher struct {
	question string
	calls    chan string
}

func (f *fakeEnricher) GenerateQuestion(_ context.Context, content string) (string, error) {
	if f.calls != nil {
		f.calls <- content
	}
	return f.question, nil
}

func testPrefs(trigger int) models.Prefs {
	p := models.DefaultPrefs()
	p.ReviewDurationTrigger = trigger
	p.FrontFields = []models.Field{models.FieldContent} // no enrichment unless a test opts in
	return p
}

// dueCard returns a card whose first stage is already due at testNow.
func dueCard(content string) models.Card {
	return models.NewCard(content, "", "", testNow.Add(-time.Hour))
}

func newTestSession(cards []models.Card, prefs models.Prefs, w *fakeWriter) *Session {
	s := NewSession(cards, prefs, w, nil, discardLogger(), nil)
	s.now = func() time.Time { return testNow }
	return s
}

func TestEmptyQueueIsIdle(t *testing.T) {
	s := newTestSession(nil, testPrefs(10), &fakeWriter{})
	if s.State() != StateIdle {
		t.Errorf("state = %v, want idle", s.State())
	}
	s.Tick() // must not panic or mutate
	if v := s.Snapshot(); v.Card != nil || v.State != "idle" {
		t.Errorf("snapshot = %+v", v)
	}
}

func TestQueueSortedByNextDue(t *testing.T) {
	later := models.NewCard("later", "", "", testNow)
	sooner := dueCard("sooner")
	s := newTestSession([]models.Card{later, sooner}, testPrefs(10), &fakeWriter{})

	cur, ok := s.Current()
	if !ok || cur.Content != "sooner" {
		t.Errorf("first card = %+v, want the earlier-due one", cur)
	}
}

func TestDwellThresholdCommitsDueCard(t *testing.T) {
	w := &fakeWriter{}
	s := newTestSession([]models.Card{dueCard("word")}, testPrefs(10), w)

	for i := 0; i < 9; i++ {
		s.Tick()
	}
	if s.State() != StateViewing {
		t.Fatalf("state after 9s = %v, want viewing", s.State())
	}
	if w.count() != 0 {
		t.Fatalf("persisted %d cards before threshold", w.count())
	}

	s.Tick() // 10th second crosses the trigger
	if s.State() != StateRegistered {
		t.Fatalf("state = %v, want registered", s.State())
	}
	if w.count() != 1 {
		t.Fatalf("persisted %d cards, want exactly 1", w.count())
	}
	got := w.last()
	if got.ReviewCount != 1 || len(got.CompletedAt) != 1 {
		t.Errorf("persisted card not advanced: count=%d completions=%d", got.ReviewCount, len(got.CompletedAt))
	}
	if !got.NextDue.Equal(got.Schedule[1]) {
		t.Errorf("next due = %v, want schedule[1]", got.NextDue)
	}
}

func TestTimerStopsOnceRegistered(t *testing.T) {
	w := &fakeWriter{}
	s := newTestSession([]models.Card{dueCard("word")}, testPrefs(2), w)

	for i := 0; i < 10; i++ {
		s.Tick()
	}
	if w.count() != 1 {
		t.Errorf("persisted %d cards, want 1 (no re-commit while registered)", w.count())
	}
	if v := s.Snapshot(); v.DwellSeconds != 2 {
		t.Errorf("dwell = %d, want frozen at trigger", v.DwellSeconds)
	}
}

func TestGraceBoundary(t *testing.T) {
	tests := []struct {
		name       string
		dueOffset  time.Duration
		wantCredit bool
	}{
		{"inside grace", Grace - time.Millisecond, true},
		{"outside grace", Grace + time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := models.NewCard("word", "", "", testNow)
			card.NextDue = testNow.Add(tt.dueOffset)

			w := &fakeWriter{}
			s := newTestSession([]models.Card{card}, testPrefs(1), w)
			s.Tick()

			if s.State() != StateRegistered {
				t.Fatalf("state = %v, want registered either way", s.State())
			}
			if w.count() != 1 {
				t.Fatalf("persisted %d cards, want 1 (write-back is unconditional)", w.count())
			}
			got := w.last()
			if tt.wantCredit && got.ReviewCount != 1 {
				t.Errorf("review not credited inside grace")
			}
			if !tt.wantCredit && (got.ReviewCount != 0 || len(got.CompletedAt) != 0) {
				t.Errorf("preview of a future card must not advance progress")
			}
		})
	}
}

func TestDoubleCommitIsNoop(t *testing.T) {
	w := &fakeWriter{}
	s := newTestSession([]models.Card{dueCard("word")}, testPrefs(1), w)

	s.Tick()
	s.mu.Lock()
	s.commitLocked() // direct second invocation, as if two triggers raced
	s.mu.Unlock()

	if got := w.last(); got.ReviewCount != 1 || len(got.CompletedAt) != 1 {
		t.Errorf("double commit mutated twice: count=%d completions=%d", got.ReviewCount, len(got.CompletedAt))
	}
}

func TestDuplicateNodeGuard(t *testing.T) {
	// A card whose completion history is ahead of its counter must not
	// be advanced again for the same stage.
	card := dueCard("word")
	card.CompletedAt = []time.Time{testNow}
	card.ReviewCount = 0 // deliberately inconsistent

	w := &fakeWriter{}
	s := newTestSession([]models.Card{card}, testPrefs(1), w)
	s.Tick()

	got := w.last()
	if len(got.CompletedAt) != 1 {
		t.Errorf("completions = %d, duplicate guard failed", len(got.CompletedAt))
	}
	if s.State() != StateRegistered {
		t.Errorf("state = %v, want registered", s.State())
	}
}

func TestFullyReviewedCardNoop(t *testing.T) {
	card := dueCard("word")
	for i := 0; i < schedule.StageCount; i++ {
		_ = card.CompleteStage(testNow.Add(-time.Minute))
	}

	w := &fakeWriter{}
	s := newTestSession([]models.Card{card}, testPrefs(1), w)
	s.Tick()

	got := w.last()
	if got.ReviewCount != schedule.StageCount {
		t.Errorf("review count = %d, want unchanged %d", got.ReviewCount, schedule.StageCount)
	}
	if s.State() != StateRegistered {
		t.Errorf("state = %v, want registered", s.State())
	}
}

func TestNavigationResetsDwellAndClampsAtEnds(t *testing.T) {
	w := &fakeWriter{}
	cards := []models.Card{dueCard("a"), dueCard("b")}
	s := newTestSession(cards, testPrefs(10), w)

	s.Prev() // already at start: no-op
	if v := s.Snapshot(); v.Position != 0 {
		t.Errorf("position = %d after Prev at start", v.Position)
	}

	s.Tick()
	s.Tick()
	s.Next()
	v := s.Snapshot()
	if v.Position != 1 {
		t.Fatalf("position = %d, want 1", v.Position)
	}
	if v.DwellSeconds != 0 || v.Registered {
		t.Errorf("dwell/registered not reset: %+v", v)
	}
	if w.count() != 0 {
		t.Errorf("abandoned dwell must carry no credit, got %d writes", w.count())
	}

	s.Next() // at end: no-op
	if v := s.Snapshot(); v.Position != 1 {
		t.Errorf("position = %d after Next at end", v.Position)
	}
}

func TestEnrichmentWritesBackQuestion(t *testing.T) {
	w := &fakeWriter{}
	card := dueCard("laconic")
	prefs := testPrefs(10)
	prefs.FrontFields = []models.Field{models.FieldAIQuestion}

	events := make(chan string, 10)
	enricher := &fakeEnricher{question: "Which word means using few words?"}
	s := NewSession([]models.Card{card}, prefs, w, enricher, discardLogger(), func(event string, _ models.Card) {
		events <- event
	})
	s.now = func() time.Time { return testNow }

	select {
	case ev := <-events:
		if ev != EventCardUpdated {
			t.Fatalf("event = %q, want %q", ev, EventCardUpdated)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for enrichment event")
	}

	got := w.last()
	if got.AIQuestion != "Which word means using few words?" {
		t.Errorf("cached question = %q", got.AIQuestion)
	}
	cur, _ := s.Current()
	if cur.AIQuestion != got.AIQuestion {
		t.Errorf("queue copy not updated: %q", cur.AIQuestion)
	}
}

func TestEnrichmentSkippedWhenCachedOrUnwanted(t *testing.T) {
	calls := make(chan string, 10)
	enricher := &fakeEnricher{question: "q", calls: calls}

	cached := dueCard("cached")
	cached.AIQuestion = "already here"
	prefs := testPrefs(10)
	prefs.FrontFields = []models.Field{models.FieldAIQuestion}
	_ = NewSession([]models.Card{cached}, prefs, &fakeWriter{}, enricher, discardLogger(), nil)

	plain := dueCard("plain")
	noAI := testPrefs(10)
	noAI.FrontFields = []models.Field{models.FieldContent}
	noAI.BackFields = []models.Field{models.FieldMeaning}
	_ = NewSession([]models.Card{plain}, noAI, &fakeWriter{}, enricher, discardLogger(), nil)

	select {
	case content := <-calls:
		t.Fatalf("unexpected enrichment request for %q", content)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	w := &fakeWriter{}
	s := newTestSession([]models.Card{dueCard("word")}, testPrefs(1), w)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for s.State() != StateRegistered {
		select {
		case <-deadline:
			t.Fatal("session never registered the review")
		case <-time.After(50 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
