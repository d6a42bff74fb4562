package review

import (
	"testing"
	"time"

	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/storage"
)

func testManager(t *testing.T) (*Manager, *deck.Store) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	store := deck.Open(fs, discardLogger())
	m := NewManager(store, nil, discardLogger(), nil)
	t.Cleanup(m.Stop)
	return m, store
}

func TestManagerLifecycle(t *testing.T) {
	m, store := testManager(t)
	_ = store.Add(models.NewCard("alpha", "", "", time.Now().Add(-time.Hour)))

	if _, ok := m.Current(); ok {
		t.Fatal("no session should be active initially")
	}

	s := m.Start()
	if s == nil {
		t.Fatal("Start returned nil")
	}
	if got, ok := m.Current(); !ok || got != s {
		t.Error("Current should return the started session")
	}
	if v := s.Snapshot(); v.QueueLength != 1 {
		t.Errorf("queue length = %d, want 1", v.QueueLength)
	}

	m.Stop()
	if _, ok := m.Current(); ok {
		t.Error("session should be destroyed after Stop")
	}
}

func TestManagerRestartReplacesSession(t *testing.T) {
	m, store := testManager(t)
	_ = store.Add(models.NewCard("alpha", "", "", time.Now()))

	first := m.Start()
	second := m.Start()
	if first == second {
		t.Error("restart should create a fresh session")
	}
	cur, ok := m.Current()
	if !ok || cur != second {
		t.Error("Current should be the latest session")
	}
}
