package deck

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/storage"
)

func TestWatchReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	store := Open(fs, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	go func() {
		_ = Watch(ctx, store, fs, discardLogger(), func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	// External edit: write the cards blob via a second provider so the
	// store's own checksum does not match.
	other, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	data, _ := json.Marshal([]models.Card{models.NewCard("from-disk", "", "", testNow)})
	if err := other.Write(KeyCards, data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload callback")
	}

	cards := store.Cards()
	if len(cards) != 1 || cards[0].Content != "from-disk" {
		t.Errorf("unexpected cards after watch reload: %+v", cards)
	}
}
