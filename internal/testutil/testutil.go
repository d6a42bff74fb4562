// Package testutil provides shared test helpers for setting up decks and storage.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/storage"
)

// Logger returns a structured logger that discards all output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestProvider creates a temporary deck directory with a storage.Provider.
func TestProvider(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestStore opens a deck store over a temporary directory that is
// automatically cleaned up.
func TestStore(t *testing.T) *deck.Store {
	t.Helper()
	_, provider := TestProvider(t)
	return deck.Open(provider, Logger())
}
