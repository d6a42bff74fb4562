// Package storage provides the key-value blob store backing the deck.
//
// The deck is persisted as a small number of opaque JSON blobs (the card
// list and the review preferences). Two backends are available: flat
// files in a data directory, and a SQLite key-value table.
package storage

// Provider is the interface for blob persistence.
type Provider interface {
	// Read returns the blob stored under key. A missing key yields an
	// error satisfying errors.Is(err, os.ErrNotExist).
	Read(key string) ([]byte, error)
	// Write durably replaces the blob stored under key.
	Write(key string, value []byte) error
	// Close releases backend resources.
	Close() error
}
