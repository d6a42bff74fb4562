// Package enrich supplies optional AI-generated flashcard questions.
//
// Enrichment is strictly best-effort: implementations log failures and
// return a deterministic fallback question instead of an error, so
// callers never have to branch on provider availability.
package enrich

import (
	"context"
	"fmt"
)

// Enricher produces a review question for a card's content.
type Enricher interface {
	GenerateQuestion(ctx context.Context, content string) (string, error)
}

// Fallback is the deterministic question used when generation fails.
func Fallback(content string) string {
	return fmt.Sprintf("What does %q mean?", content)
}

// Static is the Enricher used when no provider is configured. It returns
// a templated prompt without any network access.
type Static struct{}

// GenerateQuestion returns a fixed definition prompt.
func (Static) GenerateQuestion(_ context.Context, content string) (string, error) {
	return fmt.Sprintf("Define: %s", content), nil
}
