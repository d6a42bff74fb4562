package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const promptTemplate = `Generate a single, short, engaging flashcard question for the learning content: %q.

Rules:
1. If it's a single word, ask for its meaning or a synonym context.
2. If it's a phrase, ask for its usage or definition.
3. Do NOT reveal the content %q in the question if possible (use placeholders like 'this word' or '___').
4. Keep it under 20 words.
5. Output ONLY the question text.`

// Gemini generates questions via the Gemini API. All failures degrade to
// the deterministic fallback; GenerateQuestion never returns an error.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// Verify Gemini satisfies Enricher at compile time.
var _ Enricher = (*Gemini)(nil)

// NewGemini creates a Gemini-backed enricher.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("enrich: create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model, logger: logger}, nil
}

// GenerateQuestion asks the model for a question about content.
func (g *Gemini) GenerateQuestion(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, content, content)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.Warn("enrich: generation failed, using fallback",
			slog.String("error", err.Error()))
		return Fallback(content), nil
	}
	q := strings.TrimSpace(resp.Text())
	if q == "" {
		g.logger.Warn("enrich: empty response, using fallback")
		return Fallback(content), nil
	}
	return q, nil
}
