// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes MemoCurve tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/progress"
	"github.com/starford/memocurve/internal/review"
)

// Server wraps the MCP server with MemoCurve tools.
type Server struct {
	mcp    *server.MCPServer
	store  *deck.Store
	editor *progress.Editor
	now    func() time.Time
}

// New creates a new MCP server with all MemoCurve tools registered.
func New(store *deck.Store, editor *progress.Editor) *Server {
	s := &Server{store: store, editor: editor, now: time.Now}

	s.mcp = server.NewMCPServer(
		"MemoCurve",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_cards",
		mcp.WithDescription("List all flashcards with their review progress."),
	), s.listCards)

	s.mcp.AddTool(mcp.NewTool("list_due_cards",
		mcp.WithDescription("List the cards whose next review stage is due right now."),
	), s.listDueCards)

	s.mcp.AddTool(mcp.NewTool("create_card",
		mcp.WithDescription("Create a new flashcard. The card gets a fresh 12-stage "+
			"review schedule anchored at the current time. Read the review policy "+
			"first via the get_review_policy tool or the memocurve://review-policy resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The word or phrase to memorise")),
		mcp.WithString("meaning", mcp.Description("Optional meaning or definition")),
		mcp.WithString("example", mcp.Description("Optional example sentence")),
	), s.createCard)

	s.mcp.AddTool(mcp.NewTool("record_review",
		mcp.WithDescription("Record a completed review for a card. The next pending "+
			"stage is completed; cards that are not yet due are left unchanged."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
	), s.recordReview)

	s.mcp.AddTool(mcp.NewTool("card_progress",
		mcp.WithDescription("Show the 12-stage review chart for a card."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
	), s.cardProgress)

	s.mcp.AddTool(mcp.NewTool("get_review_policy",
		mcp.WithDescription("Returns the fixed forgetting-curve schedule and the rules "+
			"for recording reviews. Call this before using record_review."),
	), s.getReviewPolicy)

	// Resource: review policy contract.
	s.mcp.AddResource(
		mcp.NewResource("memocurve://review-policy", "Review Policy",
			mcp.WithResourceDescription("The fixed 12-stage review schedule and commit rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readReviewPolicyResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// cardSummary is the compact listing shape returned by the list tools.
type cardSummary struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Meaning     string    `json:"meaning,omitempty"`
	ReviewCount int       `json:"review_count"`
	NextDue     time.Time `json:"next_due"`
	Due         bool      `json:"due"`
	Completed   bool      `json:"completed"`
}

func (s *Server) summarize(c models.Card) cardSummary {
	return cardSummary{
		ID:          c.ID,
		Content:     c.Content,
		Meaning:     c.Meaning,
		ReviewCount: c.ReviewCount,
		NextDue:     c.NextDue,
		Due:         c.Due(s.now(), review.Grace),
		Completed:   c.FullyReviewed(),
	}
}

func (s *Server) listCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards := s.store.Cards()
	summaries := make([]cardSummary, 0, len(cards))
	for _, c := range cards {
		summaries = append(summaries, s.summarize(c))
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDueCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := s.now()
	var summaries []cardSummary
	for _, c := range s.store.Cards() {
		if !c.FullyReviewed() && c.Due(now, review.Grace) {
			summaries = append(summaries, s.summarize(c))
		}
	}
	if len(summaries) == 0 {
		return mcp.NewToolResultText("no cards due"), nil
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meaning := ""
	if v, err := req.RequireString("meaning"); err == nil {
		meaning = v
	}
	example := ""
	if v, err := req.RequireString("example"); err == nil {
		example = v
	}

	card := models.NewCard(content, meaning, example, s.now())
	if err := card.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.Add(card); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", card.Content, card.ID)), nil
}

func (s *Server) recordReview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if card.FullyReviewed() {
		return mcp.NewToolResultText("all stages already completed"), nil
	}
	if !card.Due(s.now(), review.Grace) {
		return mcp.NewToolResultText(fmt.Sprintf("card is not due until %s, nothing recorded",
			card.NextDue.Format(time.RFC3339))), nil
	}

	updated, err := s.editor.ToggleStage(id, card.NextStageIndex(), true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("recorded stage %d of %d for %q",
		updated.ReviewCount, len(updated.Schedule), updated.Content)), nil
}

func (s *Server) cardProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(progress.StageView(card, s.now()), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getReviewPolicy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ReviewPolicyContract), nil
}

func (s *Server) readReviewPolicyResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "memocurve://review-policy",
			MIMEType: "text/markdown",
			Text:     ReviewPolicyContract,
		},
	}, nil
}
