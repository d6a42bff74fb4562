package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/progress"
	"github.com/starford/memocurve/internal/testutil"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testServer(t *testing.T) (*Server, *deck.Store) {
	t.Helper()

	store := testutil.TestStore(t)
	editor := progress.NewEditor(store, testutil.Logger())

	srv := New(store, editor)
	srv.now = func() time.Time { return testNow }
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_cards":
		result, err = srv.listCards(ctx, req)
	case "list_due_cards":
		result, err = srv.listDueCards(ctx, req)
	case "create_card":
		result, err = srv.createCard(ctx, req)
	case "record_review":
		result, err = srv.recordReview(ctx, req)
	case "card_progress":
		result, err = srv.cardProgress(ctx, req)
	case "get_review_policy":
		result, err = srv.getReviewPolicy(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndListCards(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "create_card", map[string]interface{}{
		"content": "serendipity",
		"meaning": "a happy accident",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "created: serendipity") {
		t.Errorf("create result = %q", text)
	}
	if len(store.Cards()) != 1 {
		t.Fatalf("deck has %d cards", len(store.Cards()))
	}

	r = callTool(t, srv, "list_cards", map[string]interface{}{})
	text = resultText(r)
	if !strings.Contains(text, `"serendipity"`) || !strings.Contains(text, `"review_count": 0`) {
		t.Errorf("list result = %q", text)
	}
}

func TestCreateCardRequiresContent(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_card", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without content")
	}
}

func TestListDueCards(t *testing.T) {
	srv, store := testServer(t)

	// One card due two hours ago, one brand new (due in 30 minutes).
	if err := store.Add(models.NewCard("due-word", "", "", testNow.Add(-2*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(models.NewCard("fresh-word", "", "", testNow)); err != nil {
		t.Fatal(err)
	}

	text := resultText(callTool(t, srv, "list_due_cards", map[string]interface{}{}))
	if !strings.Contains(text, "due-word") {
		t.Errorf("due list missing due card: %q", text)
	}
	if strings.Contains(text, "fresh-word") {
		t.Errorf("due list includes not-due card: %q", text)
	}
}

func TestRecordReview(t *testing.T) {
	srv, store := testServer(t)

	card := models.NewCard("laconic", "", "", testNow.Add(-2*time.Hour))
	if err := store.Add(card); err != nil {
		t.Fatal(err)
	}

	text := resultText(callTool(t, srv, "record_review", map[string]interface{}{"id": card.ID}))
	if !strings.Contains(text, "recorded stage 1 of 12") {
		t.Errorf("record result = %q", text)
	}
	got, err := store.Get(card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ReviewCount != 1 {
		t.Errorf("ReviewCount = %d, want 1", got.ReviewCount)
	}

	// The next stage is an hour after creation, already past, so a second
	// review records immediately as well.
	text = resultText(callTool(t, srv, "record_review", map[string]interface{}{"id": card.ID}))
	if !strings.Contains(text, "recorded stage 2 of 12") {
		t.Errorf("second record result = %q", text)
	}
}

func TestRecordReviewNotDue(t *testing.T) {
	srv, store := testServer(t)

	card := models.NewCard("nascent", "", "", testNow)
	if err := store.Add(card); err != nil {
		t.Fatal(err)
	}

	text := resultText(callTool(t, srv, "record_review", map[string]interface{}{"id": card.ID}))
	if !strings.Contains(text, "not due") {
		t.Errorf("result = %q, want not-due message", text)
	}
	got, _ := store.Get(card.ID)
	if got.ReviewCount != 0 {
		t.Errorf("ReviewCount = %d, want 0 (no mutation)", got.ReviewCount)
	}
}

func TestRecordReviewMissingCard(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "record_review", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown card")
	}
}

func TestCardProgress(t *testing.T) {
	srv, store := testServer(t)

	card := models.NewCard("halcyon", "", "", testNow)
	if err := store.Add(card); err != nil {
		t.Fatal(err)
	}

	text := resultText(callTool(t, srv, "card_progress", map[string]interface{}{"id": card.ID}))
	if !strings.Contains(text, "Short-term consolidation (30m)") {
		t.Errorf("progress result missing first stage label: %q", text)
	}
}

func TestGetReviewPolicy(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "get_review_policy", map[string]interface{}{}))
	if !strings.Contains(text, "12-stage") || !strings.Contains(text, "strictly in order") {
		t.Errorf("policy text = %q", text)
	}
}
