package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"postpilot/internal/api"

	"github.com/mark3labs/mcp-go/mcp"
)

type recorded struct {
	path  string
	query string
	body  map[string]any
}

func newTestServer(t *testing.T, routes map[string]string) (*Server, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		reqs = append(reqs, recorded{path: r.Method + " " + r.URL.Path, query: r.URL.RawQuery, body: body})
		mu.Unlock()

		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Draft not found"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(backend.Close)

	s := New(api.New(backend.URL, nil), "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	return s, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("expected content, got %+v", res)
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestToolsAreRegistered(t *testing.T) {
	s, _ := newTestServer(t, nil)
	msg := s.MCP().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, name := range []string{
		"generate_post", "regenerate_post", "list_drafts", "get_draft", "update_draft", "generate_image",
		"list_accounts", "linkedin_auth_url", "publish_post", "list_scheduled", "list_published", "get_analytics",
	} {
		if !strings.Contains(string(b), `"`+name+`"`) {
			t.Fatalf("expected tool %s in %s", name, b)
		}
	}
}

func TestGeneratePost(t *testing.T) {
	s, reqs := newTestServer(t, map[string]string{
		"POST /generate": `{"draft_id":7,"post_preview":{"hook":"Big news"}}`,
	})
	res, err := s.handleGeneratePost(context.Background(), callReq(map[string]any{"input": " launch "}))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, `"draft_id": 7`) || !strings.Contains(got, "Big news") {
		t.Fatalf("unexpected result %s", got)
	}
	if body := reqs()[0].body; body["user_input"] != "launch" {
		t.Fatalf("expected trimmed input, got %v", body)
	}
}

func TestRegeneratePost_AcceptsStringID(t *testing.T) {
	s, reqs := newTestServer(t, map[string]string{
		"POST /generate": `{"draft_id":8,"post_preview":{}}`,
	})
	if _, err := s.handleRegeneratePost(context.Background(), callReq(map[string]any{"draft_id": "7"})); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if body := reqs()[0].body; body["regenerate_draft_id"] != float64(7) {
		t.Fatalf("expected regenerate_draft_id 7, got %v", body)
	}
	if _, err := s.handleRegeneratePost(context.Background(), callReq(map[string]any{"draft_id": 1.5})); err == nil {
		t.Fatalf("expected error for a fractional id")
	}
}

func TestGetDraft_NotFoundIsToolError(t *testing.T) {
	s, _ := newTestServer(t, nil)
	res, err := s.handleGetDraft(context.Background(), callReq(map[string]any{"draft_id": float64(99)}))
	if err != nil {
		t.Fatalf("expected a tool error result, got %v", err)
	}
	if !res.IsError || resultText(t, res) != "get draft: Draft not found" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestGetDraft_IncludesFullText(t *testing.T) {
	s, _ := newTestServer(t, map[string]string{
		"GET /post-history/drafts/5": `{"id":5,"hook":"Hook","body":"Body","cta":"","hashtags":"#go"}`,
	})
	res, err := s.handleGetDraft(context.Background(), callReq(map[string]any{"draft_id": float64(5)}))
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, `"full_text": "Hook\n\nBody\n\n\n\n#go"`) {
		t.Fatalf("unexpected result %s", got)
	}
}

func TestUpdateDraft_SendsOnlyGivenFields(t *testing.T) {
	s, reqs := newTestServer(t, map[string]string{
		"PATCH /post-history/drafts/5": `{}`,
	})
	res, err := s.handleUpdateDraft(context.Background(), callReq(map[string]any{"draft_id": float64(5), "hook": "New", "cta": ""}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resultText(t, res) != "Draft updated." {
		t.Fatalf("unexpected result %+v", res)
	}
	body := reqs()[0].body
	if len(body) != 2 || body["hook"] != "New" || body["cta"] != "" {
		t.Fatalf("expected hook and cta only, got %v", body)
	}

	res, _ = s.handleUpdateDraft(context.Background(), callReq(map[string]any{"draft_id": float64(5)}))
	if !res.IsError {
		t.Fatalf("expected error result for empty update")
	}
}

func TestGenerateImage_NoURLReturnsMessage(t *testing.T) {
	s, _ := newTestServer(t, map[string]string{
		"POST /post-history/drafts/5/generate-image": `{"image_url":null,"message":"Quota exceeded"}`,
	})
	res, err := s.handleGenerateImage(context.Background(), callReq(map[string]any{"draft_id": float64(5)}))
	if err != nil || resultText(t, res) != "Quota exceeded" {
		t.Fatalf("unexpected result %+v %v", res, err)
	}
}

func TestPublishPost(t *testing.T) {
	s, reqs := newTestServer(t, map[string]string{
		"POST /publish": `{"status":"scheduled","scheduled_at":"2025-06-02T09:00:00Z","scheduled_post_id":4}`,
	})
	res, err := s.handlePublishPost(context.Background(), callReq(map[string]any{
		"draft_id":    float64(7),
		"account_id":  "3",
		"schedule_at": "2025-06-02T09:00:00Z",
	}))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, `"status": "scheduled"`) {
		t.Fatalf("unexpected result %s", got)
	}
	body := reqs()[0].body
	if body["draft_id"] != float64(7) || body["account_id"] != float64(3) || body["schedule_override"] != "2025-06-02T09:00:00Z" {
		t.Fatalf("unexpected publish body %v", body)
	}

	if _, err := s.handlePublishPost(context.Background(), callReq(map[string]any{"draft_id": float64(7)})); err == nil {
		t.Fatalf("expected error without account_id")
	}
	if _, err := s.handlePublishPost(context.Background(), callReq(map[string]any{"draft_id": float64(7), "account_id": float64(3), "schedule_at": "tomorrow"})); err == nil {
		t.Fatalf("expected error for a bad schedule_at")
	}
}

func TestLinkedInAuthURL(t *testing.T) {
	s, reqs := newTestServer(t, map[string]string{
		"GET /accounts/auth/linkedin": `{"authorization_url":"https://linkedin.example/auth","state":"x"}`,
	})
	res, err := s.handleLinkedInAuthURL(context.Background(), callReq(map[string]any{"account_type": "company"}))
	if err != nil || resultText(t, res) != "https://linkedin.example/auth" {
		t.Fatalf("unexpected result %+v %v", res, err)
	}
	if q := reqs()[0].query; q != "account_type=company" {
		t.Fatalf("unexpected query %q", q)
	}
}

func TestListsNeverReturnNull(t *testing.T) {
	s, reqs := newTestServer(t, map[string]string{
		"GET /post-history/drafts":    `null`,
		"GET /post-history/scheduled": `null`,
		"GET /post-history":           `null`,
		"GET /accounts":               `null`,
	})
	ctx := context.Background()
	for name, h := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"drafts":    s.handleListDrafts,
		"scheduled": s.handleListScheduled,
		"published": s.handleListPublished,
		"accounts":  s.handleListAccounts,
	} {
		res, err := h(ctx, callReq(map[string]any{"limit": float64(5)}))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := resultText(t, res); got != "[]" {
			t.Fatalf("%s: expected [], got %s", name, got)
		}
	}
	for _, r := range reqs() {
		if r.path == "GET /post-history/drafts" && r.query != "limit=5" {
			t.Fatalf("expected limit on drafts, got %q", r.query)
		}
	}
}
