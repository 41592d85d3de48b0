package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"postpilot/internal/model"
)

func TestGenerate_SendsNullInputWhenBlank(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"draft_id":7,"post_preview":{"hook":"H","body":"B","cta":"C","hashtags":"#x"}}`)
	}))
	defer srv.Close()

	res, err := New(srv.URL+"/", nil).Generate(context.Background(), "   ")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := got["user_input"]; ok {
		t.Fatalf("expected blank input to be omitted, got %v", got)
	}
	if res.DraftID != 7 || res.PostPreview.Hook != "H" || res.PostPreview.Hashtags != "#x" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ImageURL != nil {
		t.Fatalf("expected no image url")
	}
}

func TestRegenerate_SendsDraftID(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"draft_id":8,"post_preview":{}}`)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, nil).Regenerate(context.Background(), 3); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if got["regenerate_draft_id"] != float64(3) {
		t.Fatalf("expected regenerate_draft_id=3, got %v", got)
	}
}

func TestErrors_SurfaceDetailVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Draft not found"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).GetDraft(context.Background(), 99)
	if err == nil || err.Error() != "Draft not found" {
		t.Fatalf("expected detail message, got %v", err)
	}
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound")
	}
}

func TestErrors_FallBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `<html>bad gateway</html>`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).ListAccounts(context.Background())
	if err == nil || err.Error() != "Bad Gateway" {
		t.Fatalf("expected status text, got %v", err)
	}
}

func TestErrors_StructuredDetailIsCompacted(t *testing.T) {
	got := detailFromBody([]byte(`{"detail": [ {"loc": ["body"], "msg": "bad"} ]}`))
	if got != `[{"loc":["body"],"msg":"bad"}]` {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestUpdateDraft_AcceptsEmptyAck(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/post-history/drafts/4" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook, body, cta, tags := "h", "b", "", "#t"
	_, err := New(srv.URL, nil).UpdateDraft(context.Background(), 4, model.DraftPatch{Hook: &hook, Body: &body, CTA: &cta, Hashtags: &tags})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got["hook"] != "h" || got["cta"] != "" || got["hashtags"] != "#t" {
		t.Fatalf("unexpected patch body: %v", got)
	}
}

func TestLinkedInAuthURL_QueryAndLimit(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		switch r.URL.Path {
		case "/accounts/auth/linkedin":
			_, _ = io.WriteString(w, `{"authorization_url":"https://linkedin.example/auth"}`)
		default:
			_, _ = io.WriteString(w, `[]`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	u, err := c.LinkedInAuthURL(context.Background(), model.AccountCompany)
	if err != nil || u.AuthorizationURL != "https://linkedin.example/auth" {
		t.Fatalf("unexpected auth url %+v err=%v", u, err)
	}
	if _, err := c.ListPublished(context.Background(), 5); err != nil {
		t.Fatalf("list published: %v", err)
	}
	if paths[0] != "/accounts/auth/linkedin?account_type=company" || paths[1] != "/post-history?limit=5" {
		t.Fatalf("unexpected request paths: %v", paths)
	}
}
