package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"postpilot/internal/model"
)

func TestDashboard_LoaderFallbacks(t *testing.T) {
	_, backend := newFakeBackend(t) // every route answers 500
	d := newTestDashboard(t, backend.URL)

	resp, page := d.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	mustContain(t, page,
		"No analytics yet.",
		"Could not load drafts.",
		"Could not load scheduled.",
		"Could not load published posts.",
		"Could not load accounts: no route for GET /accounts",
		`<option value="">— Select account —</option>`,
		`<section class="card" id="preview" hidden>`,
		`"hasDraft":false`,
	)
}

func TestDashboard_EmptyTexts(t *testing.T) {
	fb, backend := newFakeBackend(t)
	fb.emptyLists()
	d := newTestDashboard(t, backend.URL)

	_, page := d.get(t, "/")
	mustContain(t, page, "No drafts yet.", "No scheduled posts.", "No published posts yet.", "Best days: —. Best times: —.")
	mustNotContain(t, page, "Could not load")
}

func TestDashboard_Regions(t *testing.T) {
	fb, backend := newFakeBackend(t)
	fb.json("GET /accounts", 200, `[{"id":3,"display_name":"Ada Lovelace","account_type":"personal","is_active":true},{"id":4,"display_name":"Acme","account_type":"company","is_active":true}]`)

	var drafts []string
	for i := 12; i >= 1; i-- {
		drafts = append(drafts, fmt.Sprintf(`{"id":%d,"hook":"Hook %d"}`, i, i))
	}
	long := strings.Repeat("x", 85)
	drafts[0] = fmt.Sprintf(`{"id":12,"hook":%q}`, long)
	fb.json("GET /post-history/drafts", 200, "["+strings.Join(drafts, ",")+"]")

	fb.json("GET /post-history/scheduled", 200, `[{"id":1,"draft_id":9,"account_id":3,"scheduled_at":"2025-06-03T08:30:00","status":"pending"}]`)
	fb.json("GET /post-history", 200, `[{"id":1,"account_id":3,"content_text":"Shipped it","impressions":1200,"engagement_rate":0.0456,"published_at":"2025-01-02T15:04:05"},{"id":2,"account_id":3,"content_text":"`+strings.Repeat("y", 120)+`"}]`)
	fb.json("GET /analytics", 200, `{"total_posts":2,"total_impressions":1200,"avg_engagement_rate":3.14,"best_days":["Tuesday","Thursday"],"best_times":["09:00"]}`)
	d := newTestDashboard(t, backend.URL)

	_, page := d.get(t, "/")
	mustContain(t, page,
		`<option value="3">Ada Lovelace (personal)</option>`,
		`<option value="4">Acme (company)</option>`,
		strings.Repeat("x", 80)+"…",
		"Hook 3…",
		`@post('/actions/drafts/3/use')`,
		"Draft #9 → 2025-06-03T08:30:00 (pending)",
		"1/2/2025, 3:04:05 PM",
		"Impressions: 1200 · Engagement: 4.6%",
		strings.Repeat("y", 100)+"…",
		"Impressions: — · Engagement: —",
		"<strong>2</strong> posts",
		"<strong>3.1%</strong> avg engagement",
		"Best days: Tuesday, Thursday. Best times: 09:00.",
	)
	// Only the ten most recent drafts are listed.
	mustNotContain(t, page, "Hook 2…", "Draft #1<")
}

func TestRegionEndpoint(t *testing.T) {
	fb, backend := newFakeBackend(t)
	fb.emptyLists()
	fb.json("GET /accounts", 200, `[{"id":3,"display_name":"Ada","account_type":"personal"}]`)
	d := newTestDashboard(t, backend.URL)

	resp, body := d.get(t, "/regions/bogus")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown region, got %d", resp.StatusCode)
	}

	_, body = d.get(t, "/regions/drafts")
	mustContain(t, body, "No drafts yet.")
	if fb.calls("GET /accounts") != 0 {
		t.Fatalf("single region should not load accounts")
	}

	// A selection that still exists is kept.
	resp, body = d.getSignals(t, "/regions/accounts", `{"accountId":"3"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	mustContain(t, body, `<option value="3" selected>Ada (personal)</option>`)
	mustNotContain(t, body, `{"accountId":""}`)

	// A vanished selection clears the signal.
	_, body = d.getSignals(t, "/regions/accounts", `{"accountId":"99"}`)
	mustContain(t, body, `{"accountId":""}`)

	_, body = d.get(t, "/regions/all")
	mustContain(t, body, "No drafts yet.", "No scheduled posts.", "No published posts yet.", "Ada (personal)")
}

func TestRegionEndpoint_AccountsFailurePatchesConnectStatus(t *testing.T) {
	_, backend := newFakeBackend(t)
	d := newTestDashboard(t, backend.URL)
	_, body := d.get(t, "/regions/accounts")
	mustContain(t, body, `<p id="connect-status" class="status" aria-live="polite">Could not load accounts: no route for GET /accounts</p>`)
}

func TestDashboard_CallbackFlashShownOnce(t *testing.T) {
	fb, backend := newFakeBackend(t)
	fb.emptyLists()
	d := newTestDashboard(t, backend.URL)

	resp, _ := d.get(t, "/?connected=1")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	_, page := d.get(t, "/")
	mustContain(t, page, `<p id="connect-status" class="status" aria-live="polite">`+connectedStatus+`</p>`)

	_, page = d.get(t, "/")
	mustNotContain(t, page, connectedStatus)
}

func TestDashboard_AccountsFailureOverridesFlash(t *testing.T) {
	_, backend := newFakeBackend(t)
	d := newTestDashboard(t, backend.URL)

	d.get(t, "/?error=linkedin&message=Denied")
	_, page := d.get(t, "/")
	mustContain(t, page, "Could not load accounts:")
	mustNotContain(t, page, ">Denied<")
}

func TestProxy_StorageAndSetAPIURL(t *testing.T) {
	fb, backend := newFakeBackend(t)
	fb.routes["GET /storage/7"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "first")
	}
	d := newTestDashboard(t, backend.URL)

	resp, body := d.get(t, "/storage/7?t=123")
	if resp.StatusCode != http.StatusOK || body != "first" || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected proxy response %d %q", resp.StatusCode, body)
	}

	fb2, backend2 := newFakeBackend(t)
	fb2.routes["GET /storage/7"] = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "second")
	}
	d.srv.SetAPIURL(backend2.URL)
	if _, body = d.get(t, "/storage/7"); body != "second" {
		t.Fatalf("expected proxy to follow the new api url, got %q", body)
	}
	if d.srv.client.BaseURL() != backend2.URL {
		t.Fatalf("client base url not updated")
	}
}

func TestProxy_BackendDown(t *testing.T) {
	_, backend := newFakeBackend(t)
	d := newTestDashboard(t, backend.URL)
	backend.Close()

	resp, _ := d.get(t, "/storage/7")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestHistoryRowFor(t *testing.T) {
	s := &Server{loc: time.UTC}
	imp, rate := 10, 0.5
	row := s.historyRowFor(model.PublishedPost{ContentText: "short", Impressions: &imp, EngagementRate: &rate, PublishedAt: "not a date"})
	if row.Snippet != "short" || row.Impressions != "10" || row.Engagement != "50.0%" {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.Date != "not a date" {
		t.Fatalf("unparseable dates are shown as-is, got %q", row.Date)
	}
}

func TestTemplatesEscapeBackendText(t *testing.T) {
	_, backend := newFakeBackend(t)
	d := newTestDashboard(t, backend.URL)
	out, err := d.srv.renderTemplate("drafts", draftsVM{Rows: []draftRow{{ID: 1, Snippet: "<script>alert(1)</script>"}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") || !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped snippet, got %s", out)
	}
}

func TestRefreshHub(t *testing.T) {
	h := newRefreshHub()
	a, cancelA := h.subscribe()
	b, cancelB := h.subscribe()
	if h.count() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", h.count())
	}

	// Ticks coalesce: a slow subscriber keeps one pending tick.
	h.broadcast()
	h.broadcast()
	for _, ch := range []chan struct{}{a, b} {
		select {
		case <-ch:
		default:
			t.Fatalf("expected a tick")
		}
		select {
		case <-ch:
			t.Fatalf("expected ticks to coalesce")
		default:
		}
	}

	cancelA()
	if h.count() != 1 {
		t.Fatalf("expected 1 subscriber after cancel, got %d", h.count())
	}
	h.broadcast()
	if _, open := <-a; open {
		t.Fatalf("cancelled channel should be closed")
	}
	cancelB()
}

func TestEvents_PatchesLiveRegionsOnBroadcast(t *testing.T) {
	fb, backend := newFakeBackend(t)
	fb.emptyLists()
	d := newTestDashboard(t, backend.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, d.http.URL+"/events", nil)
	resp, err := d.client.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for d.srv.hub.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("events stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	d.srv.hub.broadcast()

	var got strings.Builder
	buf := make([]byte, 4096)
	for !strings.Contains(got.String(), "No published posts yet.") {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		if err != nil {
			t.Fatalf("stream ended before refresh: %v\n%s", err, got.String())
		}
	}
	mustContain(t, got.String(), "No scheduled posts.", "avg engagement")
	if fb.calls("GET /accounts") != 0 {
		t.Fatalf("live refresh should not reload accounts")
	}
}
