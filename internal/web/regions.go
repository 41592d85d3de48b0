package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"postpilot/internal/api"
	"postpilot/internal/model"

	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"
)

const (
	regionAccounts  = "accounts"
	regionAnalytics = "analytics"
	regionDrafts    = "drafts"
	regionScheduled = "scheduled"
	regionHistory   = "history"
)

var allRegions = []string{regionAccounts, regionAnalytics, regionDrafts, regionScheduled, regionHistory}

// liveRegions change without any action on this page (backend-side scheduled publishes).
var liveRegions = []string{regionScheduled, regionHistory, regionAnalytics}

const (
	draftsShown         = 10
	draftSnippetRunes   = 80
	historySnippetRunes = 100
	emptyMark           = "—"
)

type accountOption struct {
	ID       string
	Label    string
	Selected bool
}

type accountsVM struct {
	Options []accountOption
	// Err is set when the account list could not be fetched.
	Err      string
	Selected string
}

func (vm accountsVM) Failed() bool { return vm.Err != "" }

type analyticsVM struct {
	Failed           bool
	TotalPosts       int
	TotalImpressions int
	AvgEngagement    string
	BestDays         string
	BestTimes        string
}

type draftRow struct {
	ID      int
	Snippet string
}

type draftsVM struct {
	Failed bool
	Rows   []draftRow
}

type scheduledVM struct {
	Failed bool
	Rows   []string
}

type historyRow struct {
	Date        string
	Snippet     string
	Impressions string
	Engagement  string
}

type historyVM struct {
	Failed bool
	Rows   []historyRow
}

type regionsVM struct {
	Accounts  accountsVM
	Analytics analyticsVM
	Drafts    draftsVM
	Scheduled scheduledVM
	History   historyVM
}

func (s *Server) loadAccounts(ctx context.Context, selected string) accountsVM {
	vm := accountsVM{}
	list, err := s.client.ListAccounts(ctx)
	if err != nil {
		vm.Err = api.Message(err)
		return vm
	}
	for _, a := range list {
		id := strconv.Itoa(a.ID)
		opt := accountOption{ID: id, Label: fmt.Sprintf("%s (%s)", a.DisplayName, a.AccountType)}
		if selected != "" && id == selected {
			opt.Selected = true
			vm.Selected = id
		}
		vm.Options = append(vm.Options, opt)
	}
	return vm
}

func (s *Server) loadAnalytics(ctx context.Context) analyticsVM {
	a, err := s.client.Analytics(ctx)
	if err != nil {
		return analyticsVM{Failed: true}
	}
	return analyticsVM{
		TotalPosts:       a.TotalPosts,
		TotalImpressions: a.TotalImpressions,
		AvgEngagement:    strconv.FormatFloat(a.AvgEngagementRate, 'f', 1, 64),
		BestDays:         joinOrDash(a.BestDays),
		BestTimes:        joinOrDash(a.BestTimes),
	}
}

func (s *Server) loadDrafts(ctx context.Context) draftsVM {
	list, err := s.client.ListDrafts(ctx, 0)
	if err != nil {
		return draftsVM{Failed: true}
	}
	if len(list) > draftsShown {
		list = list[:draftsShown]
	}
	vm := draftsVM{Rows: make([]draftRow, 0, len(list))}
	for _, d := range list {
		vm.Rows = append(vm.Rows, draftRow{ID: d.ID, Snippet: firstRunes(d.Hook, draftSnippetRunes) + "…"})
	}
	return vm
}

func (s *Server) loadScheduled(ctx context.Context) scheduledVM {
	list, err := s.client.ListScheduled(ctx)
	if err != nil {
		return scheduledVM{Failed: true}
	}
	vm := scheduledVM{Rows: make([]string, 0, len(list))}
	for _, p := range list {
		vm.Rows = append(vm.Rows, fmt.Sprintf("Draft #%d → %s (%s)", p.DraftID, p.ScheduledAt, p.Status))
	}
	return vm
}

func (s *Server) loadHistory(ctx context.Context) historyVM {
	list, err := s.client.ListPublished(ctx, 0)
	if err != nil {
		return historyVM{Failed: true}
	}
	vm := historyVM{Rows: make([]historyRow, 0, len(list))}
	for _, p := range list {
		vm.Rows = append(vm.Rows, s.historyRowFor(p))
	}
	return vm
}

func (s *Server) historyRowFor(p model.PublishedPost) historyRow {
	row := historyRow{Date: emptyMark, Impressions: emptyMark, Engagement: emptyMark}
	if strings.TrimSpace(p.PublishedAt) != "" {
		row.Date = model.FormatLocal(p.PublishedAt, s.loc)
	}
	row.Snippet = firstRunes(p.ContentText, historySnippetRunes)
	if len([]rune(p.ContentText)) > historySnippetRunes {
		row.Snippet += "…"
	}
	if p.Impressions != nil {
		row.Impressions = strconv.Itoa(*p.Impressions)
	}
	if p.EngagementRate != nil {
		row.Engagement = strconv.FormatFloat(*p.EngagementRate*100, 'f', 1, 64) + "%"
	}
	return row
}

// loadRegions fetches the named regions concurrently. Failures never abort the
// group: each region renders its own fallback.
func (s *Server) loadRegions(ctx context.Context, names []string, selectedAccount string) regionsVM {
	var (
		vm regionsVM
		g  errgroup.Group
	)
	for _, name := range names {
		switch name {
		case regionAccounts:
			g.Go(func() error { vm.Accounts = s.loadAccounts(ctx, selectedAccount); return nil })
		case regionAnalytics:
			g.Go(func() error { vm.Analytics = s.loadAnalytics(ctx); return nil })
		case regionDrafts:
			g.Go(func() error { vm.Drafts = s.loadDrafts(ctx); return nil })
		case regionScheduled:
			g.Go(func() error { vm.Scheduled = s.loadScheduled(ctx); return nil })
		case regionHistory:
			g.Go(func() error { vm.History = s.loadHistory(ctx); return nil })
		}
	}
	_ = g.Wait()
	return vm
}

func accountsFailureStatus(vm accountsVM) string {
	return "Could not load accounts: " + vm.Err
}

// patchRegions loads names and patches each region (plus the side effects an
// accounts reload has on the connect status and the selected account).
func (s *Server) patchRegions(ctx context.Context, sse *datastar.ServerSentEventGenerator, sig dashboardSignals, names ...string) {
	selected := string(sig.AccountID)
	vm := s.loadRegions(ctx, names, selected)
	for _, name := range names {
		switch name {
		case regionAccounts:
			s.patch(sse, s.fragment("accounts", "#account-select", vm.Accounts))
			if vm.Accounts.Failed() {
				s.patch(sse, s.statusFragment(connectStatusID, accountsFailureStatus(vm.Accounts)))
			}
			if selected != "" && vm.Accounts.Selected == "" {
				_ = sse.MarshalAndPatchSignals(map[string]any{"accountId": ""})
			}
		case regionAnalytics:
			s.patch(sse, s.fragment("analytics", "#analytics", vm.Analytics))
		case regionDrafts:
			s.patch(sse, s.fragment("drafts", "#drafts", vm.Drafts))
		case regionScheduled:
			s.patch(sse, s.fragment("scheduled", "#scheduled", vm.Scheduled))
		case regionHistory:
			s.patch(sse, s.fragment("history", "#history", vm.History))
		}
	}
}

// handleRegion re-renders one region ("all" for every region).
func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSpace(r.PathValue("name")))
	names := []string{name}
	if name == "all" {
		names = allRegions
	} else if !knownRegion(name) {
		http.NotFound(w, r)
		return
	}
	sig := readSignals(r)
	sse := datastar.NewSSE(w, r)
	s.patchRegions(r.Context(), sse, sig, names...)
}

func knownRegion(name string) bool {
	for _, n := range allRegions {
		if n == name {
			return true
		}
	}
	return false
}

func joinOrDash(xs []string) string {
	if s := strings.Join(xs, ", "); s != "" {
		return s
	}
	return emptyMark
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
