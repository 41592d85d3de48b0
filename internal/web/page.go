package web

import (
	"encoding/json"
	"net/http"
	"net/url"

	"postpilot/internal/store"
)

const (
	connectedStatus      = "Account connected. Select it above to publish."
	linkedInFailedStatus = "LinkedIn connection failed."
)

type pageVM struct {
	DatastarURL    string
	Signals        string
	Preview        previewVM
	GenerateStatus statusVM
	PublishStatus  statusVM
	ConnectStatus  statusVM
	Regions        regionsVM
}

// callbackStatus reads the query the backend appends when the LinkedIn OAuth
// round trip lands back on the dashboard.
func callbackStatus(q url.Values) (string, bool) {
	status, ok := "", false
	if q.Get("connected") == "1" {
		status, ok = connectedStatus, true
	}
	if q.Get("error") == "linkedin" {
		status, ok = firstNonEmpty(q.Get("message"), linkedInFailedStatus), true
	}
	return status, ok
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	// Stash the callback message and drop the params from the address bar.
	if status, ok := callbackStatus(r.URL.Query()); ok {
		s.updateSession(r, sess.ID, func(cur *store.Session) bool {
			cur.ConnectStatus = status
			return true
		})
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}

	var connect string
	sess = s.updateSession(r, sess.ID, func(cur *store.Session) bool {
		connect = cur.ConnectStatus
		cur.ConnectStatus = ""
		return connect != ""
	})

	regions := s.loadRegions(r.Context(), allRegions, "")
	if regions.Accounts.Failed() {
		connect = accountsFailureStatus(regions.Accounts)
	}

	s.writeHTMLTemplate(w, "dashboard", pageVM{
		DatastarURL:    s.cfgSnapshot().DatastarURL,
		Signals:        initialSignals(sess),
		Preview:        newPreviewVM(sess),
		GenerateStatus: statusVM{ID: generateStatusID},
		PublishStatus:  statusVM{ID: publishStatusID},
		ConnectStatus:  statusVM{ID: connectStatusID, Text: connect},
		Regions:        regions,
	})
}

func initialSignals(sess *store.Session) string {
	sig := editSignals(sess.Preview)
	sig["userInput"] = ""
	sig["accountId"] = ""
	sig["hasDraft"] = sess.DraftID != nil
	sig["generating"] = false
	sig["regenerating"] = false
	sig["imaging"] = false
	sig["saving"] = false
	sig["publishing"] = false
	b, _ := json.Marshal(sig)
	return string(b)
}
