package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"postpilot/internal/store"

	"github.com/starfederation/datastar-go/datastar"
)

const sessionCookieName = "postpilot_session"

// session returns the browser's session, starting a new one (and setting the
// cookie) when the cookie is missing or its row has expired. Must run before
// any datastar stream is opened.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*store.Session, error) {
	if c, err := r.Cookie(sessionCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		sess, err := s.sessions.Get(r.Context(), c.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			return nil, err
		}
	}
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	sess, err := s.session(w, r)
	if err != nil {
		s.log.ErrorContext(r.Context(), "session lookup failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// sessionLocks serializes read-modify-write of one session so overlapping
// actions each apply their own fields to the latest stored state.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = map[string]*sessionLock{}
	}
	sl := l.m[id]
	if sl == nil {
		sl = &sessionLock{}
		l.m[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		if sl.refs--; sl.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}

// updateSession reloads the session, lets apply change the fields its action
// owns and stores the result when apply reports a change. It runs after the
// backend call, never around it, and persists even if the browser already
// went away so the next page load matches what the backend now holds.
func (s *Server) updateSession(r *http.Request, id string, apply func(*store.Session) bool) *store.Session {
	unlock := s.locks.lock(id)
	defer unlock()

	ctx := context.WithoutCancel(r.Context())
	cur, err := s.sessions.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			s.log.ErrorContext(ctx, "session reload failed", "session", id, "err", err)
		}
		cur = &store.Session{ID: id}
	}
	if !apply(cur) {
		return cur
	}
	if err := s.sessions.Save(ctx, cur); err != nil {
		s.log.ErrorContext(ctx, "session save failed", "session", id, "err", err)
	}
	return cur
}

func sameDraft(a *int, b int) bool {
	return a != nil && *a == b
}

// dashboardSignals are the client-side values the page sends with every action.
type dashboardSignals struct {
	UserInput    string   `json:"userInput"`
	AccountID    signalID `json:"accountId"`
	EditHook     string   `json:"editHook"`
	EditBody     string   `json:"editBody"`
	EditCTA      string   `json:"editCta"`
	EditHashtags string   `json:"editHashtags"`
}

// signalID accepts a select value sent either as a string or a number.
type signalID string

func (v *signalID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = signalID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = signalID(n.String())
		return nil
	}
	*v = ""
	return nil
}

// readSignals never fails: a request without signals acts on empty values.
func readSignals(r *http.Request) dashboardSignals {
	var sig dashboardSignals
	_ = datastar.ReadSignals(r, &sig)
	return sig
}
