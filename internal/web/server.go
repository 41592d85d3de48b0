package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"
	"sync"
	"time"

	"postpilot/internal/api"
	"postpilot/internal/store"

	"github.com/robfig/cron/v3"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr   string
	APIURL string

	// SessionsPath is the sqlite file holding per-browser dashboard state.
	SessionsPath string

	// DatastarURL is the script src for the datastar client bundle.
	DatastarURL string

	// RefreshSchedule is a cron spec; each tick re-renders the scheduled,
	// history and analytics regions on every open page. Empty disables it.
	RefreshSchedule string

	// SessionTTL is how long an untouched session survives.
	SessionTTL time.Duration

	// HTTPClient is used for backend calls and the pass-through proxy (nil: http.DefaultClient).
	HTTPClient *http.Client

	Logger *slog.Logger
}

type Server struct {
	mu  sync.RWMutex
	cfg ServerConfig

	tmpl     *template.Template
	client   *api.Client
	sessions *store.SessionStore
	locks    sessionLocks
	hub      *refreshHub
	proxy    *httputil.ReverseProxy
	cron     *cron.Cron
	log      *slog.Logger
	now      func() time.Time
	loc      *time.Location
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	cfg.SessionsPath = strings.TrimSpace(cfg.SessionsPath)
	cfg.DatastarURL = strings.TrimSpace(cfg.DatastarURL)
	cfg.RefreshSchedule = strings.TrimSpace(cfg.RefreshSchedule)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.APIURL == "" {
		return nil, errors.New("web: api url is empty")
	}
	if cfg.SessionsPath == "" {
		return nil, errors.New("web: sessions path is empty")
	}
	if cfg.DatastarURL == "" {
		cfg.DatastarURL = store.DefaultDatastarURL
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = store.DefaultSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	sessions, err := store.OpenSessions(context.Background(), cfg.SessionsPath)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		client:   api.New(cfg.APIURL, cfg.HTTPClient),
		sessions: sessions,
		hub:      newRefreshHub(),
		log:      cfg.Logger,
		now:      time.Now,
		loc:      time.Local,
	}
	srv.proxy = srv.newBackendProxy()
	return srv, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// SetAPIURL points the dashboard (and the pass-through proxy) at another backend.
func (s *Server) SetAPIURL(u string) {
	u = strings.TrimSpace(u)
	if u == "" || u == s.client.BaseURL() {
		return
	}
	s.client.SetBaseURL(u)
	s.mu.Lock()
	s.cfg.APIURL = u
	s.mu.Unlock()
	s.log.Info("backend changed", "apiUrl", u)
}

func (s *Server) cfgSnapshot() ServerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /regions/{name}", s.handleRegion)
	mux.HandleFunc("POST /actions/generate", s.handleGenerate)
	mux.HandleFunc("POST /actions/regenerate", s.handleRegenerate)
	mux.HandleFunc("POST /actions/image", s.handleGenerateImage)
	mux.HandleFunc("POST /actions/edit", s.handleEdit)
	mux.HandleFunc("POST /actions/save", s.handleSaveEdit)
	mux.HandleFunc("POST /actions/publish", s.handlePublish)
	mux.HandleFunc("POST /actions/drafts/{draftId}/use", s.handleUseDraft)
	mux.HandleFunc("POST /actions/connect/{accountType}", s.handleConnect)
	mux.Handle("GET /storage/{draftId}", s.proxy)
	mux.Handle("GET /accounts/auth/linkedin/callback", s.proxy)
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	return s.recoverPanics(s.logRequests(mux))
}

// Start runs the background cron jobs. Close stops them.
func (s *Server) Start() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if spec := s.cfg.RefreshSchedule; spec != "" {
		if _, err := c.AddFunc(spec, s.hub.broadcast); err != nil {
			return errors.New("web: invalid refresh schedule: " + err.Error())
		}
	}
	if _, err := c.AddFunc("@hourly", s.expireSessions); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	return nil
}

func (s *Server) Close() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
	return s.sessions.Close()
}

func (s *Server) expireSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cutoff := s.now().Add(-s.cfg.SessionTTL)
	n, err := s.sessions.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		s.log.Error("session expiry failed", "err", err)
		return
	}
	if n > 0 {
		s.log.Info("expired idle sessions", "count", n)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}
