package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrSessionNotFound = errors.New("store: session not found")

// PreviewState is the snapshot of the dashboard's preview region for one browser.
type PreviewState struct {
	Visible      bool   `json:"visible"`
	Hook         string `json:"hook"`
	Body         string `json:"body"`
	CTA          string `json:"cta"`
	Hashtags     string `json:"hashtags"`
	ImageURL     string `json:"imageUrl,omitempty"`
	ImageNote    string `json:"imageNote,omitempty"`
	ImageVisible bool   `json:"imageVisible"`
	Editing      bool   `json:"editing"`
}

// Session is the per-browser dashboard state: the current draft plus the
// one-shot callback message shown after a LinkedIn redirect.
type Session struct {
	ID            string
	DraftID       *int
	Preview       PreviewState
	ConnectStatus string
	UpdatedAt     time.Time
}

type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSessions opens (creating if needed) the sqlite file at path.
func OpenSessions(ctx context.Context, path string) (*SessionStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: missing sessions path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: the server is the only writer and :memory: dbs are per-connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSessions(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SessionStore{db: db, now: time.Now}, nil
}

func migrateSessions(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			draft_id INTEGER,
			preview_json TEXT NOT NULL,
			connect_status TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at_unixms);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("store: migrate sessions: %w", err)
		}
	}
	return nil
}

func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a fresh empty session with a random id.
func (s *SessionStore) Create(ctx context.Context) (*Session, error) {
	sess := &Session{ID: uuid.New().String()}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrSessionNotFound
	}
	var (
		draftID sql.NullInt64
		preview string
		connect string
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT draft_id, preview_json, connect_status, updated_at_unixms FROM sessions WHERE id = ?`, id,
	).Scan(&draftID, &preview, &connect, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	sess := &Session{ID: id, ConnectStatus: connect, UpdatedAt: time.UnixMilli(updated)}
	if draftID.Valid {
		v := int(draftID.Int64)
		sess.DraftID = &v
	}
	if strings.TrimSpace(preview) != "" {
		if err := json.Unmarshal([]byte(preview), &sess.Preview); err != nil {
			return nil, fmt.Errorf("store: session %s: %w", id, err)
		}
	}
	return sess, nil
}

// Save upserts sess and bumps its UpdatedAt.
func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || strings.TrimSpace(sess.ID) == "" {
		return errors.New("store: session id required")
	}
	raw, err := json.Marshal(sess.Preview)
	if err != nil {
		return err
	}
	var draftID any
	if sess.DraftID != nil {
		draftID = *sess.DraftID
	}
	sess.UpdatedAt = s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, draft_id, preview_json, connect_status, updated_at_unixms)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			draft_id = excluded.draft_id,
			preview_json = excluded.preview_json,
			connect_status = excluded.connect_status,
			updated_at_unixms = excluded.updated_at_unixms`,
		sess.ID, draftID, string(raw), sess.ConnectStatus, sess.UpdatedAt.UnixMilli(),
	)
	return err
}

// DeleteIdleSince removes sessions not touched since cutoff and reports how many went.
func (s *SessionStore) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at_unixms < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SessionStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}
