package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestSessions(t *testing.T) *SessionStore {
	t.Helper()
	s, err := OpenSessions(context.Background(), filepath.Join(t.TempDir(), "sessions.sqlite"))
	if err != nil {
		t.Fatalf("OpenSessions: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessions_CreateSaveGet(t *testing.T) {
	ctx := context.Background()
	s := openTestSessions(t)

	sess, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" || sess.DraftID != nil {
		t.Fatalf("unexpected new session: %+v", sess)
	}

	id := 42
	sess.DraftID = &id
	sess.Preview = PreviewState{Visible: true, Hook: "Hook", Body: "Body", Hashtags: "#go", Editing: true}
	sess.ConnectStatus = "Account connected. Select it above to publish."
	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DraftID == nil || *got.DraftID != 42 {
		t.Fatalf("expected draft 42, got %+v", got.DraftID)
	}
	if !got.Preview.Visible || got.Preview.Hook != "Hook" || !got.Preview.Editing {
		t.Fatalf("unexpected preview: %+v", got.Preview)
	}
	if got.ConnectStatus != sess.ConnectStatus {
		t.Fatalf("unexpected connect status %q", got.ConnectStatus)
	}

	// Clearing the draft writes NULL back.
	got.DraftID = nil
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save(clear): %v", err)
	}
	again, _ := s.Get(ctx, sess.ID)
	if again.DraftID != nil {
		t.Fatalf("expected cleared draft id")
	}
}

func TestSessions_GetUnknown(t *testing.T) {
	s := openTestSessions(t)
	if _, err := s.Get(context.Background(), "nope"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessions_DeleteIdleSince(t *testing.T) {
	ctx := context.Background()
	s := openTestSessions(t)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	old, _ := s.Create(ctx)

	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	fresh, _ := s.Create(ctx)

	n, err := s.DeleteIdleSince(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteIdleSince: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	if _, err := s.Get(ctx, old.ID); err != ErrSessionNotFound {
		t.Fatalf("expected old session gone, got %v", err)
	}
	if _, err := s.Get(ctx, fresh.ID); err != nil {
		t.Fatalf("expected fresh session kept: %v", err)
	}
	if c, _ := s.Count(ctx); c != 1 {
		t.Fatalf("expected 1 session left, got %d", c)
	}
}
