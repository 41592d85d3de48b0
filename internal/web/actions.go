package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"postpilot/internal/api"
	"postpilot/internal/model"
	"postpilot/internal/store"

	"github.com/starfederation/datastar-go/datastar"
)

const (
	generateStatusID = "generate-status"
	publishStatusID  = "publish-status"
	connectStatusID  = "connect-status"
)

type fragment struct {
	selector string
	html     string
}

type statusVM struct {
	ID   string
	Text string
}

func (s *Server) fragment(tmpl, selector string, data any) fragment {
	html, err := s.renderTemplate(tmpl, data)
	if err != nil {
		s.log.Error("render fragment failed", "template", tmpl, "err", err)
		return fragment{selector: selector}
	}
	return fragment{selector: selector, html: html}
}

func (s *Server) statusFragment(id, text string) fragment {
	return s.fragment("status", "#"+id, statusVM{ID: id, Text: text})
}

func (s *Server) patch(sse *datastar.ServerSentEventGenerator, frags ...fragment) {
	for _, f := range frags {
		if strings.TrimSpace(f.html) == "" {
			continue
		}
		_ = sse.PatchElements(f.html, datastar.WithSelector(f.selector), datastar.WithMode(datastar.ElementPatchModeOuter))
	}
}

func (s *Server) patchStatus(sse *datastar.ServerSentEventGenerator, id, text string) {
	s.patch(sse, s.statusFragment(id, text))
}

func (s *Server) patchPreview(sse *datastar.ServerSentEventGenerator, sess *store.Session) {
	s.patch(sse, s.fragment("preview", "#preview", newPreviewVM(sess)))
	_ = sse.MarshalAndPatchSignals(map[string]any{"hasDraft": sess.DraftID != nil})
}

func (s *Server) patchPreviewImage(sse *datastar.ServerSentEventGenerator, sess *store.Session) {
	s.patch(sse, s.fragment("preview-image", "#preview-image-block", newPreviewVM(sess)))
}

func errorStatus(err error) string {
	return "Error: " + api.Message(err)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	sig := readSignals(r)
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	s.patchStatus(sse, generateStatusID, "Generating…")
	res, err := s.client.Generate(ctx, sig.UserInput)
	if err != nil {
		s.patchStatus(sse, generateStatusID, errorStatus(err))
		return
	}
	sess = s.updateSession(r, sess.ID, func(cur *store.Session) bool {
		s.applyGenerated(cur, res)
		return true
	})
	_ = sse.MarshalAndPatchSignals(editSignals(sess.Preview))
	s.patchPreview(sse, sess)
	s.patchStatus(sse, generateStatusID, firstNonEmpty(res.Message, "Ready for review."))
	s.patchRegions(ctx, sse, sig, regionAccounts, regionDrafts)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if sess.DraftID == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sig := readSignals(r)
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	s.patchStatus(sse, generateStatusID, "Regenerating…")
	res, err := s.client.Regenerate(ctx, *sess.DraftID)
	if err != nil {
		s.patchStatus(sse, generateStatusID, errorStatus(err))
		return
	}
	sess = s.updateSession(r, sess.ID, func(cur *store.Session) bool {
		s.applyGenerated(cur, res)
		return true
	})
	_ = sse.MarshalAndPatchSignals(editSignals(sess.Preview))
	s.patchPreview(sse, sess)
	s.patchStatus(sse, generateStatusID, firstNonEmpty(res.Message, "Regenerated."))
	s.patchRegions(ctx, sse, sig, regionDrafts)
}

// handleGenerateImage only touches the image block, and only while the
// session still shows the draft the image was made for.
func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if sess.DraftID == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	draftID := *sess.DraftID
	sse := datastar.NewSSE(w, r)

	s.patchStatus(sse, generateStatusID, "Generating image…")
	res, err := s.client.GenerateImage(r.Context(), draftID)

	status := "Image generated."
	var current bool
	sess = s.updateSession(r, sess.ID, func(cur *store.Session) bool {
		if current = sameDraft(cur.DraftID, draftID); !current {
			return false
		}
		p := &cur.Preview
		switch {
		case err != nil:
			p.ImageNote = "Image generation failed: " + api.Message(err)
		case res.ImageURL != nil && *res.ImageURL != "":
			s.setImage(p, res.ImageURL)
		default:
			// The previous image (if any) stays; only the note changes.
			p.ImageNote = firstNonEmpty(res.Message, imageNotProducedNote)
		}
		return true
	})
	switch {
	case err != nil:
		status = errorStatus(err)
	case res.ImageURL == nil || *res.ImageURL == "":
		status = firstNonEmpty(res.Message, "Image not generated.")
	}
	if current {
		s.patchPreviewImage(sse, sess)
	}
	s.patchStatus(sse, generateStatusID, status)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	sess = s.updateSession(r, sess.ID, func(cur *store.Session) bool {
		cur.Preview.Editing = true
		return true
	})

	sse := datastar.NewSSE(w, r)
	_ = sse.MarshalAndPatchSignals(editSignals(sess.Preview))
	s.patchPreview(sse, sess)
}

func (s *Server) handleSaveEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if sess.DraftID == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	draftID := *sess.DraftID
	sig := readSignals(r)
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	s.patchStatus(sse, generateStatusID, "Saving…")
	patch := model.DraftPatch{Hook: &sig.EditHook, Body: &sig.EditBody, CTA: &sig.EditCTA, Hashtags: &sig.EditHashtags}
	if _, err := s.client.UpdateDraft(ctx, draftID, patch); err != nil {
		s.patchStatus(sse, generateStatusID, errorStatus(err))
		return
	}
	var current bool
	sess = s.updateSession(r, sess.ID, func(cur *store.Session) bool {
		if current = sameDraft(cur.DraftID, draftID); !current {
			return false
		}
		p := &cur.Preview
		p.Hook = sig.EditHook
		p.Body = sig.EditBody
		p.CTA = sig.EditCTA
		p.Hashtags = sig.EditHashtags
		p.Editing = false
		return true
	})
	if current {
		s.patchPreview(sse, sess)
	}
	s.patchStatus(sse, generateStatusID, "Edits saved.")
	s.patchRegions(ctx, sse, sig, regionDrafts)
}

func (s *Server) handleUseDraft(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimSpace(r.PathValue("draftId")))
	if err != nil || id <= 0 {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	sig := readSignals(r)
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	s.patchStatus(sse, generateStatusID, "Loading draft…")
	d, err := s.client.GetDraft(ctx, id)
	if err != nil {
		s.patchStatus(sse, generateStatusID, errorStatus(err))
		return
	}
	sess = s.updateSession(r, sess.ID, func(cur *store.Session) bool {
		s.applyDraft(cur, d)
		return true
	})
	_ = sse.MarshalAndPatchSignals(editSignals(sess.Preview))
	s.patchPreview(sse, sess)
	s.patchStatus(sse, generateStatusID, "Draft loaded. Edit if needed, then choose an account and Publish.")
	s.patchRegions(ctx, sse, sig, regionAccounts)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	sig := readSignals(r)
	accountID, err := strconv.Atoi(string(sig.AccountID))
	if sess.DraftID == nil || err != nil || accountID <= 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	s.patchStatus(sse, publishStatusID, "Publishing…")
	res, err := s.client.Publish(ctx, model.PublishRequest{DraftID: *sess.DraftID, AccountID: accountID})
	if err != nil {
		s.patchStatus(sse, publishStatusID, errorStatus(err))
		return
	}
	s.patchStatus(sse, publishStatusID, res.Summary())
	s.hub.broadcast()
	s.patchRegions(ctx, sse, sig, regionDrafts, regionScheduled, regionHistory, regionAnalytics)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	accountType := model.ParseAccountType(r.PathValue("accountType"))
	sse := datastar.NewSSE(w, r)

	s.patchStatus(sse, connectStatusID, "Redirecting to LinkedIn…")
	auth, err := s.client.LinkedInAuthURL(r.Context(), accountType)
	if err != nil {
		s.patchStatus(sse, connectStatusID, errorStatus(err))
		return
	}
	if strings.TrimSpace(auth.AuthorizationURL) == "" {
		s.patchStatus(sse, connectStatusID, "Could not get LinkedIn login URL.")
		return
	}
	target, _ := json.Marshal(auth.AuthorizationURL)
	_ = sse.ExecuteScript("window.location.href = " + string(target))
}
