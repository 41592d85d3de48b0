package web

import (
	"strconv"
	"strings"
	"time"

	"postpilot/internal/model"
	"postpilot/internal/store"
)

const (
	defaultImageNote     = `Optional: click "Generate image" to create an image for this post.`
	imageNotProducedNote = "Image could not be generated. You can still publish the text."
)

type previewVM struct {
	store.PreviewState
	HasDraft bool
	DraftID  int
}

func newPreviewVM(sess *store.Session) previewVM {
	vm := previewVM{PreviewState: sess.Preview}
	if sess.DraftID != nil {
		vm.HasDraft = true
		vm.DraftID = *sess.DraftID
	}
	return vm
}

// cacheBusted appends t=<unix millis> so the browser refetches a regenerated image.
func cacheBusted(u string, now time.Time) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "t=" + strconv.FormatInt(now.UnixMilli(), 10)
}

// setImage shows imageURL when present, otherwise hides the image and shows
// the default hint.
func (s *Server) setImage(p *store.PreviewState, imageURL *string) {
	if imageURL != nil && *imageURL != "" {
		p.ImageURL = cacheBusted(*imageURL, s.now())
		p.ImageVisible = true
		p.ImageNote = ""
		return
	}
	p.ImageURL = ""
	p.ImageVisible = false
	p.ImageNote = defaultImageNote
}

func (s *Server) applyGenerated(sess *store.Session, res model.GenerateResult) {
	id := res.DraftID
	sess.DraftID = &id
	p := &sess.Preview
	p.Hook = res.PostPreview.Hook
	p.Body = res.PostPreview.Body
	p.CTA = res.PostPreview.CTA
	p.Hashtags = res.PostPreview.Hashtags
	s.setImage(p, res.ImageURL)
	p.Visible = true
}

func (s *Server) applyDraft(sess *store.Session, d model.Draft) {
	id := d.ID
	sess.DraftID = &id
	p := &sess.Preview
	p.Hook = d.Hook
	p.Body = d.Body
	p.CTA = d.CTA
	p.Hashtags = d.Hashtags
	p.Editing = false
	p.Visible = true
	if d.HasImage() {
		u := "/storage/" + strconv.Itoa(d.ID)
		s.setImage(p, &u)
	} else {
		s.setImage(p, nil)
	}
}

// editSignals seeds the edit inputs from the read-only preview.
func editSignals(p store.PreviewState) map[string]any {
	return map[string]any{
		"editHook":     p.Hook,
		"editBody":     p.Body,
		"editCta":      p.CTA,
		"editHashtags": p.Hashtags,
	}
}
