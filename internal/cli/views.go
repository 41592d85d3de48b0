package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"postpilot/internal/format"
	"postpilot/internal/model"
	"postpilot/internal/store"
)

const dash = "—"

// Views are backend payloads with a --format text rendering; json and edn
// output keep the backend's field names.

type generateView model.GenerateResult

func (v generateView) Text(width int) string {
	var b strings.Builder
	b.WriteString(format.Heading(fmt.Sprintf("Draft #%d", v.DraftID)) + "\n")
	if s := strings.TrimSpace(v.Message); s != "" {
		b.WriteString(format.Muted(s) + "\n")
	}
	b.WriteString("\n" + postText(v.PostPreview.Hook, v.PostPreview.Body, v.PostPreview.CTA, v.PostPreview.Hashtags))
	if v.ImageURL != nil && *v.ImageURL != "" {
		b.WriteString("\n" + format.Muted("image: "+*v.ImageURL) + "\n")
	}
	return b.String()
}

func postText(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			b.WriteString(s + "\n\n")
		}
	}
	return b.String()
}

type draftView model.Draft

func (v draftView) Text(width int) string {
	var b strings.Builder
	head := fmt.Sprintf("Draft #%d", v.ID)
	if s := firstNonEmpty(v.UpdatedAt, v.CreatedAt); s != "" {
		head += "  " + format.Muted(model.FormatLocal(s, time.Local))
	}
	b.WriteString(format.Heading(head) + "\n\n")
	b.WriteString(postText(v.Hook, v.Body, v.CTA, v.Hashtags))
	if v.ImagePath != nil && *v.ImagePath != "" {
		b.WriteString(format.Muted("image: "+*v.ImagePath) + "\n")
	}
	if v.SuggestedVisual != nil && *v.SuggestedVisual != "" {
		b.WriteString(format.Muted("suggested visual: "+*v.SuggestedVisual) + "\n")
	}
	return b.String()
}

type draftListView []model.Draft

func (v draftListView) Text(width int) string {
	if len(v) == 0 {
		return "No drafts yet."
	}
	rows := make([][]string, 0, len(v))
	for _, d := range v {
		rows = append(rows, []string{
			strconv.Itoa(d.ID),
			orDash(model.FormatLocal(firstNonEmpty(d.UpdatedAt, d.CreatedAt), time.Local)),
			oneLine(d.Hook),
		})
	}
	return format.Table([]string{"ID", "UPDATED", "HOOK"}, rows, width)
}

type imageView model.ImageResult

func (v imageView) Text(width int) string {
	if v.ImageURL != nil && *v.ImageURL != "" {
		return format.OK("Image generated.") + " " + *v.ImageURL
	}
	return format.Failed(firstNonEmpty(v.Message, "Image could not be generated. You can still publish the text."))
}

type publishView model.PublishResult

func (v publishView) Text(width int) string {
	return format.OK(model.PublishResult(v).Summary())
}

type accountsView []model.Account

func (v accountsView) Text(width int) string {
	if len(v) == 0 {
		return "No accounts connected. Run: postpilot accounts connect"
	}
	rows := make([][]string, 0, len(v))
	for _, a := range v {
		active := "yes"
		if !a.IsActive {
			active = "no"
		}
		rows = append(rows, []string{strconv.Itoa(a.ID), string(a.AccountType), active, a.DisplayName})
	}
	return format.Table([]string{"ID", "TYPE", "ACTIVE", "NAME"}, rows, width)
}

type scheduledView []model.ScheduledPost

func (v scheduledView) Text(width int) string {
	if len(v) == 0 {
		return "No scheduled posts."
	}
	rows := make([][]string, 0, len(v))
	for _, p := range v {
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			"#" + strconv.Itoa(p.DraftID),
			strconv.Itoa(p.AccountID),
			p.Status,
			model.FormatLocal(p.ScheduledAt, time.Local),
		})
	}
	return format.Table([]string{"ID", "DRAFT", "ACCOUNT", "STATUS", "AT"}, rows, width)
}

type historyView []model.PublishedPost

func (v historyView) Text(width int) string {
	if len(v) == 0 {
		return "No published posts yet."
	}
	rows := make([][]string, 0, len(v))
	for _, p := range v {
		imp, eng := dash, dash
		if p.Impressions != nil {
			imp = strconv.Itoa(*p.Impressions)
		}
		if p.EngagementRate != nil {
			eng = strconv.FormatFloat(*p.EngagementRate*100, 'f', 1, 64) + "%"
		}
		rows = append(rows, []string{
			orDash(model.FormatLocal(p.PublishedAt, time.Local)),
			imp,
			eng,
			oneLine(p.ContentText),
		})
	}
	return format.Table([]string{"PUBLISHED", "IMPRESSIONS", "ENGAGEMENT", "TEXT"}, rows, width)
}

type analyticsView model.Analytics

func (v analyticsView) Text(width int) string {
	rows := [][]string{
		{"posts", strconv.Itoa(v.TotalPosts)},
		{"impressions", strconv.Itoa(v.TotalImpressions)},
		{"avg engagement", strconv.FormatFloat(v.AvgEngagementRate, 'f', 1, 64) + "%"},
		{"best days", orDash(strings.Join(v.BestDays, ", "))},
		{"best times", orDash(strings.Join(v.BestTimes, ", "))},
	}
	return format.Table(nil, rows, width)
}

type configView map[string]string

func (v configView) Text(width int) string {
	rows := make([][]string, 0, len(v))
	for _, k := range store.SortedKeys(v) {
		rows = append(rows, []string{k, orDash(v[k])})
	}
	return format.Table(nil, rows, width)
}

type messageView struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

func (v messageView) Text(width int) string {
	if v.URL == "" {
		return v.Message
	}
	return v.Message + "\n" + v.URL
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return dash
	}
	return s
}
