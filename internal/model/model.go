package model

import (
	"strings"
	"time"
)

type AccountType string

const (
	AccountPersonal AccountType = "personal"
	AccountCompany  AccountType = "company"
)

// ParseAccountType normalizes user input; anything unknown maps to personal,
// matching what the backend does with an unrecognized account_type.
func ParseAccountType(s string) AccountType {
	switch AccountType(strings.ToLower(strings.TrimSpace(s))) {
	case AccountCompany:
		return AccountCompany
	default:
		return AccountPersonal
	}
}

type PublishStatus string

const (
	PublishStatusPublished PublishStatus = "published"
	PublishStatusScheduled PublishStatus = "scheduled"
)

type PostPreview struct {
	Hook            string  `json:"hook"`
	Body            string  `json:"body"`
	CTA             string  `json:"cta"`
	Hashtags        string  `json:"hashtags"`
	SuggestedVisual *string `json:"suggested_visual,omitempty"`
}

type GenerateRequest struct {
	UserInput         *string `json:"user_input,omitempty"`
	RegenerateDraftID *int    `json:"regenerate_draft_id,omitempty"`
}

type GenerateResult struct {
	Status      string      `json:"status,omitempty"`
	Message     string      `json:"message,omitempty"`
	DraftID     int         `json:"draft_id"`
	PostPreview PostPreview `json:"post_preview"`
	ImageURL    *string     `json:"image_url,omitempty"`
	ImagePath   *string     `json:"image_path,omitempty"`
}

type ImageResult struct {
	ImageURL  *string `json:"image_url,omitempty"`
	ImagePath *string `json:"image_path,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// DraftPatch carries review-step edits. Nil fields are left untouched by the backend.
type DraftPatch struct {
	Hook     *string `json:"hook,omitempty"`
	Body     *string `json:"body,omitempty"`
	CTA      *string `json:"cta,omitempty"`
	Hashtags *string `json:"hashtags,omitempty"`
}

func (p DraftPatch) Empty() bool {
	return p.Hook == nil && p.Body == nil && p.CTA == nil && p.Hashtags == nil
}

type Draft struct {
	ID              int     `json:"id"`
	Hook            string  `json:"hook"`
	Body            string  `json:"body"`
	CTA             string  `json:"cta"`
	Hashtags        string  `json:"hashtags"`
	SuggestedVisual *string `json:"suggested_visual,omitempty"`
	ImagePath       *string `json:"image_path,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

func (d Draft) HasImage() bool {
	return d.ImagePath != nil && strings.TrimSpace(*d.ImagePath) != ""
}

// FullText is the text the backend publishes for a draft.
func (d Draft) FullText() string {
	return strings.TrimSpace(strings.Join([]string{d.Hook, d.Body, d.CTA, d.Hashtags}, "\n\n"))
}

type ScheduledPost struct {
	ID          int    `json:"id"`
	DraftID     int    `json:"draft_id"`
	AccountID   int    `json:"account_id"`
	ScheduledAt string `json:"scheduled_at"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type PublishedPost struct {
	ID             int      `json:"id"`
	AccountID      int      `json:"account_id"`
	ContentText    string   `json:"content_text"`
	LinkedInPostID *string  `json:"linkedin_post_id,omitempty"`
	Impressions    *int     `json:"impressions,omitempty"`
	EngagementRate *float64 `json:"engagement_rate,omitempty"`
	PublishedAt    string   `json:"published_at,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

type Account struct {
	ID          int         `json:"id"`
	DisplayName string      `json:"display_name"`
	AccountType AccountType `json:"account_type"`
	LinkedInURN *string     `json:"linkedin_urn,omitempty"`
	IsActive    bool        `json:"is_active"`
}

type AuthorizationURL struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state,omitempty"`
}

type PublishRequest struct {
	DraftID          int        `json:"draft_id"`
	AccountID        int        `json:"account_id"`
	ScheduleOverride *time.Time `json:"schedule_override,omitempty"`
}

type PublishResult struct {
	Status          PublishStatus `json:"status"`
	LinkedInPostID  *string       `json:"linkedin_post_id,omitempty"`
	ScheduledAt     *string       `json:"scheduled_at,omitempty"`
	ScheduledPostID *int          `json:"scheduled_post_id,omitempty"`
}

// Summary is the one-line outcome shown after a publish.
func (r PublishResult) Summary() string {
	if r.Status == PublishStatusPublished {
		id := "—"
		if r.LinkedInPostID != nil && *r.LinkedInPostID != "" {
			id = *r.LinkedInPostID
		}
		return "Published. LinkedIn ID: " + id
	}
	at := "later"
	if r.ScheduledAt != nil && *r.ScheduledAt != "" {
		at = *r.ScheduledAt
	}
	return "Scheduled for " + at
}

type Analytics struct {
	TotalPosts        int              `json:"total_posts"`
	TotalImpressions  int              `json:"total_impressions"`
	AvgEngagementRate float64          `json:"avg_engagement_rate"`
	BestDays          []string         `json:"best_days"`
	BestTimes         []string         `json:"best_times"`
	TopPosts          []map[string]any `json:"top_posts,omitempty"`
}
