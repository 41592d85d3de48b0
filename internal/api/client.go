// Package api is the JSON client for the post generation/publishing backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"postpilot/internal/model"
)

type Client struct {
	mu      sync.RWMutex
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. A nil hc uses http.DefaultClient.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: normalizeBaseURL(baseURL), http: hc}
}

func normalizeBaseURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL swaps the backend address; in-flight requests keep the old one.
func (c *Client) SetBaseURL(s string) {
	c.mu.Lock()
	c.baseURL = normalizeBaseURL(s)
	c.mu.Unlock()
}

// do sends in as JSON (when non-nil) and decodes the response into out (when non-nil).
// An empty success body is accepted as an acknowledgement.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) Generate(ctx context.Context, userInput string) (model.GenerateResult, error) {
	req := model.GenerateRequest{}
	if s := strings.TrimSpace(userInput); s != "" {
		req.UserInput = &s
	}
	var out model.GenerateResult
	err := c.do(ctx, http.MethodPost, "/generate", req, &out)
	return out, err
}

func (c *Client) Regenerate(ctx context.Context, draftID int) (model.GenerateResult, error) {
	if draftID <= 0 {
		return model.GenerateResult{}, errors.New("api: regenerate requires a draft id")
	}
	var out model.GenerateResult
	err := c.do(ctx, http.MethodPost, "/generate", model.GenerateRequest{RegenerateDraftID: &draftID}, &out)
	return out, err
}

func (c *Client) GenerateImage(ctx context.Context, draftID int) (model.ImageResult, error) {
	var out model.ImageResult
	err := c.do(ctx, http.MethodPost, draftPath(draftID)+"/generate-image", nil, &out)
	return out, err
}

func (c *Client) UpdateDraft(ctx context.Context, draftID int, patch model.DraftPatch) (model.Draft, error) {
	var out model.Draft
	err := c.do(ctx, http.MethodPatch, draftPath(draftID), patch, &out)
	return out, err
}

func (c *Client) GetDraft(ctx context.Context, draftID int) (model.Draft, error) {
	var out model.Draft
	err := c.do(ctx, http.MethodGet, draftPath(draftID), nil, &out)
	return out, err
}

func (c *Client) ListDrafts(ctx context.Context, limit int) ([]model.Draft, error) {
	var out []model.Draft
	err := c.do(ctx, http.MethodGet, withLimit("/post-history/drafts", limit), nil, &out)
	return out, err
}

func (c *Client) ListScheduled(ctx context.Context) ([]model.ScheduledPost, error) {
	var out []model.ScheduledPost
	err := c.do(ctx, http.MethodGet, "/post-history/scheduled", nil, &out)
	return out, err
}

func (c *Client) ListPublished(ctx context.Context, limit int) ([]model.PublishedPost, error) {
	var out []model.PublishedPost
	err := c.do(ctx, http.MethodGet, withLimit("/post-history", limit), nil, &out)
	return out, err
}

func (c *Client) ListAccounts(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	err := c.do(ctx, http.MethodGet, "/accounts", nil, &out)
	return out, err
}

func (c *Client) LinkedInAuthURL(ctx context.Context, accountType model.AccountType) (model.AuthorizationURL, error) {
	q := url.Values{}
	q.Set("account_type", string(accountType))
	var out model.AuthorizationURL
	err := c.do(ctx, http.MethodGet, "/accounts/auth/linkedin?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) Publish(ctx context.Context, req model.PublishRequest) (model.PublishResult, error) {
	var out model.PublishResult
	err := c.do(ctx, http.MethodPost, "/publish", req, &out)
	return out, err
}

func (c *Client) Analytics(ctx context.Context) (model.Analytics, error) {
	var out model.Analytics
	err := c.do(ctx, http.MethodGet, "/analytics", nil, &out)
	return out, err
}

func draftPath(id int) string {
	return "/post-history/drafts/" + strconv.Itoa(id)
}

func withLimit(path string, limit int) string {
	if limit <= 0 {
		return path
	}
	return path + "?limit=" + strconv.Itoa(limit)
}
