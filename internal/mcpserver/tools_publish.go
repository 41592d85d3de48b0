package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postpilot/internal/model"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublishTools() {
	s.mcp.AddTool(mcp.NewTool("list_accounts",
		mcp.WithDescription("List connected LinkedIn accounts"),
	), s.handleListAccounts)

	s.mcp.AddTool(mcp.NewTool("linkedin_auth_url",
		mcp.WithDescription("Get the LinkedIn login URL that connects a new account. A human has to open it."),
		mcp.WithString("account_type",
			mcp.Description("Which kind of account to connect"),
			mcp.Enum(string(model.AccountPersonal), string(model.AccountCompany)),
		),
	), s.handleLinkedInAuthURL)

	s.mcp.AddTool(mcp.NewTool("publish_post",
		mcp.WithDescription("Publish a draft to an account now, or schedule it"),
		mcp.WithNumber("draft_id",
			mcp.Description("ID of the draft"),
			mcp.Required(),
		),
		mcp.WithNumber("account_id",
			mcp.Description("ID of the connected account"),
			mcp.Required(),
		),
		mcp.WithString("schedule_at",
			mcp.Description("RFC3339 time to publish at instead of now"),
		),
	), s.handlePublishPost)

	s.mcp.AddTool(mcp.NewTool("list_scheduled",
		mcp.WithDescription("List posts waiting to be published"),
	), s.handleListScheduled)

	s.mcp.AddTool(mcp.NewTool("list_published",
		mcp.WithDescription("List published posts with their metrics"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of posts to return"),
		),
	), s.handleListPublished)

	s.mcp.AddTool(mcp.NewTool("get_analytics",
		mcp.WithDescription("Totals, average engagement and best days/times to post"),
	), s.handleGetAnalytics)
}

func (s *Server) handleListAccounts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accounts, err := s.client.ListAccounts(ctx)
	if err != nil {
		return backendError("list accounts", err), nil
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	return jsonResult(accounts)
}

func (s *Server) handleLinkedInAuthURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	at := model.ParseAccountType(req.GetString("account_type", ""))
	auth, err := s.client.LinkedInAuthURL(ctx, at)
	if err != nil {
		return backendError("linkedin auth url", err), nil
	}
	if strings.TrimSpace(auth.AuthorizationURL) == "" {
		return mcp.NewToolResultError("Could not get LinkedIn login URL."), nil
	}
	return textResult(auth.AuthorizationURL), nil
}

func (s *Server) handlePublishPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID, err := requireID(req, "draft_id")
	if err != nil {
		return nil, err
	}
	accountID, err := requireID(req, "account_id")
	if err != nil {
		return nil, err
	}
	pr := model.PublishRequest{DraftID: draftID, AccountID: accountID}
	if at := strings.TrimSpace(req.GetString("schedule_at", "")); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("schedule_at must be RFC3339: %w", err)
		}
		pr.ScheduleOverride = &t
	}
	res, err := s.client.Publish(ctx, pr)
	if err != nil {
		return backendError("publish", err), nil
	}
	return jsonResult(res)
}

func (s *Server) handleListScheduled(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	posts, err := s.client.ListScheduled(ctx)
	if err != nil {
		return backendError("list scheduled", err), nil
	}
	if posts == nil {
		posts = []model.ScheduledPost{}
	}
	return jsonResult(posts)
}

func (s *Server) handleListPublished(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	posts, err := s.client.ListPublished(ctx, optionalLimit(req))
	if err != nil {
		return backendError("list published", err), nil
	}
	if posts == nil {
		posts = []model.PublishedPost{}
	}
	return jsonResult(posts)
}

func (s *Server) handleGetAnalytics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.client.Analytics(ctx)
	if err != nil {
		return backendError("analytics", err), nil
	}
	return jsonResult(a)
}
