package mcpserver

import (
	"context"
	"strings"

	"postpilot/internal/model"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDraftTools() {
	s.mcp.AddTool(mcp.NewTool("generate_post",
		mcp.WithDescription("Generate a new LinkedIn post draft. Without input the backend picks a topic."),
		mcp.WithString("input",
			mcp.Description("Topic, notes or a rough draft to build the post from"),
		),
	), s.handleGeneratePost)

	s.mcp.AddTool(mcp.NewTool("regenerate_post",
		mcp.WithDescription("Generate a fresh variant of an existing draft"),
		mcp.WithNumber("draft_id",
			mcp.Description("ID of the draft to regenerate"),
			mcp.Required(),
		),
	), s.handleRegeneratePost)

	s.mcp.AddTool(mcp.NewTool("list_drafts",
		mcp.WithDescription("List recent drafts, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of drafts to return"),
		),
	), s.handleListDrafts)

	s.mcp.AddTool(mcp.NewTool("get_draft",
		mcp.WithDescription("Get one draft, including the full text that would be published"),
		mcp.WithNumber("draft_id",
			mcp.Description("ID of the draft"),
			mcp.Required(),
		),
	), s.handleGetDraft)

	s.mcp.AddTool(mcp.NewTool("update_draft",
		mcp.WithDescription("Edit a draft. Only the fields given are changed."),
		mcp.WithNumber("draft_id",
			mcp.Description("ID of the draft"),
			mcp.Required(),
		),
		mcp.WithString("hook", mcp.Description("Opening line")),
		mcp.WithString("body", mcp.Description("Main text")),
		mcp.WithString("cta", mcp.Description("Call to action")),
		mcp.WithString("hashtags", mcp.Description("Space separated hashtags")),
	), s.handleUpdateDraft)

	s.mcp.AddTool(mcp.NewTool("generate_image",
		mcp.WithDescription("Generate an image for a draft"),
		mcp.WithNumber("draft_id",
			mcp.Description("ID of the draft"),
			mcp.Required(),
		),
	), s.handleGenerateImage)
}

func (s *Server) handleGeneratePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.client.Generate(ctx, req.GetString("input", ""))
	if err != nil {
		return backendError("generate", err), nil
	}
	return jsonResult(res)
}

func (s *Server) handleRegeneratePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "draft_id")
	if err != nil {
		return nil, err
	}
	res, err := s.client.Regenerate(ctx, id)
	if err != nil {
		return backendError("regenerate", err), nil
	}
	return jsonResult(res)
}

func (s *Server) handleListDrafts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	drafts, err := s.client.ListDrafts(ctx, optionalLimit(req))
	if err != nil {
		return backendError("list drafts", err), nil
	}
	if drafts == nil {
		drafts = []model.Draft{}
	}
	return jsonResult(drafts)
}

type draftWithText struct {
	model.Draft
	FullText string `json:"full_text"`
}

func (s *Server) handleGetDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "draft_id")
	if err != nil {
		return nil, err
	}
	d, err := s.client.GetDraft(ctx, id)
	if err != nil {
		return backendError("get draft", err), nil
	}
	return jsonResult(draftWithText{Draft: d, FullText: d.FullText()})
}

func (s *Server) handleUpdateDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "draft_id")
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	patch := model.DraftPatch{
		Hook:     optionalString(args, "hook"),
		Body:     optionalString(args, "body"),
		CTA:      optionalString(args, "cta"),
		Hashtags: optionalString(args, "hashtags"),
	}
	if patch.Empty() {
		return mcp.NewToolResultError("nothing to update: pass at least one of hook, body, cta, hashtags"), nil
	}
	d, err := s.client.UpdateDraft(ctx, id, patch)
	if err != nil {
		return backendError("update draft", err), nil
	}
	if d.ID == 0 {
		// Some backends acknowledge without echoing the draft.
		return textResult("Draft updated."), nil
	}
	return jsonResult(d)
}

func (s *Server) handleGenerateImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "draft_id")
	if err != nil {
		return nil, err
	}
	res, err := s.client.GenerateImage(ctx, id)
	if err != nil {
		return backendError("generate image", err), nil
	}
	if res.ImageURL == nil || strings.TrimSpace(*res.ImageURL) == "" {
		msg := strings.TrimSpace(res.Message)
		if msg == "" {
			msg = "Image could not be generated."
		}
		return textResult(msg), nil
	}
	return jsonResult(res)
}
