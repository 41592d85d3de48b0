package mcpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"postpilot/internal/api"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the post backend as MCP tools so an agent can draft, review
// and publish posts through the same client the dashboard uses.
type Server struct {
	mcp    *server.MCPServer
	client *api.Client
	log    *slog.Logger
}

func New(client *api.Client, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}
	s := &Server{client: client, log: log}
	s.mcp = server.NewMCPServer(
		"postpilot",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerDraftTools()
	s.registerPublishTools()
	return s
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.log.Info("mcp stdio server starting", "api", s.client.BaseURL())
	return server.ServeStdio(s.mcp)
}

func (s *Server) MCP() *server.MCPServer { return s.mcp }

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// backendError turns a failed backend call into a tool error result the agent
// can read, keeping the backend's detail text.
func backendError(op string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(op + ": " + api.Message(err))
}

// intArg reads an integer argument sent as a JSON number or a numeric string.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case int:
		return v, true
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func requireID(req mcp.CallToolRequest, key string) (int, error) {
	id, ok := intArg(req.GetArguments(), key)
	if !ok || id <= 0 {
		return 0, fmt.Errorf("%s is required and must be a positive integer", key)
	}
	return id, nil
}

func optionalLimit(req mcp.CallToolRequest) int {
	if n, ok := intArg(req.GetArguments(), "limit"); ok && n > 0 {
		return n
	}
	return 0
}

// optionalString returns a pointer when the argument is present, even empty.
func optionalString(args map[string]any, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &v
}
