// Package mcp exposes the organizer as tools for MCP-capable agents.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

type Handler struct {
	organizer ports.FileOrganizer
	inspector ports.FileInspector
}

func NewHandler(organizer ports.FileOrganizer, inspector ports.FileInspector) *Handler {
	return &Handler{organizer: organizer, inspector: inspector}
}

// NewServer registers organize_file and score_file.
func NewServer(h *Handler, version string) *server.MCPServer {
	s := server.NewMCPServer("file-organizer", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("organize_file",
		mcp.WithDescription("Classify one local file, rename it canonically and move it into its category directory."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file to organize.")),
		mcp.WithBoolean("dry_run", mcp.Description("Only compute the destination, do not move anything.")),
	), h.OrganizeFile)

	s.AddTool(mcp.NewTool("score_file",
		mcp.WithDescription("Extract a file's text and report keyword scores per domain without moving it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file to inspect.")),
	), h.ScoreFile)

	return s
}

func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (h *Handler) OrganizeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dryRun := request.GetBool("dry_run", false)

	outcome := h.organizer.OrganizeFile(ctx, path, dryRun)
	payload := organizeResult{FileOutcome: outcome, Error: outcome.ErrorMessage()}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal outcome: %w", err)
	}
	if outcome.Status == domain.OutcomeFailed || outcome.Status == domain.OutcomeUnreadable {
		return mcp.NewToolResultError(string(body)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (h *Handler) ScoreFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	extraction, scores, err := h.inspector.Inspect(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := json.MarshalIndent(scoreResult{
		Kind:     extraction.Kind.String(),
		Chars:    len([]rune(extraction.Text)),
		Metadata: extraction.Metadata,
		Scores:   scores,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scores: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

type organizeResult struct {
	domain.FileOutcome
	Error string `json:"error,omitempty"`
}

type scoreResult struct {
	Kind     string              `json:"kind"`
	Chars    int                 `json:"chars"`
	Metadata domain.FileMetadata `json:"metadata"`
	Scores   domain.DomainScores `json:"scores"`
}
