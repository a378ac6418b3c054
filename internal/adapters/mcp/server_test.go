package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

type fakeOrganizer struct {
	outcome domain.FileOutcome
	path    string
	dryRun  bool
}

func (f *fakeOrganizer) OrganizeFile(_ context.Context, path string, dryRun bool) domain.FileOutcome {
	f.path, f.dryRun = path, dryRun
	out := f.outcome
	out.Path = path
	return out
}

func (f *fakeOrganizer) OrganizeBatch(ctx context.Context, paths []string, dryRun bool) []domain.FileOutcome {
	out := make([]domain.FileOutcome, 0, len(paths))
	for _, p := range paths {
		out = append(out, f.OrganizeFile(ctx, p, dryRun))
	}
	return out
}

type fakeInspector struct {
	err error
}

func (f *fakeInspector) Inspect(context.Context, string) (domain.Extraction, domain.DomainScores, error) {
	if f.err != nil {
		return domain.Extraction{}, nil, f.err
	}
	return domain.Extraction{Kind: domain.KindText, Text: "intimação"},
		domain.DomainScores{{Domain: "juridico", Score: 30}}, nil
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestOrganizeFileTool(t *testing.T) {
	org := &fakeOrganizer{outcome: domain.FileOutcome{Status: domain.OutcomeDryRun, Category: "juridico", Destination: "/c/J/a.pdf"}}
	h := NewHandler(org, &fakeInspector{})

	res, err := h.OrganizeFile(context.Background(), callRequest("organize_file", map[string]any{"path": "/in/a.pdf", "dry_run": true}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "/in/a.pdf", org.path)
	require.True(t, org.dryRun)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	require.Equal(t, "dry_run", body["status"])
	require.Equal(t, "juridico", body["category"])
}

func TestOrganizeFileToolReportsFailure(t *testing.T) {
	org := &fakeOrganizer{outcome: domain.FileOutcome{Status: domain.OutcomeFailed, Err: errors.New("copy: disk full")}}
	res, err := NewHandler(org, nil).OrganizeFile(context.Background(), callRequest("organize_file", map[string]any{"path": "/in/a.pdf"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, resultText(t, res), "disk full")
	require.False(t, org.dryRun)
}

func TestOrganizeFileToolRequiresPath(t *testing.T) {
	res, err := NewHandler(&fakeOrganizer{}, nil).OrganizeFile(context.Background(), callRequest("organize_file", map[string]any{}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestScoreFileTool(t *testing.T) {
	h := NewHandler(nil, &fakeInspector{})
	res, err := h.ScoreFile(context.Background(), callRequest("score_file", map[string]any{"path": "/in/a.txt"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var body scoreResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	require.Equal(t, "text", body.Kind)
	require.Equal(t, 9, body.Chars)
	require.Equal(t, "juridico", body.Scores[0].Domain)
}

func TestScoreFileToolSurfacesErrors(t *testing.T) {
	h := NewHandler(nil, &fakeInspector{err: domain.ErrInvalidInput})
	res, err := h.ScoreFile(context.Background(), callRequest("score_file", map[string]any{"path": "/in"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(NewHandler(&fakeOrganizer{}, &fakeInspector{}), "test")
	require.NotNil(t, s)
}
