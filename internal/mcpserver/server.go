// Package mcpserver exposes the voice-note index as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwulff/holdtalk/internal/db"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Notes is the read side of db.Store.
type Notes interface {
	RecentNotes(limit int) ([]db.Note, error)
	Note(id string) (*db.Note, error)
}

type Server struct {
	notes  Notes
	logger *zap.Logger
}

func New(notes Notes, logger *zap.Logger) *Server {
	return &Server{notes: notes, logger: logger.Named("mcp")}
}

// MCPServer registers the tools on a new MCP server.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer("holdtalk", version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("list_voice_notes",
		mcp.WithDescription("List the most recent voice notes, newest first."),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum notes to return (1-%d).", maxLimit)),
			mcp.DefaultNumber(defaultLimit),
		),
	), s.handleList)

	srv.AddTool(mcp.NewTool("get_voice_note",
		mcp.WithDescription("Get one voice note by id, including the path of its audio file."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id from list_voice_notes.")),
	), s.handleGet)

	return srv
}

// noteView is the JSON shape returned to clients.
type noteView struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	DurationMs int64  `json:"durationMs"`
	SizeBytes  *int64 `json:"sizeBytes"`
	CreatedAt  string `json:"createdAt"`
}

func viewOf(n db.Note) noteView {
	return noteView{
		ID:         n.ID,
		URI:        n.URI,
		FileName:   n.FileName,
		MimeType:   n.MimeType,
		DurationMs: n.DurationMs,
		SizeBytes:  n.SizeBytes,
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", maxLimit)), nil
	}

	notes, err := s.notes.RecentNotes(limit)
	if err != nil {
		s.logger.Error("list notes", zap.Error(err))
		return mcp.NewToolResultError("failed to read notes"), nil
	}

	views := make([]noteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, viewOf(n))
	}
	return jsonResult(views)
}

func (s *Server) handleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	n, err := s.notes.Note(id)
	if err != nil {
		s.logger.Error("get note", zap.String("id", id), zap.Error(err))
		return mcp.NewToolResultError("failed to read note"), nil
	}
	if n == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no voice note with id %q", id)), nil
	}
	return jsonResult(viewOf(*n))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
