// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes chord and scale lookups for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/chordanalyzr/internal/apperr"
	"github.com/starford/chordanalyzr/internal/chordservice"
	"github.com/starford/chordanalyzr/internal/metrics"
)

// Server wraps the MCP server with chordanalyzr tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *chordservice.Service
	metrics *metrics.Metrics
}

// New creates a new MCP server with all tools registered. m may be nil.
func New(svc *chordservice.Service, m *metrics.Metrics) *Server {
	s := &Server{svc: svc, metrics: m}

	s.mcp = server.NewMCPServer(
		"chordanalyzr",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_modes",
		mcp.WithDescription("List every mode (scale pattern) with its semitone intervals, ordered by name."),
	), s.listModes)

	s.mcp.AddTool(mcp.NewTool("list_chord_types",
		mcp.WithDescription("List every chord type with its symbol and semitone intervals, ordered by name."),
	), s.listChordTypes)

	s.mcp.AddTool(mcp.NewTool("get_scale",
		mcp.WithDescription("Spell the notes of a mode in a key. Note names are listed by the "+
			"chordanalyzr://note-names resource."),
		mcp.WithString("mode", mcp.Required(), mcp.Description("Mode name, e.g. Dorian (case-sensitive)")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Key note name, e.g. Eb or f#")),
	), s.getScale)

	s.mcp.AddTool(mcp.NewTool("find_chords",
		mcp.WithDescription("Find chords related to a scale. Returns chords with at most max_diff "+
			"notes outside the scale, ordered by chord root and chord type."),
		mcp.WithString("mode", mcp.Required(), mcp.Description("Mode name, e.g. Ionian (case-sensitive)")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Key note name, e.g. C")),
		mcp.WithNumber("max_diff", mcp.Description("Maximum number of chord notes outside the scale (default 0)")),
		mcp.WithString("chord_note", mcp.Description("Only return chords rooted on this note")),
	), s.findChords)

	s.mcp.AddResource(
		mcp.NewResource(noteNamesURI, "Note Names",
			mcp.WithResourceDescription("Every accepted note name and its pitch class."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteNamesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listModes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListModes(ctx))
}

func (s *Server) listChordTypes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListChordTypes(ctx))
}

func (s *Server) getScale(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	notes, err := s.svc.Scale(ctx, mode, key)
	s.observe("scale", err)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(notes)
}

func (s *Server) findChords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxDiff, err := intArg(req, "max_diff", 0)
	if err != nil {
		return toolError(err)
	}
	q := chordservice.ChordQuery{Mode: mode, Key: key, MaxDiff: maxDiff}
	if v, cErr := req.RequireString("chord_note"); cErr == nil {
		q.ChordNote = v
	}

	chords, err := s.svc.Chords(ctx, q)
	s.observe("chords", err)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(chords)
}

func (s *Server) observe(op string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveQuery(op, err)
	}
}

// intArg reads an optional integer argument. JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, name string, def int) (int, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, apperr.InvalidArgument(name, strconv.FormatFloat(v, 'f', -1, 64))
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, apperr.InvalidArgument(name, v)
		}
		return n, nil
	}
	return 0, apperr.InvalidArgument(name, fmt.Sprint(raw))
}

// toolError reports client errors as tool results and passes anything else
// back to the MCP layer.
func toolError(err error) (*mcp.CallToolResult, error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}
