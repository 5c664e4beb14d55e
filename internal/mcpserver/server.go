// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the hierarchy indexes for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ooker777/breadcrumbs/internal/apperr"
	"github.com/ooker777/breadcrumbs/internal/index"
	"github.com/ooker777/breadcrumbs/internal/indexservice"
	"github.com/ooker777/breadcrumbs/internal/outline"
)

const formatURI = "breadcrumbs://outline-format"

// Notes is the part of the note index the tools read directly.
type Notes interface {
	Resolve(link string) (*index.NoteRow, error)
	Backlinks(target string) ([]string, error)
}

// Server wraps the MCP server with the index tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *indexservice.Service
	notes    Notes
	defaults indexservice.Options
}

// New creates a new MCP server with all tools registered. defaults apply
// when a tool call leaves an option unset.
func New(svc *indexservice.Service, notes Notes, defaults indexservice.Options, version string) *Server {
	s := &Server{svc: svc, notes: notes, defaults: defaults}

	s.mcp = server.NewMCPServer(
		"Breadcrumbs",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("local_index",
		mcp.WithDescription("Build the indented outline of every path below one note. "+
			"See the "+formatURI+" resource for the layout."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Note name or [[wikilink]]")),
		mcp.WithBoolean("wikilinks", mcp.Description("Render labels as [[wikilinks]]")),
		mcp.WithBoolean("aliases", mcp.Description("Append each note's aliases in parentheses")),
	), s.localIndex)

	s.mcp.AddTool(mcp.NewTool("global_index",
		mcp.WithDescription("Build the outline of every top-level note in the vault."),
		mcp.WithBoolean("wikilinks", mcp.Description("Render labels as [[wikilinks]]")),
		mcp.WithBoolean("aliases", mcp.Description("Append each note's aliases in parentheses")),
		mcp.WithString("scope", mcp.Description("Deduplication scope"), mcp.Enum("traversal", "global")),
	), s.globalIndex)

	s.mcp.AddTool(mcp.NewTool("parse_index",
		mcp.WithDescription("Split outline text into {prefix, label} pairs."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Outline text")),
		mcp.WithBoolean("flat", mcp.Description("Drop indentation prefixes")),
	), s.parseIndex)

	s.mcp.AddTool(mcp.NewTool("resolve_note",
		mcp.WithDescription("Resolve a note name or link to its path, aliases, and backlinks."),
		mcp.WithString("link", mcp.Required(), mcp.Description("Note name or [[wikilink]]")),
	), s.resolveNote)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns how notes declare hierarchy and how outlines are laid out."),
	), s.getFormatContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Outline Format",
			mcp.WithResourceDescription("Hierarchy fields and outline layout."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func (s *Server) options(req mcp.CallToolRequest) (indexservice.Options, error) {
	opts := s.defaults
	opts.Wikilinks = req.GetBool("wikilinks", opts.Wikilinks)
	opts.Aliases = req.GetBool("aliases", opts.Aliases)
	if raw := req.GetString("scope", ""); raw != "" {
		scope, err := indexservice.ParseScope(raw)
		if err != nil {
			return opts, err
		}
		opts.Scope = scope
	}
	return opts, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) localIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts, err := s.options(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.LocalIndex(ctx, note, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Text == "" {
		return mcp.NewToolResultText(fmt.Sprintf("no notes below %s", res.Note)), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) globalIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts, err := s.options(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.GlobalIndex(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Text == "" {
		return mcp.NewToolResultText("the vault has no hierarchy"), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) parseIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pairs := s.svc.ParseIndex(ctx, text, req.GetBool("flat", false))
	if pairs == nil {
		pairs = []outline.LinePair{}
	}
	return jsonResult(pairs), nil
}

type resolvedNote struct {
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Title     string   `json:"title,omitempty"`
	Aliases   []string `json:"aliases"`
	Backlinks []string `json:"backlinks"`
}

func (s *Server) resolveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := req.RequireString("link")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.notes.Resolve(link)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", strings.TrimSpace(link))), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.notes.Backlinks(n.Name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if bl == nil {
		bl = []string{}
	}
	return jsonResult(resolvedNote{
		Path:      n.Path,
		Name:      n.Name,
		Title:     n.Title,
		Aliases:   outline.AliasFields{Alias: n.Alias, Aliases: n.Aliases}.Merged(),
		Backlinks: bl,
	}), nil
}

func (s *Server) getFormatContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OutlineFormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     OutlineFormatContract,
		},
	}, nil
}
