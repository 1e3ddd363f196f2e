// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes quire tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/query"
	"github.com/starford/quire/internal/storage"
)

const (
	contractURI  = "quire://note-format"
	searchLimit  = 20
	snippetRunes = 200
)

// Server wraps the MCP server with quire tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store
	files storage.Provider
}

// New creates a new MCP server with all quire tools registered. files may be
// nil, in which case attach_asset is not offered.
func New(store *notestore.Store, files storage.Provider, version string) *Server {
	s := &Server{store: store, files: files}

	s.mcp = server.NewMCPServer(
		"Quire",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive substring search through note titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note with its content, tags, links and backlinks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Reference other notes by title with [[Title]]. "+
			"Read the contract first via the get_note_contract tool or the "+contractURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("HTML content following the note format contract")),
		mcp.WithString("folder_id", mcp.Description("Folder to file the note in (empty for unfiled)")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Change a note's title, content or tags. Omitted fields are left as they are."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New HTML content")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags replacing the current ones")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the quire note format contract. "+
			"Call this before creating or updating notes to ensure correct structure."),
	), s.getNoteContract)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, optionally only those in a folder or carrying a tag."),
		mcp.WithString("folder_id", mcp.Description("Folder id, or root for unfiled notes")),
		mcp.WithString("tag", mcp.Description("Only notes with this tag")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the specified note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("link_notes",
		mcp.WithDescription("Create a manual link from one note to another."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source note id")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target note id")),
	), s.linkNotes)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag in use, sorted."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("Return the folder hierarchy as a JSON tree."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create a folder."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Folder name")),
		mcp.WithString("parent_id", mcp.Description("Parent folder id (empty for top level)")),
	), s.createFolder)

	s.mcp.AddTool(mcp.NewTool("move_folder",
		mcp.WithDescription("Move a folder under another one. Moves that would create a cycle are rejected."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Folder id")),
		mcp.WithString("parent_id", mcp.Description("New parent folder id (empty for top level)")),
	), s.moveFolder)

	s.mcp.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Return the note and folder graph as JSON nodes and connections."),
	), s.getGraph)

	if files != nil {
		s.mcp.AddTool(mcp.NewTool("attach_asset",
			mcp.WithDescription("Download an image or PDF (http/https URL or base64 data URI) and attach it to a note. "+
				"Returns an html snippet to paste into the note content."),
			mcp.WithString("note_id", mcp.Required(), mcp.Description("Note to attach to")),
			mcp.WithString("url", mcp.Required(), mcp.Description("Source URL or data URI")),
			mcp.WithString("filename", mcp.Description("Optional file name")),
		), s.attachAsset)
	}

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Note Format Contract",
			mcp.WithResourceDescription("How note content, links, tags and folders are shaped."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

// toolError renders a store error as a tool error result.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrCycle):
		return mcp.NewToolResultError("rejected: " + err.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// splitTags parses a comma-separated list.
func splitTags(s string) []string {
	return models.NormalizeTags(strings.Split(s, ","))
}

func optionalID(s string) *string {
	if s == "" {
		return nil
	}
	return models.ID(s)
}

type searchHit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := s.store.FilteredNotes(term)
	hits := make([]searchHit, 0, min(len(notes), searchLimit))
	for _, n := range notes {
		if len(hits) == searchLimit {
			break
		}
		hits = append(hits, searchHit{ID: n.ID, Title: n.Title, Snippet: query.Snippet(n.Content, snippetRunes)})
	}
	return jsonResult(hits), nil
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, ok := s.store.Note(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(n), nil
}

func (s *Server) createNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := req.GetString("content", "")
	folder := models.RefFromID(optionalID(req.GetString("folder_id", "")))

	n, err := s.store.AddNote(folder)
	if err != nil {
		return toolError(err), nil
	}
	patch := models.NotePatch{Title: &title, Content: &content}
	if tags := req.GetString("tags", ""); tags != "" {
		patch.Tags = splitTags(tags)
	}
	n, err = s.store.UpdateNote(n.ID, patch)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (links: %d)", n.ID, len(n.Links))), nil
}

func (s *Server) updateNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	var patch models.NotePatch
	if _, ok := args["title"]; ok {
		v := req.GetString("title", "")
		patch.Title = &v
	}
	if _, ok := args["content"]; ok {
		v := req.GetString("content", "")
		patch.Content = &v
	}
	if _, ok := args["tags"]; ok {
		patch.Tags = splitTags(req.GetString("tags", ""))
	}
	n, err := s.store.UpdateNote(id, patch)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s (links: %d)", n.ID, len(n.Links))), nil
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes := s.store.Notes()
	if folder := req.GetString("folder_id", ""); folder != "" {
		var id *string
		if folder != "root" {
			id = models.ID(folder)
		}
		notes = query.NotesInFolder(notes, id)
	}
	if tag := req.GetString("tag", ""); tag != "" {
		notes = query.NotesWithTag(notes, tag)
	}

	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, n.ID+"\t"+n.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func (s *Server) getBacklinks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := s.store.Note(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	bl := s.store.BacklinkedNotes(id)
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	lines := make([]string, 0, len(bl))
	for _, n := range bl {
		lines = append(lines, n.ID+"\t"+n.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) linkNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.LinkNotes(from, to); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("linked: %s -> %s", from, to)), nil
}

func (s *Server) listTags(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.store.AllTags(), "\n")), nil
}

func (s *Server) listFolders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.store.FolderTree()), nil
}

func (s *Server) createFolder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := s.store.AddFolder(optionalID(req.GetString("parent_id", "")), name)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created folder: %s", f.ID)), nil
}

func (s *Server) moveFolder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.MoveFolder(id, optionalID(req.GetString("parent_id", ""))); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved: %s", id)), nil
}

func (s *Server) getGraph(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"nodes":       s.store.GraphNodes(),
		"connections": s.store.GraphConnections(),
	}), nil
}
