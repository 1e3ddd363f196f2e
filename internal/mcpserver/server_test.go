package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/storage"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testServer(t *testing.T) (*Server, *notestore.Store, *storage.FS) {
	t.Helper()
	files, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := notestore.New(notestore.WithSeed())
	return New(store, files, "test"), store, files
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so dispatch to the
	// handlers directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"search_notes":  srv.searchNotes,
		"read_note":     srv.readNote,
		"create_note":   srv.createNote,
		"update_note":   srv.updateNote,
		"list_notes":    srv.listNotes,
		"get_backlinks": srv.getBacklinks,
		"link_notes":    srv.linkNotes,
		"list_tags":     srv.listTags,
		"list_folders":  srv.listFolders,
		"create_folder": srv.createFolder,
		"move_folder":   srv.moveFolder,
		"get_graph":     srv.getGraph,
		"attach_asset":  srv.attachAsset,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv, store, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]any{
		"title":     "Standup",
		"content":   "<p>see [[Knowledge Management]]</p>",
		"folder_id": "folder-2",
		"tags":      "meeting, work,",
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.HasPrefix(text, "created: ") || !strings.HasSuffix(text, "(links: 1)") {
		t.Fatalf("create result = %q", text)
	}
	id := strings.Fields(strings.TrimPrefix(text, "created: "))[0]

	n, ok := store.Note(id)
	if !ok {
		t.Fatal("note not in store")
	}
	if n.FolderID == nil || *n.FolderID != "folder-2" || len(n.Tags) != 2 {
		t.Errorf("note = %+v", n)
	}

	r = callTool(t, srv, "read_note", map[string]any{"id": id})
	var got struct {
		Title string   `json:"title"`
		Links []string `json:"links"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if got.Title != "Standup" || len(got.Links) != 1 || got.Links[0] != "3" {
		t.Errorf("read = %+v", got)
	}
}

func TestCreateNote_UnknownFolder(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "create_note", map[string]any{"title": "x", "folder_id": "ghost"})
	if !r.IsError {
		t.Error("expected error for missing folder")
	}
}

func TestUpdateNote_OnlyGivenFields(t *testing.T) {
	srv, store, _ := testServer(t)

	r := callTool(t, srv, "update_note", map[string]any{"id": "1", "tags": "a,b"})
	if r.IsError {
		t.Fatalf("update failed: %s", resultText(r))
	}
	n, _ := store.Note("1")
	if n.Title != "welcome to notes" {
		t.Errorf("title changed to %q", n.Title)
	}
	if len(n.Tags) != 2 || n.Tags[0] != "a" {
		t.Errorf("tags = %v", n.Tags)
	}

	if r := callTool(t, srv, "update_note", map[string]any{"id": "ghost", "title": "x"}); !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "search_notes", map[string]any{"query": "BRUTALIST"})
	var hits []searchHit
	if err := json.Unmarshal([]byte(resultText(r)), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("hits = %+v", hits)
	}

	if r := callTool(t, srv, "search_notes", map[string]any{}); !r.IsError {
		t.Error("expected error without query")
	}
}

func TestListNotes(t *testing.T) {
	srv, _, _ := testServer(t)

	text := resultText(callTool(t, srv, "list_notes", map[string]any{}))
	if n := len(strings.Split(text, "\n")); n != 3 {
		t.Errorf("all = %d lines, want 3", n)
	}
	text = resultText(callTool(t, srv, "list_notes", map[string]any{"folder_id": "root"}))
	if text != "3\tknowledge management" {
		t.Errorf("root = %q", text)
	}
	text = resultText(callTool(t, srv, "list_notes", map[string]any{"tag": "design"}))
	if text != "2\tneo-brutalist design" {
		t.Errorf("tagged = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]any{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestGetBacklinks(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "get_backlinks", map[string]any{"id": "1"})
	if text := resultText(r); text != "2\tneo-brutalist design" {
		t.Errorf("backlinks = %q", text)
	}
	r = callTool(t, srv, "get_backlinks", map[string]any{"id": "3"})
	if text := resultText(r); text != "no backlinks found" {
		t.Errorf("backlinks of 3 = %q", text)
	}
}

func TestLinkNotes(t *testing.T) {
	srv, store, _ := testServer(t)

	if r := callTool(t, srv, "link_notes", map[string]any{"from": "1", "to": "3"}); r.IsError {
		t.Fatalf("link: %s", resultText(r))
	}
	n3, _ := store.Note("3")
	if len(n3.Backlinks) != 1 || n3.Backlinks[0] != "1" {
		t.Errorf("backlinks = %v", n3.Backlinks)
	}
	if r := callTool(t, srv, "link_notes", map[string]any{"from": "1", "to": "1"}); !r.IsError {
		t.Error("expected error for self link")
	}
}

func TestFolderTools(t *testing.T) {
	srv, store, _ := testServer(t)

	r := callTool(t, srv, "create_folder", map[string]any{"name": "sub", "parent_id": "folder-1"})
	if r.IsError {
		t.Fatalf("create folder: %s", resultText(r))
	}
	sub := strings.TrimPrefix(resultText(r), "created folder: ")

	r = callTool(t, srv, "move_folder", map[string]any{"id": "folder-1", "parent_id": sub})
	if !r.IsError || !strings.HasPrefix(resultText(r), "rejected:") {
		t.Errorf("cyclic move = %q", resultText(r))
	}
	if f, _ := store.Folder("folder-1"); f.ParentID != nil {
		t.Error("rejected move changed parent")
	}

	r = callTool(t, srv, "move_folder", map[string]any{"id": sub})
	if r.IsError {
		t.Fatalf("move to root: %s", resultText(r))
	}
	if f, _ := store.Folder(sub); f.ParentID != nil {
		t.Errorf("parent = %v, want root", *f.ParentID)
	}

	var tree []map[string]any
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "list_folders", nil))), &tree); err != nil {
		t.Fatal(err)
	}
	if len(tree) != 3 {
		t.Errorf("roots = %d, want 3", len(tree))
	}
}

func TestListTagsAndGraph(t *testing.T) {
	srv, _, _ := testServer(t)

	tags := resultText(callTool(t, srv, "list_tags", nil))
	if !strings.HasPrefix(tags, "brutalism\n") {
		t.Errorf("tags = %q", tags)
	}

	var g struct {
		Nodes       []json.RawMessage `json:"nodes"`
		Connections []json.RawMessage `json:"connections"`
	}
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "get_graph", nil))), &g); err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 5 || len(g.Connections) != 4 {
		t.Errorf("graph = %d nodes, %d connections", len(g.Nodes), len(g.Connections))
	}
}

func TestAttachAsset_DataURI(t *testing.T) {
	srv, store, files := testServer(t)

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	r := callTool(t, srv, "attach_asset", map[string]any{"note_id": "1", "url": uri, "filename": "diagram.png"})
	if r.IsError {
		t.Fatalf("attach: %s", resultText(r))
	}
	var res attachResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.URL != "/attachments/1-diagram.png" || !strings.Contains(res.HTML, "<img") {
		t.Errorf("result = %+v", res)
	}
	if _, err := files.Read("attachments/1-diagram.png"); err != nil {
		t.Errorf("file not saved: %v", err)
	}
	if n, _ := store.Note("1"); len(n.Attachments) != 1 {
		t.Errorf("attachments = %v", n.Attachments)
	}

	// Second upload with the same name is refused.
	r = callTool(t, srv, "attach_asset", map[string]any{"note_id": "1", "url": uri, "filename": "diagram.png"})
	if !r.IsError {
		t.Error("expected error for existing file")
	}
}

func TestAttachAsset_Rejections(t *testing.T) {
	srv, _, _ := testServer(t)
	png := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

	cases := []struct {
		name string
		args map[string]any
	}{
		{"unknown note", map[string]any{"note_id": "ghost", "url": png}},
		{"bad extension", map[string]any{"note_id": "1", "url": png, "filename": "x.exe"}},
		{"mismatched bytes", map[string]any{"note_id": "1", "url": "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello")), "filename": "x.png"}},
		{"not base64", map[string]any{"note_id": "1", "url": "data:image/png,abc"}},
		{"loopback", map[string]any{"note_id": "1", "url": "http://127.0.0.1/x.png"}},
		{"scheme", map[string]any{"note_id": "1", "url": "ftp://example.com/x.png"}},
	}
	for _, tc := range cases {
		if r := callTool(t, srv, "attach_asset", tc.args); !r.IsError {
			t.Errorf("%s: expected error, got %q", tc.name, resultText(r))
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"my photo.png":     "my_photo.png",
		"ok-name_1.jpg":    "ok-name_1.jpg",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
