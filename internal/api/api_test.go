package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/testutil"
)

// testEnv builds a seeded store persisted to a temp data directory and a
// router over it. An empty token means auth is disabled.
func testEnv(t *testing.T, authToken string) (*notestore.Store, http.Handler) {
	t.Helper()
	store, router, _ := testEnvWithData(t, authToken != "", authToken)
	return store, router
}

func testEnvWithData(t *testing.T, authEnabled bool, authToken string) (*notestore.Store, http.Handler, *storage.FS) {
	t.Helper()
	bridge, fsys := testutil.TestBridge(t)
	w := testutil.TestWriter(t, bridge, nil)
	store := notestore.New(notestore.WithSeed(), notestore.WithWriter(w))
	router := NewRouter(store, authEnabled, authToken, nil, fsys)
	return store, router, fsys
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", map[string]any{
		"title":   "Alpha",
		"content": "<p>hello</p>",
		"tags":    []string{"work", " work "},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decodeBody[models.Note](t, w)
	if created.Title != "Alpha" || len(created.Tags) != 1 {
		t.Errorf("created = %+v", created)
	}
	// No folderId: filed under the selected folder.
	if created.FolderID == nil || *created.FolderID != "folder-1" {
		t.Errorf("folderId = %v, want folder-1", created.FolderID)
	}

	w = do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if got := decodeBody[models.Note](t, w); got.Content != "<p>hello</p>" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestCreateNote_Unfiled(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", map[string]any{"folderId": nil})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	n := decodeBody[models.Note](t, w)
	if n.FolderID != nil {
		t.Errorf("folderId = %v, want null", *n.FolderID)
	}
	if n.Title != models.DefaultNoteTitle {
		t.Errorf("title = %q", n.Title)
	}
}

func TestCreateNote_UnknownFolder(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", map[string]any{"folderId": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("create in missing folder = %d, want 404", w.Code)
	}
}

func TestUpdateNote_ResolvesLinks(t *testing.T) {
	store, router := testEnv(t, "")

	w := do(t, router, http.MethodPatch, "/notes/3", map[string]any{
		"content": "see [[Welcome To Notes]]",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", w.Code, w.Body.String())
	}
	n := decodeBody[models.Note](t, w)
	if len(n.Links) != 1 || n.Links[0] != "1" {
		t.Errorf("links = %v, want [1]", n.Links)
	}
	target, _ := store.Note("1")
	if !target.HasTag("welcome") {
		t.Fatal("seed changed")
	}
	found := false
	for _, id := range target.Backlinks {
		if id == "3" {
			found = true
		}
	}
	if !found {
		t.Errorf("backlinks of 1 = %v, want to contain 3", target.Backlinks)
	}
}

func TestUpdateNote_MoveToRoot(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPatch, "/notes/1", map[string]any{"folderId": nil})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}
	if n := decodeBody[models.Note](t, w); n.FolderID != nil {
		t.Errorf("folderId = %v, want null", *n.FolderID)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPatch, "/notes/ghost", map[string]string{"content": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestUpdateNote_BadJSON(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPatch, "/notes/1", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	store, router := testEnv(t, "")

	w := do(t, router, http.MethodDelete, "/notes/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if _, ok := store.Note("1"); ok {
		t.Error("note still present")
	}
	n2, _ := store.Note("2")
	if len(n2.Links) != 0 {
		t.Errorf("dangling links = %v", n2.Links)
	}

	w = do(t, router, http.MethodDelete, "/notes/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/notes/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing note = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")

	cases := []struct {
		query string
		total int
	}{
		{"", 3},
		{"?folder=folder-1", 2},
		{"?folder=root", 1},
		{"?tag=design", 1},
		{"?folder=folder-1&tag=pkm", 0},
		{"?q=BRUTALIST", 2},
		{"?limit=1&offset=1", 3},
	}
	for _, tc := range cases {
		w := do(t, router, http.MethodGet, "/notes"+tc.query, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("list%s status = %d", tc.query, w.Code)
		}
		resp := decodeBody[NoteListResponse](t, w)
		if resp.Total != tc.total {
			t.Errorf("list%s total = %d, want %d", tc.query, resp.Total, tc.total)
		}
		if resp.Notes == nil {
			t.Errorf("list%s notes = null", tc.query)
		}
	}

	resp := decodeBody[NoteListResponse](t, do(t, router, http.MethodGet, "/notes?limit=1&offset=1", nil))
	if len(resp.Notes) != 1 || resp.Notes[0].ID != "2" {
		t.Errorf("page = %+v", resp.Notes)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/search?q=second+brain", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	resp := decodeBody[SearchResponse](t, w)
	if len(resp.Results) != 1 || resp.Results[0].ID != "3" {
		t.Fatalf("results = %+v", resp.Results)
	}
	if resp.Results[0].Snippet == "" {
		t.Error("empty snippet")
	}

	// An empty term matches everything.
	resp = decodeBody[SearchResponse](t, do(t, router, http.MethodGet, "/search", nil))
	if len(resp.Results) != 3 {
		t.Errorf("empty search = %d results, want 3", len(resp.Results))
	}
}

func TestTagsEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes/3/tags", TagRequest{Tag: "work"})
	if w.Code != http.StatusOK {
		t.Fatalf("add tag = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPost, "/notes/3/tags", TagRequest{Tag: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank tag = %d, want 400", w.Code)
	}

	tags := decodeBody[[]string](t, do(t, router, http.MethodGet, "/tags", nil))
	if len(tags) != 7 || tags[len(tags)-1] != "work" {
		t.Errorf("tags = %v", tags)
	}
	resp := decodeBody[NoteListResponse](t, do(t, router, http.MethodGet, "/tags/work/notes", nil))
	if resp.Total != 1 {
		t.Errorf("tagged = %d, want 1", resp.Total)
	}

	w = do(t, router, http.MethodDelete, "/notes/3/tags/work", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove tag = %d", w.Code)
	}
	if n := decodeBody[models.Note](t, w); n.HasTag("work") {
		t.Error("tag not removed")
	}
}

func TestLinkEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/notes/3/links/1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("link = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeBody[NoteListResponse](t, do(t, router, http.MethodGet, "/notes/1/backlinks", nil))
	if resp.Total != 2 {
		t.Errorf("backlinks = %d, want 2", resp.Total)
	}

	if w := do(t, router, http.MethodPost, "/notes/3/links/3", nil); w.Code != http.StatusBadRequest {
		t.Errorf("self link = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/notes/3/links/ghost", nil); w.Code != http.StatusNotFound {
		t.Errorf("link to missing = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/notes/3/links/1", nil); w.Code != http.StatusNoContent {
		t.Errorf("unlink = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/notes/ghost/backlinks", nil); w.Code != http.StatusNotFound {
		t.Errorf("backlinks of missing = %d, want 404", w.Code)
	}
}

func TestGraphEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/graph", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("graph status = %d", w.Code)
	}
	g := decodeBody[GraphResponse](t, w)
	if len(g.Nodes) != 5 {
		t.Errorf("nodes = %d, want 5", len(g.Nodes))
	}
	// Two seed links plus two folder memberships.
	if len(g.Connections) != 4 {
		t.Errorf("connections = %d, want 4", len(g.Connections))
	}
}

func TestFolderEndpoints(t *testing.T) {
	store, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/folders", CreateFolderRequest{ParentID: models.ID("folder-1"), Name: "sub"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create folder = %d, body = %s", w.Code, w.Body.String())
	}
	sub := decodeBody[models.Folder](t, w)

	children := decodeBody[[]models.Folder](t, do(t, router, http.MethodGet, "/folders/folder-1/children", nil))
	if len(children) != 1 || children[0].ID != sub.ID {
		t.Errorf("children = %+v", children)
	}
	roots := decodeBody[[]models.Folder](t, do(t, router, http.MethodGet, "/folders/root/children", nil))
	if len(roots) != 2 {
		t.Errorf("roots = %d, want 2", len(roots))
	}

	name := "renamed"
	w = do(t, router, http.MethodPatch, "/folders/"+sub.ID, models.FolderPatch{Name: &name})
	if w.Code != http.StatusOK {
		t.Fatalf("rename = %d", w.Code)
	}
	if f := decodeBody[models.Folder](t, w); f.Name != "renamed" {
		t.Errorf("name = %q", f.Name)
	}

	// folder-1 under its own child is a cycle.
	w = do(t, router, http.MethodPost, "/folders/folder-1/move", MoveFolderRequest{ParentID: &sub.ID})
	if w.Code != http.StatusConflict {
		t.Errorf("cyclic move = %d, want 409", w.Code)
	}
	if f, _ := store.Folder("folder-1"); f.ParentID != nil {
		t.Errorf("folder-1 parent = %v, want root", *f.ParentID)
	}

	w = do(t, router, http.MethodPost, "/folders/"+sub.ID+"/move", MoveFolderRequest{ParentID: models.ID("folder-2")})
	if w.Code != http.StatusOK {
		t.Fatalf("move = %d", w.Code)
	}

	notes := decodeBody[NoteListResponse](t, do(t, router, http.MethodGet, "/folders/folder-1/notes", nil))
	if notes.Total != 2 {
		t.Errorf("folder-1 notes = %d, want 2", notes.Total)
	}

	if w := do(t, router, http.MethodDelete, "/folders/folder-1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete folder = %d", w.Code)
	}
	unfiled := decodeBody[NoteListResponse](t, do(t, router, http.MethodGet, "/folders/root/notes", nil))
	if unfiled.Total != 3 {
		t.Errorf("unfiled = %d, want 3", unfiled.Total)
	}
	if w := do(t, router, http.MethodGet, "/folders/folder-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted folder = %d, want 404", w.Code)
	}
}

func TestFolderTreeEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	do(t, router, http.MethodPost, "/folders", CreateFolderRequest{ParentID: models.ID("folder-2"), Name: "child"})
	w := do(t, router, http.MethodGet, "/folders/tree", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tree = %d", w.Code)
	}
	var tree []struct {
		ID       string `json:"id"`
		Children []struct {
			Name string `json:"name"`
		} `json:"children"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tree); err != nil {
		t.Fatal(err)
	}
	if len(tree) != 2 {
		t.Fatalf("roots = %d, want 2", len(tree))
	}
	for _, n := range tree {
		if n.ID == "folder-2" && (len(n.Children) != 1 || n.Children[0].Name != "child") {
			t.Errorf("folder-2 children = %+v", n.Children)
		}
	}
}

func TestSelectionEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPut, "/selection", map[string]any{"selectedNoteId": "3"})
	if w.Code != http.StatusOK {
		t.Fatalf("select = %d, body = %s", w.Code, w.Body.String())
	}
	sel := decodeBody[notestore.Selection](t, w)
	if sel.NoteID == nil || *sel.NoteID != "3" {
		t.Errorf("note = %v", sel.NoteID)
	}
	if sel.FolderID == nil || *sel.FolderID != "folder-1" {
		t.Errorf("absent folder field changed selection: %v", sel.FolderID)
	}

	sel = decodeBody[notestore.Selection](t, do(t, router, http.MethodPut, "/selection", map[string]any{"selectedFolderId": nil}))
	if sel.FolderID != nil {
		t.Errorf("folder = %v, want null", *sel.FolderID)
	}

	if w := do(t, router, http.MethodPut, "/selection", map[string]any{"selectedNoteId": "ghost"}); w.Code != http.StatusNotFound {
		t.Errorf("select missing = %d, want 404", w.Code)
	}
}

func TestThemeEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	themes := decodeBody[[]models.Theme](t, do(t, router, http.MethodGet, "/themes", nil))
	if len(themes) != 4 {
		t.Fatalf("themes = %d, want 4", len(themes))
	}
	neon := themes[1]
	if neon["name"] != "neon cyber" {
		t.Fatalf("themes[1] = %v", neon)
	}
	if w := do(t, router, http.MethodPut, "/theme", neon); w.Code != http.StatusOK {
		t.Fatalf("set theme = %d", w.Code)
	}
	got := decodeBody[models.Theme](t, do(t, router, http.MethodGet, "/theme", nil))
	if got["accent"] != neon["accent"] {
		t.Errorf("theme = %v", got)
	}
	if w := do(t, router, http.MethodPut, "/theme", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty theme = %d, want 400", w.Code)
	}
}

func TestSaveExportImport(t *testing.T) {
	_, router, fsys := testEnvWithData(t, false, "")

	if w := do(t, router, http.MethodPost, "/save", nil); w.Code != http.StatusNoContent {
		t.Fatalf("save = %d, body = %s", w.Code, w.Body.String())
	}
	if _, err := fsys.Read("notes.json"); err != nil {
		t.Fatalf("saved file: %v", err)
	}

	out := filepath.Join(t.TempDir(), "backup.json")
	if w := do(t, router, http.MethodPost, "/export", PathRequest{Path: out}); w.Code != http.StatusNoContent {
		t.Fatalf("export = %d, body = %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("export file: %v", err)
	}

	_, other := testEnv(t, "")
	w := do(t, other, http.MethodPost, "/import", PathRequest{Path: out})
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	sum := decodeBody[notestore.ImportSummary](t, w)
	if sum.Notes != 3 || sum.Folders != 2 || sum.Collisions != 5 {
		t.Errorf("summary = %+v", sum)
	}

	if w := do(t, router, http.MethodPost, "/export", PathRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("export without path = %d, want 400", w.Code)
	}
}

func TestExport_NoBridge(t *testing.T) {
	store := notestore.New(notestore.WithSeed())
	router := NewRouter(store, false, "", nil, nil)

	w := do(t, router, http.MethodPost, "/export", PathRequest{Path: filepath.Join(t.TempDir(), "x.json")})
	if w.Code != http.StatusConflict {
		t.Errorf("export without bridge = %d, want 409", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPost, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// testEnvWithSSE creates a router with a stub SSE handler to test auth on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
	return NewRouter(notestore.New(), authEnabled, token, sseHandler, nil)
}

// Attachment tests.

func uploadFile(t *testing.T, router http.Handler, noteID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/notes/"+noteID+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndServeAttachment(t *testing.T) {
	store, router, fsys := testEnvWithData(t, false, "")

	w := uploadFile(t, router, "1", "test.png", []byte("fake-png-data"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	n, _ := store.Note("1")
	if len(n.Attachments) != 1 || n.Attachments[0] != "/attachments/1-test.png" {
		t.Errorf("attachments = %v", n.Attachments)
	}

	data, err := os.ReadFile(filepath.Join(fsys.Root(), "attachments", "1-test.png"))
	if err != nil {
		t.Fatalf("file not on disk: %v", err)
	}
	if string(data) != "fake-png-data" {
		t.Errorf("content mismatch")
	}

	// Same name again: stored once.
	uploadFile(t, router, "1", "test.png", []byte("v2"))
	if n, _ := store.Note("1"); len(n.Attachments) != 1 {
		t.Errorf("attachments after re-upload = %v", n.Attachments)
	}

	ah := NewAttachmentHandler(store, fsys)
	r := chi.NewRouter()
	r.Get("/attachments/{filename}", ah.ServeFile)
	sw := httptest.NewRecorder()
	r.ServeHTTP(sw, httptest.NewRequest(http.MethodGet, "/attachments/1-test.png", nil))
	if sw.Code != http.StatusOK || sw.Body.String() != "v2" {
		t.Errorf("serve = %d %q", sw.Code, sw.Body.String())
	}
}

func TestUploadAttachment_UnknownNote(t *testing.T) {
	_, router, _ := testEnvWithData(t, false, "")

	if w := uploadFile(t, router, "ghost", "x.png", []byte("x")); w.Code != http.StatusNotFound {
		t.Errorf("upload to missing note = %d, want 404", w.Code)
	}
}

func TestServeAttachment_NotFound(t *testing.T) {
	fsys, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ah := NewAttachmentHandler(notestore.New(), fsys)
	r := chi.NewRouter()
	r.Get("/attachments/{filename}", ah.ServeFile)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attachments/nope.png", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing attachment = %d, want 404", w.Code)
	}
}

func TestServeAttachment_TraversalBlocked(t *testing.T) {
	fsys, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ah := NewAttachmentHandler(notestore.New(), fsys)
	r := chi.NewRouter()
	r.Get("/attachments/{filename}", ah.ServeFile)

	for _, name := range []string{"../notes.json", "../../etc/passwd"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attachments/"+name, nil))
		// chi may not route the traversal paths at all (404), or our handler rejects (400).
		if w.Code == http.StatusOK {
			t.Errorf("traversal %q should not return 200", name)
		}
	}
}

func TestUploadAttachment_AuthProtected(t *testing.T) {
	_, router, _ := testEnvWithData(t, true, "secret")

	if w := uploadFile(t, router, "1", "x.png", []byte("data")); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed upload = %d, want 401", w.Code)
	}
}
