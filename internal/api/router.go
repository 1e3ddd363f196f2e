package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// files, if non-nil, enables attachment uploads.
func NewRouter(store *notestore.Store, authEnabled bool, token string, sseHandler http.Handler, files storage.Provider) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Route("/notes/{id}", func(r chi.Router) {
		r.Get("/", h.GetNote)
		r.Patch("/", h.UpdateNote)
		r.Delete("/", h.DeleteNote)
		r.Post("/tags", h.AddTag)
		r.Delete("/tags/{tag}", h.RemoveTag)
		r.Post("/links/{target}", h.LinkNotes)
		r.Delete("/links/{target}", h.UnlinkNotes)
		r.Get("/backlinks", h.Backlinks)
		if files != nil {
			r.Post("/attachments", NewAttachmentHandler(store, files).Upload)
		}
	})

	// Folders.
	r.Get("/folders", h.ListFolders)
	r.Post("/folders", h.CreateFolder)
	r.Get("/folders/tree", h.FolderTree)
	r.Route("/folders/{id}", func(r chi.Router) {
		r.Get("/", h.GetFolder)
		r.Patch("/", h.UpdateFolder)
		r.Delete("/", h.DeleteFolder)
		r.Post("/move", h.MoveFolder)
		r.Get("/children", h.ChildFolders)
		r.Get("/notes", h.FolderNotes)
	})

	// Tags, search and graph.
	r.Get("/tags", h.Tags)
	r.Get("/tags/{tag}/notes", h.TagNotes)
	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)

	// Session state.
	r.Get("/selection", h.GetSelection)
	r.Put("/selection", h.PutSelection)
	r.Get("/theme", h.GetTheme)
	r.Put("/theme", h.PutTheme)
	r.Get("/themes", h.Themes)

	// Persistence.
	r.Post("/save", h.Save)
	r.Post("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
