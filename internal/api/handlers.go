package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/query"
)

const snippetRunes = 160

// Handler holds API route handlers.
type Handler struct {
	store *notestore.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *notestore.Store) *Handler {
	return &Handler{store: store}
}

// folderParam maps the "root" sentinel and empty values to the unfiled set.
func folderParam(v string) *string {
	if v == "" || v == "root" {
		return nil
	}
	return models.ID(v)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with optional filtering and pagination
//	@Tags			notes
//	@Produce		json
//	@Param			q		query		string	false	"Title/content substring"
//	@Param			folder	query		string	false	"Folder id, or root for unfiled notes"
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var notes []*models.Note
	if q.Has("folder") {
		notes = h.store.NotesInFolder(folderParam(q.Get("folder")))
	} else {
		notes = h.store.Notes()
	}
	if tag := q.Get("tag"); tag != "" {
		notes = query.NotesWithTag(notes, tag)
	}
	if term := q.Get("q"); term != "" {
		notes = query.Filter(notes, term)
	}

	total := len(notes)
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	notes = page(notes, limit, offset)
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: total})
}

func page(notes []*models.Note, limit, offset int) []*models.Note {
	if offset < 0 {
		offset = 0
	}
	if offset > len(notes) {
		offset = len(notes)
	}
	notes = notes[offset:]
	if limit > 0 && limit < len(notes) {
		notes = notes[:limit]
	}
	return notes
}

// Search handles GET /api/search.
//
//	@Summary		Search notes by title and content
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Search term"
//	@Success		200	{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	notes := h.store.FilteredNotes(r.URL.Query().Get("q"))
	results := make([]SearchResult, 0, len(notes))
	for _, n := range notes {
		results = append(results, SearchResult{
			ID:      n.ID,
			Title:   n.Title,
			Snippet: query.Snippet(n.Content, snippetRunes),
		})
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if r.ContentLength != 0 {
		if !decode(w, r, &req) {
			return
		}
	}
	ref := models.CurrentFolder()
	if req.FolderID.Set {
		ref = models.RefFromID(req.FolderID.ID)
	}
	note, err := h.store.AddNote(ref)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	if req.Title != nil || req.Content != nil || req.Tags != nil {
		note, err = h.store.UpdateNote(note.ID, models.NotePatch{
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		})
		if err != nil {
			writeError(w, "create note", err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.store.Note(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("note not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PATCH /api/notes/{id}.
//
//	@Summary		Partially update a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		UpdateNoteRequest	true	"Fields to change"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [patch]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	note, err := h.store.UpdateNote(chi.URLParam(r, "id"), req.patch())
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteNote(chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTag handles POST /api/notes/{id}/tags.
//
//	@Summary		Add a tag to a note
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Note id"
//	@Param			body	body		TagRequest	true	"Tag"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/tags [post]
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decode(w, r, &req) {
		return
	}
	note, err := h.store.AddTag(chi.URLParam(r, "id"), req.Tag)
	if err != nil {
		writeError(w, "add tag", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// RemoveTag handles DELETE /api/notes/{id}/tags/{tag}.
//
//	@Summary		Remove a tag from a note
//	@Tags			tags
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Param			tag	path		string	true	"Tag"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/tags/{tag} [delete]
func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	note, err := h.store.RemoveTag(chi.URLParam(r, "id"), chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, "remove tag", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// LinkNotes handles POST /api/notes/{id}/links/{target}.
//
//	@Summary		Link two notes
//	@Tags			links
//	@Param			id		path	string	true	"Source note id"
//	@Param			target	path	string	true	"Target note id"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/links/{target} [post]
func (h *Handler) LinkNotes(w http.ResponseWriter, r *http.Request) {
	if err := h.store.LinkNotes(chi.URLParam(r, "id"), chi.URLParam(r, "target")); err != nil {
		writeError(w, "link notes", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlinkNotes handles DELETE /api/notes/{id}/links/{target}.
//
//	@Summary		Unlink two notes
//	@Tags			links
//	@Param			id		path	string	true	"Source note id"
//	@Param			target	path	string	true	"Target note id"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/links/{target} [delete]
func (h *Handler) UnlinkNotes(w http.ResponseWriter, r *http.Request) {
	if err := h.store.UnlinkNotes(chi.URLParam(r, "id"), chi.URLParam(r, "target")); err != nil {
		writeError(w, "unlink notes", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Backlinks handles GET /api/notes/{id}/backlinks.
//
//	@Summary		List notes that link to a note
//	@Tags			links
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.Note(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("note not found"))
		return
	}
	notes := h.store.BacklinkedNotes(id)
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the note and folder graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, GraphResponse{
		Nodes:       h.store.GraphNodes(),
		Connections: h.store.GraphConnections(),
	})
}

// Tags handles GET /api/tags.
//
//	@Summary		List all tags
//	@Tags			tags
//	@Produce		json
//	@Success		200	{array}	string
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.AllTags())
}

// TagNotes handles GET /api/tags/{tag}/notes.
//
//	@Summary		List notes carrying a tag
//	@Tags			tags
//	@Produce		json
//	@Param			tag	path		string	true	"Tag"
//	@Success		200	{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/tags/{tag}/notes [get]
func (h *Handler) TagNotes(w http.ResponseWriter, r *http.Request) {
	notes := h.store.NotesWithTag(chi.URLParam(r, "tag"))
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}
