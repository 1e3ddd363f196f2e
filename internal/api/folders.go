package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/quire/internal/models"
)

// ListFolders handles GET /api/folders.
//
//	@Summary		List all folders
//	@Tags			folders
//	@Produce		json
//	@Success		200	{array}	models.Folder
//	@Security		BearerAuth
//	@Router			/folders [get]
func (h *Handler) ListFolders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Folders())
}

// FolderTree handles GET /api/folders/tree.
//
//	@Summary		Get the folder hierarchy
//	@Tags			folders
//	@Produce		json
//	@Success		200	{array}	foldertree.Node
//	@Security		BearerAuth
//	@Router			/folders/tree [get]
func (h *Handler) FolderTree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.FolderTree())
}

// CreateFolder handles POST /api/folders.
//
//	@Summary		Create a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateFolderRequest	true	"Folder to create"
//	@Success		201		{object}	models.Folder
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if r.ContentLength != 0 {
		if !decode(w, r, &req) {
			return
		}
	}
	folder, err := h.store.AddFolder(req.ParentID, req.Name)
	if err != nil {
		writeError(w, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// GetFolder handles GET /api/folders/{id}.
//
//	@Summary		Get a folder
//	@Tags			folders
//	@Produce		json
//	@Param			id	path		string	true	"Folder id"
//	@Success		200	{object}	models.Folder
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [get]
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, ok := h.store.Folder(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("folder not found"))
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// UpdateFolder handles PATCH /api/folders/{id}.
//
//	@Summary		Rename or restyle a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Folder id"
//	@Param			body	body		models.FolderPatch	true	"Fields to change"
//	@Success		200		{object}	models.Folder
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [patch]
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	var patch models.FolderPatch
	if !decode(w, r, &patch) {
		return
	}
	folder, err := h.store.UpdateFolder(chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, "update folder", err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// MoveFolder handles POST /api/folders/{id}/move.
//
//	@Summary		Move a folder under a new parent
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Folder id"
//	@Param			body	body		MoveFolderRequest	true	"New parent, null for root"
//	@Success		200		{object}	models.Folder
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id}/move [post]
func (h *Handler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	var req MoveFolderRequest
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.store.MoveFolder(id, req.ParentID); err != nil {
		writeError(w, "move folder", err)
		return
	}
	folder, _ := h.store.Folder(id)
	writeJSON(w, http.StatusOK, folder)
}

// DeleteFolder handles DELETE /api/folders/{id}.
//
//	@Summary		Delete a folder, unfiling its notes
//	@Tags			folders
//	@Param			id	path	string	true	"Folder id"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [delete]
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteFolder(chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete folder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChildFolders handles GET /api/folders/{id}/children. The id "root" lists
// top-level folders.
//
//	@Summary		List direct child folders
//	@Tags			folders
//	@Produce		json
//	@Param			id	path	string	true	"Folder id or root"
//	@Success		200	{array}	models.Folder
//	@Security		BearerAuth
//	@Router			/folders/{id}/children [get]
func (h *Handler) ChildFolders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ChildFolders(folderParam(chi.URLParam(r, "id"))))
}

// FolderNotes handles GET /api/folders/{id}/notes. The id "root" lists
// unfiled notes.
//
//	@Summary		List notes directly inside a folder
//	@Tags			folders
//	@Produce		json
//	@Param			id	path		string	true	"Folder id or root"
//	@Success		200	{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/folders/{id}/notes [get]
func (h *Handler) FolderNotes(w http.ResponseWriter, r *http.Request) {
	notes := h.store.NotesInFolder(folderParam(chi.URLParam(r, "id")))
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}
