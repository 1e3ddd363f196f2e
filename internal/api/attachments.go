package api

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/storage"
)

const (
	attachDir      = "attachments"
	maxUploadBytes = 50 << 20 // 50 MB
)

// AttachmentHandler stores uploaded files in the data directory and records
// their URLs on the owning note.
type AttachmentHandler struct {
	store *notestore.Store
	files storage.Provider
}

// NewAttachmentHandler creates a handler writing through files.
func NewAttachmentHandler(store *notestore.Store, files storage.Provider) *AttachmentHandler {
	return &AttachmentHandler{store: store, files: files}
}

// safeName validates that name is a plain file name and returns its path
// relative to the data directory.
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return path.Join(attachDir, cleaned), nil
}

// ServeFile handles GET /attachments/{filename}.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	rel, err := safeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := h.files.Read(rel)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

// Upload handles POST /api/notes/{id}/attachments (multipart/form-data,
// field "file").
//
//	@Summary		Attach a file to a note
//	@Tags			notes
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Note id"
//	@Param			file	formData	file	true	"File to attach"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/attachments [post]
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, ok := h.store.Note(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("note not found"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name := id + "-" + filepath.Base(header.Filename)
	rel, err := safeName(name)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}
	if err := h.files.Write(rel, data); err != nil {
		writeError(w, "write attachment", err)
		return
	}

	url := "/attachments/" + name
	attachments := note.Attachments
	if !slices.Contains(attachments, url) {
		attachments = append(attachments, url)
	}
	note, err = h.store.UpdateNote(id, models.NotePatch{Attachments: attachments})
	if err != nil {
		writeError(w, "attach file", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}
