package api

import (
	"net/http"

	"github.com/starford/quire/internal/models"
)

// GetSelection handles GET /api/selection.
//
//	@Summary		Get the selected note and folder
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	notestore.Selection
//	@Security		BearerAuth
//	@Router			/selection [get]
func (h *Handler) GetSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Selection())
}

// PutSelection handles PUT /api/selection. Absent fields keep their value,
// null clears them.
//
//	@Summary		Change the selection
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SelectionRequest	true	"Selection"
//	@Success		200		{object}	notestore.Selection
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selection [put]
func (h *Handler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.NoteID.Set {
		if err := h.store.SelectNote(req.NoteID.ID); err != nil {
			writeError(w, "select note", err)
			return
		}
	}
	if req.FolderID.Set {
		if err := h.store.SelectFolder(req.FolderID.ID); err != nil {
			writeError(w, "select folder", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.store.Selection())
}

// GetTheme handles GET /api/theme.
//
//	@Summary		Get the current theme
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	models.Theme
//	@Security		BearerAuth
//	@Router			/theme [get]
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Theme())
}

// PutTheme handles PUT /api/theme.
//
//	@Summary		Replace the current theme
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Theme	true	"Theme colours"
//	@Success		200		{object}	models.Theme
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/theme [put]
func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var theme models.Theme
	if !decode(w, r, &theme) {
		return
	}
	if err := h.store.SetTheme(theme); err != nil {
		writeError(w, "set theme", err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Theme())
}

// Themes handles GET /api/themes.
//
//	@Summary		List the built-in themes
//	@Tags			session
//	@Produce		json
//	@Success		200	{array}	models.Theme
//	@Router			/themes [get]
func (h *Handler) Themes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.DefaultThemes())
}

// Save handles POST /api/save and waits for the write to land.
//
//	@Summary		Persist the store now
//	@Tags			persistence
//	@Success		204
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Save(r.Context()); err != nil {
		writeError(w, "save", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles POST /api/export.
//
//	@Summary		Export all data to a file
//	@Tags			persistence
//	@Accept			json
//	@Param			body	body	PathRequest	true	"Destination"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.store.Export(r.Context(), req.Path); err != nil {
		writeError(w, "export", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/import.
//
//	@Summary		Replace all data from an exported file
//	@Tags			persistence
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Source"
//	@Success		200		{object}	notestore.ImportSummary
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	sum, err := h.store.Import(r.Context(), req.Path)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
