package api

import (
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/persistence"
)

// CreateNoteRequest is the request body for creating a note. An absent
// folderId files the note under the selected folder; null leaves it unfiled.
type CreateNoteRequest struct {
	FolderID persistence.NullableID `json:"folderId"`
	Title    *string                `json:"title,omitempty" example:"Project Plan"`
	Content  *string                `json:"content,omitempty" example:"<p>see [[Alpha]]</p>"`
	Tags     []string               `json:"tags,omitempty"`
}

// UpdateNoteRequest is the request body for a partial note update. Absent
// fields are left untouched.
type UpdateNoteRequest struct {
	Title       *string                `json:"title,omitempty"`
	Content     *string                `json:"content,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	FolderID    persistence.NullableID `json:"folderId"`
	Attachments []string               `json:"attachments,omitempty"`
}

func (req UpdateNoteRequest) patch() models.NotePatch {
	p := models.NotePatch{
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Attachments: req.Attachments,
	}
	if req.FolderID.Set {
		ref := models.RefFromID(req.FolderID.ID)
		p.Folder = &ref
	}
	return p
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []*models.Note `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit.
type SearchResult struct {
	ID      string `json:"id" validate:"required"`
	Title   string `json:"title" example:"Project Plan" validate:"required"`
	Snippet string `json:"snippet" example:"budget details for..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// TagRequest adds a tag to a note.
type TagRequest struct {
	Tag string `json:"tag" example:"work" validate:"required"`
}

// CreateFolderRequest is the request body for creating a folder.
type CreateFolderRequest struct {
	ParentID *string `json:"parentId"`
	Name     string  `json:"name" example:"projects"`
}

// MoveFolderRequest re-parents a folder; null moves it to the root.
type MoveFolderRequest struct {
	ParentID *string `json:"parentId"`
}

// GraphResponse is the display graph.
type GraphResponse struct {
	Nodes       []models.GraphNode       `json:"nodes" validate:"required"`
	Connections []models.GraphConnection `json:"connections" validate:"required"`
}

// SelectionRequest changes the selection. Absent fields are left untouched.
type SelectionRequest struct {
	NoteID   persistence.NullableID `json:"selectedNoteId"`
	FolderID persistence.NullableID `json:"selectedFolderId"`
}

// PathRequest names a file for export or import.
type PathRequest struct {
	Path string `json:"path" example:"/home/me/notes-backup.json" validate:"required"`
}
