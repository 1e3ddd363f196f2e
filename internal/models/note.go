// Package models defines the domain types for quire.
package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultNoteTitle is the title given to freshly created notes.
const DefaultNoteTitle = "untitled note"

// Note is a titled unit of rich-text content.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	FolderID    *string   `json:"folderId"`
	Tags        []string  `json:"tags"`
	Links       []string  `json:"links"`
	Backlinks   []string  `json:"backlinks"`
	Attachments []string  `json:"attachments"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewNote returns an empty note filed under folderID (nil means unfiled).
func NewNote(folderID *string) *Note {
	now := Now()
	return &Note{
		ID:          uuid.NewString(),
		Title:       DefaultNoteTitle,
		FolderID:    cloneID(folderID),
		Tags:        []string{},
		Links:       []string{},
		Backlinks:   []string{},
		Attachments: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch refreshes UpdatedAt.
func (n *Note) Touch() {
	n.UpdatedAt = Now()
}

// InFolder reports whether the note is filed under folderID (nil = root).
func (n *Note) InFolder(folderID *string) bool {
	return SameID(n.FolderID, folderID)
}

// HasTag reports exact tag membership.
func (n *Note) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

// NotePatch carries a partial update. Nil fields are left untouched.
type NotePatch struct {
	Title       *string    `json:"title,omitempty"`
	Content     *string    `json:"content,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Folder      *FolderRef `json:"-"`
	Attachments []string   `json:"attachments,omitempty"`
}

// Apply merges the patch into n and always refreshes UpdatedAt.
// It reports whether the content changed, which callers use to decide
// whether links must be re-resolved.
func (n *Note) Apply(p NotePatch) (contentChanged bool) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil && *p.Content != n.Content {
		n.Content = *p.Content
		contentChanged = true
	}
	if p.Tags != nil {
		n.Tags = NormalizeTags(p.Tags)
	}
	if p.Folder != nil && !p.Folder.IsCurrent() {
		n.FolderID = cloneID(p.Folder.ID())
	}
	if p.Attachments != nil {
		n.Attachments = slices.Clone(p.Attachments)
	}
	n.Touch()
	return contentChanged
}

// Clone returns a deep copy of n.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	c.FolderID = cloneID(n.FolderID)
	c.Tags = cloneStrings(n.Tags)
	c.Links = cloneStrings(n.Links)
	c.Backlinks = cloneStrings(n.Backlinks)
	c.Attachments = cloneStrings(n.Attachments)
	return &c
}

// Normalize fills nil slices and a missing UpdatedAt. Used on data read
// from storage, where older payloads may omit fields.
func (n *Note) Normalize() {
	n.Tags = NormalizeTags(n.Tags)
	if n.Links == nil {
		n.Links = []string{}
	}
	if n.Backlinks == nil {
		n.Backlinks = []string{}
	}
	if n.Attachments == nil {
		n.Attachments = []string{}
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
}

// NormalizeTags trims tags, drops empties and removes duplicates while
// keeping first-occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// CloneNotes deep-copies a slice of notes.
func CloneNotes(notes []*Note) []*Note {
	out := make([]*Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}

// Now returns the current UTC time at millisecond precision, matching
// what survives a round trip through the persisted ISO-8601 form.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// SameID compares two nullable ids.
func SameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ID returns a pointer to a copy of id, for building nullable references.
func ID(id string) *string {
	return &id
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
