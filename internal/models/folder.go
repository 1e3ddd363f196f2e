package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultFolderName is used when a folder is created without a name.
const DefaultFolderName = "new folder"

// Folder is a named container forming a tree via ParentID.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewFolder returns a folder under parentID (nil = root).
func NewFolder(parentID *string, name string) *Folder {
	if name == "" {
		name = DefaultFolderName
	}
	now := Now()
	return &Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  cloneID(parentID),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt.
func (f *Folder) Touch() {
	f.UpdatedAt = Now()
}

// IsRoot reports whether the folder has no parent.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderPatch carries a partial folder update. Reparenting goes through
// the tree manager, so ParentID is not part of the patch.
type FolderPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// Apply merges the patch into f and refreshes UpdatedAt.
func (f *Folder) Apply(p FolderPatch) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	if p.Icon != nil {
		f.Icon = *p.Icon
	}
	f.Touch()
}

// Clone returns a deep copy of f.
func (f *Folder) Clone() *Folder {
	if f == nil {
		return nil
	}
	c := *f
	c.ParentID = cloneID(f.ParentID)
	return &c
}

// Normalize fills a missing UpdatedAt.
func (f *Folder) Normalize() {
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = f.CreatedAt
	}
}

// CloneFolders deep-copies a slice of folders.
func CloneFolders(folders []*Folder) []*Folder {
	out := make([]*Folder, len(folders))
	for i, f := range folders {
		out[i] = f.Clone()
	}
	return out
}

type refKind int

const (
	refUnfiled refKind = iota
	refFolder
	refCurrent
)

// FolderRef names the folder a note should be filed under.
type FolderRef struct {
	kind refKind
	id   string
}

// Unfiled targets the root level.
func Unfiled() FolderRef { return FolderRef{kind: refUnfiled} }

// InFolder targets a specific folder.
func InFolder(id string) FolderRef { return FolderRef{kind: refFolder, id: id} }

// CurrentFolder targets whichever folder is selected when the ref is resolved.
func CurrentFolder() FolderRef { return FolderRef{kind: refCurrent} }

// RefFromID maps a nullable id to Unfiled or InFolder.
func RefFromID(id *string) FolderRef {
	if id == nil {
		return Unfiled()
	}
	return InFolder(*id)
}

// IsCurrent reports whether the ref is the "use current context" sentinel.
func (r FolderRef) IsCurrent() bool { return r.kind == refCurrent }

// ID returns the referenced folder id, or nil for Unfiled and CurrentFolder.
func (r FolderRef) ID() *string {
	if r.kind != refFolder {
		return nil
	}
	return ID(r.id)
}

// Resolve replaces the CurrentFolder sentinel with selected.
func (r FolderRef) Resolve(selected *string) *string {
	if r.kind == refCurrent {
		return cloneID(selected)
	}
	return r.ID()
}
