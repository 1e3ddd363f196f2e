// Package foldertree enforces the folder hierarchy rules: a parent chain never
// loops, and deleting a folder never leaves notes or children pointing at it.
package foldertree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// Node is a folder with its nested children, for tree rendering.
type Node struct {
	*models.Folder
	Children []*Node `json:"children"`
}

// Move re-parents folderID under newParentID (nil = root). It fails with
// apperr.ErrCycle when the new parent is the folder itself or one of its
// descendants, leaving every folder untouched.
func Move(folders []*models.Folder, folderID string, newParentID *string) error {
	f := find(folders, folderID)
	if f == nil {
		return fmt.Errorf("folder %s: %w", folderID, apperr.ErrNotFound)
	}
	if newParentID != nil {
		if find(folders, *newParentID) == nil {
			return fmt.Errorf("parent folder %s: %w", *newParentID, apperr.ErrNotFound)
		}
		if WouldCycle(folders, folderID, *newParentID) {
			return fmt.Errorf("move %s under %s: %w", folderID, *newParentID, apperr.ErrCycle)
		}
	}
	f.ParentID = nil
	if newParentID != nil {
		f.ParentID = models.ID(*newParentID)
	}
	f.Touch()
	return nil
}

// WouldCycle reports whether placing folderID under parentID closes a loop.
// The upward walk also stops on a loop already present in the data.
func WouldCycle(folders []*models.Folder, folderID, parentID string) bool {
	seen := map[string]struct{}{}
	cur := &parentID
	for cur != nil {
		if *cur == folderID {
			return true
		}
		if _, ok := seen[*cur]; ok {
			return true
		}
		seen[*cur] = struct{}{}
		p := find(folders, *cur)
		if p == nil {
			return false
		}
		cur = p.ParentID
	}
	return false
}

// Delete removes folderID. Notes filed there become unfiled and child folders
// move up to the deleted folder's parent. It returns the remaining folders and
// the notes whose folder changed.
func Delete(folders []*models.Folder, notes []*models.Note, folderID string) ([]*models.Folder, []*models.Note, error) {
	f := find(folders, folderID)
	if f == nil {
		return folders, nil, fmt.Errorf("folder %s: %w", folderID, apperr.ErrNotFound)
	}

	var touched []*models.Note
	for _, n := range notes {
		if n.FolderID != nil && *n.FolderID == folderID {
			n.FolderID = nil
			n.Touch()
			touched = append(touched, n)
		}
	}
	for _, c := range folders {
		if c.ParentID != nil && *c.ParentID == folderID {
			c.ParentID = nil
			if f.ParentID != nil {
				c.ParentID = models.ID(*f.ParentID)
			}
			c.Touch()
		}
	}

	remaining := slices.DeleteFunc(slices.Clone(folders), func(x *models.Folder) bool { return x.ID == folderID })
	return remaining, touched, nil
}

// Children returns the direct children of parentID (nil = root), sorted by name.
func Children(folders []*models.Folder, parentID *string) []*models.Folder {
	var out []*models.Folder
	for _, f := range folders {
		if models.SameID(f.ParentID, parentID) {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Folder) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Roots returns the top-level folders in collection order.
func Roots(folders []*models.Folder) []*models.Folder {
	var out []*models.Folder
	for _, f := range folders {
		if f.ParentID == nil {
			out = append(out, f)
		}
	}
	return out
}

// Tree builds the nested view from the root level down. Children are sorted
// by name at every level.
func Tree(folders []*models.Folder) []*Node {
	return subtree(folders, nil, map[string]struct{}{})
}

func subtree(folders []*models.Folder, parentID *string, seen map[string]struct{}) []*Node {
	kids := Children(folders, parentID)
	out := make([]*Node, 0, len(kids))
	for _, k := range kids {
		if _, ok := seen[k.ID]; ok {
			continue
		}
		seen[k.ID] = struct{}{}
		id := k.ID
		out = append(out, &Node{Folder: k, Children: subtree(folders, &id, seen)})
	}
	return out
}

// ReassignOrphans unfiles every note whose folder does not exist and returns
// how many were changed.
func ReassignOrphans(notes []*models.Note, folders []*models.Folder) int {
	n := 0
	for _, note := range notes {
		if note.FolderID != nil && find(folders, *note.FolderID) == nil {
			note.FolderID = nil
			n++
		}
	}
	return n
}

// BreakCycles moves to the root any folder whose parent is missing or whose
// parent chain loops back on itself. It returns how many folders were changed.
func BreakCycles(folders []*models.Folder) int {
	n := 0
	for _, f := range folders {
		if f.ParentID == nil {
			continue
		}
		if find(folders, *f.ParentID) == nil || WouldCycle(folders, f.ID, *f.ParentID) {
			f.ParentID = nil
			n++
		}
	}
	return n
}

func find(folders []*models.Folder, id string) *models.Folder {
	for _, f := range folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}
