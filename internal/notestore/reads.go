package notestore

import (
	"github.com/starford/quire/internal/foldertree"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/persistence"
	"github.com/starford/quire/internal/query"
)

// Note returns a copy of the note with id.
func (s *Store) Note(id string) (*models.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.noteLocked(id)
	return n.Clone(), n != nil
}

// SelectedNote returns the selected note, or nil when none is selected.
func (s *Store) SelectedNote() *models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selNote == nil {
		return nil
	}
	return s.noteLocked(*s.selNote).Clone()
}

// Notes returns copies of every note in insertion order.
func (s *Store) Notes() []*models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneNotes(s.notes)
}

// FilteredNotes returns the notes whose title or content contains term.
func (s *Store) FilteredNotes(term string) []*models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneNotes(query.Filter(s.notes, term))
}

// NotesInFolder returns the notes filed directly in folderID (nil = unfiled).
func (s *Store) NotesInFolder(folderID *string) []*models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneNotes(query.NotesInFolder(s.notes, folderID))
}

// Folder returns a copy of the folder with id.
func (s *Store) Folder(id string) (*models.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.folderLocked(id)
	return f.Clone(), f != nil
}

// Folders returns copies of every folder.
func (s *Store) Folders() []*models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneFolders(s.folders)
}

// ChildFolders returns the direct children of parentID (nil = root).
func (s *Store) ChildFolders(parentID *string) []*models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneFolders(foldertree.Children(s.folders, parentID))
}

// RootFolders returns the folders without a parent.
func (s *Store) RootFolders() []*models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneFolders(foldertree.Roots(s.folders))
}

// FolderTree returns the nested folder view built from copies.
func (s *Store) FolderTree() []*foldertree.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return foldertree.Tree(models.CloneFolders(s.folders))
}

// AllTags returns every distinct tag, sorted.
func (s *Store) AllTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.AllTags(s.notes)
}

// NotesWithTag returns the notes carrying tag.
func (s *Store) NotesWithTag(tag string) []*models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneNotes(query.NotesWithTag(s.notes, tag))
}

// BacklinkedNotes returns the notes that link to id.
func (s *Store) BacklinkedNotes(id string) []*models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneNotes(query.Backlinked(s.notes, id))
}

// GraphNodes returns one node per note and per folder.
func (s *Store) GraphNodes() []models.GraphNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.GraphNodes(s.notes, s.folders)
}

// GraphConnections returns the link and folder edges of the graph.
func (s *Store) GraphConnections() []models.GraphConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.GraphConnections(s.notes, s.folders)
}

// Selection returns the selected note and folder ids.
func (s *Store) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel := Selection{}
	if s.selNote != nil {
		sel.NoteID = models.ID(*s.selNote)
	}
	if s.selFold != nil {
		sel.FolderID = models.ID(*s.selFold)
	}
	return sel
}

// Theme returns a copy of the current theme.
func (s *Store) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme.Clone()
}

// Snapshot returns the full persisted state.
func (s *Store) Snapshot() *persistence.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}
