package notestore

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/linkgraph"
	"github.com/starford/quire/internal/models"
)

// AddNote creates an empty note at the front of the collection and selects
// it. CurrentFolder files it under the selected folder.
func (s *Store) AddNote(ref models.FolderRef) (*models.Note, error) {
	var out *models.Note
	err := s.mutate(func() ([]Event, error) {
		folderID := ref.Resolve(s.selFold)
		if folderID != nil && s.folderLocked(*folderID) == nil {
			return nil, fmt.Errorf("folder %s: %w", *folderID, apperr.ErrNotFound)
		}
		n := models.NewNote(folderID)
		s.notes = append([]*models.Note{n}, s.notes...)
		s.selNote = models.ID(n.ID)
		out = n.Clone()
		return []Event{
			{Kind: EventNoteCreated, ID: n.ID},
			{Kind: EventSelectionChanged, ID: n.ID},
		}, nil
	})
	return out, err
}

// UpdateNote merges patch into the note. Links are re-resolved only when the
// content changed.
func (s *Store) UpdateNote(id string, patch models.NotePatch) (*models.Note, error) {
	var out *models.Note
	err := s.mutate(func() ([]Event, error) {
		n := s.noteLocked(id)
		if n == nil {
			return nil, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
		}
		if patch.Folder != nil {
			ref := models.RefFromID(patch.Folder.Resolve(s.selFold))
			if fid := ref.ID(); fid != nil && s.folderLocked(*fid) == nil {
				return nil, fmt.Errorf("folder %s: %w", *fid, apperr.ErrNotFound)
			}
			patch.Folder = &ref
		}
		if n.Apply(patch) {
			linkgraph.Resolve(s.notes, id)
		}
		out = n.Clone()
		return []Event{{Kind: EventNoteUpdated, ID: id}}, nil
	})
	return out, err
}

// DeleteNote removes the note, scrubs it from every link list and clears the
// selection if it was selected.
func (s *Store) DeleteNote(id string) error {
	return s.mutate(func() ([]Event, error) {
		if s.noteLocked(id) == nil {
			return nil, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
		}
		s.notes = slices.DeleteFunc(s.notes, func(n *models.Note) bool { return n.ID == id })
		linkgraph.Detach(s.notes, id)
		events := []Event{{Kind: EventNoteDeleted, ID: id}}
		if s.selNote != nil && *s.selNote == id {
			s.selNote = nil
			events = append(events, Event{Kind: EventSelectionChanged})
		}
		return events, nil
	})
}

// AddTag adds a trimmed tag. Adding a tag the note already has is a no-op.
func (s *Store) AddTag(id, tag string) (*models.Note, error) {
	tag = strings.TrimSpace(tag)
	var out *models.Note
	err := s.mutate(func() ([]Event, error) {
		n := s.noteLocked(id)
		if n == nil {
			return nil, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
		}
		if tag == "" {
			return nil, fmt.Errorf("empty tag: %w", apperr.ErrInvalidInput)
		}
		out = n.Clone()
		if n.HasTag(tag) {
			return nil, nil
		}
		n.Tags = append(n.Tags, tag)
		n.Touch()
		out = n.Clone()
		return []Event{{Kind: EventNoteUpdated, ID: id}}, nil
	})
	return out, err
}

// RemoveTag removes tag from the note if present.
func (s *Store) RemoveTag(id, tag string) (*models.Note, error) {
	tag = strings.TrimSpace(tag)
	var out *models.Note
	err := s.mutate(func() ([]Event, error) {
		n := s.noteLocked(id)
		if n == nil {
			return nil, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
		}
		out = n.Clone()
		if !n.HasTag(tag) {
			return nil, nil
		}
		n.Tags = slices.DeleteFunc(n.Tags, func(t string) bool { return t == tag })
		n.Touch()
		out = n.Clone()
		return []Event{{Kind: EventNoteUpdated, ID: id}}, nil
	})
	return out, err
}

// LinkNotes adds a manual link from -> to, independent of content.
func (s *Store) LinkNotes(from, to string) error {
	return s.mutate(func() ([]Event, error) {
		src, dst, err := s.pairLocked(from, to)
		if err != nil {
			return nil, err
		}
		if !linkgraph.Link(s.notes, from, to) {
			return nil, nil
		}
		src.Touch()
		dst.Touch()
		return []Event{{Kind: EventNoteUpdated, ID: from}, {Kind: EventNoteUpdated, ID: to}}, nil
	})
}

// UnlinkNotes removes the link from -> to.
func (s *Store) UnlinkNotes(from, to string) error {
	return s.mutate(func() ([]Event, error) {
		src, dst, err := s.pairLocked(from, to)
		if err != nil {
			return nil, err
		}
		if !linkgraph.Unlink(s.notes, from, to) {
			return nil, nil
		}
		src.Touch()
		dst.Touch()
		return []Event{{Kind: EventNoteUpdated, ID: from}, {Kind: EventNoteUpdated, ID: to}}, nil
	})
}

func (s *Store) pairLocked(from, to string) (*models.Note, *models.Note, error) {
	if from == to {
		return nil, nil, fmt.Errorf("note cannot link to itself: %w", apperr.ErrInvalidInput)
	}
	src := s.noteLocked(from)
	if src == nil {
		return nil, nil, fmt.Errorf("note %s: %w", from, apperr.ErrNotFound)
	}
	dst := s.noteLocked(to)
	if dst == nil {
		return nil, nil, fmt.Errorf("note %s: %w", to, apperr.ErrNotFound)
	}
	return src, dst, nil
}

// SelectNote focuses a note. Nil clears the selection.
func (s *Store) SelectNote(id *string) error {
	return s.mutate(func() ([]Event, error) {
		if id != nil && s.noteLocked(*id) == nil {
			return nil, fmt.Errorf("note %s: %w", *id, apperr.ErrNotFound)
		}
		if models.SameID(s.selNote, id) {
			return nil, nil
		}
		s.selNote = nil
		if id != nil {
			s.selNote = models.ID(*id)
		}
		return []Event{{Kind: EventSelectionChanged}}, nil
	})
}
